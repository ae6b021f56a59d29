package reporsitory

import (
	"collegetrack-service/internal/models"
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CollegeRepository struct {
	collection *mongo.Collection
	mu         *sync.Mutex
}

func NewCollegeRepository(db *mongo.Database) *CollegeRepository {
	return &CollegeRepository{
		collection: db.Collection("College"),
		mu:         &sync.Mutex{},
	}
}

func (r *CollegeRepository) New(ctx context.Context, college *models.College) (*models.College, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if college.ID.IsZero() {
		college.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if college.Metadata.CreatedAt == 0 {
		college.Metadata.CreatedAt = currentTime
	}
	college.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, college)
	if err != nil {
		return nil, fmt.Errorf("failed to insert college: %w", err)
	}
	return college, nil
}

func (r *CollegeRepository) FindByID(ctx context.Context, id string) (*models.College, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var college models.College
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&college); err != nil {
		return nil, err
	}
	return &college, nil
}

func (r *CollegeRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.College, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "deadline", Value: 1},
		{Key: "metadata.createdAt", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list colleges: %w", err)
	}
	defer cursor.Close(ctx)

	var colleges []*models.College
	if err = cursor.All(ctx, &colleges); err != nil {
		return nil, fmt.Errorf("failed to decode colleges: %w", err)
	}
	return colleges, nil
}

func (r *CollegeRepository) Update(ctx context.Context, college *models.College) (*models.College, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	college.Metadata.UpdatedAt = int(time.Now().Unix())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.College
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": college.ID}, bson.M{"$set": college}, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update college: %w", err)
	}
	return &updated, nil
}

func (r *CollegeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete college: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CollegeRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "deadline", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create college indexes: %w", err)
	}
	return nil
}
