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

type EssayRepository struct {
	collection *mongo.Collection
	mu         *sync.Mutex
}

func NewEssayRepository(db *mongo.Database) *EssayRepository {
	return &EssayRepository{
		collection: db.Collection("Essay"),
		mu:         &sync.Mutex{},
	}
}

func (r *EssayRepository) New(ctx context.Context, essay *models.Essay) (*models.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if essay.ID.IsZero() {
		essay.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if essay.Metadata.CreatedAt == 0 {
		essay.Metadata.CreatedAt = currentTime
	}
	essay.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, essay)
	if err != nil {
		return nil, fmt.Errorf("failed to insert essay: %w", err)
	}
	return essay, nil
}

func (r *EssayRepository) FindByID(ctx context.Context, id string) (*models.Essay, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var essay models.Essay
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&essay); err != nil {
		return nil, err
	}
	return &essay, nil
}

func (r *EssayRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Essay, error) {
	opts := options.Find().SetSort(bson.M{"metadata.updatedAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list essays: %w", err)
	}
	defer cursor.Close(ctx)

	var essays []*models.Essay
	if err = cursor.All(ctx, &essays); err != nil {
		return nil, fmt.Errorf("failed to decode essays: %w", err)
	}
	return essays, nil
}

func (r *EssayRepository) Update(ctx context.Context, essay *models.Essay) (*models.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	essay.Metadata.UpdatedAt = int(time.Now().Unix())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Essay
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": essay.ID}, bson.M{"$set": essay}, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update essay: %w", err)
	}
	return &updated, nil
}

func (r *EssayRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete essay: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *EssayRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "metadata.updatedAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "collegeId", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create essay indexes: %w", err)
	}
	return nil
}
