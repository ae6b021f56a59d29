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

type ActivityRepository struct {
	collection *mongo.Collection
	mu         *sync.Mutex
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("Activity"),
		mu:         &sync.Mutex{},
	}
}

func (r *ActivityRepository) New(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if activity.ID.IsZero() {
		activity.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if activity.Metadata.CreatedAt == 0 {
		activity.Metadata.CreatedAt = currentTime
	}
	activity.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}
	return activity, nil
}

func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var activity models.Activity
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepository) ListByStudent(ctx context.Context, studentID, kind string) ([]*models.Activity, error) {
	filter := bson.M{"studentId": studentID}
	if kind != "" {
		filter["kind"] = kind
	}

	opts := options.Find().SetSort(bson.M{"metadata.createdAt": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.Activity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity.Metadata.UpdatedAt = int(time.Now().Unix())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Activity
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": activity.ID}, bson.M{"$set": activity}, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	return &updated, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ActivityRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "kind", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}
