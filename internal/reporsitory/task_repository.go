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

type TaskRepository struct {
	collection *mongo.Collection
	mu         *sync.Mutex
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		collection: db.Collection("Task"),
		mu:         &sync.Mutex{},
	}
}

func (r *TaskRepository) New(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID.IsZero() {
		task.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if task.Metadata.CreatedAt == 0 {
		task.Metadata.CreatedAt = currentTime
	}
	task.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var task models.Task
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "dueAt", Value: 1},
		{Key: "metadata.createdAt", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.Metadata.UpdatedAt = int(time.Now().Unix())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Task
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": task.ID}, bson.M{"$set": task}, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindDueForReminder returns unfinished tasks whose reminder window has
// opened and which have not yet had a reminder sent.
func (r *TaskRepository) FindDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*models.Task, error) {
	horizon := int(now.Add(window).Unix())

	filter := bson.M{
		"status":         bson.M{"$ne": models.TaskStatusDone},
		"dueAt":          bson.M{"$gt": 0, "$lte": horizon},
		"reminderSentAt": bson.M{"$in": []any{nil, 0}},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find due tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode due tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	update := bson.M{"$set": bson.M{"reminderSentAt": int(at.Unix())}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func (r *TaskRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "dueAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueAt", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}
