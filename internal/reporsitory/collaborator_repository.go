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

type CollaboratorRepository struct {
	collection *mongo.Collection
	mu         *sync.Mutex
}

func NewCollaboratorRepository(db *mongo.Database) *CollaboratorRepository {
	return &CollaboratorRepository{
		collection: db.Collection("CollaboratorLink"),
		mu:         &sync.Mutex{},
	}
}

func (r *CollaboratorRepository) FindByID(ctx context.Context, id string) (*models.CollaboratorLink, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var link models.CollaboratorLink
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&link); err != nil {
		return nil, err
	}
	return &link, nil
}

// FindActiveByPair returns the governing link candidate for a delegate
// acting on a student.
func (r *CollaboratorRepository) FindActiveByPair(ctx context.Context, studentID, collaboratorID string) (*models.CollaboratorLink, error) {
	filter := bson.M{
		"studentId":      studentID,
		"collaboratorId": collaboratorID,
		"status":         models.LinkStatusActive,
	}

	var link models.CollaboratorLink
	if err := r.collection.FindOne(ctx, filter).Decode(&link); err != nil {
		return nil, err
	}
	return &link, nil
}

// FindMostRecentActive returns the delegate's active link with the most
// recent activity, optionally restricted to links granting the named
// capability. Most recent activity wins: lastSeenAt, then updatedAt, then
// createdAt.
func (r *CollaboratorRepository) FindMostRecentActive(ctx context.Context, collaboratorID, requiredPermission string) (*models.CollaboratorLink, error) {
	filter := bson.M{
		"collaboratorId": collaboratorID,
		"status":         models.LinkStatusActive,
	}
	if requiredPermission != "" {
		filter["permissions."+requiredPermission] = true
	}

	opts := options.FindOne().SetSort(bson.D{
		{Key: "lastSeenAt", Value: -1},
		{Key: "metadata.updatedAt", Value: -1},
		{Key: "metadata.createdAt", Value: -1},
	})

	var link models.CollaboratorLink
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Upsert writes the pair's link, creating it if absent. Re-inviting the
// same collaborator updates the existing record instead of duplicating it.
func (r *CollaboratorRepository) Upsert(ctx context.Context, link *models.CollaboratorLink) (*models.CollaboratorLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentTime := int(time.Now().Unix())

	filter := bson.M{"studentId": link.StudentID, "collaboratorId": link.CollaboratorID}
	update := bson.M{
		"$set": bson.M{
			"relationship":       link.Relationship,
			"status":             link.Status,
			"permissions":        link.Permissions,
			"note":               link.Note,
			"acceptedAt":         link.AcceptedAt,
			"metadata.updatedAt": currentTime,
		},
		"$setOnInsert": bson.M{
			"studentId":          link.StudentID,
			"collaboratorId":     link.CollaboratorID,
			"createdBy":          link.CreatedBy,
			"metadata.createdAt": currentTime,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.CollaboratorLink
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("failed to upsert collaborator link: %w", err)
	}
	return &saved, nil
}

func (r *CollaboratorRepository) Update(ctx context.Context, link *models.CollaboratorLink) (*models.CollaboratorLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link.Metadata.UpdatedAt = int(time.Now().Unix())

	filter := bson.M{"_id": link.ID}
	update := bson.M{"$set": link}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.CollaboratorLink
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to update collaborator link: %w", err)
	}
	return &updated, nil
}

// TouchLastSeen records collaborator activity on the link; recency feeds
// the delegate auto-select ordering.
func (r *CollaboratorRepository) TouchLastSeen(ctx context.Context, linkID string) error {
	objectID, err := bson.ObjectIDFromHex(linkID)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	update := bson.M{"$set": bson.M{"lastSeenAt": int(time.Now().Unix())}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to touch collaborator link: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CollaboratorRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.CollaboratorLink, error) {
	return r.list(ctx, bson.M{"studentId": studentID})
}

// ListActiveByCollaborator returns the delegate's shareable students,
// most recently touched first.
func (r *CollaboratorRepository) ListActiveByCollaborator(ctx context.Context, collaboratorID string) ([]*models.CollaboratorLink, error) {
	filter := bson.M{"collaboratorId": collaboratorID, "status": models.LinkStatusActive}

	opts := options.Find().SetSort(bson.D{
		{Key: "lastSeenAt", Value: -1},
		{Key: "metadata.updatedAt", Value: -1},
		{Key: "metadata.createdAt", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborator links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*models.CollaboratorLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode collaborator links: %w", err)
	}
	return links, nil
}

func (r *CollaboratorRepository) list(ctx context.Context, filter bson.M) ([]*models.CollaboratorLink, error) {
	opts := options.Find().SetSort(bson.M{"metadata.createdAt": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborator links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*models.CollaboratorLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode collaborator links: %w", err)
	}
	return links, nil
}

func (r *CollaboratorRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "studentId", Value: 1},
				{Key: "collaboratorId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "collaboratorId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "lastSeenAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create collaborator link indexes: %w", err)
	}
	return nil
}
