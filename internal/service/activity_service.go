package service

import (
	"collegetrack-service/internal/models"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ActivityStore interface {
	New(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	ListByStudent(ctx context.Context, studentID, kind string) ([]*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	Delete(ctx context.Context, id string) error
}

type ActivityService struct {
	activities ActivityStore
}

func NewActivityService(activities ActivityStore) *ActivityService {
	return &ActivityService{activities: activities}
}

func (s *ActivityService) Create(ctx context.Context, studentID string, req *models.CreateActivityRequest) (*models.Activity, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("activity title is required")
	}

	kind := req.Kind
	if kind == "" {
		kind = models.ActivityKindActivity
	}
	if kind != models.ActivityKindActivity && kind != models.ActivityKindHonor {
		return nil, fmt.Errorf("invalid activity kind: %s", kind)
	}

	return s.activities.New(ctx, &models.Activity{
		StudentID:    studentID,
		Kind:         kind,
		Title:        req.Title,
		Role:         req.Role,
		Description:  req.Description,
		YearsActive:  req.YearsActive,
		HoursPerWeek: req.HoursPerWeek,
		Level:        req.Level,
	})
}

// List returns the student's record, optionally filtered to one kind.
func (s *ActivityService) List(ctx context.Context, studentID, kind string) ([]*models.Activity, error) {
	if kind != "" && kind != models.ActivityKindActivity && kind != models.ActivityKindHonor {
		return nil, fmt.Errorf("invalid activity kind: %s", kind)
	}
	return s.activities.ListByStudent(ctx, studentID, kind)
}

func (s *ActivityService) Update(ctx context.Context, studentID, activityID string, req *models.UpdateActivityRequest) (*models.Activity, error) {
	activity, err := s.findOwned(ctx, studentID, activityID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Role != nil {
		activity.Role = *req.Role
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.YearsActive != nil {
		activity.YearsActive = req.YearsActive
	}
	if req.HoursPerWeek != nil {
		activity.HoursPerWeek = *req.HoursPerWeek
	}
	if req.Level != nil {
		activity.Level = *req.Level
	}

	return s.activities.Update(ctx, activity)
}

func (s *ActivityService) Delete(ctx context.Context, studentID, activityID string) error {
	if _, err := s.findOwned(ctx, studentID, activityID); err != nil {
		return err
	}
	return s.activities.Delete(ctx, activityID)
}

func (s *ActivityService) findOwned(ctx context.Context, studentID, activityID string) (*models.Activity, error) {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity.StudentID != studentID {
		return nil, mongo.ErrNoDocuments
	}
	return activity, nil
}
