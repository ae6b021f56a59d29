package service

import (
	"collegetrack-service/internal/models"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type CollegeStore interface {
	New(ctx context.Context, college *models.College) (*models.College, error)
	FindByID(ctx context.Context, id string) (*models.College, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.College, error)
	Update(ctx context.Context, college *models.College) (*models.College, error)
	Delete(ctx context.Context, id string) error
}

type CollegeService struct {
	colleges CollegeStore
}

func NewCollegeService(colleges CollegeStore) *CollegeService {
	return &CollegeService{colleges: colleges}
}

func (s *CollegeService) Create(ctx context.Context, studentID string, req *models.CreateCollegeRequest) (*models.College, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("college name is required")
	}

	status := req.Status
	if status == "" {
		status = models.CollegeStatusResearching
	}

	return s.colleges.New(ctx, &models.College{
		StudentID:       studentID,
		Name:            req.Name,
		Location:        req.Location,
		ApplicationType: req.ApplicationType,
		Deadline:        req.Deadline,
		Status:          status,
		Notes:           req.Notes,
		Financial:       req.Financial,
	})
}

// List returns the student's application list. Cost fields are stripped
// unless the viewer holds viewFinancial; self-access always includes them.
func (s *CollegeService) List(ctx context.Context, studentID string, includeFinancial bool) ([]*models.College, error) {
	colleges, err := s.colleges.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if includeFinancial {
		return colleges, nil
	}

	filtered := make([]*models.College, 0, len(colleges))
	for _, college := range colleges {
		filtered = append(filtered, college.WithoutFinancial())
	}
	return filtered, nil
}

func (s *CollegeService) Update(ctx context.Context, studentID, collegeID string, req *models.UpdateCollegeRequest) (*models.College, error) {
	college, err := s.findOwned(ctx, studentID, collegeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		college.Name = *req.Name
	}
	if req.Location != nil {
		college.Location = *req.Location
	}
	if req.ApplicationType != nil {
		college.ApplicationType = *req.ApplicationType
	}
	if req.Deadline != nil {
		college.Deadline = *req.Deadline
	}
	if req.Status != nil {
		college.Status = *req.Status
	}
	if req.Notes != nil {
		college.Notes = *req.Notes
	}
	if req.Financial != nil {
		college.Financial = req.Financial
	}

	return s.colleges.Update(ctx, college)
}

func (s *CollegeService) Delete(ctx context.Context, studentID, collegeID string) error {
	if _, err := s.findOwned(ctx, studentID, collegeID); err != nil {
		return err
	}
	return s.colleges.Delete(ctx, collegeID)
}

func (s *CollegeService) findOwned(ctx context.Context, studentID, collegeID string) (*models.College, error) {
	college, err := s.colleges.FindByID(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if college.StudentID != studentID {
		return nil, mongo.ErrNoDocuments
	}
	return college, nil
}
