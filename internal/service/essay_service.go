package service

import (
	"collegetrack-service/internal/event"
	"collegetrack-service/internal/models"
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type EssayStore interface {
	New(ctx context.Context, essay *models.Essay) (*models.Essay, error)
	FindByID(ctx context.Context, id string) (*models.Essay, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Essay, error)
	Update(ctx context.Context, essay *models.Essay) (*models.Essay, error)
	Delete(ctx context.Context, id string) error
}

// EssayCritiquer produces an AI review of a draft.
type EssayCritiquer interface {
	Critique(ctx context.Context, essay *models.Essay) (*models.Critique, error)
}

type EssayService struct {
	essays    EssayStore
	critiquer EssayCritiquer
	publisher event.Publisher
}

func NewEssayService(essays EssayStore, critiquer EssayCritiquer, publisher event.Publisher) *EssayService {
	return &EssayService{
		essays:    essays,
		critiquer: critiquer,
		publisher: publisher,
	}
}

func (s *EssayService) Create(ctx context.Context, studentID string, req *models.CreateEssayRequest) (*models.Essay, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("essay prompt is required")
	}

	return s.essays.New(ctx, &models.Essay{
		StudentID: studentID,
		CollegeID: req.CollegeID,
		Prompt:    req.Prompt,
		Title:     req.Title,
		Content:   req.Content,
		WordLimit: req.WordLimit,
		Status:    models.EssayStatusDraft,
	})
}

func (s *EssayService) Get(ctx context.Context, studentID, essayID string) (*models.Essay, error) {
	return s.findOwned(ctx, studentID, essayID)
}

func (s *EssayService) List(ctx context.Context, studentID string) ([]*models.Essay, error) {
	return s.essays.ListByStudent(ctx, studentID)
}

func (s *EssayService) Update(ctx context.Context, studentID, essayID string, req *models.UpdateEssayRequest) (*models.Essay, error) {
	essay, err := s.findOwned(ctx, studentID, essayID)
	if err != nil {
		return nil, err
	}

	if req.Prompt != nil {
		essay.Prompt = *req.Prompt
	}
	if req.Title != nil {
		essay.Title = *req.Title
	}
	if req.Content != nil {
		essay.Content = *req.Content
	}
	if req.CollegeID != nil {
		essay.CollegeID = *req.CollegeID
	}
	if req.WordLimit != nil {
		essay.WordLimit = *req.WordLimit
	}
	if req.Status != nil {
		essay.Status = *req.Status
	}

	return s.essays.Update(ctx, essay)
}

func (s *EssayService) Delete(ctx context.Context, studentID, essayID string) error {
	if _, err := s.findOwned(ctx, studentID, essayID); err != nil {
		return err
	}
	return s.essays.Delete(ctx, essayID)
}

// RequestCritique runs the AI reviewer over the draft and appends the
// result to the essay's critique history.
func (s *EssayService) RequestCritique(ctx context.Context, studentID, essayID, requestedBy string) (*models.Essay, error) {
	essay, err := s.findOwned(ctx, studentID, essayID)
	if err != nil {
		return nil, err
	}
	if essay.Content == "" {
		return nil, fmt.Errorf("essay has no content to critique")
	}

	critique, err := s.critiquer.Critique(ctx, essay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate critique: %w", err)
	}
	critique.RequestedBy = requestedBy
	critique.CreatedAt = int(time.Now().Unix())

	essay.Critiques = append(essay.Critiques, *critique)
	if essay.Status == models.EssayStatusDraft {
		essay.Status = models.EssayStatusReviewing
	}

	saved, err := s.essays.Update(ctx, essay)
	if err != nil {
		return nil, err
	}

	s.publishCritiqueReady(saved, requestedBy, critique.ID)
	return saved, nil
}

// ApproveSuggestion marks one AI suggestion as accepted into the draft.
// Approving an already approved suggestion is a no-op.
func (s *EssayService) ApproveSuggestion(ctx context.Context, studentID, essayID, critiqueID, suggestionID, approvedBy string) (*models.Essay, error) {
	essay, err := s.findOwned(ctx, studentID, essayID)
	if err != nil {
		return nil, err
	}

	found := false
	for ci := range essay.Critiques {
		if essay.Critiques[ci].ID != critiqueID {
			continue
		}
		for si := range essay.Critiques[ci].Suggestions {
			suggestion := &essay.Critiques[ci].Suggestions[si]
			if suggestion.ID != suggestionID {
				continue
			}
			found = true
			if !suggestion.Approved {
				suggestion.Approved = true
				suggestion.ApprovedBy = approvedBy
				suggestion.ApprovedAt = int(time.Now().Unix())
			}
		}
	}
	if !found {
		return nil, mongo.ErrNoDocuments
	}

	return s.essays.Update(ctx, essay)
}

func (s *EssayService) findOwned(ctx context.Context, studentID, essayID string) (*models.Essay, error) {
	essay, err := s.essays.FindByID(ctx, essayID)
	if err != nil {
		return nil, err
	}
	if essay.StudentID != studentID {
		return nil, mongo.ErrNoDocuments
	}
	return essay, nil
}

func (s *EssayService) publishCritiqueReady(essay *models.Essay, actorID, critiqueID string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishCollaborationEvent(&models.CollaborationEvent{
		EventType: models.EventTypeCritiqueReady,
		StudentID: essay.StudentID,
		ActorID:   actorID,
		Subject:   essay.ID.Hex(),
		Timestamp: time.Now(),
		Payload: map[string]any{
			"critiqueId": critiqueID,
			"essayTitle": essay.Title,
		},
	})
	if err != nil {
		log.Printf("Failed to publish %s event: %v", models.EventTypeCritiqueReady, err)
	}
}
