package service

import (
	"collegetrack-service/internal/event"
	"collegetrack-service/internal/models"
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type fakeEssayStore struct {
	essays map[string]*models.Essay
}

func newFakeEssayStore() *fakeEssayStore {
	return &fakeEssayStore{essays: make(map[string]*models.Essay)}
}

func (f *fakeEssayStore) New(ctx context.Context, essay *models.Essay) (*models.Essay, error) {
	if essay.ID.IsZero() {
		essay.ID = bson.NewObjectID()
	}
	f.essays[essay.ID.Hex()] = essay
	return essay, nil
}

func (f *fakeEssayStore) FindByID(ctx context.Context, id string) (*models.Essay, error) {
	essay, ok := f.essays[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return essay, nil
}

func (f *fakeEssayStore) ListByStudent(ctx context.Context, studentID string) ([]*models.Essay, error) {
	var result []*models.Essay
	for _, essay := range f.essays {
		if essay.StudentID == studentID {
			result = append(result, essay)
		}
	}
	return result, nil
}

func (f *fakeEssayStore) Update(ctx context.Context, essay *models.Essay) (*models.Essay, error) {
	if _, ok := f.essays[essay.ID.Hex()]; !ok {
		return nil, mongo.ErrNoDocuments
	}
	f.essays[essay.ID.Hex()] = essay
	return essay, nil
}

func (f *fakeEssayStore) Delete(ctx context.Context, id string) error {
	delete(f.essays, id)
	return nil
}

type fakeCritiquer struct {
	critique *models.Critique
	err      error
	calls    int
}

func (f *fakeCritiquer) Critique(ctx context.Context, essay *models.Essay) (*models.Critique, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.critique
	return &copied, nil
}

func TestRequestCritiqueAppendsToHistory(t *testing.T) {
	store := newFakeEssayStore()
	publisher := event.NewMockPublisher()
	critiquer := &fakeCritiquer{critique: &models.Critique{
		ID:      "critique-1",
		Summary: "Strong opening, weak conclusion.",
		Suggestions: []models.Suggestion{
			{ID: "sugg-1", Text: "Tighten the final paragraph."},
		},
	}}
	svc := NewEssayService(store, critiquer, publisher)

	studentID := testID(1)
	essay, _ := store.New(context.Background(), &models.Essay{
		StudentID: studentID,
		Prompt:    "Why us?",
		Content:   "Because of the research program.",
		Status:    models.EssayStatusDraft,
	})

	counselorID := testID(3)
	updated, err := svc.RequestCritique(context.Background(), studentID, essay.ID.Hex(), counselorID)
	if err != nil {
		t.Fatalf("RequestCritique failed: %v", err)
	}

	if len(updated.Critiques) != 1 {
		t.Fatalf("Expected 1 critique, got %d", len(updated.Critiques))
	}
	critique := updated.Critiques[0]
	if critique.RequestedBy != counselorID {
		t.Errorf("Expected requestedBy %s, got %s", counselorID, critique.RequestedBy)
	}
	if critique.CreatedAt == 0 {
		t.Error("Critique should carry a creation timestamp")
	}
	if updated.Status != models.EssayStatusReviewing {
		t.Errorf("Draft should move to reviewing, got %s", updated.Status)
	}
	if len(publisher.Events) != 1 || publisher.Events[0].EventType != models.EventTypeCritiqueReady {
		t.Errorf("Expected one essay.critique.ready event, got %+v", publisher.Events)
	}
}

func TestRequestCritiqueEmptyContentRejected(t *testing.T) {
	store := newFakeEssayStore()
	critiquer := &fakeCritiquer{critique: &models.Critique{ID: "x"}}
	svc := NewEssayService(store, critiquer, event.NewMockPublisher())

	studentID := testID(1)
	essay, _ := store.New(context.Background(), &models.Essay{
		StudentID: studentID,
		Prompt:    "Why us?",
	})

	_, err := svc.RequestCritique(context.Background(), studentID, essay.ID.Hex(), studentID)
	if err == nil {
		t.Error("Critiquing an empty draft must fail")
	}
	if critiquer.calls != 0 {
		t.Error("The reviewer must not be called for an empty draft")
	}
}

func TestRequestCritiqueHidesForeignEssays(t *testing.T) {
	store := newFakeEssayStore()
	svc := NewEssayService(store, &fakeCritiquer{}, event.NewMockPublisher())

	essay, _ := store.New(context.Background(), &models.Essay{
		StudentID: testID(1),
		Prompt:    "Why us?",
		Content:   "Something.",
	})

	_, err := svc.RequestCritique(context.Background(), testID(2), essay.ID.Hex(), testID(2))
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Foreign essays must look like missing documents, got %v", err)
	}
}

func TestApproveSuggestion(t *testing.T) {
	store := newFakeEssayStore()
	svc := NewEssayService(store, &fakeCritiquer{}, event.NewMockPublisher())

	studentID := testID(1)
	essay, _ := store.New(context.Background(), &models.Essay{
		StudentID: studentID,
		Prompt:    "Why us?",
		Critiques: []models.Critique{{
			ID: "critique-1",
			Suggestions: []models.Suggestion{
				{ID: "sugg-1", Text: "Tighten the final paragraph."},
			},
		}},
	})

	counselorID := testID(3)
	updated, err := svc.ApproveSuggestion(context.Background(), studentID, essay.ID.Hex(), "critique-1", "sugg-1", counselorID)
	if err != nil {
		t.Fatalf("ApproveSuggestion failed: %v", err)
	}

	suggestion := updated.Critiques[0].Suggestions[0]
	if !suggestion.Approved {
		t.Error("Suggestion should be approved")
	}
	if suggestion.ApprovedBy != counselorID {
		t.Errorf("Expected approvedBy %s, got %s", counselorID, suggestion.ApprovedBy)
	}
	firstApprovedAt := suggestion.ApprovedAt
	if firstApprovedAt == 0 {
		t.Error("Approval should carry a timestamp")
	}

	// Re-approving keeps the original approver and timestamp.
	again, err := svc.ApproveSuggestion(context.Background(), studentID, essay.ID.Hex(), "critique-1", "sugg-1", testID(4))
	if err != nil {
		t.Fatalf("Second approval failed: %v", err)
	}
	repeated := again.Critiques[0].Suggestions[0]
	if repeated.ApprovedBy != counselorID || repeated.ApprovedAt != firstApprovedAt {
		t.Error("Re-approval must not overwrite the original approval")
	}
}

func TestApproveUnknownSuggestion(t *testing.T) {
	store := newFakeEssayStore()
	svc := NewEssayService(store, &fakeCritiquer{}, event.NewMockPublisher())

	studentID := testID(1)
	essay, _ := store.New(context.Background(), &models.Essay{
		StudentID: studentID,
		Prompt:    "Why us?",
		Critiques: []models.Critique{{ID: "critique-1"}},
	})

	_, err := svc.ApproveSuggestion(context.Background(), studentID, essay.ID.Hex(), "critique-1", "missing", studentID)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Unknown suggestion should surface as not found, got %v", err)
	}
}
