package service

import (
	"collegetrack-service/internal/event"
	"collegetrack-service/internal/models"
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeReminderTaskStore struct {
	due        []*models.Task
	marked     []string
	markErr    error
	findCalled int
}

func (f *fakeReminderTaskStore) FindDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*models.Task, error) {
	f.findCalled++
	return f.due, nil
}

func (f *fakeReminderTaskStore) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

type failingPublisher struct {
	err error
}

func (p *failingPublisher) PublishCollaborationEvent(event *models.CollaborationEvent) error {
	return p.err
}

func (p *failingPublisher) Close() error {
	return nil
}

func dueTask(studentID string, dueAt time.Time, remindBeforeSec int) *models.Task {
	return &models.Task{
		ID:              bson.NewObjectID(),
		StudentID:       studentID,
		Title:           "Submit application",
		Status:          models.TaskStatusTodo,
		DueAt:           int(dueAt.Unix()),
		RemindBeforeSec: remindBeforeSec,
	}
}

func TestSweepPublishesAndMarks(t *testing.T) {
	now := time.Now()
	task := dueTask(testID(1), now.Add(2*time.Hour), 0)
	store := &fakeReminderTaskStore{due: []*models.Task{task}}
	publisher := event.NewMockPublisher()

	svc := NewReminderService(store, publisher, time.Minute, 24*time.Hour)
	svc.Sweep(now)

	if len(publisher.Events) != 1 {
		t.Fatalf("Expected one event, got %d", len(publisher.Events))
	}
	published := publisher.Events[0]
	if published.EventType != models.EventTypeTaskDue {
		t.Errorf("Expected task.due, got %s", published.EventType)
	}
	if published.StudentID != task.StudentID || published.Subject != task.ID.Hex() {
		t.Errorf("Event should reference the task, got %+v", published)
	}
	if len(store.marked) != 1 || store.marked[0] != task.ID.Hex() {
		t.Errorf("Task should be marked sent, got %v", store.marked)
	}
}

func TestSweepSkipsTaskOutsideItsOwnLeadTime(t *testing.T) {
	now := time.Now()
	// Due in 10 hours but the task only wants a 1 hour heads-up.
	task := dueTask(testID(1), now.Add(10*time.Hour), 3600)
	store := &fakeReminderTaskStore{due: []*models.Task{task}}
	publisher := event.NewMockPublisher()

	svc := NewReminderService(store, publisher, time.Minute, 24*time.Hour)
	svc.Sweep(now)

	if len(publisher.Events) != 0 {
		t.Errorf("Task outside its lead time must not fire, got %+v", publisher.Events)
	}
	if len(store.marked) != 0 {
		t.Errorf("Unfired task must not be marked, got %v", store.marked)
	}
}

func TestSweepToleratesNilEventPublisher(t *testing.T) {
	now := time.Now()
	task := dueTask(testID(1), now.Add(time.Hour), 0)
	store := &fakeReminderTaskStore{due: []*models.Task{task}}

	// A nil *EventPublisher behind the interface must behave like the
	// disabled publisher, not crash the sweep goroutine.
	svc := NewReminderService(store, (*event.EventPublisher)(nil), time.Minute, 24*time.Hour)
	svc.Sweep(now)

	if len(store.marked) != 1 || store.marked[0] != task.ID.Hex() {
		t.Errorf("Sweep without a broker should still mark the task, got %v", store.marked)
	}
}

func TestSweepFailedPublishLeavesTaskUnmarked(t *testing.T) {
	now := time.Now()
	task := dueTask(testID(1), now.Add(time.Hour), 0)
	store := &fakeReminderTaskStore{due: []*models.Task{task}}

	svc := NewReminderService(store, &failingPublisher{err: errors.New("broker down")}, time.Minute, 24*time.Hour)
	svc.Sweep(now)

	if len(store.marked) != 0 {
		t.Errorf("Failed publish must leave the task for the next pass, got %v", store.marked)
	}
}
