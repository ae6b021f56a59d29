package service

import (
	"collegetrack-service/internal/event"
	"collegetrack-service/internal/models"
	"context"
	"log"
	"sync"
	"time"
)

// ReminderTaskStore is the slice of the task repository the sweeper needs.
type ReminderTaskStore interface {
	FindDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*models.Task, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

// ReminderService periodically sweeps for tasks entering their reminder
// window and publishes a task.due event for each, once per deadline.
type ReminderService struct {
	tasks     ReminderTaskStore
	publisher event.Publisher
	interval  time.Duration
	window    time.Duration
	shutdown  chan struct{}
	wg        sync.WaitGroup
}

func NewReminderService(tasks ReminderTaskStore, publisher event.Publisher, interval, window time.Duration) *ReminderService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &ReminderService{
		tasks:     tasks,
		publisher: publisher,
		interval:  interval,
		window:    window,
		shutdown:  make(chan struct{}),
	}
}

func (s *ReminderService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
	log.Printf("Reminder sweep started (interval=%s, window=%s)", s.interval, s.window)
}

func (s *ReminderService) Stop() {
	close(s.shutdown)
	s.wg.Wait()
}

func (s *ReminderService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			log.Println("Stopping reminder sweep")
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep runs one reminder pass. A task is only marked sent after its event
// publishes, so a failed publish retries on the next pass.
func (s *ReminderService) Sweep(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks, err := s.tasks.FindDueForReminder(ctx, now, s.window)
	if err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		return
	}

	for _, task := range tasks {
		if !s.windowOpen(task, now) {
			continue
		}

		err := s.publisher.PublishCollaborationEvent(&models.CollaborationEvent{
			EventType: models.EventTypeTaskDue,
			StudentID: task.StudentID,
			Subject:   task.ID.Hex(),
			Timestamp: now,
			Payload: map[string]any{
				"title": task.Title,
				"dueAt": task.DueAt,
			},
		})
		if err != nil {
			log.Printf("Failed to publish task.due for %s: %v", task.ID.Hex(), err)
			continue
		}

		if err := s.tasks.MarkReminderSent(ctx, task.ID.Hex(), now); err != nil {
			log.Printf("Failed to mark reminder sent for %s: %v", task.ID.Hex(), err)
		}
	}
}

// windowOpen honors a task's own lead time when it is shorter than the
// sweep window. The repository query already bounds by the sweep window.
func (s *ReminderService) windowOpen(task *models.Task, now time.Time) bool {
	if task.RemindBeforeSec <= 0 {
		return true
	}
	return int64(task.DueAt)-now.Unix() <= int64(task.RemindBeforeSec)
}
