package service

import (
	"collegetrack-service/internal/models"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type TaskStore interface {
	New(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) Create(ctx context.Context, studentID, createdBy string, req *models.CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	return s.tasks.New(ctx, &models.Task{
		StudentID:       studentID,
		CollegeID:       req.CollegeID,
		Title:           req.Title,
		Description:     req.Description,
		Status:          status,
		DueAt:           req.DueAt,
		RemindBeforeSec: req.RemindBeforeSec,
		CreatedBy:       createdBy,
	})
}

func (s *TaskService) List(ctx context.Context, studentID string) ([]*models.Task, error) {
	return s.tasks.ListByStudent(ctx, studentID)
}

func (s *TaskService) Update(ctx context.Context, studentID, taskID string, req *models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.findOwned(ctx, studentID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.CollegeID != nil {
		task.CollegeID = *req.CollegeID
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.DueAt != nil && *req.DueAt != task.DueAt {
		task.DueAt = *req.DueAt
		// New deadline, new reminder.
		task.ReminderSentAt = 0
	}
	if req.RemindBeforeSec != nil {
		task.RemindBeforeSec = *req.RemindBeforeSec
	}

	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, studentID, taskID string) error {
	if _, err := s.findOwned(ctx, studentID, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

// findOwned loads a task and hides records belonging to other students.
func (s *TaskService) findOwned(ctx context.Context, studentID, taskID string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.StudentID != studentID {
		return nil, mongo.ErrNoDocuments
	}
	return task, nil
}
