package handlers

import (
	"collegetrack-service/internal/middleware"
	"collegetrack-service/internal/models"
	"collegetrack-service/internal/service"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type TaskHandler struct {
	baseHandler
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *TaskHandler {
	return &TaskHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		tasks:       tasks,
	}
}

func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tasks", h.List)
	router.Post("/tasks", h.Create)
	router.Put("/tasks/:taskId", h.Update)
	router.Delete("/tasks/:taskId", h.Delete)
}

func (h *TaskHandler) List(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionViewTasks)
	if err != nil {
		return writeError(c, err)
	}

	tasks, err := h.tasks.List(ctx, studentCtx.TargetUserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"tasks": tasks},
	})
}

func (h *TaskHandler) Create(c fiber.Ctx) error {
	var req models.CreateTaskRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionManageTasks)
	if err != nil {
		return writeError(c, err)
	}

	task, err := h.tasks.Create(ctx, studentCtx.TargetUserID, middleware.UserID(c), &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"task": task},
	})
}

func (h *TaskHandler) Update(c fiber.Ctx) error {
	var req models.UpdateTaskRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionManageTasks)
	if err != nil {
		return writeError(c, err)
	}

	task, err := h.tasks.Update(ctx, studentCtx.TargetUserID, c.Params("taskId"), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"task": task},
	})
}

func (h *TaskHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionManageTasks)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.tasks.Delete(ctx, studentCtx.TargetUserID, c.Params("taskId")); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task deleted",
	})
}
