package handlers

import (
	"collegetrack-service/internal/models"
	"collegetrack-service/internal/service"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type ActivityHandler struct {
	baseHandler
	activities *service.ActivityService
}

func NewActivityHandler(activities *service.ActivityService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		activities:  activities,
	}
}

func (h *ActivityHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/activities", h.List)
	router.Post("/activities", h.Create)
	router.Put("/activities/:activityId", h.Update)
	router.Delete("/activities/:activityId", h.Delete)
}

func (h *ActivityHandler) List(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionViewTasks)
	if err != nil {
		return writeError(c, err)
	}

	activities, err := h.activities.List(ctx, studentCtx.TargetUserID, c.Query("kind"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"activities": activities},
	})
}

func (h *ActivityHandler) Create(c fiber.Ctx) error {
	var req models.CreateActivityRequest
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

	activity, err := h.activities.Create(ctx, studentCtx.TargetUserID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"activity": activity},
	})
}

func (h *ActivityHandler) Update(c fiber.Ctx) error {
	var req models.UpdateActivityRequest
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

	activity, err := h.activities.Update(ctx, studentCtx.TargetUserID, c.Params("activityId"), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"activity": activity},
	})
}

func (h *ActivityHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionManageTasks)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.activities.Delete(ctx, studentCtx.TargetUserID, c.Params("activityId")); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Activity deleted",
	})
}
