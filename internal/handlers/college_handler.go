package handlers

import (
	"collegetrack-service/internal/models"
	"collegetrack-service/internal/service"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type CollegeHandler struct {
	baseHandler
	colleges *service.CollegeService
}

func NewCollegeHandler(colleges *service.CollegeService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *CollegeHandler {
	return &CollegeHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		colleges:    colleges,
	}
}

func (h *CollegeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/colleges", h.List)
	router.Post("/colleges", h.Create)
	router.Put("/colleges/:collegeId", h.Update)
	router.Delete("/colleges/:collegeId", h.Delete)
}

// List returns the application list. Cost and aid fields are only included
// when the viewer is the student or holds viewFinancial.
func (h *CollegeHandler) List(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionViewTasks)
	if err != nil {
		return writeError(c, err)
	}

	includeFinancial := studentCtx.Link == nil || studentCtx.Link.Permissions.ViewFinancial

	colleges, err := h.colleges.List(ctx, studentCtx.TargetUserID, includeFinancial)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"colleges": colleges},
	})
}

func (h *CollegeHandler) Create(c fiber.Ctx) error {
	var req models.CreateCollegeRequest
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

	college, err := h.colleges.Create(ctx, studentCtx.TargetUserID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"college": college},
	})
}

func (h *CollegeHandler) Update(c fiber.Ctx) error {
	var req models.UpdateCollegeRequest
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

	college, err := h.colleges.Update(ctx, studentCtx.TargetUserID, c.Params("collegeId"), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"college": college},
	})
}

func (h *CollegeHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionManageTasks)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.colleges.Delete(ctx, studentCtx.TargetUserID, c.Params("collegeId")); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "College deleted",
	})
}
