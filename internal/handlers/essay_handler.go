package handlers

import (
	"collegetrack-service/internal/middleware"
	"collegetrack-service/internal/models"
	"collegetrack-service/internal/service"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type EssayHandler struct {
	baseHandler
	essays *service.EssayService
}

func NewEssayHandler(essays *service.EssayService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *EssayHandler {
	return &EssayHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		essays:      essays,
	}
}

func (h *EssayHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/essays", h.List)
	router.Get("/essays/:essayId", h.Get)
	router.Post("/essays", h.Create)
	router.Put("/essays/:essayId", h.Update)
	router.Delete("/essays/:essayId", h.Delete)
	router.Post("/essays/:essayId/critiques", h.RequestCritique)
	router.Post("/essays/:essayId/critiques/:critiqueId/suggestions/:suggestionId/approve", h.ApproveSuggestion)
}

func (h *EssayHandler) List(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionViewEssays)
	if err != nil {
		return writeError(c, err)
	}

	essays, err := h.essays.List(ctx, studentCtx.TargetUserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"essays": essays},
	})
}

func (h *EssayHandler) Get(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionViewEssays)
	if err != nil {
		return writeError(c, err)
	}

	essay, err := h.essays.Get(ctx, studentCtx.TargetUserID, c.Params("essayId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"essay": essay},
	})
}

func (h *EssayHandler) Create(c fiber.Ctx) error {
	var req models.CreateEssayRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionEditEssays)
	if err != nil {
		return writeError(c, err)
	}

	essay, err := h.essays.Create(ctx, studentCtx.TargetUserID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"essay": essay},
	})
}

func (h *EssayHandler) Update(c fiber.Ctx) error {
	var req models.UpdateEssayRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionEditEssays)
	if err != nil {
		return writeError(c, err)
	}

	essay, err := h.essays.Update(ctx, studentCtx.TargetUserID, c.Params("essayId"), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"essay": essay},
	})
}

func (h *EssayHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionEditEssays)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.essays.Delete(ctx, studentCtx.TargetUserID, c.Params("essayId")); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Essay deleted",
	})
}

// RequestCritique runs the AI reviewer over the draft. The LLM round-trip
// can be slow, so this handler gets a longer deadline than the others.
func (h *EssayHandler) RequestCritique(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionEditEssays)
	if err != nil {
		return writeError(c, err)
	}

	essay, err := h.essays.RequestCritique(ctx, studentCtx.TargetUserID, c.Params("essayId"), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"essay": essay},
	})
}

// ApproveSuggestion accepts one AI suggestion into the draft.
func (h *EssayHandler) ApproveSuggestion(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionApproveAiSuggestions)
	if err != nil {
		return writeError(c, err)
	}

	essay, err := h.essays.ApproveSuggestion(ctx, studentCtx.TargetUserID, c.Params("essayId"), c.Params("critiqueId"), c.Params("suggestionId"), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"essay": essay},
	})
}
