package handlers

import (
	"collegetrack-service/internal/middleware"
	"collegetrack-service/internal/service"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type PresenceHandler struct {
	baseHandler
	presence *service.PresenceService
}

func NewPresenceHandler(presence *service.PresenceService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *PresenceHandler {
	return &PresenceHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		presence:    presence,
	}
}

func (h *PresenceHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/presence/heartbeat", h.Heartbeat)
	router.Get("/presence", h.ListViewers)
	router.Delete("/presence", h.Leave)
}

// Heartbeat marks the actor as currently viewing the resolved workspace.
// Any active link grants presence; no specific capability is required.
func (h *PresenceHandler) Heartbeat(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, "")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.presence.Heartbeat(ctx, studentCtx.TargetUserID, middleware.UserID(c), studentCtx.Viewer.Name); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Presence recorded",
	})
}

// ListViewers returns everyone currently viewing the resolved workspace.
func (h *PresenceHandler) ListViewers(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, "")
	if err != nil {
		return writeError(c, err)
	}

	viewers, err := h.presence.ActiveViewers(ctx, studentCtx.TargetUserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"viewers": viewers},
	})
}

// Leave drops the actor's heartbeat immediately instead of waiting for TTL.
func (h *PresenceHandler) Leave(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, "")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.presence.Leave(ctx, studentCtx.TargetUserID, middleware.UserID(c)); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Presence cleared",
	})
}
