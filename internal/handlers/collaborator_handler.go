package handlers

import (
	"collegetrack-service/internal/middleware"
	"collegetrack-service/internal/models"
	"collegetrack-service/internal/service"
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
)

type CollaboratorHandler struct {
	baseHandler
	users *service.UserService
}

func NewCollaboratorHandler(collaborators *service.CollaboratorService, users *service.UserService, resolver *service.ContextResolver) *CollaboratorHandler {
	return &CollaboratorHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		users:       users,
	}
}

func (h *CollaboratorHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/collaborators", h.Invite)
	router.Get("/collaborators", h.ListCollaborators)
	router.Put("/collaborators/:linkId", h.UpdateLink)
	router.Delete("/collaborators/:linkId", h.Revoke)
	router.Get("/students", h.ListStudents)
}

// Invite shares the student's own workspace with a counselor or parent.
// Delegates cannot invite on a student's behalf.
func (h *CollaboratorHandler) Invite(c fiber.Ctx) error {
	var req models.InviteCollaboratorRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	actor, err := h.users.GetUser(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	if actor.Role != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only students can invite collaborators",
		})
	}

	link, err := h.collaborators.Invite(ctx, actor.ID.Hex(), &req)
	if err != nil {
		var authErr *service.AuthorizationError
		if errors.As(err, &authErr) {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"link": link},
	})
}

// ListCollaborators returns everyone the student has shared access with.
func (h *CollaboratorHandler) ListCollaborators(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	actorID := middleware.UserID(c)
	actor, err := h.users.GetUser(ctx, actorID)
	if err != nil {
		return writeError(c, err)
	}
	if actor.Role != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only students can list their collaborators",
		})
	}

	views, err := h.collaborators.ListForStudent(ctx, actorID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"collaborators": views},
	})
}

// ListStudents returns the delegate's shared students.
func (h *CollaboratorHandler) ListStudents(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	views, err := h.collaborators.ListForCollaborator(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"students": views},
	})
}

// UpdateLink edits permissions, note, or status on an existing link.
func (h *CollaboratorHandler) UpdateLink(c fiber.Ctx) error {
	var req models.UpdateCollaboratorRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	link, err := h.collaborators.UpdateLink(ctx, c.Params("linkId"), middleware.UserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"link": link},
	})
}

// Revoke ends the collaboration; either party may call it.
func (h *CollaboratorHandler) Revoke(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	link, err := h.collaborators.Revoke(ctx, c.Params("linkId"), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"link": link},
	})
}
