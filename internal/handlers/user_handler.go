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

type UserHandler struct {
	baseHandler
	users *service.UserService
}

func NewUserHandler(users *service.UserService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *UserHandler {
	return &UserHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		users:       users,
	}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/me", h.GetMe)
	router.Put("/me", h.UpdateMe)
	router.Post("/me/context", h.SwitchContext)
}

// UpdateMe edits the actor's own record; nobody edits anyone else's.
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := h.users.UpdateProfile(ctx, middleware.UserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"user": user},
	})
}

// GetMe returns the signed-in actor along with their resolved student
// context, so the frontend knows whose workspace to render. A delegate with
// no shared students yet still gets their own record back, with an empty
// context.
func (h *UserHandler) GetMe(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, "")
	if err != nil {
		var authErr *service.AuthorizationError
		if errors.As(err, &authErr) && authErr.StatusCode == 400 {
			user, userErr := h.users.GetUser(ctx, middleware.UserID(c))
			if userErr != nil {
				return writeError(c, userErr)
			}
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"data": fiber.Map{
					"user":            user,
					"activeStudentId": "",
					"link":            nil,
				},
			})
		}
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"user":            studentCtx.Viewer,
			"activeStudentId": studentCtx.TargetUserID,
			"link":            studentCtx.Link,
		},
	})
}

// SwitchContext makes the requested student the actor's active context.
func (h *UserHandler) SwitchContext(c fiber.Ctx) error {
	var req models.SwitchContextRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.users.SwitchContext(ctx, middleware.UserID(c), req.StudentID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"activeStudentId": studentCtx.TargetUserID,
			"link":            studentCtx.Link,
		},
	})
}
