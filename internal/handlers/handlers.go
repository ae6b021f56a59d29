package handlers

import (
	"collegetrack-service/internal/middleware"
	"collegetrack-service/internal/service"
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// baseHandler carries what every domain handler needs: the resolver that
// decides whose data a request may touch, and the collaborator service for
// bumping lastSeenAt after a delegated call.
type baseHandler struct {
	resolver      *service.ContextResolver
	collaborators *service.CollaboratorService
}

// resolveStudentContext authorizes the request against the student context
// rules. The target student comes from the studentId query parameter when
// present; otherwise the resolver falls back to self or the stored context.
// Successful delegated calls touch the link so auto-select stays fresh.
func (h *baseHandler) resolveStudentContext(ctx context.Context, c fiber.Ctx, requiredPermission string) (*service.StudentContext, error) {
	studentCtx, err := h.resolver.Resolve(ctx, service.ResolveParams{
		ActorUserID:        middleware.UserID(c),
		StudentID:          c.Query("studentId"),
		RequiredPermission: requiredPermission,
	})
	if err != nil {
		return nil, err
	}

	if studentCtx.Link != nil {
		h.collaborators.Touch(ctx, studentCtx.Link.ID.Hex())
	}
	return studentCtx, nil
}

// writeError translates service errors onto the wire. Authorization errors
// carry their own status and message; missing documents are 404; anything
// else is a 500 with the detail kept in the log.
func writeError(c fiber.Ctx, err error) error {
	var authErr *service.AuthorizationError
	if errors.As(err, &authErr) {
		return c.Status(authErr.StatusCode).JSON(fiber.Map{
			"error": authErr.Message,
		})
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
