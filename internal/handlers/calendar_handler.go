package handlers

import (
	"collegetrack-service/internal/models"
	"collegetrack-service/internal/service"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type CalendarHandler struct {
	baseHandler
	calendar *service.CalendarService
}

func NewCalendarHandler(calendar *service.CalendarService, resolver *service.ContextResolver, collaborators *service.CollaboratorService) *CalendarHandler {
	return &CalendarHandler{
		baseHandler: baseHandler{resolver: resolver, collaborators: collaborators},
		calendar:    calendar,
	}
}

func (h *CalendarHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/calendar.ics", h.GetICS)
}

// GetICS serves the student's deadlines as an iCalendar feed.
func (h *CalendarHandler) GetICS(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	studentCtx, err := h.resolveStudentContext(ctx, c, models.PermissionViewCalendar)
	if err != nil {
		return writeError(c, err)
	}

	ics, err := h.calendar.BuildICS(ctx, studentCtx.TargetUserID)
	if err != nil {
		return writeError(c, err)
	}

	c.Set("Content-Type", "text/calendar; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="deadlines.ics"`)
	return c.Status(fiber.StatusOK).SendString(ics)
}
