package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/service"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// StaffHandler exposes staff scheduling state.
type StaffHandler struct {
	assignments *service.AssignmentService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(assignments *service.AssignmentService) *StaffHandler {
	return &StaffHandler{assignments: assignments}
}

// UpdateAvailability handles PATCH /staff/:id/availability.
func (h *StaffHandler) UpdateAvailability(c *fiber.Ctx) error {
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	status, err := domain.ParseAvailability(req.AvailabilityStatus)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"availability_status": req.AvailabilityStatus})
	}
	principal, _ := auth.PrincipalFromContext(c)

	profile, err := h.assignments.UpdateAvailability(c.UserContext(), principal, c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(profile)})
}
