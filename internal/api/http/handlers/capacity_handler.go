package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/service"
)

// CapacityHandler answers capacity checks.
type CapacityHandler struct {
	assignments *service.AssignmentService
}

// NewCapacityHandler constructs handler.
func NewCapacityHandler(assignments *service.AssignmentService) *CapacityHandler {
	return &CapacityHandler{assignments: assignments}
}

// Check handles GET /capacity-check?staff_id=|unit_id=.
func (h *CapacityHandler) Check(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	status, err := h.assignments.Capacity(c.UserContext(), principal, service.CapacityQuery{
		StaffID: c.Query("staff_id"),
		UnitID:  c.Query("unit_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCapacityResponse(status))
}
