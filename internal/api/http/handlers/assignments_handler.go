package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/service"
)

// AssignmentsHandler exposes admission and assignment lifecycle endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignments *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignments}
}

// AutoAssign handles POST /assignments/auto-assign.
func (h *AssignmentsHandler) AutoAssign(c *fiber.Ctx) error {
	var req dto.WorkItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	principal, _ := auth.PrincipalFromContext(c)

	decision, err := h.assignments.Submit(c.UserContext(), principal, req.WorkItem())
	if err != nil {
		return err
	}
	if decision.Queued() {
		return c.Status(http.StatusAccepted).JSON(dto.QueuedResponse{Queued: true, QueueID: decision.Entry.ID})
	}
	a := decision.Assignment
	return c.JSON(dto.AssignedResponse{AssignmentID: a.ID, AssigneeID: a.AssigneeID, SLADeadline: a.SLADeadline})
}

// Manual handles POST /assignments/manual.
func (h *AssignmentsHandler) Manual(c *fiber.Ctx) error {
	var req dto.ManualAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.AssigneeID == "" {
		return fiber.NewError(http.StatusBadRequest, "assignee_id required")
	}
	principal, _ := auth.PrincipalFromContext(c)

	assignment, err := h.assignments.ManualAssign(c.UserContext(), principal, service.ManualAssignInput{
		WorkItem:   req.WorkItem(),
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// Complete handles POST /assignments/:id/complete.
func (h *AssignmentsHandler) Complete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	assignment, err := h.assignments.Complete(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// Escalate handles POST /assignments/:id/escalate.
func (h *AssignmentsHandler) Escalate(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	assignment, err := h.assignments.Escalate(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// Get handles GET /assignments/:id.
func (h *AssignmentsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	assignment, err := h.assignments.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}
