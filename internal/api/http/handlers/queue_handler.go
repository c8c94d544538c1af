package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/service"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// QueueHandler exposes the priority queue.
type QueueHandler struct {
	assignments *service.AssignmentService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(assignments *service.AssignmentService) *QueueHandler {
	return &QueueHandler{assignments: assignments}
}

// List handles GET /assignments/queue.
func (h *QueueHandler) List(c *fiber.Ctx) error {
	query, err := parseQueueQuery(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)

	listing, err := h.assignments.ListQueue(c.UserContext(), principal, query)
	if err != nil {
		return err
	}
	resp := dto.QueueListResponse{
		Items:       make([]dto.QueueEntryResponse, 0, len(listing.Items)),
		TotalCount:  listing.TotalCount,
		Page:        listing.Page,
		PageSize:    listing.PageSize,
		HasNextPage: listing.HasNext,
		NextCursor:  listing.NextCursor,
	}
	for i := range listing.Items {
		resp.Items = append(resp.Items, dto.NewQueueEntryResponse(&listing.Items[i]))
	}
	return c.JSON(resp)
}

// Redraw handles POST /assignments/queue/:id/redraw.
func (h *QueueHandler) Redraw(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	result, err := h.assignments.Redraw(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.RedrawResponse{Assigned: result.Assigned()}
	if result.Assignment != nil {
		a := dto.NewAssignmentResponse(result.Assignment)
		resp.Assignment = &a
	}
	if result.Entry != nil {
		e := dto.NewQueueEntryResponse(result.Entry)
		resp.Entry = &e
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseQueueQuery(c *fiber.Ctx) (service.ListQuery, error) {
	var query service.ListQuery
	if raw := c.Query("priority"); raw != "" {
		p, err := domain.ParsePriority(raw)
		if err != nil {
			return query, apperrors.NewValidationError(err.Error(), map[string]any{"priority": raw})
		}
		query.Priority = &p
	}
	if raw := c.Query("work_item_type"); raw != "" {
		t, err := domain.ParseWorkItemType(raw)
		if err != nil {
			return query, apperrors.NewValidationError(err.Error(), map[string]any{"work_item_type": raw})
		}
		query.WorkItemType = &t
	}
	if unitID := c.Query("unit_id"); unitID != "" {
		query.UnitID = &unitID
	}
	query.Page = parseInt(c.Query("page"), 1)
	query.PageSize = parseInt(c.Query("page_size"), 20)
	query.Cursor = c.Query("cursor")
	return query, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
