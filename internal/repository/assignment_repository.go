package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// AssignmentRepository reads assignments. Inserts and terminal transitions go
// through the LedgerStore so they stay atomic with capacity changes.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	GetActiveByWorkItem(ctx context.Context, workItemID string) (*domain.Assignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `id, work_item_id, work_item_type, priority, assignee_id, unit_id, status,
               forced, sla_deadline, created_at, closed_at`

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id=$1`
	assignment, err := scanAssignment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return assignment, nil
}

func (r *assignmentRepository) GetActiveByWorkItem(ctx context.Context, workItemID string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE work_item_id=$1 AND status=$2`
	assignment, err := scanAssignment(r.pool.QueryRow(ctx, query, workItemID, domain.AssignmentActive))
	if err != nil {
		return nil, notFound(err)
	}
	return assignment, nil
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var a domain.Assignment
	if err := row.Scan(
		&a.ID,
		&a.WorkItemID,
		&a.WorkItemType,
		&a.Priority,
		&a.AssigneeID,
		&a.UnitID,
		&a.Status,
		&a.Forced,
		&a.SLADeadline,
		&a.CreatedAt,
		&a.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
