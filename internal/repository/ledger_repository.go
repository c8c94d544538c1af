package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// LedgerStore is the only writer of current_assignment_count. Each call is one
// transaction built from conditional updates, so concurrent processes sharing
// the database cannot lose updates.
type LedgerStore interface {
	Reserve(ctx context.Context, req ReserveRequest) error
	Release(ctx context.Context, req ReleaseRequest) (*domain.Assignment, error)
}

// ReserveRequest claims one slot for StaffID. Assignment, when set, is inserted
// in the same transaction; DequeueID, when set, is deleted in it.
type ReserveRequest struct {
	StaffID string
	// EnforceUnit also requires the unit counter to be below unit_wip_limit.
	EnforceUnit bool
	// Force skips the availability and WIP checks (manual override).
	Force      bool
	Assignment *domain.Assignment
	DequeueID  string
}

// ReleaseRequest moves an active assignment to a terminal status and frees its slot.
type ReleaseRequest struct {
	AssignmentID string
	Status       domain.AssignmentStatus
	At           time.Time
}

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository instantiates the store.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerStore {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) Reserve(ctx context.Context, req ReserveRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if a := req.Assignment; a != nil {
		if err := lockWorkItem(ctx, tx, a.WorkItemID); err != nil {
			return err
		}
		// A queue entry other than the one being admitted means a concurrent
		// submission queued this work item first.
		queued, err := rowExists(ctx, tx,
			`SELECT EXISTS (SELECT 1 FROM queue_entries WHERE work_item_id=$1 AND id <> $2)`,
			a.WorkItemID, req.DequeueID)
		if err != nil {
			return fmt.Errorf("check queue entry: %w", err)
		}
		if queued {
			return domain.ErrAlreadyScheduled
		}
	}

	staffQuery := `
        UPDATE staff_profiles SET current_assignment_count = current_assignment_count + 1
        WHERE id=$1 AND active_flag AND availability_status='available'
          AND current_assignment_count < individual_wip_limit
        RETURNING unit_id`
	if req.Force {
		staffQuery = `
        UPDATE staff_profiles SET current_assignment_count = current_assignment_count + 1
        WHERE id=$1 AND active_flag
        RETURNING unit_id`
	}

	var unitID string
	if err := tx.QueryRow(ctx, staffQuery, req.StaffID).Scan(&unitID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("reserve staff slot: %w", err)
		}
		exists, err := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM staff_profiles WHERE id=$1)`, req.StaffID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrCapacityExceeded
	}

	unitQuery := `UPDATE org_units SET current_assignment_count = current_assignment_count + 1 WHERE id=$1`
	if req.EnforceUnit && !req.Force {
		unitQuery += ` AND current_assignment_count < unit_wip_limit`
	}
	cmd, err := tx.Exec(ctx, unitQuery, unitID)
	if err != nil {
		return fmt.Errorf("reserve unit slot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUnitAtCapacity
	}

	if a := req.Assignment; a != nil {
		a.UnitID = unitID
		const insert = `
            INSERT INTO assignments (id, work_item_id, work_item_type, priority, assignee_id, unit_id, status, forced, sla_deadline, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
		if _, err := tx.Exec(ctx, insert,
			a.ID,
			a.WorkItemID,
			a.WorkItemType,
			a.Priority,
			req.StaffID,
			unitID,
			a.Status,
			a.Forced,
			a.SLADeadline,
			a.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyScheduled
			}
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	if req.DequeueID != "" {
		cmd, err := tx.Exec(ctx, `DELETE FROM queue_entries WHERE id=$1`, req.DequeueID)
		if err != nil {
			return fmt.Errorf("dequeue: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			// Another process admitted this entry first.
			return domain.ErrAlreadyScheduled
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserve: %w", err)
	}
	return nil
}

func (r *ledgerRepository) Release(ctx context.Context, req ReleaseRequest) (*domain.Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin release: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
        UPDATE assignments SET status=$2, closed_at=$3
        WHERE id=$1 AND status='active'
        RETURNING ` + assignmentColumns
	assignment, err := scanAssignment(tx.QueryRow(ctx, query, req.AssignmentID, req.Status, req.At))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("close assignment: %w", err)
		}
		exists, err := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM assignments WHERE id=$1)`, req.AssignmentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrAssignmentClosed
	}

	if err := decrementSlot(ctx, tx, assignment.AssigneeID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit release: %w", err)
	}
	return assignment, nil
}

func decrementSlot(ctx context.Context, tx pgx.Tx, staffID string) error {
	const staffQuery = `
        UPDATE staff_profiles SET current_assignment_count = GREATEST(current_assignment_count - 1, 0)
        WHERE id=$1
        RETURNING unit_id`
	var unitID string
	if err := tx.QueryRow(ctx, staffQuery, staffID).Scan(&unitID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("release staff slot: %w", err)
	}
	const unitQuery = `
        UPDATE org_units SET current_assignment_count = GREATEST(current_assignment_count - 1, 0)
        WHERE id=$1`
	if _, err := tx.Exec(ctx, unitQuery, unitID); err != nil {
		return fmt.Errorf("release unit slot: %w", err)
	}
	return nil
}

// lockWorkItem serializes every transaction that schedules workItemID, so the
// assignment and queue tables are checked against committed state.
func lockWorkItem(ctx context.Context, tx pgx.Tx, workItemID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, workItemID); err != nil {
		return fmt.Errorf("lock work item: %w", err)
	}
	return nil
}

func rowExists(ctx context.Context, tx pgx.Tx, query string, args ...any) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
