package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// QueueRepository persists queue entries.
type QueueRepository interface {
	Enqueue(ctx context.Context, entry *domain.QueueEntry) error
	GetByID(ctx context.Context, id string) (*domain.QueueEntry, error)
	GetByWorkItem(ctx context.Context, workItemID string) (*domain.QueueEntry, error)
	List(ctx context.Context, filter QueueFilter) (QueuePage, error)
	RecordAttempt(ctx context.Context, id string, at time.Time) (int, error)
}

// QueueCursor is a keyset position in queue order.
type QueueCursor struct {
	PriorityRank int
	QueuedAt     time.Time
	Seq          int64
}

// QueueFilter selects and pages queue entries. When After is set, Offset is ignored.
type QueueFilter struct {
	Priority     *domain.Priority
	WorkItemType *domain.WorkItemType
	UnitID       *string
	After        *QueueCursor
	Limit        int
	Offset       int
}

// QueuePage is one page of entries read from a single snapshot.
type QueuePage struct {
	Items []domain.QueueEntry
	Total int
}

type queueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository instantiates the repository.
func NewQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &queueRepository{pool: pool}
}

const queueColumns = `id, seq, work_item_id, work_item_type, priority, required_skills, unit_id,
               queued_at, attempts, last_attempt_at`

// Enqueue inserts the entry unless the work item already holds an active
// assignment. It takes the same work item lock as a reservation. The database
// assigns seq so entries sharing a queued_at keep insertion order.
func (r *queueRepository) Enqueue(ctx context.Context, entry *domain.QueueEntry) error {
	const query = `
        INSERT INTO queue_entries (id, work_item_id, work_item_type, priority, priority_rank, required_skills, unit_id, queued_at, attempts)
        SELECT $1::text, $2::text, $3::text, $4::text, $5::smallint, $6::text[], $7::text, $8::timestamptz, 0
        WHERE NOT EXISTS (SELECT 1 FROM assignments WHERE work_item_id=$2::text AND status='active')
        RETURNING seq`
	skills := entry.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockWorkItem(ctx, tx, entry.WorkItemID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, query,
			entry.ID,
			entry.WorkItemID,
			entry.WorkItemType,
			entry.Priority,
			entry.Priority.Rank(),
			skills,
			entry.UnitID,
			entry.QueuedAt,
		).Scan(&entry.Seq)
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		return domain.ErrAlreadyScheduled
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	}
	return err
}

func (r *queueRepository) GetByID(ctx context.Context, id string) (*domain.QueueEntry, error) {
	return r.fetchSingle(ctx, "id=$1", id)
}

func (r *queueRepository) GetByWorkItem(ctx context.Context, workItemID string) (*domain.QueueEntry, error) {
	return r.fetchSingle(ctx, "work_item_id=$1", workItemID)
}

func (r *queueRepository) fetchSingle(ctx context.Context, clause string, arg any) (*domain.QueueEntry, error) {
	query := fmt.Sprintf(`
        WITH ranked AS (
            SELECT %s, ROW_NUMBER() OVER (PARTITION BY priority_rank ORDER BY queued_at, seq) AS position
            FROM queue_entries
        )
        SELECT %s, position FROM ranked WHERE %s`, queueColumns, queueColumns, clause)
	entry, err := scanQueueEntry(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

// List reads the page and the total inside one repeatable-read transaction so
// positions and counts come from the same snapshot.
func (r *queueRepository) List(ctx context.Context, filter QueueFilter) (QueuePage, error) {
	var page QueuePage

	args := []any{}
	clauses := []string{"1=1"}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.WorkItemType != nil {
		args = append(args, *filter.WorkItemType)
		clauses = append(clauses, fmt.Sprintf("work_item_type=$%d", len(args)))
	}
	if filter.UnitID != nil {
		args = append(args, *filter.UnitID)
		clauses = append(clauses, fmt.Sprintf("unit_id=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	pageClauses := append([]string{}, clauses...)
	pageArgs := append([]any{}, args...)
	offset := filter.Offset
	if filter.After != nil {
		pageArgs = append(pageArgs, filter.After.PriorityRank, filter.After.QueuedAt, filter.After.Seq)
		n := len(pageArgs)
		pageClauses = append(pageClauses, fmt.Sprintf("(priority_rank, queued_at, seq) > ($%d, $%d, $%d)", n-2, n-1, n))
		offset = 0
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return page, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM queue_entries WHERE `+where, args...).Scan(&page.Total); err != nil {
		return page, err
	}

	query := fmt.Sprintf(`
        WITH ranked AS (
            SELECT %s, priority_rank, ROW_NUMBER() OVER (PARTITION BY priority_rank ORDER BY queued_at, seq) AS position
            FROM queue_entries
        )
        SELECT %s, position FROM ranked
        WHERE %s
        ORDER BY priority_rank ASC, queued_at ASC, seq ASC
        LIMIT %d OFFSET %d`, queueColumns, queueColumns, strings.Join(pageClauses, " AND "), limit, offset)

	rows, err := tx.Query(ctx, query, pageArgs...)
	if err != nil {
		return page, err
	}
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			rows.Close()
			return page, err
		}
		page.Items = append(page.Items, *entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return page, err
	}
	return page, tx.Commit(ctx)
}

func (r *queueRepository) RecordAttempt(ctx context.Context, id string, at time.Time) (int, error) {
	const query = `
        UPDATE queue_entries SET attempts = attempts + 1, last_attempt_at=$2
        WHERE id=$1
        RETURNING attempts`
	var attempts int
	if err := r.pool.QueryRow(ctx, query, id, at).Scan(&attempts); err != nil {
		return 0, notFound(err)
	}
	return attempts, nil
}

func scanQueueEntry(row pgx.Row) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	if err := row.Scan(
		&entry.ID,
		&entry.Seq,
		&entry.WorkItemID,
		&entry.WorkItemType,
		&entry.Priority,
		&entry.RequiredSkills,
		&entry.UnitID,
		&entry.QueuedAt,
		&entry.Attempts,
		&entry.LastAttemptAt,
		&entry.Position,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
