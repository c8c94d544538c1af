package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// StaffRepository reads staff scheduling profiles. It never writes
// current_assignment_count; that column belongs to the ledger.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.StaffProfile, error)
	ListEligible(ctx context.Context, filter EligibilityFilter) ([]domain.StaffProfile, error)
	ListByUnit(ctx context.Context, unitID string) ([]domain.StaffProfile, error)
	UpdateAvailability(ctx context.Context, id string, status domain.AvailabilityStatus) error
}

// EligibilityFilter selects available staff holding every required skill.
type EligibilityFilter struct {
	RequiredSkills []string
	UnitID         *string
	Limit          int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, unit_id, display_name, role, individual_wip_limit, current_assignment_count,
               availability_status, skills, active_flag, created_at`

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffProfile, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_profiles WHERE id=$1`

	staff, err := scanStaff(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return staff, nil
}

// ListEligible orders by ascending utilization, then id, so identical snapshots
// produce identical candidate sequences.
func (r *staffRepository) ListEligible(ctx context.Context, filter EligibilityFilter) ([]domain.StaffProfile, error) {
	skills := filter.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	args := []any{domain.AvailabilityAvailable, skills}
	clauses := []string{"active_flag", "availability_status=$1", "skills @> $2::text[]"}
	if filter.UnitID != nil {
		args = append(args, *filter.UnitID)
		clauses = append(clauses, fmt.Sprintf("unit_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM staff_profiles WHERE %s
        ORDER BY current_assignment_count::float8 / individual_wip_limit ASC, id ASC
        LIMIT %d`, staffColumns, strings.Join(clauses, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStaffRows(rows)
}

func (r *staffRepository) ListByUnit(ctx context.Context, unitID string) ([]domain.StaffProfile, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_profiles WHERE unit_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStaffRows(rows)
}

func (r *staffRepository) UpdateAvailability(ctx context.Context, id string, status domain.AvailabilityStatus) error {
	const query = `UPDATE staff_profiles SET availability_status=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanStaff(row pgx.Row) (*domain.StaffProfile, error) {
	var staff domain.StaffProfile
	if err := row.Scan(
		&staff.ID,
		&staff.UnitID,
		&staff.DisplayName,
		&staff.Role,
		&staff.IndividualWIPLimit,
		&staff.CurrentAssignmentCount,
		&staff.Availability,
		&staff.Skills,
		&staff.Active,
		&staff.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func scanStaffRows(rows pgx.Rows) ([]domain.StaffProfile, error) {
	var result []domain.StaffProfile
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}
