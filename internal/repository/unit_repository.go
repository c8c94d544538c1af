package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// UnitRepository reads organizational units and their derived load.
type UnitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.OrganizationalUnit, error)
	// AvailableLoad sums current_assignment_count over the unit's available staff.
	AvailableLoad(ctx context.Context, id string) (int, error)
}

type unitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository builds the repository.
func NewUnitRepository(pool *pgxpool.Pool) UnitRepository {
	return &unitRepository{pool: pool}
}

func (r *unitRepository) GetByID(ctx context.Context, id string) (*domain.OrganizationalUnit, error) {
	const query = `
        SELECT id, name, unit_wip_limit, current_assignment_count, created_at
        FROM org_units WHERE id=$1`
	var unit domain.OrganizationalUnit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.Name,
		&unit.UnitWIPLimit,
		&unit.ReservedCount,
		&unit.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

func (r *unitRepository) AvailableLoad(ctx context.Context, id string) (int, error) {
	const query = `
        SELECT COALESCE(SUM(current_assignment_count), 0)
        FROM staff_profiles
        WHERE unit_id=$1 AND active_flag AND availability_status=$2`
	var load int
	if err := r.pool.QueryRow(ctx, query, id, domain.AvailabilityAvailable).Scan(&load); err != nil {
		return 0, err
	}
	return load, nil
}
