package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

func TestCapacityCheckVisibility(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 4)
	f.unit("u2", 4)
	f.staff("s1", "u1", 2, 2)
	f.staff("s2", "u1", 4, 1)
	f.staff("s3", "u2", 4, 0)

	staff := &domain.Principal{StaffID: "s1", Role: domain.RoleStaff, UnitID: "u1"}
	supervisor := &domain.Principal{StaffID: "sup", Role: domain.RoleSupervisor, UnitID: "u1"}

	tests := map[string]struct {
		principal *domain.Principal
		query     CapacityQuery
		status    int
		level     domain.CapacityLevel
	}{
		"staff own":             {staff, CapacityQuery{StaffID: "s1"}, 200, domain.CapacityAtLimit},
		"staff peer":            {staff, CapacityQuery{StaffID: "s2"}, 403, ""},
		"staff unit":            {staff, CapacityQuery{UnitID: "u1"}, 403, ""},
		"supervisor member":     {supervisor, CapacityQuery{StaffID: "s2"}, 200, domain.CapacityAvailable},
		"supervisor unit":       {supervisor, CapacityQuery{UnitID: "u1"}, 200, domain.CapacityNearLimit},
		"supervisor other unit": {supervisor, CapacityQuery{UnitID: "u2"}, 403, ""},
		"supervisor outsider":   {supervisor, CapacityQuery{StaffID: "s3"}, 403, ""},
		"admin anything":        {adminPrincipal, CapacityQuery{UnitID: "u2"}, 200, domain.CapacityAvailable},
		"both":                  {adminPrincipal, CapacityQuery{StaffID: "s1", UnitID: "u1"}, 400, ""},
		"neither":               {adminPrincipal, CapacityQuery{}, 400, ""},
		"missing staff":         {adminPrincipal, CapacityQuery{StaffID: "ghost"}, 404, ""},
		"missing unit":          {adminPrincipal, CapacityQuery{UnitID: "ghost"}, 404, ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			status, err := f.svc.Capacity(context.Background(), tc.principal, tc.query)
			if tc.status == 200 {
				require.NoError(t, err)
				assert.Equal(t, tc.level, status.Level)
				return
			}
			var de *apperrors.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestCapacityReflectsReservations(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 10)
	f.staff("s1", "u1", 4, 0)
	ctx := context.Background()

	for i, want := range []float64{25, 50, 75} {
		_, err := f.scheduler.Admission.Admit(ctx, item(string(rune('a'+i)), domain.PriorityLow))
		require.NoError(t, err)
		status, err := f.svc.Capacity(ctx, adminPrincipal, CapacityQuery{StaffID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, want, status.UtilizationPct)
		assert.Equal(t, 4-(i+1), status.AvailableCapacity)
	}
}
