package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
)

func TestMatcherRanksByUtilizationThenID(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 100)
	f.staff("a", "u1", 4, 2, "tax")          // 0.5
	f.staff("b", "u1", 2, 1, "tax", "legal") // 0.5, ties with a
	f.staff("c", "u1", 5, 0, "tax")          // 0
	f.staff("d", "u1", 3, 3, "tax")          // full but still listed
	f.staff("e", "u1", 3, 0, "tax")
	f.staff("f", "u1", 3, 0, "legal")
	ctx := context.Background()
	require.NoError(t, f.store.Staff().UpdateAvailability(ctx, "e", domain.AvailabilityOnLeave))

	q := CandidateQuery{RequiredSkills: []string{"tax"}, WorkItemType: domain.WorkItemDossier}
	first, err := f.scheduler.Matcher.FindCandidates(ctx, q)
	require.NoError(t, err)
	second, err := f.scheduler.Matcher.FindCandidates(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b", "d"}, first)
	assert.Equal(t, first, second)
}

func TestMatcherEmptySkillsMatchesAnyAvailable(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 100)
	f.staff("a", "u1", 2, 1, "tax")
	f.staff("b", "u1", 2, 0)

	got, err := f.scheduler.Matcher.FindCandidates(context.Background(), CandidateQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestMatcherUnknownSkillYieldsEmpty(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 100)
	f.staff("a", "u1", 2, 0, "tax")

	got, err := f.scheduler.Matcher.FindCandidates(context.Background(), CandidateQuery{RequiredSkills: []string{"arabic"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatcherScopesToUnit(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 100)
	f.unit("u2", 100)
	f.staff("a", "u1", 2, 0)
	f.staff("b", "u2", 2, 0)
	unit := "u2"

	got, err := f.scheduler.Matcher.FindCandidates(context.Background(), CandidateQuery{UnitID: &unit})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}
