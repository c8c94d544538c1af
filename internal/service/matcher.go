package service

import (
	"context"
	"sort"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

const defaultMaxCandidates = 50

// CandidateQuery describes who may take a work item.
type CandidateQuery struct {
	RequiredSkills []string
	WorkItemType   domain.WorkItemType
	// UnitID limits candidates to one unit when set.
	UnitID *string
}

// Matcher ranks available staff holding every required skill.
type Matcher struct {
	staff repository.StaffRepository
	limit int
}

// FindCandidates returns staff ids ordered by ascending utilization, then id.
// It does not filter out staff at their limit; the ledger decides that
// atomically. No match yields an empty slice.
func (m *Matcher) FindCandidates(ctx context.Context, q CandidateQuery) ([]string, error) {
	profiles, err := m.Eligible(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].ID
	}
	return ids, nil
}

// Eligible is FindCandidates returning the full profiles.
func (m *Matcher) Eligible(ctx context.Context, q CandidateQuery) ([]domain.StaffProfile, error) {
	limit := m.limit
	if limit <= 0 {
		limit = defaultMaxCandidates
	}
	profiles, err := m.staff.ListEligible(ctx, repository.EligibilityFilter{
		RequiredSkills: q.RequiredSkills,
		UnitID:         q.UnitID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	eligible := profiles[:0]
	for _, p := range profiles {
		if p.IsAvailable() && p.HasSkills(q.RequiredSkills) && p.IndividualWIPLimit > 0 {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return rankLess(&eligible[i], &eligible[j])
	})
	return eligible, nil
}

// rankLess compares count/limit by cross-multiplication so equal ratios tie
// exactly and fall through to the id.
func rankLess(a, b *domain.StaffProfile) bool {
	left := a.CurrentAssignmentCount * b.IndividualWIPLimit
	right := b.CurrentAssignmentCount * a.IndividualWIPLimit
	if left != right {
		return left < right
	}
	return a.ID < b.ID
}
