package service

import (
	"context"
	"sync"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

// MockLedgerStore delegates to Next unless a func field is set.
type MockLedgerStore struct {
	Next        repository.LedgerStore
	ReserveFunc func(ctx context.Context, req repository.ReserveRequest) error
	ReleaseFunc func(ctx context.Context, req repository.ReleaseRequest) (*domain.Assignment, error)
}

func (m *MockLedgerStore) Reserve(ctx context.Context, req repository.ReserveRequest) error {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, req)
	}
	return m.Next.Reserve(ctx, req)
}

func (m *MockLedgerStore) Release(ctx context.Context, req repository.ReleaseRequest) (*domain.Assignment, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, req)
	}
	return m.Next.Release(ctx, req)
}

// MockStaffRepository delegates to Next unless ListEligibleFunc is set.
type MockStaffRepository struct {
	repository.StaffRepository
	ListEligibleFunc func(ctx context.Context, filter repository.EligibilityFilter) ([]domain.StaffProfile, error)
}

func (m *MockStaffRepository) ListEligible(ctx context.Context, filter repository.EligibilityFilter) ([]domain.StaffProfile, error) {
	if m.ListEligibleFunc != nil {
		return m.ListEligibleFunc(ctx, filter)
	}
	return m.StaffRepository.ListEligible(ctx, filter)
}

// barrierAssignments holds every GetActiveByWorkItem caller until n callers
// have read, so concurrent admissions all pass the duplicate pre-check.
type barrierAssignments struct {
	repository.AssignmentRepository
	arrived *sync.WaitGroup
}

func newBarrierAssignments(next repository.AssignmentRepository, n int) *barrierAssignments {
	wg := &sync.WaitGroup{}
	wg.Add(n)
	return &barrierAssignments{AssignmentRepository: next, arrived: wg}
}

func (b *barrierAssignments) GetActiveByWorkItem(ctx context.Context, workItemID string) (*domain.Assignment, error) {
	a, err := b.AssignmentRepository.GetActiveByWorkItem(ctx, workItemID)
	b.arrived.Done()
	b.arrived.Wait()
	return a, err
}
