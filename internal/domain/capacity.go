package domain

import "math"

// CapacityKind names the subject of a capacity status.
type CapacityKind string

const (
	CapacityKindStaff CapacityKind = "staff"
	CapacityKindUnit  CapacityKind = "unit"
)

// CapacityLevel buckets utilization.
type CapacityLevel string

const (
	CapacityAvailable CapacityLevel = "available"
	CapacityNearLimit CapacityLevel = "near_limit"
	CapacityAtLimit   CapacityLevel = "at_limit"
)

const nearLimitThreshold = 75.0

// CapacityStatus is a read-only view of load against a limit.
type CapacityStatus struct {
	Kind              CapacityKind
	ID                string
	Current           int
	Limit             int
	UtilizationPct    float64
	Level             CapacityLevel
	AvailableCapacity int
}

// NewCapacityStatus derives utilization and level from current and limit.
func NewCapacityStatus(kind CapacityKind, id string, current, limit int) CapacityStatus {
	status := CapacityStatus{Kind: kind, ID: id, Current: current, Limit: limit}
	pct := 100.0
	if limit > 0 {
		pct = float64(current) * 100 / float64(limit)
	}
	status.UtilizationPct = math.Round(pct*100) / 100
	switch {
	case pct >= 100:
		status.Level = CapacityAtLimit
	case pct >= nearLimitThreshold:
		status.Level = CapacityNearLimit
	default:
		status.Level = CapacityAvailable
	}
	if limit > current {
		status.AvailableCapacity = limit - current
	}
	return status
}
