package dto

import "github.com/spec-kit/assignment-service/internal/domain"

// CapacityResponse is the capacity-check body.
type CapacityResponse struct {
	Type              domain.CapacityKind  `json:"type"`
	ID                string               `json:"id"`
	CurrentCount      int                  `json:"current_count"`
	Limit             int                  `json:"limit"`
	UtilizationPct    float64              `json:"utilization_pct"`
	Status            domain.CapacityLevel `json:"status"`
	AvailableCapacity int                  `json:"available_capacity"`
}

// NewCapacityResponse maps a capacity status.
func NewCapacityResponse(s domain.CapacityStatus) CapacityResponse {
	return CapacityResponse{
		Type:              s.Kind,
		ID:                s.ID,
		CurrentCount:      s.Current,
		Limit:             s.Limit,
		UtilizationPct:    s.UtilizationPct,
		Status:            s.Level,
		AvailableCapacity: s.AvailableCapacity,
	}
}
