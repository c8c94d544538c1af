package dto

import "github.com/spec-kit/assignment-service/internal/domain"

// AvailabilityRequest updates a staff member's availability.
type AvailabilityRequest struct {
	AvailabilityStatus string `json:"availability_status"`
}

// StaffResponse is the scheduling view of a staff member.
type StaffResponse struct {
	ID                     string                    `json:"id"`
	UnitID                 string                    `json:"unit_id"`
	DisplayName            string                    `json:"display_name"`
	Role                   domain.Role               `json:"role"`
	IndividualWIPLimit     int                       `json:"individual_wip_limit"`
	CurrentAssignmentCount int                       `json:"current_assignment_count"`
	AvailabilityStatus     domain.AvailabilityStatus `json:"availability_status"`
	Skills                 []string                  `json:"skills"`
	Active                 bool                      `json:"active"`
}

// NewStaffResponse maps a staff profile.
func NewStaffResponse(s *domain.StaffProfile) StaffResponse {
	return StaffResponse{
		ID:                     s.ID,
		UnitID:                 s.UnitID,
		DisplayName:            s.DisplayName,
		Role:                   s.Role,
		IndividualWIPLimit:     s.IndividualWIPLimit,
		CurrentAssignmentCount: s.CurrentAssignmentCount,
		AvailabilityStatus:     s.Availability,
		Skills:                 s.Skills,
		Active:                 s.Active,
	}
}
