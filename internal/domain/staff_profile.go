package domain

import "time"

// Role enumerates caller roles for scheduling and visibility decisions.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// AvailabilityStatus is a staff member's scheduling availability.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityOnLeave     AvailabilityStatus = "on_leave"
)

// ParseAvailability validates an availability value.
func ParseAvailability(v string) (AvailabilityStatus, error) {
	switch s := AvailabilityStatus(v); s {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityOnLeave:
		return s, nil
	}
	return "", ErrInvalidAvailability
}

// StaffProfile is the scheduling-relevant state of a staff member.
// CurrentAssignmentCount is written only by the capacity ledger.
type StaffProfile struct {
	ID                     string
	UnitID                 string
	DisplayName            string
	Role                   Role
	IndividualWIPLimit     int
	CurrentAssignmentCount int
	Availability           AvailabilityStatus
	Skills                 []string
	Active                 bool
	CreatedAt              time.Time
}

// IsAvailable reports whether the profile may receive new work.
func (s *StaffProfile) IsAvailable() bool {
	return s.Active && s.Availability == AvailabilityAvailable
}

// HasSkills reports whether the profile's skill set is a superset of required.
func (s *StaffProfile) HasSkills(required []string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]struct{}, len(s.Skills))
	for _, skill := range s.Skills {
		held[skill] = struct{}{}
	}
	for _, skill := range required {
		if _, ok := held[skill]; !ok {
			return false
		}
	}
	return true
}

// Utilization is the current count divided by the individual limit.
func (s *StaffProfile) Utilization() float64 {
	if s.IndividualWIPLimit <= 0 {
		return 1
	}
	return float64(s.CurrentAssignmentCount) / float64(s.IndividualWIPLimit)
}
