package domain

import "time"

// OrganizationalUnit is a capacity pool grouping staff members.
type OrganizationalUnit struct {
	ID           string
	Name         string
	UnitWIPLimit int
	// ReservedCount is the unit-level counter maintained by the ledger when
	// unit enforcement is enabled. Reported unit load is derived from staff.
	ReservedCount int
	CreatedAt     time.Time
}
