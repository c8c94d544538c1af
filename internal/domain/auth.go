package domain

// Principal is the authenticated caller as seen by scheduling and visibility
// decisions. UnitID is the caller's own unit.
type Principal struct {
	StaffID string
	Role    Role
	UnitID  string
}

// PrincipalFor builds the principal for a loaded staff profile.
func PrincipalFor(profile *StaffProfile) Principal {
	return Principal{StaffID: profile.ID, Role: profile.Role, UnitID: profile.UnitID}
}
