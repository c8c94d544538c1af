package auth

import "github.com/spec-kit/assignment-service/internal/domain"

// Target is what an action reads or changes. For a staff member StaffID and
// their UnitID are both set; for a unit only UnitID is set.
type Target struct {
	StaffID string
	UnitID  string
}

// StaffTarget targets a staff member.
func StaffTarget(profile *domain.StaffProfile) Target {
	return Target{StaffID: profile.ID, UnitID: profile.UnitID}
}

// UnitTarget targets a unit.
func UnitTarget(unitID string) Target {
	return Target{UnitID: unitID}
}

// CanView is the read policy: staff see themselves, supervisors see their unit
// and its members, admins see everything.
func CanView(p domain.Principal, t Target) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSupervisor:
		if t.StaffID != "" && t.StaffID == p.StaffID {
			return true
		}
		return t.UnitID != "" && t.UnitID == p.UnitID
	case domain.RoleStaff:
		return t.StaffID != "" && t.StaffID == p.StaffID
	}
	return false
}

// CanManage is the override policy: supervisors manage their own unit, admins
// manage everything. Staff never manage.
func CanManage(p domain.Principal, t Target) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSupervisor:
		return t.UnitID != "" && t.UnitID == p.UnitID
	}
	return false
}

// CanActOn allows the target themselves or anyone who manages them.
func CanActOn(p domain.Principal, t Target) bool {
	if t.StaffID != "" && t.StaffID == p.StaffID {
		return true
	}
	return CanManage(p, t)
}
