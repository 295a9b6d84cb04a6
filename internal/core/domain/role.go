package domain

// Role identifies which console area a user belongs to.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleDepartment Role = "department"
	RoleDriver     Role = "driver"
	RoleHospital   Role = "hospital"
	// RoleCitizen is a legacy role still present in stored profiles; it is
	// routed to the admin area.
	RoleCitizen Role = "citizen"
)

// Known reports whether the role belongs to the fixed enumeration.
func (r Role) Known() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleDepartment, RoleDriver, RoleHospital, RoleCitizen:
		return true
	}
	return false
}

// In reports whether the role appears in the supplied allow-list.
// Membership is exact string match; no hierarchy is assumed.
func (r Role) In(allowed []Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
