package usecase

import "github.com/arklim/dispatch-console-auth/internal/core/domain"

// Route surface exposed to the surrounding application. Public paths carry no
// allow-list; each protected area declares its own.
const (
	PathLogin        = "/login"
	PathUnauthorized = "/unauthorized"
	PathSuperAdmin   = "/superadmin"
	PathAdmin        = "/admin"
	PathDepartment   = "/department"
	PathDriver       = "/driver"
	PathHospital     = "/hospital"
)

// HomePath maps a resolved role to its dashboard landing path. The mapping is
// total: the legacy citizen role and any unrecognized role fall back to the
// admin path.
func HomePath(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin:
		return PathSuperAdmin
	case domain.RoleDepartment:
		return PathDepartment
	case domain.RoleDriver:
		return PathDriver
	case domain.RoleHospital:
		return PathHospital
	case domain.RoleAdmin, domain.RoleCitizen:
		return PathAdmin
	default:
		return PathAdmin
	}
}

// ProtectedAreas returns the fixed table of dashboard paths and their role
// allow-lists. The admin area additionally admits super-admins; every other
// area is exclusive to its role.
func ProtectedAreas() []RouteSpec {
	return []RouteSpec{
		{Path: PathSuperAdmin, AllowedRoles: []domain.Role{domain.RoleSuperAdmin}, RequireAuth: true},
		{Path: PathAdmin, AllowedRoles: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}, RequireAuth: true},
		{Path: PathDepartment, AllowedRoles: []domain.Role{domain.RoleDepartment}, RequireAuth: true},
		{Path: PathDriver, AllowedRoles: []domain.Role{domain.RoleDriver}, RequireAuth: true},
		{Path: PathHospital, AllowedRoles: []domain.Role{domain.RoleHospital}, RequireAuth: true},
	}
}

// IsDashboardPath reports whether the path belongs to a protected dashboard
// area. Used by the bootstrap routine to decide whether a stored credential
// may be optimistically retained for backend verification.
func IsDashboardPath(path string) bool {
	for _, area := range ProtectedAreas() {
		if area.Path == path {
			return true
		}
	}
	return false
}

// AreaFor returns the declared route spec for a dashboard path, if any.
func AreaFor(path string) (RouteSpec, bool) {
	for _, area := range ProtectedAreas() {
		if area.Path == path {
			return area, true
		}
	}
	return RouteSpec{}, false
}
