package usecase

import (
	"testing"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
)

func TestHomePathCoversEnumeration(t *testing.T) {
	cases := map[domain.Role]string{
		domain.RoleSuperAdmin: PathSuperAdmin,
		domain.RoleAdmin:      PathAdmin,
		domain.RoleDepartment: PathDepartment,
		domain.RoleDriver:     PathDriver,
		domain.RoleHospital:   PathHospital,
		domain.RoleCitizen:    PathAdmin,
	}

	for role, want := range cases {
		if got := HomePath(role); got != want {
			t.Errorf("HomePath(%s) = %s, want %s", role, got, want)
		}
	}
}

func TestHomePathUnknownRoleFallsBackToAdmin(t *testing.T) {
	if got := HomePath(domain.Role("dispatcher")); got != PathAdmin {
		t.Fatalf("HomePath(dispatcher) = %s, want %s", got, PathAdmin)
	}
	if got := HomePath(domain.Role("")); got != PathAdmin {
		t.Fatalf("HomePath(empty) = %s, want %s", got, PathAdmin)
	}
}

func TestAdminAreaAdmitsSuperAdmin(t *testing.T) {
	area, ok := AreaFor(PathAdmin)
	if !ok {
		t.Fatalf("expected admin area to be declared")
	}
	if !domain.RoleSuperAdmin.In(area.AllowedRoles) {
		t.Fatalf("admin area allow-list must include superadmin, got %v", area.AllowedRoles)
	}
}

func TestIsDashboardPath(t *testing.T) {
	for _, area := range ProtectedAreas() {
		if !IsDashboardPath(area.Path) {
			t.Errorf("expected %s to be a dashboard path", area.Path)
		}
	}

	for _, path := range []string{PathLogin, PathUnauthorized, "/", "/metrics"} {
		if IsDashboardPath(path) {
			t.Errorf("expected %s not to be a dashboard path", path)
		}
	}
}
