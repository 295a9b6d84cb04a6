package usecase

import "github.com/arklim/dispatch-console-auth/internal/core/domain"

// GuardAction is the outcome of an authorization check for a requested view.
type GuardAction string

const (
	// ActionRender lets the destination render.
	ActionRender GuardAction = "render"
	// ActionRedirectLogin sends the visitor to the login path, preserving the
	// attempted path as a non-binding return hint.
	ActionRedirectLogin GuardAction = "redirect_login"
	// ActionRedirectUnauthorized sends an authenticated visitor with the
	// wrong role to the unauthorized path.
	ActionRedirectUnauthorized GuardAction = "redirect_unauthorized"
	// ActionSuspend keeps a loading indicator up while the auth state is
	// still resolving. No redirect is issued.
	ActionSuspend GuardAction = "suspend"
)

// RouteSpec declares a view's authorization requirements. An empty allow-list
// means any authenticated role may render.
type RouteSpec struct {
	Path         string
	AllowedRoles []domain.Role
	RequireAuth  bool
}

// Decision is what the guard tells the caller to do for one navigation.
type Decision struct {
	Action GuardAction
	// RedirectTo is set for the two redirect actions.
	RedirectTo string
	// ReturnTo carries the attempted path on login redirects so the login
	// view can offer to return there afterward.
	ReturnTo string
	// RequiredRoles and ActualRole describe an authorization failure so the
	// unauthorized view can name what was missing. Authorization failure is a
	// deterministic redirect, not an error.
	RequiredRoles []domain.Role
	ActualRole    domain.Role
}

// Decide applies the role-to-route authorization rules to the current auth
// state. It is pure: no storage reads, no side effects.
func Decide(state domain.AuthState, route RouteSpec) Decision {
	if !route.RequireAuth {
		return Decision{Action: ActionRender}
	}

	switch state.Status {
	case domain.StatusInitializing, domain.StatusLoading:
		return Decision{Action: ActionSuspend}
	case domain.StatusUnauthenticated:
		return Decision{
			Action:     ActionRedirectLogin,
			RedirectTo: PathLogin,
			ReturnTo:   route.Path,
		}
	}

	// Authenticated from here on. An invariant-violating state (no user) is
	// treated like a signed-out visitor rather than crashing the render.
	if state.User == nil {
		return Decision{
			Action:     ActionRedirectLogin,
			RedirectTo: PathLogin,
			ReturnTo:   route.Path,
		}
	}

	if len(route.AllowedRoles) == 0 || state.User.Role.In(route.AllowedRoles) {
		return Decision{Action: ActionRender}
	}

	return Decision{
		Action:        ActionRedirectUnauthorized,
		RedirectTo:    PathUnauthorized,
		RequiredRoles: route.AllowedRoles,
		ActualRole:    state.User.Role,
	}
}
