package domain

import "fmt"

// AuthStatus enumerates the resolution states of the per-tab auth machine.
type AuthStatus string

const (
	StatusInitializing    AuthStatus = "initializing"
	StatusLoading         AuthStatus = "loading"
	StatusAuthenticated   AuthStatus = "authenticated"
	StatusUnauthenticated AuthStatus = "unauthenticated"
)

// Resolved reports whether the machine settled on a terminal answer.
func (s AuthStatus) Resolved() bool {
	return s == StatusAuthenticated || s == StatusUnauthenticated
}

// AuthState is the reactive, per-tab view of authentication that every
// protected view depends on.
type AuthState struct {
	Status AuthStatus
	User   *User
	Token  string
}

// Validate enforces the state invariant: never Authenticated without a user,
// never Unauthenticated with one.
func (s AuthState) Validate() error {
	if s.Status == StatusAuthenticated && s.User == nil {
		return fmt.Errorf("authenticated state requires a user")
	}
	if s.Status == StatusUnauthenticated && s.User != nil {
		return fmt.Errorf("unauthenticated state must not carry a user")
	}
	return nil
}

// Authenticated builds a resolved state for the supplied credential.
func Authenticated(cred Credential) AuthState {
	user := cred.User
	return AuthState{Status: StatusAuthenticated, User: &user, Token: cred.Token}
}

// Unauthenticated builds the resolved signed-out state.
func Unauthenticated() AuthState {
	return AuthState{Status: StatusUnauthenticated}
}
