package domain

import "time"

// LoginSucceededEvent represents the payload for console.auth.login messages.
type LoginSucceededEvent struct {
	EventID  string
	TabID    string
	UserID   string
	Role     string
	At       time.Time
	Metadata map[string]any
}

// LoggedOutEvent represents the payload for console.auth.logout messages.
type LoggedOutEvent struct {
	EventID  string
	TabID    string
	UserID   string
	At       time.Time
	Metadata map[string]any
}

// CredentialEvictedEvent represents the payload for console.auth.evicted
// messages, fired when a stored credential is cleared without an explicit
// logout (verification failure, corruption, session expiry).
type CredentialEvictedEvent struct {
	EventID  string
	TabID    string
	Reason   string
	At       time.Time
	Metadata map[string]any
}

// ImpersonationStartedEvent represents the payload for
// console.impersonation.started messages.
type ImpersonationStartedEvent struct {
	EventID    string
	TabID      string
	ActorID    string
	TargetID   string
	TargetRole string
	At         time.Time
	Metadata   map[string]any
}

// ImpersonationEndedEvent represents the payload for
// console.impersonation.ended messages. Graceful reports whether the backend
// return flow succeeded or the hard-redirect fallback was taken.
type ImpersonationEndedEvent struct {
	EventID  string
	TabID    string
	ActorID  string
	TargetID string
	Graceful bool
	At       time.Time
	Metadata map[string]any
}
