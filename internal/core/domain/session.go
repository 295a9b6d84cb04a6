package domain

import "time"

// DefaultSessionMaxAge is the ceiling after which a tab session forces
// re-authentication on the next bootstrap.
const DefaultSessionMaxAge = 8 * time.Hour

// Session represents one browser-tab lifetime. It lives exclusively in the
// tab-scoped storage and is never mutated after creation.
type Session struct {
	ID        string
	CreatedAt time.Time
}

// Expired reports whether the session passed the supplied age ceiling at the
// given moment. A non-positive maxAge falls back to DefaultSessionMaxAge.
func (s Session) Expired(at time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return at.Sub(s.CreatedAt) > maxAge
}
