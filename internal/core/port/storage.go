package port

import "context"

// Storage keys shared between the bootstrap routine and the auth state store.
// Durable scope holds the credential pair and the impersonation context;
// tab scope holds the session marker.
const (
	KeyToken            = "token"
	KeyUser             = "user"
	KeyImpersonation    = "impersonation"
	KeySessionID        = "sessionId"
	KeySessionTimestamp = "sessionTimestamp"
)

// KeyValueStore is one storage scope: string keys to string values with
// whole-scope clearing. Implementations return repository.ErrNotFound for
// absent keys and must never panic on malformed data.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// DurableStore survives browser restarts and is shared by every tab of the
// same console profile. Writes are last-write-wins across tabs; there is no
// cross-tab locking.
type DurableStore interface {
	KeyValueStore
}

// TabStore is exclusive to a single tab and is discarded when the tab closes.
type TabStore interface {
	KeyValueStore
}
