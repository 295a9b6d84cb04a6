package port

import (
	"context"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
)

// UserRecord couples the public identity fields with the stored credential
// material. Only the identity backend sees the hash.
type UserRecord struct {
	User         domain.User
	PasswordHash string
	Active       bool
}

// UserRepository exposes persistence behavior for console operators.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
}
