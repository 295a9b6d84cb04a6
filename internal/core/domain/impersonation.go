package domain

import (
	"encoding/json"
	"fmt"
)

// ImpersonationContext records the identities involved while a super-admin
// operates the console as another user. It exists only while impersonation is
// active and is persisted in the durable scope so a reload does not lose the
// path back to the original identity.
type ImpersonationContext struct {
	IsImpersonating bool `json:"isImpersonating"`
	OriginalUser    User `json:"originalUser"`
	CurrentUser     User `json:"currentUser"`
}

// Validate enforces the impersonation invariants: the original identity is
// always a super-admin and the assumed identity never is.
func (c ImpersonationContext) Validate() error {
	if c.OriginalUser.Role != RoleSuperAdmin {
		return fmt.Errorf("original user must be a super-admin")
	}
	if c.CurrentUser.Role == RoleSuperAdmin {
		return fmt.Errorf("impersonating a super-admin is not allowed")
	}
	if err := c.OriginalUser.Validate(); err != nil {
		return fmt.Errorf("original user: %w", err)
	}
	if err := c.CurrentUser.Validate(); err != nil {
		return fmt.Errorf("current user: %w", err)
	}
	return nil
}

// DecodeImpersonationContext parses a persisted context record.
func DecodeImpersonationContext(raw string) (ImpersonationContext, error) {
	var c ImpersonationContext
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return ImpersonationContext{}, fmt.Errorf("decode impersonation context: %w", err)
	}
	return c, nil
}

// EncodeImpersonationContext serializes the context for durable storage.
func EncodeImpersonationContext(c ImpersonationContext) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode impersonation context: %w", err)
	}
	return string(raw), nil
}
