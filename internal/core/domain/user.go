package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// User is the profile the backend confirms for a credential. It is persisted
// verbatim (JSON) in the durable storage scope.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// Validate checks the structural invariants of a stored profile. A profile
// that fails validation is treated as corruption, never as an error surfaced
// to the operator.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(string(u.Role)) == "" {
		return fmt.Errorf("user role is required")
	}
	return nil
}

// DecodeUser parses a persisted profile record. It returns an error for any
// payload that is not well-formed structured data describing a user.
func DecodeUser(raw string) (User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// EncodeUser serializes a profile for the durable storage scope.
func EncodeUser(u User) (string, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return string(raw), nil
}
