package repository

import "errors"

var (
	// ErrNotFound indicates the requested key or record does not exist.
	ErrNotFound = errors.New("repository: not found")
)
