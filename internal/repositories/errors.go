package repositories

import "errors"

// Common repository errors
var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)
