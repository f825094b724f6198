package store

import "errors"

// Sentinel errors translated by the service layer into caller-facing failures.
// ErrDuplicate is produced from a unique-index violation at insert time, the
// index is the only conflict check performed.
var (
	ErrDuplicate = errors.New("duplicate key")
	ErrNotFound  = errors.New("not found")
)
