package apperr

import "errors"

// Sentinel errors shared across the data-access layer. Storage-level failures
// are never translated into these; they propagate from gorm unchanged and
// callers distinguish them with errors.Is against this set.
var (
	// ErrNotConnected is returned when a tenant or collection resolution is
	// attempted before the underlying storage connection is established.
	ErrNotConnected = errors.New("database not connected")

	// ErrNotFound is returned when an update, restore or counter operation
	// targets a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned for malformed input to a mutation or a
	// malformed tenant identifier.
	ErrValidation = errors.New("validation failed")
)
