package store

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound    = errors.New("store: not found")
	ErrCorrupt     = errors.New("store: data corrupt")
	ErrLockTimeout = errors.New("store: file lock timeout")
)

// StoreError wraps errors with context about the store operation.
type StoreError struct {
	Op     string // Operation: "read", "write", "lock", "delete"
	Entity string // Entity: "cache", "creators", "config"
	Key    string // Key or ID involved, if any
	Err    error  // Underlying error
}

func (e *StoreError) Error() string {
	msg := "store: " + e.Op + " " + e.Entity
	if e.Key != "" {
		msg += " " + e.Key
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }
