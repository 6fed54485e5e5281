// Package storage persists the local record store: a directory of YAML
// files holding one sorted array of records per entity type. Files are
// deterministically ordered before every write so that diffs stay stable
// and safe to hand-edit between runs.
package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicateID indicates two records share an identifier that must be unique.
	ErrDuplicateID = errors.New("storage: duplicate identifier")
	// ErrInvalidRecord indicates a malformed record was read or written.
	ErrInvalidRecord = errors.New("storage: invalid record")
	// ErrLockTimeout indicates a timeout acquiring the store lock.
	ErrLockTimeout = errors.New("storage: lock acquisition timeout")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("read", "write", "upsert", "append").
	Op string
	// Entity is the entity type ("channel", "video", "scan", "playlist").
	Entity string
	// ID is the record ID if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }
