package ytcurate

import (
	"ytcurate/storage"
	"ytcurate/youtube"
)

// Type aliases for convenient error handling.
type (
	// StorageError wraps errors during record store operations.
	StorageError = storage.StorageError
	// APIError wraps errors from the platform API.
	APIError = youtube.APIError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrChannelNotFound indicates the channel does not exist.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrListingNotFound indicates a feed or playlist listing does not
	// exist on the platform. Feed readers treat it as an empty,
	// exhaustive result.
	ErrListingNotFound = youtube.ErrListingNotFound
	// ErrRateLimited indicates the platform rejected a call over quota.
	ErrRateLimited = youtube.ErrRateLimited

	// ErrNotFound indicates an entity was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrDuplicateID indicates a uniqueness invariant was violated.
	ErrDuplicateID = storage.ErrDuplicateID
	// ErrInvalidRecord indicates a malformed persisted record.
	ErrInvalidRecord = storage.ErrInvalidRecord
	// ErrLockTimeout indicates a timeout acquiring the store lock.
	ErrLockTimeout = storage.ErrLockTimeout
)
