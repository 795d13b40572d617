package core

import (
	"context"
	"fmt"
	"time"
)

// DefaultNamespace is the storage key holding the serialized note collection.
const DefaultNamespace = "pkm_notes"

// Storage is the persistence collaborator: a key-value store of opaque blobs.
// Adhering to this interface keeps the core independent of the underlying
// mechanism (filesystem, SQLite, memory).
type Storage interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the blob stored under key. Implementations must never
	// expose a partially written value.
	Set(ctx context.Context, key string, data []byte) error

	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by storages that can report external changes.
type Watchable interface {
	// Watch emits an Event whenever a key matching pattern changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Syncable is implemented by storages that can synchronize with a remote.
type Syncable interface {
	Sync(ctx context.Context) error
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit message)
// down to versioned storages.
const ChangeReasonKey contextKey = "change_reason"

// EventType represents the kind of change observed in storage.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a storage key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	return fmt.Sprintf("%s %s @ %s", e.Type, e.Key, time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
}
