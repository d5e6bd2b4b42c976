// Package domain defines domain models and interfaces
package domain

import "context"

// NoteRepository is the persistence contract of the local note collection.
type NoteRepository interface {
	// GetByID returns a note by id, or nil when absent.
	GetByID(ctx context.Context, id string) (*Note, error)

	// ListAll returns every note regardless of state.
	ListAll(ctx context.Context) ([]*Note, error)

	// ListActive returns all non-trashed, non-tombstoned notes.
	ListActive(ctx context.Context) ([]*Note, error)

	// Create inserts a note.
	Create(ctx context.Context, note *Note) error

	// Patch merges the given fields into the stored note. Bumping UpdatedAt
	// is the caller's responsibility, not the repository's.
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
}

// NoteLinkRepository is the persistence contract of the link graph.
type NoteLinkRepository interface {
	// ListLiveBySource returns all live links leaving a source note.
	ListLiveBySource(ctx context.Context, sourceID string) ([]*NoteLink, error)

	// ListLiveByTarget returns all live links whose resolved target is the
	// given note.
	ListLiveByTarget(ctx context.Context, targetID string) ([]*NoteLink, error)

	// Create inserts a link record.
	Create(ctx context.Context, link *NoteLink) error

	// Patch merges the given fields into the stored link record.
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
}

// RemoteFilter is a column-equality filter on the remote table.
type RemoteFilter map[string]string

// RemoteStore is the remote relational table the sync engine replicates
// against, reachable only when online. Errors carry whatever code, message,
// detail and hint the store reports; callers log them verbatim.
type RemoteStore interface {
	// Select returns the rows matching the filter.
	Select(ctx context.Context, filter RemoteFilter) ([]*SyncRecord, error)

	// Upsert writes one row by primary key.
	Upsert(ctx context.Context, record *SyncRecord) error

	// Update applies a partial row to every row matching the filter.
	Update(ctx context.Context, fields map[string]interface{}, filter RemoteFilter) error

	// Ping reports whether the store is currently reachable.
	Ping(ctx context.Context) error
}
