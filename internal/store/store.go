// Package store layers a change feed over the note repository, turning it
// into the reactive local document store the sync engine subscribes to.
// Mutation events are delivered to each subscriber in commit order.
package store

import (
	"context"
	"sync"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// subscriberBuffer bounds how far a subscriber may fall behind before
// writers start blocking on it.
const subscriberBuffer = 1024

// Store is the reactive local document store.
type Store struct {
	notes  domain.NoteRepository
	links  domain.NoteLinkRepository
	logger *zap.Logger

	mu     sync.Mutex
	subs   []chan domain.ChangeEvent
	closed bool
}

// New creates a Store over the given repositories.
func New(notes domain.NoteRepository, links domain.NoteLinkRepository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		notes:  notes,
		links:  links,
		logger: logger,
	}
}

// Notes exposes the note repository for read paths.
func (s *Store) Notes() domain.NoteRepository {
	return s.notes
}

// Links exposes the link repository.
func (s *Store) Links() domain.NoteLinkRepository {
	return s.links
}

// Subscribe registers a new change feed. The caller owns draining it; a
// subscriber that stops draining eventually blocks writers.
func (s *Store) Subscribe() <-chan domain.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan domain.ChangeEvent, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// emit delivers the event to every subscriber. The lock is held across the
// sends so Close cannot race a delivery into a closed channel.
func (s *Store) emit(ev domain.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, ch := range s.subs {
		ch <- ev
	}
}

// Insert creates a note and emits an insert event.
func (s *Store) Insert(ctx context.Context, note *domain.Note) error {
	if err := s.notes.Create(ctx, note); err != nil {
		return err
	}
	s.logger.Debug("store insert", zap.String(logger.FieldRecordID, note.ID))
	s.emit(domain.ChangeEvent{Op: domain.ChangeOpInsert, Note: note})
	return nil
}

// Patch merges fields into a note and emits an update event carrying the
// reloaded record. Bumping updated_at is the caller's responsibility.
func (s *Store) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.notes.Patch(ctx, id, fields); err != nil {
		return err
	}
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}
	s.logger.Debug("store patch", zap.String(logger.FieldRecordID, id))
	s.emit(domain.ChangeEvent{Op: domain.ChangeOpUpdate, Note: note})
	return nil
}

// Delete tombstones a note and emits a delete event. The row stays in place
// with is_deleted set; removal is left to downstream consumers.
func (s *Store) Delete(ctx context.Context, id string, fields map[string]interface{}) error {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["is_deleted"] = true
	if err := s.notes.Patch(ctx, id, fields); err != nil {
		return err
	}
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}
	s.logger.Debug("store delete", zap.String(logger.FieldRecordID, id))
	s.emit(domain.ChangeEvent{Op: domain.ChangeOpDelete, Note: note})
	return nil
}

// Close shuts every subscriber channel. Mutations after Close still reach
// the repository but emit no events.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}
