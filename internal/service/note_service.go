package service

import (
	"context"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/dto"
	"github.com/driftnotes/drift-sync-service/internal/store"
	"github.com/driftnotes/drift-sync-service/pkg/logger"
	"github.com/driftnotes/drift-sync-service/pkg/timex"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteDTO is the note shape returned by the API layer.
type NoteDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsTrashed bool   `json:"isTrashed"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toNoteDTO(n *domain.Note) *NoteDTO {
	return &NoteDTO{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		IsTrashed: n.IsTrashed,
		CreatedAt: n.CreatedAt.String(),
		UpdatedAt: n.UpdatedAt.String(),
	}
}

// NoteService drives note mutations through the reactive store so every
// change reaches the sync engine, and keeps the link graph reconciled.
type NoteService interface {
	// Get returns a note by id, or nil when absent.
	Get(ctx context.Context, id string) (*NoteDTO, error)

	// List returns all non-trashed, non-deleted notes.
	List(ctx context.Context) ([]*NoteDTO, error)

	// Create inserts a note and reconciles its outgoing links.
	Create(ctx context.Context, params *dto.NoteCreateRequest) (*NoteDTO, error)

	// Update replaces a note's content, bumps updated_at and reconciles
	// its outgoing links.
	Update(ctx context.Context, id string, params *dto.NoteUpdateRequest) (*NoteDTO, error)

	// Rename changes a note's title and rewrites target_title on every
	// live link pointing at it. Link positions in other notes' contents
	// are not touched.
	Rename(ctx context.Context, id string, params *dto.NoteRenameRequest) (*NoteDTO, error)

	// Trash soft-trashes a note. Its outgoing links are soft-deleted by
	// reconciling against empty content.
	Trash(ctx context.Context, id string) error

	// Delete tombstones a note so the deletion replicates remotely.
	Delete(ctx context.Context, id string) error
}

// noteService implements NoteService
type noteService struct {
	store   *store.Store
	linkSvc LinkService
	logger  *zap.Logger
}

// NewNoteService creates a NoteService instance
func NewNoteService(st *store.Store, linkSvc LinkService, lg *zap.Logger) NoteService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{
		store:   st,
		linkSvc: linkSvc,
		logger:  lg,
	}
}

func (s *noteService) Get(ctx context.Context, id string) (*NoteDTO, error) {
	note, err := s.store.Notes().GetByID(ctx, id)
	if err != nil || note == nil {
		return nil, err
	}
	return toNoteDTO(note), nil
}

func (s *noteService) List(ctx context.Context) ([]*NoteDTO, error) {
	notes, err := s.store.Notes().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]*NoteDTO, 0, len(notes))
	for _, n := range notes {
		results = append(results, toNoteDTO(n))
	}
	return results, nil
}

func (s *noteService) Create(ctx context.Context, params *dto.NoteCreateRequest) (*NoteDTO, error) {
	now := timex.Now()
	note := &domain.Note{
		ID:        uuid.NewString(),
		Title:     params.Title,
		Content:   params.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, note); err != nil {
		return nil, err
	}
	if _, err := s.linkSvc.Reconcile(ctx, note.ID, note.Content); err != nil {
		return nil, err
	}
	s.logger.Info("note created",
		zap.String(logger.FieldRecordID, note.ID),
		zap.String(logger.FieldTitle, note.Title))
	return toNoteDTO(note), nil
}

func (s *noteService) Update(ctx context.Context, id string, params *dto.NoteUpdateRequest) (*NoteDTO, error) {
	err := s.store.Patch(ctx, id, map[string]interface{}{
		"content":    params.Content,
		"updated_at": timex.Now(),
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.linkSvc.Reconcile(ctx, id, params.Content); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *noteService) Rename(ctx context.Context, id string, params *dto.NoteRenameRequest) (*NoteDTO, error) {
	err := s.store.Patch(ctx, id, map[string]interface{}{
		"title":      params.Title,
		"updated_at": timex.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.linkSvc.UpdateLinksOnRename(ctx, id, params.Title); err != nil {
		return nil, err
	}
	s.logger.Info("note renamed",
		zap.String(logger.FieldRecordID, id),
		zap.String(logger.FieldTitle, params.Title))
	return s.Get(ctx, id)
}

func (s *noteService) Trash(ctx context.Context, id string) error {
	err := s.store.Patch(ctx, id, map[string]interface{}{
		"is_trashed": true,
		"updated_at": timex.Now(),
	})
	if err != nil {
		return err
	}
	_, err = s.linkSvc.Reconcile(ctx, id, "")
	return err
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id, map[string]interface{}{
		"updated_at": timex.Now(),
	})
	if err != nil {
		return err
	}
	_, err = s.linkSvc.Reconcile(ctx, id, "")
	return err
}

// Ensure noteService implements NoteService
var _ NoteService = (*noteService)(nil)
