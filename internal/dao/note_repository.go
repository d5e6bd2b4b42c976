// Package dao implements the data access layer
package dao

import (
	"context"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/model"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// noteRepository implements domain.NoteRepository
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository creates a NoteRepository instance
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) toDomain(m *model.Note) (*domain.Note, error) {
	if m == nil {
		return nil, nil
	}
	n := new(domain.Note)
	if err := copier.Copy(n, m); err != nil {
		return nil, errors.Wrap(err, "copy note model")
	}
	return n, nil
}

func (r *noteRepository) toDomainList(ms []*model.Note) ([]*domain.Note, error) {
	results := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		n, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, nil
}

// GetByID returns a note by id, or nil when absent.
func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var m model.Note
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

// ListAll returns every note regardless of state.
func (r *noteRepository) ListAll(ctx context.Context) ([]*domain.Note, error) {
	var ms []*model.Note
	if err := r.dao.db.WithContext(ctx).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// ListActive returns all non-trashed, non-tombstoned notes.
func (r *noteRepository) ListActive(ctx context.Context) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.dao.db.WithContext(ctx).
		Where("is_trashed = ? AND is_deleted = ?", false, false).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// Create inserts a note.
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	m := new(model.Note)
	if err := copier.Copy(m, note); err != nil {
		return errors.Wrap(err, "copy note domain")
	}
	return r.dao.db.WithContext(ctx).Create(m).Error
}

// Patch merges the given fields into the stored note.
func (r *noteRepository) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Ensure noteRepository implements domain.NoteRepository
var _ domain.NoteRepository = (*noteRepository)(nil)
