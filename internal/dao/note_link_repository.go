// Package dao implements the data access layer
package dao

import (
	"context"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/model"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// noteLinkRepository implements domain.NoteLinkRepository
type noteLinkRepository struct {
	dao *Dao
}

// NewNoteLinkRepository creates a NoteLinkRepository instance
func NewNoteLinkRepository(dao *Dao) domain.NoteLinkRepository {
	return &noteLinkRepository{dao: dao}
}

func (r *noteLinkRepository) toDomainList(ms []*model.NoteLink) ([]*domain.NoteLink, error) {
	results := make([]*domain.NoteLink, 0, len(ms))
	for _, m := range ms {
		l := new(domain.NoteLink)
		if err := copier.Copy(l, m); err != nil {
			return nil, errors.Wrap(err, "copy link model")
		}
		results = append(results, l)
	}
	return results, nil
}

// ListLiveBySource returns all live links leaving a source note.
func (r *noteLinkRepository) ListLiveBySource(ctx context.Context, sourceID string) ([]*domain.NoteLink, error) {
	var ms []*model.NoteLink
	err := r.dao.db.WithContext(ctx).
		Where("source_id = ? AND is_trashed = ?", sourceID, false).
		Order("position").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// ListLiveByTarget returns all live links whose resolved target is the note.
func (r *noteLinkRepository) ListLiveByTarget(ctx context.Context, targetID string) ([]*domain.NoteLink, error) {
	var ms []*model.NoteLink
	err := r.dao.db.WithContext(ctx).
		Where("target_id = ? AND is_trashed = ?", targetID, false).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// Create inserts a link record.
func (r *noteLinkRepository) Create(ctx context.Context, link *domain.NoteLink) error {
	m := new(model.NoteLink)
	if err := copier.Copy(m, link); err != nil {
		return errors.Wrap(err, "copy link domain")
	}
	return r.dao.db.WithContext(ctx).Create(m).Error
}

// Patch merges the given fields into the stored link record.
func (r *noteLinkRepository) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.NoteLink{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Ensure noteLinkRepository implements domain.NoteLinkRepository
var _ domain.NoteLinkRepository = (*noteLinkRepository)(nil)
