// Package service implements the business logic layer
package service

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/pkg/logger"
	"github.com/driftnotes/drift-sync-service/pkg/timex"
	"github.com/driftnotes/drift-sync-service/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcileResult reports what one reconciliation pass changed.
type ReconcileResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Trashed int `json:"trashed"`
}

// LinkService maintains the wiki-link graph and answers link queries.
type LinkService interface {
	// Reconcile diffs the link markup parsed from content against the
	// persisted live links of the source note and applies the minimal
	// insert/patch/soft-delete set. Occurrences are keyed by
	// (target_title, header, alias, position); a key that disappears is
	// soft-deleted, never removed.
	Reconcile(ctx context.Context, sourceNoteID, content string) (*ReconcileResult, error)

	// GetBacklinks returns all live links targeting the note, joined with
	// freshly resolved source titles. Rows are not deduplicated by source.
	GetBacklinks(ctx context.Context, noteID string) ([]*domain.Backlink, error)

	// GetOutgoingLinks returns all live links leaving the note, each
	// annotated with whether its target currently resolves.
	GetOutgoingLinks(ctx context.Context, sourceID string) ([]*domain.OutgoingLink, error)

	// FindUnlinkedMentions scans every non-trashed note's content for plain
	// occurrences of title that are not wrapped in link markup. Linear in
	// total content length on every call.
	FindUnlinkedMentions(ctx context.Context, title string) ([]*domain.Mention, error)

	// UpdateLinksOnRename rewrites target_title on every live link whose
	// target is the renamed note. Positions are left untouched and source
	// contents are not re-validated.
	UpdateLinksOnRename(ctx context.Context, noteID, newTitle string) error
}

// linkService implements LinkService
type linkService struct {
	noteRepo domain.NoteRepository
	linkRepo domain.NoteLinkRepository
	logger   *zap.Logger
}

// NewLinkService creates a LinkService instance
func NewLinkService(noteRepo domain.NoteRepository, linkRepo domain.NoteLinkRepository, lg *zap.Logger) LinkService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &linkService{
		noteRepo: noteRepo,
		linkRepo: linkRepo,
		logger:   lg,
	}
}

// titleIndex builds the case-insensitive title resolution map. Notes sharing
// a title overwrite earlier entries: last one inserted wins.
func (s *linkService) titleIndex(ctx context.Context) (map[string]string, error) {
	notes, err := s.noteRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(notes))
	for _, n := range notes {
		if n.Title == "" {
			continue
		}
		index[strings.ToLower(n.Title)] = n.ID
	}
	return index, nil
}

func (s *linkService) Reconcile(ctx context.Context, sourceNoteID, content string) (*ReconcileResult, error) {
	started := time.Now()
	occurrences := util.ParseWikiLinks(content)

	index, err := s.titleIndex(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.linkRepo.ListLiveBySource(ctx, sourceNoteID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[domain.LinkKey]*domain.NoteLink, len(existing))
	for _, link := range existing {
		byKey[link.Key()] = link
	}

	result := new(ReconcileResult)
	touched := make(map[domain.LinkKey]bool, len(occurrences))
	now := timex.Now()

	for _, occ := range occurrences {
		key := domain.LinkKey{TargetTitle: occ.Title, Position: occ.Position}
		if occ.Header != nil {
			key.Header = *occ.Header
		}
		if occ.Alias != nil {
			key.Alias = *occ.Alias
		}
		touched[key] = true

		var targetID *string
		if id, ok := index[strings.ToLower(occ.Title)]; ok {
			targetID = &id
		}

		if link, ok := byKey[key]; ok {
			if !sameTarget(link.TargetID, targetID) {
				err := s.linkRepo.Patch(ctx, link.ID, map[string]interface{}{
					"target_id":  targetID,
					"updated_at": now,
				})
				if err != nil {
					return nil, err
				}
				result.Updated++
			}
			continue
		}

		link := &domain.NoteLink{
			ID:          uuid.NewString(),
			SourceID:    sourceNoteID,
			TargetID:    targetID,
			TargetTitle: occ.Title,
			Header:      occ.Header,
			Alias:       occ.Alias,
			Position:    occ.Position,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.linkRepo.Create(ctx, link); err != nil {
			return nil, err
		}
		result.Created++
	}

	for key, link := range byKey {
		if touched[key] {
			continue
		}
		err := s.linkRepo.Patch(ctx, link.ID, map[string]interface{}{
			"is_trashed": true,
			"trashed_at": now,
			"updated_at": now,
		})
		if err != nil {
			return nil, err
		}
		result.Trashed++
	}

	s.logger.Debug("link reconcile completed",
		zap.String(logger.FieldSourceID, sourceNoteID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("trashed", result.Trashed),
		zap.Duration(logger.FieldDuration, time.Since(started)))
	return result, nil
}

func sameTarget(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *linkService) GetBacklinks(ctx context.Context, noteID string) ([]*domain.Backlink, error) {
	links, err := s.linkRepo.ListLiveByTarget(ctx, noteID)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Backlink, 0, len(links))
	for _, link := range links {
		backlink := &domain.Backlink{Link: link}
		source, err := s.noteRepo.GetByID(ctx, link.SourceID)
		if err != nil {
			return nil, err
		}
		if source != nil {
			backlink.SourceTitle = source.Title
		}
		results = append(results, backlink)
	}
	return results, nil
}

func (s *linkService) GetOutgoingLinks(ctx context.Context, sourceID string) ([]*domain.OutgoingLink, error) {
	links, err := s.linkRepo.ListLiveBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.OutgoingLink, 0, len(links))
	for _, link := range links {
		results = append(results, &domain.OutgoingLink{
			Link:     link,
			Resolved: link.TargetID != nil,
		})
	}
	return results, nil
}

func (s *linkService) FindUnlinkedMentions(ctx context.Context, title string) ([]*domain.Mention, error) {
	if title == "" {
		return nil, nil
	}

	notes, err := s.noteRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var results []*domain.Mention

	for _, note := range notes {
		content := note.Content
		var positions []int

		for pos := 0; pos < len(content); {
			end, ok := foldMatchAt(content, pos, title)
			if !ok {
				_, size := utf8.DecodeRuneInString(content[pos:])
				pos += size
				continue
			}
			if !isWrappedInLink(content, pos, end) {
				positions = append(positions, pos)
			}
			pos = end
		}

		if len(positions) > 0 {
			results = append(results, &domain.Mention{
				NoteID:    note.ID,
				NoteTitle: note.Title,
				Positions: positions,
			})
		}
	}
	return results, nil
}

// foldMatchAt reports whether a case-insensitive occurrence of needle starts
// at byte offset pos in content, returning the offset just past it. The walk
// decodes content's own runes, so both offsets index content even when a
// case pair differs in encoded length.
func foldMatchAt(content string, pos int, needle string) (int, bool) {
	i := pos
	for _, nr := range needle {
		cr, size := utf8.DecodeRuneInString(content[i:])
		if size == 0 || !runesFold(cr, nr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

// runesFold applies the same simple-fold rule as strings.EqualFold.
func runesFold(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// isWrappedInLink inspects the two characters immediately before and after
// the match; only an exact [[match]] wrapping counts as linked.
func isWrappedInLink(content string, start, end int) bool {
	if start < 2 || end+2 > len(content) {
		return false
	}
	return content[start-2:start] == "[[" && content[end:end+2] == "]]"
}

func (s *linkService) UpdateLinksOnRename(ctx context.Context, noteID, newTitle string) error {
	links, err := s.linkRepo.ListLiveByTarget(ctx, noteID)
	if err != nil {
		return err
	}

	now := timex.Now()
	for _, link := range links {
		err := s.linkRepo.Patch(ctx, link.ID, map[string]interface{}{
			"target_title": newTitle,
			"updated_at":   now,
		})
		if err != nil {
			return err
		}
	}

	s.logger.Debug("links retargeted after rename",
		zap.String(logger.FieldTargetID, noteID),
		zap.String(logger.FieldTitle, newTitle),
		zap.Int(logger.FieldCount, len(links)))
	return nil
}

// Ensure linkService implements LinkService
var _ LinkService = (*linkService)(nil)
