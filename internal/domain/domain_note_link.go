// Package domain defines domain models and interfaces
package domain

import (
	"github.com/driftnotes/drift-sync-service/pkg/timex"
)

// NoteLink represents one occurrence of wiki-link markup from a source note
// to a (possibly unresolved) target title. Links are soft-deleted when their
// occurrence disappears from the source content, never hard-deleted.
type NoteLink struct {
	ID          string      `json:"id"`
	SourceID    string      `json:"sourceId"`
	TargetID    *string     `json:"targetId"` // nil while no note with a matching title exists
	TargetTitle string      `json:"targetTitle"`
	Header      *string     `json:"header,omitempty"`
	Alias       *string     `json:"alias,omitempty"`
	Position    int         `json:"position"`
	IsTrashed   bool        `json:"-"`
	TrashedAt   *timex.Time `json:"-"`
	CreatedAt   timex.Time  `json:"createdAt"`
	UpdatedAt   timex.Time  `json:"updatedAt"`
}

// LinkKey is the natural dedup key of a link occurrence: at most one live
// link exists per key per reconciliation pass. Position is part of the key,
// so edits earlier in the document re-key every following occurrence.
type LinkKey struct {
	TargetTitle string
	Header      string
	Alias       string
	Position    int
}

// Key derives the dedup key, mapping nil header/alias to the empty string.
func (l *NoteLink) Key() LinkKey {
	k := LinkKey{TargetTitle: l.TargetTitle, Position: l.Position}
	if l.Header != nil {
		k.Header = *l.Header
	}
	if l.Alias != nil {
		k.Alias = *l.Alias
	}
	return k
}

// Backlink is a live link pointing at a note, joined with the source note's
// current title. Rows are not deduplicated by source; callers wanting one
// row per source note dedupe themselves.
type Backlink struct {
	Link        *NoteLink `json:"link"`
	SourceTitle string    `json:"sourceTitle"`
}

// OutgoingLink is a live link leaving a note, annotated with whether the
// target title currently resolves to a note.
type OutgoingLink struct {
	Link     *NoteLink `json:"link"`
	Resolved bool      `json:"resolved"`
}

// Mention lists the offsets inside one note's content where a title appears
// as plain text, outside any [[...]] markup.
type Mention struct {
	NoteID    string `json:"noteId"`
	NoteTitle string `json:"noteTitle"`
	Positions []int  `json:"positions"`
}
