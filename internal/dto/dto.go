// Package dto defines request payloads for the API layer.
package dto

// NoteCreateRequest creates a note.
type NoteCreateRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=512"`
	Content string `json:"content"`
}

// NoteUpdateRequest replaces a note's content.
type NoteUpdateRequest struct {
	Content string `json:"content"`
}

// NoteRenameRequest changes a note's title.
type NoteRenameRequest struct {
	Title string `json:"title" binding:"required,notblank,max=512"`
}

// MentionRequest looks up unlinked mentions of a title.
type MentionRequest struct {
	Title string `form:"title" binding:"required,notblank,max=512"`
}
