// Package domain defines domain models and interfaces
package domain

import (
	"github.com/driftnotes/drift-sync-service/pkg/timex"
)

// Note is the document the application edits and replicates. IsDeleted is
// the replication tombstone; IsTrashed is the local recycle flag that takes
// a note out of link resolution and mention scans.
type Note struct {
	ID        string
	Title     string
	Content   string
	IsTrashed bool
	IsDeleted bool
	CreatedAt timex.Time
	UpdatedAt timex.Time
}

// SyncRecord is the unit replicated between the local store and the remote
// table. Field names form the wire contract and must not change.
type SyncRecord struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	UpdatedAt timex.Time `json:"updated_at"`
	IsDeleted bool       `json:"is_deleted"`
}

// SyncView projects the note onto the replicated row shape.
func (n *Note) SyncView() *SyncRecord {
	return &SyncRecord{
		ID:        n.ID,
		Content:   n.Content,
		UpdatedAt: n.UpdatedAt,
		IsDeleted: n.IsDeleted,
	}
}

// ChangeOp identifies the kind of local mutation behind a change event.
type ChangeOp string

const (
	ChangeOpInsert ChangeOp = "insert"
	ChangeOpUpdate ChangeOp = "update"
	ChangeOpDelete ChangeOp = "delete"
)

// ChangeEvent is one local-store mutation delivered to subscribers in
// commit order.
type ChangeEvent struct {
	Op   ChangeOp
	Note *Note
}
