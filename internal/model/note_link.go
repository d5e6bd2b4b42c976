package model

import "github.com/driftnotes/drift-sync-service/pkg/timex"

const TableNameNoteLink = "note_link"

// NoteLink mapped from table <note_link>
type NoteLink struct {
	ID          string      `gorm:"column:id;primaryKey" json:"id"`
	SourceID    string      `gorm:"column:source_id;not null;index:idx_source" json:"sourceId"`
	TargetID    *string     `gorm:"column:target_id;index:idx_target" json:"targetId"`
	TargetTitle string      `gorm:"column:target_title;not null" json:"targetTitle"`
	Header      *string     `gorm:"column:header" json:"header"`
	Alias       *string     `gorm:"column:alias" json:"alias"`
	Position    int         `gorm:"column:position;not null" json:"position"`
	IsTrashed   bool        `gorm:"column:is_trashed;default:false;index:idx_source;index:idx_target" json:"isTrashed"`
	TrashedAt   *timex.Time `gorm:"column:trashed_at;type:datetime;default:NULL" json:"trashedAt"`
	CreatedAt   timex.Time  `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   timex.Time  `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt"`
}

// TableName NoteLink's table name
func (*NoteLink) TableName() string {
	return TableNameNoteLink
}
