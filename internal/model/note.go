package model

import "github.com/driftnotes/drift-sync-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID        string     `gorm:"column:id;primaryKey" json:"id"`
	Title     string     `gorm:"column:title;index:idx_title" json:"title"`
	Content   string     `gorm:"column:content" json:"content"`
	IsTrashed bool       `gorm:"column:is_trashed;default:false;index:idx_trashed" json:"isTrashed"`
	IsDeleted bool       `gorm:"column:is_deleted;default:false" json:"isDeleted"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
