// Package model holds the gorm table mappings of the local document store.
package model

import "gorm.io/gorm"

// AutoMigrate creates or updates all local tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Note{},
		&NoteLink{},
	)
}
