// Package diff summarizes content changes for logging. The sync engine never
// merges content (conflicts resolve last-writer-wins); the summary only makes
// an overwrite visible in the logs.
package diff

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Summary condenses the difference between two content versions.
type Summary struct {
	Inserted int
	Deleted  int
}

// Changed reports whether the two versions differ at all.
func (s Summary) Changed() bool {
	return s.Inserted > 0 || s.Deleted > 0
}

func (s Summary) String() string {
	return fmt.Sprintf("+%d/-%d chars", s.Inserted, s.Deleted)
}

// Summarize computes the number of characters inserted and deleted going
// from old to new.
func Summarize(old, new string) Summary {
	if old == new {
		return Summary{}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)

	var s Summary
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			s.Deleted += len([]rune(d.Text))
		}
	}
	return s
}
