package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		old          string
		new          string
		wantChanged  bool
		wantInserted int
		wantDeleted  int
	}{
		{
			name:        "identical",
			old:         "same",
			new:         "same",
			wantChanged: false,
		},
		{
			name:         "pure insert",
			old:          "",
			new:          "abc",
			wantChanged:  true,
			wantInserted: 3,
		},
		{
			name:        "pure delete",
			old:         "abc",
			new:         "",
			wantChanged: true,
			wantDeleted: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.old, tt.new)
			assert.Equal(t, tt.wantChanged, got.Changed())
			assert.Equal(t, tt.wantInserted, got.Inserted)
			assert.Equal(t, tt.wantDeleted, got.Deleted)
		})
	}
}

func TestSummarizeReplacement(t *testing.T) {
	got := Summarize("hello world", "hello there")
	assert.True(t, got.Changed())
	assert.Positive(t, got.Inserted)
	assert.Positive(t, got.Deleted)
}
