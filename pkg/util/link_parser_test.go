// Package util provides common utility functions
package util

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseWikiLinks(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []WikiLink
	}{
		{
			name:    "simple wikilink",
			content: "Check out [[Note Name]] for more info",
			expected: []WikiLink{
				{Title: "Note Name", Position: 10},
			},
		},
		{
			name:    "wikilink with alias",
			content: "See [[Note Name|Display Text]] here",
			expected: []WikiLink{
				{Title: "Note Name", Alias: strPtr("Display Text"), Position: 4},
			},
		},
		{
			name:    "wikilink with heading",
			content: "Jump to [[Note Name#Heading]] section",
			expected: []WikiLink{
				{Title: "Note Name", Header: strPtr("Heading"), Position: 8},
			},
		},
		{
			name:    "heading and alias together",
			content: "See [[Project Alpha#Goals|goals]]",
			expected: []WikiLink{
				{Title: "Project Alpha", Header: strPtr("Goals"), Alias: strPtr("goals"), Position: 4},
			},
		},
		{
			name:    "alias containing hash takes no header",
			content: "[[Foo|bar#baz]]",
			expected: []WikiLink{
				{Title: "Foo", Alias: strPtr("bar#baz"), Position: 0},
			},
		},
		{
			name:    "title is trimmed",
			content: "[[ Spaced Title ]]",
			expected: []WikiLink{
				{Title: "Spaced Title", Position: 0},
			},
		},
		{
			name:    "multiple occurrences keep document order",
			content: "See [[Project Alpha]] and [[Project Alpha#Goals|goals]]",
			expected: []WikiLink{
				{Title: "Project Alpha", Position: 4},
				{Title: "Project Alpha", Header: strPtr("Goals"), Alias: strPtr("goals"), Position: 26},
			},
		},
		{
			name:    "repeated identical links are all reported",
			content: "[[Foo]] then [[Foo]]",
			expected: []WikiLink{
				{Title: "Foo", Position: 0},
				{Title: "Foo", Position: 13},
			},
		},
		{
			name:     "unclosed span is not matched",
			content:  "broken [[Foo and nothing else",
			expected: nil,
		},
		{
			name:     "empty content",
			content:  "",
			expected: nil,
		},
		{
			name:     "no links",
			content:  "plain text without markup",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWikiLinks(tt.content)
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

// Every reported position must point at an opening "[[" whose span contains
// the parsed title.
func TestProperty_ParsedPositionsPointAtMarkup(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("positions index the opening brackets", prop.ForAll(
		func(prefix, title, suffix string) bool {
			content := prefix + "[[" + title + "]]" + suffix
			links := ParseWikiLinks(content)
			if len(links) == 0 {
				return false
			}
			for _, l := range links {
				if !strings.HasPrefix(content[l.Position:], "[[") {
					return false
				}
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool {
			return !strings.ContainsAny(s, "[]")
		}),
		gen.AlphaString().SuchThat(func(s string) bool {
			return len(s) > 0 && !strings.ContainsAny(s, "[]#|")
		}),
		gen.AlphaString().SuchThat(func(s string) bool {
			return !strings.ContainsAny(s, "[]")
		}),
	))

	properties.TestingRun(t)
}
