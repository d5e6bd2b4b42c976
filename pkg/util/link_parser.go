// Package util provides common utility functions
package util

import (
	"regexp"
	"strings"
)

// WikiLink represents one occurrence of wiki-style link markup in a note body.
type WikiLink struct {
	Title    string  // target title, trimmed
	Header   *string // optional heading from [[title#header]]
	Alias    *string // optional alias from [[title|alias]]
	Position int     // byte offset of the opening "[[" in the content
}

// wikiLinkRegex matches a span delimited by "[[" and the next "]]".
// Spans without a closing "]]" are not matched.
var wikiLinkRegex = regexp.MustCompile(`(?s)\[\[(.*?)\]\]`)

// ParseWikiLinks extracts [[title]], [[title#header]], and [[title|alias]]
// occurrences from content in document order. Within a span the header
// suffix is recognized before the alias suffix, so [[t#h|a]] yields all
// three parts while [[t|a#h]] yields a title and an alias only.
func ParseWikiLinks(content string) []WikiLink {
	if content == "" {
		return nil
	}

	matches := wikiLinkRegex.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]WikiLink, 0, len(matches))
	for _, m := range matches {
		inner := content[m[2]:m[3]]
		link := WikiLink{Position: m[0]}

		hash := strings.Index(inner, "#")
		pipe := strings.Index(inner, "|")

		switch {
		case hash >= 0 && (pipe < 0 || hash < pipe):
			link.Title = inner[:hash]
			rest := inner[hash+1:]
			if j := strings.Index(rest, "|"); j >= 0 {
				header := rest[:j]
				alias := rest[j+1:]
				link.Header = &header
				link.Alias = &alias
			} else {
				header := rest
				link.Header = &header
			}
		case pipe >= 0:
			link.Title = inner[:pipe]
			alias := inner[pipe+1:]
			link.Alias = &alias
		default:
			link.Title = inner
		}

		link.Title = strings.TrimSpace(link.Title)
		links = append(links, link)
	}

	return links
}
