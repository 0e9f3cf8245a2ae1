package composer

import (
	"html"
	"regexp"
	"strings"
)

var (
	blankLines    = regexp.MustCompile(`\n{3,}`)
	trailingPunct = regexp.MustCompile(`([.!?])[.!?]+$`)
)

// cleanup is the deterministic post-processing pass: collapse repeated blank
// lines, normalize trailing punctuation, and resolve HTML entities left over
// from scraped source documents.
func cleanup(text string) string {
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	text = trailingPunct.ReplaceAllString(text, "$1")
	return text
}
