// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the formatting tags reasonable in user-submitted
	// content (paragraphs, emphasis, lists, links) and strips
	// everything executable.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup, leaving plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize cleans user-submitted HTML, keeping safe formatting and
// removing scripts, event handlers, and javascript: URLs.
func Sanitize(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// StripTags removes all markup, returning plain text. Used for fields
// that are never rendered as HTML (names, descriptions).
func StripTags(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
