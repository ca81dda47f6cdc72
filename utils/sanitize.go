package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Slack renders plain text, so every tag is stripped.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips markup from admin supplied text and trims it.
func Sanitize(input string) string {
	// bluemonday escapes what it keeps; Slack wants the raw characters back.
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(input)))
}

// SanitizeAll applies Sanitize to each element, dropping entries that end up empty.
func SanitizeAll(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if s := Sanitize(in); s != "" {
			out = append(out, s)
		}
	}
	return out
}
