// Package focus implements the focused editing mode: deterministic
// style analysis, LLM editorial comments, and a conversational editing
// agent over a single selected draft.
package focus

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// MaxDraftChars caps how much text the analysis passes will look at.
const MaxDraftChars = 50000

var whitespaceRe = regexp.MustCompile(`\s+`)

// StripHTML extracts the text content of an HTML fragment and collapses
// runs of whitespace to single spaces. Plain text passes through
// unchanged apart from whitespace normalization.
func StripHTML(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var parts []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			parts = append(parts, string(z.Text()))
		}
	}
	joined := strings.Join(parts, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(joined, " "))
}

// Truncate enforces the analysis length limit.
func Truncate(text string) string {
	if len(text) > MaxDraftChars {
		return text[:MaxDraftChars]
	}
	return text
}
