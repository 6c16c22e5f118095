// Package search provides web search for the interview and focus agents.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider performs a web search. Implementations return an empty
// slice rather than an error when the upstream service fails, so
// agents degrade gracefully.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// FormatResults renders results as a compact block suitable for
// inclusion in a model prompt.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n", i+1, r.Title, r.URL, r.Snippet)
		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Disabled is a Provider that always returns no results. Used when no
// search API key is configured.
type Disabled struct{}

func (Disabled) Search(ctx context.Context, query string) ([]Result, error) {
	return nil, nil
}
