package domain

import "time"

// Highlight is a user-marked character span within one draft's content.
// Invariant at creation time: 0 <= Start <= End <= len(draft content).
// Highlights are round-scoped feedback and are cleared when a synthesis
// round starts.
type Highlight struct {
	ID         string
	SessionID  string
	DraftIndex int
	Start      int
	End        int
	Text       string // snapshot of the highlighted span
	Sentiment  Sentiment
	Label      string // optional snake_cased custom label
	Note       string
	CreatedAt  time.Time
}
