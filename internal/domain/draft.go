package domain

import (
	"strings"
	"time"
)

// Draft is one generated variant, scoped to (session, round, index).
// Round 0 holds the initial generation; rounds >= 1 are synthesis passes.
type Draft struct {
	ID         string
	SessionID  string
	Round      int
	DraftIndex int
	Title      string
	Angle      string
	Content    string
	WordCount  int
	CreatedAt  time.Time
}

// CountWords returns the whitespace-delimited word count used everywhere
// a draft's word_count is computed.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
