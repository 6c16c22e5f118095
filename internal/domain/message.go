package domain

import "time"

// InterviewMessage is one turn of the interview transcript. Ordering is a
// monotonic counter scoped to the session; it is never reused, even when a
// write fails, so replay order stays exact.
type InterviewMessage struct {
	ID          string
	SessionID   string
	Role        string
	Content     string
	ThoughtJSON string
	SearchJSON  string
	ReadyJSON   string
	Ordering    int
	CreatedAt   time.Time
}
