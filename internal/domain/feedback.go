package domain

import "time"

// Feedback records one accept/reject/dismiss decision against a style
// suggestion or editorial comment. Read back only for aggregate rule
// statistics, never synchronously by the state machine.
type Feedback struct {
	ID         string
	SessionID  string
	DraftIndex int
	Accepted   bool
	Action     FeedbackAction
	Kind       FeedbackKind
	RuleID     string // style rule id, "agent", or the comment id
	CreatedAt  time.Time
}

// Preference is a per-user key-value record for learned preferences such
// as the last-used style and accumulated rule statistics.
type Preference struct {
	ID        string
	UserID    string
	Key       string
	Value     string
	UpdatedAt time.Time
}
