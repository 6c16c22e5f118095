package domain

import "time"

// WritingStyle is a named style a user trains with sample pieces. The
// samples steer draft generation toward the writer's own voice.
type WritingStyle struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Tone        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StyleSample is one training sample attached to a writing style.
type StyleSample struct {
	ID        string
	StyleID   string
	Title     string
	Content   string
	WordCount int
	CreatedAt time.Time
}
