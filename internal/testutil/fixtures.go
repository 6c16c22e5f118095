package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/samefarrar/inkwell/internal/domain"
)

// User options
type UserOption func(*domain.User)

func WithPlan(p domain.Plan) UserOption {
	return func(u *domain.User) {
		u.Plan = p
	}
}

func NewTestUser(email string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:             uuid.New().String(),
		Email:          domain.NormalizeEmail(email),
		Name:           "Test Writer",
		HashedPassword: "$2a$10$testhashtesthashtesthashte",
		Plan:           domain.PlanFree,
		CreatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Session options
type SessionOption func(*domain.Session)

func WithStatus(s domain.SessionStatus) SessionOption {
	return func(sess *domain.Session) {
		sess.Status = s
	}
}

func WithStyle(styleID string) SessionOption {
	return func(sess *domain.Session) {
		sess.StyleID = styleID
	}
}

func WithCreatedAt(t time.Time) SessionOption {
	return func(sess *domain.Session) {
		sess.CreatedAt = t
		sess.UpdatedAt = t
	}
}

func NewTestSession(userID string, taskType domain.TaskType, topic string, opts ...SessionOption) *domain.Session {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:                 uuid.New().String(),
		UserID:             userID,
		TaskType:           taskType,
		Topic:              topic,
		Status:             domain.StatusInterview,
		SelectedDraftIndex: -1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewTestDraft(sessionID string, round, index int, content string) *domain.Draft {
	return &domain.Draft{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Round:      round,
		DraftIndex: index,
		Title:      "Untitled",
		Angle:      "Test-angle",
		Content:    content,
		WordCount:  domain.CountWords(content),
		CreatedAt:  time.Now().UTC(),
	}
}

// Highlight options
type HighlightOption func(*domain.Highlight)

func WithLabel(label string) HighlightOption {
	return func(h *domain.Highlight) {
		h.Label = label
	}
}

func WithNote(note string) HighlightOption {
	return func(h *domain.Highlight) {
		h.Note = note
	}
}

func NewTestHighlight(sessionID string, draftIndex, start, end int, sentiment domain.Sentiment, opts ...HighlightOption) *domain.Highlight {
	h := &domain.Highlight{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		DraftIndex: draftIndex,
		Start:      start,
		End:        end,
		Sentiment:  sentiment,
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
