package repository

import (
	"context"

	"github.com/samefarrar/inkwell/internal/domain"
)

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error
	UpdateMaterial(ctx context.Context, s *domain.Session) error
	UpdateSelectedDraft(ctx context.Context, id string, draftIndex int) error
}

type DraftRepo interface {
	Create(ctx context.Context, d *domain.Draft) error
	Upsert(ctx context.Context, d *domain.Draft) error
	GetBySlot(ctx context.Context, sessionID string, round, draftIndex int) (*domain.Draft, error)
	ListByRound(ctx context.Context, sessionID string, round int) ([]*domain.Draft, error)
	MaxRound(ctx context.Context, sessionID string) (int, error)
}

type HighlightRepo interface {
	Create(ctx context.Context, h *domain.Highlight) error
	Update(ctx context.Context, h *domain.Highlight) error
	Delete(ctx context.Context, id string) error
	DeleteBySession(ctx context.Context, sessionID string) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Highlight, error)
}

type MessageRepo interface {
	Create(ctx context.Context, m *domain.InterviewMessage) error
	NextOrdering(ctx context.Context, sessionID string) (int, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.InterviewMessage, error)
}

type FeedbackRepo interface {
	Create(ctx context.Context, f *domain.Feedback) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Feedback, error)
}

type PreferenceRepo interface {
	Set(ctx context.Context, userID, key, value string) error
	Get(ctx context.Context, userID, key string) (*domain.Preference, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type StyleRepo interface {
	Create(ctx context.Context, s *domain.WritingStyle) error
	GetByID(ctx context.Context, id string) (*domain.WritingStyle, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.WritingStyle, error)
	AddSample(ctx context.Context, sample *domain.StyleSample) error
	ListSamples(ctx context.Context, styleID string) ([]*domain.StyleSample, error)
}
