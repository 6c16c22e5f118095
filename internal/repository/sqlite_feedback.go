package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLiteFeedbackRepo implements editorial feedback persistence using a
// SQLite database.
type SQLiteFeedbackRepo struct {
	db *sql.DB
}

// NewSQLiteFeedbackRepo creates a new SQLiteFeedbackRepo.
func NewSQLiteFeedbackRepo(db *sql.DB) *SQLiteFeedbackRepo {
	return &SQLiteFeedbackRepo{db: db}
}

const feedbackColumns = `id, session_id, draft_index, accepted, action, feedback_type, rule_id, created_at`

func (r *SQLiteFeedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	query := `INSERT INTO feedback (` + feedbackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		f.ID,
		f.SessionID,
		f.DraftIndex,
		boolToInt(f.Accepted),
		string(f.Action),
		string(f.Kind),
		f.RuleID,
		f.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

// ListBySession returns feedback entries in creation order.
func (r *SQLiteFeedbackRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback
		WHERE session_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		var accepted int
		var action, kind, createdAt string

		err := rows.Scan(&f.ID, &f.SessionID, &f.DraftIndex, &accepted,
			&action, &kind, &f.RuleID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning feedback row: %w", err)
		}

		f.Accepted = accepted != 0
		f.Action = domain.FeedbackAction(action)
		f.Kind = domain.FeedbackKind(kind)
		f.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
