package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLiteMessageRepo implements interview transcript persistence using a
// SQLite database.
type SQLiteMessageRepo struct {
	db *sql.DB
}

// NewSQLiteMessageRepo creates a new SQLiteMessageRepo.
func NewSQLiteMessageRepo(db *sql.DB) *SQLiteMessageRepo {
	return &SQLiteMessageRepo{db: db}
}

const messageColumns = `id, session_id, role, content, thought_json, search_json, ready_json, ordering, created_at`

func (r *SQLiteMessageRepo) Create(ctx context.Context, m *domain.InterviewMessage) error {
	query := `INSERT INTO interview_messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.SessionID,
		m.Role,
		m.Content,
		m.ThoughtJSON,
		m.SearchJSON,
		m.ReadyJSON,
		m.Ordering,
		m.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting interview message: %w", err)
	}
	return nil
}

// NextOrdering returns the next ordering value for the session's
// transcript. Ordering values only grow, even if messages are deleted.
func (r *SQLiteMessageRepo) NextOrdering(ctx context.Context, sessionID string) (int, error) {
	query := `SELECT COALESCE(MAX(ordering), -1) + 1 FROM interview_messages WHERE session_id = ?`
	var next int
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&next); err != nil {
		return 0, fmt.Errorf("finding next ordering: %w", err)
	}
	return next, nil
}

// ListBySession returns the transcript in ordering sequence.
func (r *SQLiteMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.InterviewMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM interview_messages
		WHERE session_id = ? ORDER BY ordering ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing interview messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.InterviewMessage
	for rows.Next() {
		var m domain.InterviewMessage
		var createdAt string

		err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content,
			&m.ThoughtJSON, &m.SearchJSON, &m.ReadyJSON, &m.Ordering, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning interview message row: %w", err)
		}

		m.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interview messages: %w", err)
	}
	return messages, nil
}
