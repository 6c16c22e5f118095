package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLiteHighlightRepo implements highlight persistence using a SQLite database.
type SQLiteHighlightRepo struct {
	db *sql.DB
}

// NewSQLiteHighlightRepo creates a new SQLiteHighlightRepo.
func NewSQLiteHighlightRepo(db *sql.DB) *SQLiteHighlightRepo {
	return &SQLiteHighlightRepo{db: db}
}

const highlightColumns = `id, session_id, draft_index, start_offset, end_offset, text, sentiment, label, note, created_at`

func (r *SQLiteHighlightRepo) Create(ctx context.Context, h *domain.Highlight) error {
	query := `INSERT INTO highlights (` + highlightColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		h.ID,
		h.SessionID,
		h.DraftIndex,
		h.Start,
		h.End,
		h.Text,
		string(h.Sentiment),
		h.Label,
		h.Note,
		h.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting highlight: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing highlight.
func (r *SQLiteHighlightRepo) Update(ctx context.Context, h *domain.Highlight) error {
	query := `UPDATE highlights SET sentiment = ?, label = ?, note = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(h.Sentiment), h.Label, h.Note, h.ID)
	if err != nil {
		return fmt.Errorf("updating highlight: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking highlight update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("highlight %s: %w", h.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteHighlightRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting highlight: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking highlight delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("highlight %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteBySession clears all highlights for a session, used after a
// synthesis round consumes them.
func (r *SQLiteHighlightRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("clearing session highlights: %w", err)
	}
	return nil
}

// ListBySession returns highlights in creation order so positional
// references from the client resolve deterministically.
func (r *SQLiteHighlightRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Highlight, error) {
	query := `SELECT ` + highlightColumns + ` FROM highlights
		WHERE session_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing highlights: %w", err)
	}
	defer rows.Close()

	var highlights []*domain.Highlight
	for rows.Next() {
		var h domain.Highlight
		var sentiment, createdAt string

		err := rows.Scan(&h.ID, &h.SessionID, &h.DraftIndex, &h.Start, &h.End,
			&h.Text, &sentiment, &h.Label, &h.Note, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning highlight row: %w", err)
		}

		h.Sentiment = domain.Sentiment(sentiment)
		h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		highlights = append(highlights, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating highlights: %w", err)
	}
	return highlights, nil
}
