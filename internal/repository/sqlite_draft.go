package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLiteDraftRepo implements draft persistence using a SQLite database.
type SQLiteDraftRepo struct {
	db *sql.DB
}

// NewSQLiteDraftRepo creates a new SQLiteDraftRepo.
func NewSQLiteDraftRepo(db *sql.DB) *SQLiteDraftRepo {
	return &SQLiteDraftRepo{db: db}
}

const draftColumns = `id, session_id, round, draft_index, title, angle, content, word_count, created_at`

func (r *SQLiteDraftRepo) Create(ctx context.Context, d *domain.Draft) error {
	query := `INSERT INTO drafts (` + draftColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.SessionID,
		d.Round,
		d.DraftIndex,
		d.Title,
		d.Angle,
		d.Content,
		d.WordCount,
		d.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting draft: %w", err)
	}
	return nil
}

// Upsert replaces the draft occupying the same (session, round, index)
// slot, used when a round is regenerated or a draft is edited in place.
func (r *SQLiteDraftRepo) Upsert(ctx context.Context, d *domain.Draft) error {
	query := `INSERT INTO drafts (` + draftColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, round, draft_index) DO UPDATE SET
			title = excluded.title,
			angle = excluded.angle,
			content = excluded.content,
			word_count = excluded.word_count`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.SessionID,
		d.Round,
		d.DraftIndex,
		d.Title,
		d.Angle,
		d.Content,
		d.WordCount,
		d.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting draft: %w", err)
	}
	return nil
}

// GetBySlot returns the draft at (session, round, index).
func (r *SQLiteDraftRepo) GetBySlot(ctx context.Context, sessionID string, round, draftIndex int) (*domain.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts
		WHERE session_id = ? AND round = ? AND draft_index = ?`
	row := r.db.QueryRowContext(ctx, query, sessionID, round, draftIndex)
	return r.scanDraft(row)
}

// ListByRound returns the drafts of one generation round ordered by index.
func (r *SQLiteDraftRepo) ListByRound(ctx context.Context, sessionID string, round int) ([]*domain.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts
		WHERE session_id = ? AND round = ? ORDER BY draft_index ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID, round)
	if err != nil {
		return nil, fmt.Errorf("listing drafts by round: %w", err)
	}
	defer rows.Close()
	return r.scanDrafts(rows)
}

// MaxRound returns the highest round stored for the session, or -1 when
// no drafts exist yet.
func (r *SQLiteDraftRepo) MaxRound(ctx context.Context, sessionID string) (int, error) {
	query := `SELECT COALESCE(MAX(round), -1) FROM drafts WHERE session_id = ?`
	var round int
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&round); err != nil {
		return 0, fmt.Errorf("finding max round: %w", err)
	}
	return round, nil
}

func (r *SQLiteDraftRepo) scanDraft(row *sql.Row) (*domain.Draft, error) {
	var d domain.Draft
	var createdAt string

	err := row.Scan(&d.ID, &d.SessionID, &d.Round, &d.DraftIndex,
		&d.Title, &d.Angle, &d.Content, &d.WordCount, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("draft: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning draft: %w", err)
	}

	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &d, nil
}

func (r *SQLiteDraftRepo) scanDrafts(rows *sql.Rows) ([]*domain.Draft, error) {
	var drafts []*domain.Draft
	for rows.Next() {
		var d domain.Draft
		var createdAt string

		err := rows.Scan(&d.ID, &d.SessionID, &d.Round, &d.DraftIndex,
			&d.Title, &d.Angle, &d.Content, &d.WordCount, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning draft row: %w", err)
		}

		d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		drafts = append(drafts, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}
	return drafts, nil
}
