package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLiteStyleRepo implements writing style and sample persistence using
// a SQLite database.
type SQLiteStyleRepo struct {
	db *sql.DB
}

// NewSQLiteStyleRepo creates a new SQLiteStyleRepo.
func NewSQLiteStyleRepo(db *sql.DB) *SQLiteStyleRepo {
	return &SQLiteStyleRepo{db: db}
}

const styleColumns = `id, user_id, name, description, tone, created_at, updated_at`

func (r *SQLiteStyleRepo) Create(ctx context.Context, s *domain.WritingStyle) error {
	query := `INSERT INTO writing_styles (` + styleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.Name,
		s.Description,
		s.Tone,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting writing style: %w", err)
	}
	return nil
}

func (r *SQLiteStyleRepo) GetByID(ctx context.Context, id string) (*domain.WritingStyle, error) {
	query := `SELECT ` + styleColumns + ` FROM writing_styles WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var s domain.WritingStyle
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.Tone, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("writing style: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning writing style: %w", err)
	}

	s.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

func (r *SQLiteStyleRepo) ListByUser(ctx context.Context, userID string) ([]*domain.WritingStyle, error) {
	query := `SELECT ` + styleColumns + ` FROM writing_styles
		WHERE user_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing writing styles: %w", err)
	}
	defer rows.Close()

	var styles []*domain.WritingStyle
	for rows.Next() {
		var s domain.WritingStyle
		var createdAt, updatedAt string

		err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.Tone, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning writing style row: %w", err)
		}

		s.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		styles = append(styles, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating writing styles: %w", err)
	}
	return styles, nil
}

func (r *SQLiteStyleRepo) AddSample(ctx context.Context, sample *domain.StyleSample) error {
	query := `INSERT INTO style_samples (id, style_id, title, content, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		sample.ID,
		sample.StyleID,
		sample.Title,
		sample.Content,
		sample.WordCount,
		sample.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting style sample: %w", err)
	}
	return nil
}

func (r *SQLiteStyleRepo) ListSamples(ctx context.Context, styleID string) ([]*domain.StyleSample, error) {
	query := `SELECT id, style_id, title, content, word_count, created_at
		FROM style_samples WHERE style_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, styleID)
	if err != nil {
		return nil, fmt.Errorf("listing style samples: %w", err)
	}
	defer rows.Close()

	var samples []*domain.StyleSample
	for rows.Next() {
		var s domain.StyleSample
		var createdAt string

		err := rows.Scan(&s.ID, &s.StyleID, &s.Title, &s.Content, &s.WordCount, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning style sample row: %w", err)
		}

		s.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		samples = append(samples, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating style samples: %w", err)
	}
	return samples, nil
}
