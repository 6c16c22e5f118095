package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLitePreferenceRepo implements per-user preference storage using a
// SQLite database. Preferences are keyed strings, last write wins.
type SQLitePreferenceRepo struct {
	db *sql.DB
}

// NewSQLitePreferenceRepo creates a new SQLitePreferenceRepo.
func NewSQLitePreferenceRepo(db *sql.DB) *SQLitePreferenceRepo {
	return &SQLitePreferenceRepo{db: db}
}

// Set stores the value under (userID, key), replacing any prior value.
func (r *SQLitePreferenceRepo) Set(ctx context.Context, userID, key, value string) error {
	query := `INSERT INTO preferences (id, user_id, key, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		userID,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("setting preference %q: %w", key, err)
	}
	return nil
}

// Get returns the preference stored under (userID, key).
func (r *SQLitePreferenceRepo) Get(ctx context.Context, userID, key string) (*domain.Preference, error) {
	query := `SELECT id, user_id, key, value, updated_at FROM preferences
		WHERE user_id = ? AND key = ?`
	row := r.db.QueryRowContext(ctx, query, userID, key)

	var p domain.Preference
	var updatedAt string
	err := row.Scan(&p.ID, &p.UserID, &p.Key, &p.Value, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("preference %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning preference: %w", err)
	}

	p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
