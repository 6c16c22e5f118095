package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samefarrar/inkwell/internal/domain"
)

// SQLiteSessionRepo implements session persistence using a SQLite database.
type SQLiteSessionRepo struct {
	db *sql.DB
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(db *sql.DB) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

const sessionColumns = `id, user_id, task_type, topic, status, style_id,
	interview_summary, key_material, outline, selected_draft_index, created_at, updated_at`

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	keyMaterial, err := json.Marshal(emptyIfNilStrings(s.KeyMaterial))
	if err != nil {
		return fmt.Errorf("marshaling key material: %w", err)
	}
	outline, err := json.Marshal(emptyIfNilNodes(s.Outline))
	if err != nil {
		return fmt.Errorf("marshaling outline: %w", err)
	}

	query := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		string(s.TaskType),
		s.Topic,
		string(s.Status),
		s.StyleID,
		s.InterviewSummary,
		string(keyMaterial),
		string(outline),
		s.SelectedDraftIndex,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanSession(row)
}

func (r *SQLiteSessionRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions by user: %w", err)
	}
	defer rows.Close()
	return r.scanSessions(rows)
}

// UpdateStatus sets only the lifecycle status.
func (r *SQLiteSessionRepo) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	query := `UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}
	return nil
}

// UpdateMaterial persists the interview outcome (summary, key material,
// outline) together with the new status when drafting begins.
func (r *SQLiteSessionRepo) UpdateMaterial(ctx context.Context, s *domain.Session) error {
	keyMaterial, err := json.Marshal(emptyIfNilStrings(s.KeyMaterial))
	if err != nil {
		return fmt.Errorf("marshaling key material: %w", err)
	}
	outline, err := json.Marshal(emptyIfNilNodes(s.Outline))
	if err != nil {
		return fmt.Errorf("marshaling outline: %w", err)
	}

	query := `UPDATE sessions SET interview_summary = ?, key_material = ?,
		outline = ?, status = ?, updated_at = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		s.InterviewSummary,
		string(keyMaterial),
		string(outline),
		string(s.Status),
		time.Now().UTC().Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session material: %w", err)
	}
	return nil
}

// UpdateSelectedDraft records which draft the user focused on.
func (r *SQLiteSessionRepo) UpdateSelectedDraft(ctx context.Context, id string, draftIndex int) error {
	query := `UPDATE sessions SET selected_draft_index = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, draftIndex, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating selected draft: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) scanSession(row *sql.Row) (*domain.Session, error) {
	var s domain.Session
	var taskType, status, keyMaterial, outline, createdAt, updatedAt string

	err := row.Scan(
		&s.ID, &s.UserID, &taskType, &s.Topic, &status, &s.StyleID,
		&s.InterviewSummary, &keyMaterial, &outline, &s.SelectedDraftIndex,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return r.populateSession(&s, taskType, status, keyMaterial, outline, createdAt, updatedAt)
}

func (r *SQLiteSessionRepo) scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		var s domain.Session
		var taskType, status, keyMaterial, outline, createdAt, updatedAt string

		err := rows.Scan(
			&s.ID, &s.UserID, &taskType, &s.Topic, &status, &s.StyleID,
			&s.InterviewSummary, &keyMaterial, &outline, &s.SelectedDraftIndex,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		session, err := r.populateSession(&s, taskType, status, keyMaterial, outline, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *SQLiteSessionRepo) populateSession(s *domain.Session, taskType, status, keyMaterial, outline, createdAt, updatedAt string) (*domain.Session, error) {
	s.TaskType = domain.TaskType(taskType)
	s.Status = domain.SessionStatus(status)

	if err := json.Unmarshal([]byte(keyMaterial), &s.KeyMaterial); err != nil {
		return nil, fmt.Errorf("parsing key material: %w", err)
	}
	if err := json.Unmarshal([]byte(outline), &s.Outline); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}

	var parseErr error
	s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	s.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return s, nil
}

func emptyIfNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func emptyIfNilNodes(in []domain.OutlineNode) []domain.OutlineNode {
	if in == nil {
		return []domain.OutlineNode{}
	}
	return in
}
