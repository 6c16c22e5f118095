package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent; ALTER
// TABLE additions that already exist are tolerated so the full list can
// re-run on every startup.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		plan            TEXT NOT NULL DEFAULT 'free'
		                CHECK(plan IN ('free','pro','team')),
		created_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS writing_styles (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		tone        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_writing_styles_user ON writing_styles(user_id)`,

	`CREATE TABLE IF NOT EXISTS style_samples (
		id         TEXT PRIMARY KEY,
		style_id   TEXT NOT NULL REFERENCES writing_styles(id) ON DELETE CASCADE,
		title      TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		word_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_style_samples_style ON style_samples(style_id)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_type            TEXT NOT NULL
		                     CHECK(task_type IN ('essay','review','newsletter','landing_page','blog_post')),
		topic                TEXT NOT NULL,
		status               TEXT NOT NULL DEFAULT 'interview',
		style_id             TEXT NOT NULL DEFAULT '',
		interview_summary    TEXT NOT NULL DEFAULT '',
		key_material         TEXT NOT NULL DEFAULT '[]',
		outline              TEXT NOT NULL DEFAULT '[]',
		selected_draft_index INTEGER NOT NULL DEFAULT -1,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,

	`CREATE TABLE IF NOT EXISTS drafts (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		round       INTEGER NOT NULL DEFAULT 0,
		draft_index INTEGER NOT NULL,
		title       TEXT NOT NULL,
		angle       TEXT NOT NULL,
		content     TEXT NOT NULL,
		word_count  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		UNIQUE(session_id, round, draft_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_session ON drafts(session_id)`,

	`CREATE TABLE IF NOT EXISTS highlights (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		draft_index  INTEGER NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset   INTEGER NOT NULL,
		text         TEXT NOT NULL DEFAULT '',
		sentiment   TEXT NOT NULL CHECK(sentiment IN ('like','flag')),
		label       TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_highlights_session ON highlights(session_id)`,

	`CREATE TABLE IF NOT EXISTS interview_messages (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		role         TEXT NOT NULL,
		content      TEXT NOT NULL,
		thought_json TEXT NOT NULL DEFAULT '',
		search_json  TEXT NOT NULL DEFAULT '',
		ready_json   TEXT NOT NULL DEFAULT '',
		ordering     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_messages_session ON interview_messages(session_id)`,

	`CREATE TABLE IF NOT EXISTS feedback (
		id            TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		draft_index   INTEGER NOT NULL DEFAULT -1,
		accepted      INTEGER NOT NULL DEFAULT 0,
		action        TEXT NOT NULL CHECK(action IN ('accept','reject','dismiss')),
		feedback_type TEXT NOT NULL CHECK(feedback_type IN ('suggestion','comment')),
		rule_id       TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_session ON feedback(session_id)`,

	`CREATE TABLE IF NOT EXISTS preferences (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_preferences_user_key ON preferences(user_id, key)`,
}
