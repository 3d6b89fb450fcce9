package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the tracking database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		referrer TEXT,
		referrer_host TEXT,
		landing_path TEXT,
		utm_params TEXT,
		channel TEXT,
		user_agent TEXT,
		device_type TEXT,
		browser_family TEXT,
		browser_version TEXT,
		os_family TEXT,
		os_version TEXT,
		is_bot INTEGER NOT NULL DEFAULT 0,
		device_info TEXT,
		last_seen_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS page_visits (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		path TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP,
		duration_ms INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		form_id TEXT NOT NULL,
		path TEXT,
		fields TEXT,
		channel TEXT,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		company TEXT,
		interest TEXT,
		message TEXT,
		session_id TEXT,
		channel TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_channel ON sessions(channel)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_page_visits_identity ON page_visits(session_id, path, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_page_visits_session ON page_visits(session_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_identity ON submissions(session_id, form_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)`,
}

// CreateSchema executes all necessary queries to build the tracking tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
