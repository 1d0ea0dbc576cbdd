// Package database provides lead store schema creation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the lead store schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
// Every statement is idempotent so it runs on each startup.
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

// Timestamps are stored as RFC3339Nano text so libSQL and SQLite agree.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		organization_name TEXT,
		website_url TEXT,
		campaign_id TEXT,
		consent INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		download_count INTEGER NOT NULL DEFAULT 0,
		last_download TEXT,
		ip_address TEXT,
		user_agent TEXT
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(LOWER(email))`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)`,
}
