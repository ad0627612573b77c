package database

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS recommendations (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		youtube_link TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_score ON recommendations (score DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS recommendations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		youtube_link TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_score ON recommendations (score DESC)`,
}

// Migrate creates the recommendations table when it is missing.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts := sqliteSchema
	if dialect == Postgres {
		stmts = postgresSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s schema: %w", dialect, err)
		}
	}
	return nil
}
