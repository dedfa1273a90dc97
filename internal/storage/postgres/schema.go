package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS daily_insights (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		content TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS daily_insights_created_at_idx ON daily_insights (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS chat_logs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		question TEXT NOT NULL,
		answer TEXT NOT NULL DEFAULT ''
	)`,
	// md5 keeps long questions within the b-tree row limit
	`CREATE UNIQUE INDEX IF NOT EXISTS chat_logs_question_idx ON chat_logs (md5(question))`,
	`CREATE INDEX IF NOT EXISTS chat_logs_created_at_idx ON chat_logs (created_at)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	return nil
}
