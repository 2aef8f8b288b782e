package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// These indexes enable efficient full-text search over plan intents and
// styling agent reasoning, neither of which is worth a btree index.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_plan_records_intent_gin
		ON plan_records USING gin(to_tsvector('english', intent))`)
	if err != nil {
		return fmt.Errorf("failed to create intent GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_styling_audits_reasoning_gin
		ON styling_audits USING gin(to_tsvector('english', COALESCE(agent_reasoning, '')))`)
	if err != nil {
		return fmt.Errorf("failed to create agent_reasoning GIN index: %w", err)
	}

	return nil
}
