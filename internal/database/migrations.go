package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS collections (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		depositor UUID NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		date_uploaded TIMESTAMP WITH TIME ZONE NOT NULL,
		date_modified TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		depositor UUID NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	// Membership rows go with their collection, never with the member side
	// of a collection delete. Deleting a member drops it from every list.
	`CREATE TABLE IF NOT EXISTS collection_members (
		collection_id UUID NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (collection_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_collections_depositor ON collections(depositor)`,
	`CREATE INDEX IF NOT EXISTS idx_members_depositor ON members(depositor)`,
	`CREATE INDEX IF NOT EXISTS idx_collection_members_member_id ON collection_members(member_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
