// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema creates all tables needed by the SQL store.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, conn *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Statements run one at a time; not every driver accepts several per Exec.
var schema = []string{
	// Platforms of the order pool, in display order
	`CREATE TABLE IF NOT EXISTS platform (
    name TEXT PRIMARY KEY,
    position INTEGER NOT NULL
)`,

	// Order numbers per platform
	`CREATE TABLE IF NOT EXISTS pool_order (
    platform TEXT NOT NULL,
    order_number TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (platform, order_number)
)`,

	`CREATE INDEX IF NOT EXISTS idx_pool_order_number ON pool_order(order_number)`,

	// Winner ledger
	`CREATE TABLE IF NOT EXISTS winner (
    order_number TEXT PRIMARY KEY,
    platform TEXT NOT NULL,
    selected_at TEXT NOT NULL,
    position INTEGER NOT NULL
)`,

	// Records whether the pool and the ledger have ever been saved
	`CREATE TABLE IF NOT EXISTS store_meta (
    meta_key TEXT PRIMARY KEY,
    meta_value TEXT NOT NULL
)`,
}
