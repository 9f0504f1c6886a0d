// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL store.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		return err
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The statements are plain SQL accepted by both SQLite and PostgreSQL.

# Tables

  - platform: Pool platforms with their display position
  - pool_order: Order numbers per platform, unique within a platform
  - winner: The winner ledger, unique by order number
  - store_meta: Save markers ("pool_saved_at", "winners_saved_at")

A missing save marker means the data set was never saved, which the store
reports as not found so callers fall back to defaults.
*/
package db
