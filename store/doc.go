// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists the order pool snapshot and the winner ledger.

# Backends

	s, err := store.Open(ctx, cfg.StoreType, cfg.DataDir, cfg.DatabaseURL)

  - json (default): initial_order_pool.json and winners.json in DataDir,
    indented two spaces, non-ASCII written as-is
  - sqlite: modernc.org/sqlite, DatabaseURL is a file path or ":memory:"
  - postgres: lib/pq, DatabaseURL is a connection string

# Errors

Loads return ErrNotFound when nothing was ever saved and ErrCorrupt when
a file cannot be decoded. Writes that fail on file permissions wrap
ErrPermission so callers can tell the operator to check the directory.
*/
package store
