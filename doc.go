// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the order lottery server.

The lottery draws winning order numbers from a pool of e-commerce orders
grouped by platform (抖音, 天猫, 京东, ...). Customers check whether their
order is in the pool and whether it has won; operators unlock the drawing
area to run rounds and the pool area to import orders.

# Starting the Server

The two password hashes are required:

	DRAW_PASSWORD_HASH=... POOL_PASSWORD_HASH=... go run .

Or with flags:

	go run . -p 3318 -draw-hash ... -pool-hash ... -data-dir ./data

# Configuration

Required settings:

  - DRAW_PASSWORD_HASH (-draw-hash): drawing area password hash
  - POOL_PASSWORD_HASH (-pool-hash): pool management password hash

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - STORE_TYPE (-t): json, sqlite or postgres (default: json)
  - DATA_DIR (-data-dir): JSON store directory (default: data)
  - DATABASE_URL (-d): DSN for the sqlite and postgres stores
  - TIME_ZONE (-tz): default Asia/Shanghai
  - ROLL_INTERVAL (-roll-interval): default 50ms
  - LOG_LEVEL (-log-level): default info
  - TRUST_PROXY (-trust-proxy): default false, honour X-Forwarded-For

A .env file in the working directory is read if present.

Unlock attempts are never limited. Pool imports are limited to a burst of
ten per session, refilled one every three seconds. Idle sessions are
dropped after twelve hours.

# Architecture

  - pool, ledger, draw: order pool, winner ledger and drawing rounds
  - auth: password gates and two-step confirmations
  - app: shared pool and ledger state over a store
  - store, db: JSON files or SQL persistence
  - importer, export: CSV/XLSX/text import and CSV/XLSX export
  - session: per-browser gates and rounds
  - handlers, router, middleware, models: HTTP API
  - metrics, logger, cliparse: Prometheus, logrus, configuration

See package documentation for each component.
*/
package main
