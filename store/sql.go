// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/order-lottery/db"
	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
)

const (
	metaPoolSaved    = "pool_saved_at"
	metaWinnersSaved = "winners_saved_at"
)

// SQLStore keeps the pool and the ledger in SQLite or PostgreSQL. Each
// save replaces the previous rows inside one transaction.
type SQLStore struct {
	db *sqlx.DB
}

type winnerRow struct {
	OrderNumber string `db:"order_number"`
	Platform    string `db:"platform"`
	SelectedAt  string `db:"selected_at"`
}

type orderRow struct {
	Platform    string `db:"platform"`
	OrderNumber string `db:"order_number"`
}

// OpenSQL connects with driver ("sqlite" or "postgres") and creates the
// schema.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("database URL required for SQL store")
	}
	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == TypeSQLite {
		// one connection keeps in-memory databases shared and serialises writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}
	return NewSQLStore(ctx, conn)
}

// NewSQLStore wraps an open connection and creates the schema.
func NewSQLStore(ctx context.Context, conn *sqlx.DB) (*SQLStore, error) {
	if err := db.CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLStore{db: conn}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) LoadPool(ctx context.Context) (*pool.Pool, error) {
	if err := s.requireSaved(ctx, metaPoolSaved); err != nil {
		return nil, err
	}

	var platforms []string
	err := s.db.SelectContext(ctx, &platforms, `SELECT name FROM platform ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load platforms: %w", err)
	}

	var orders []orderRow
	err = s.db.SelectContext(ctx, &orders, `SELECT platform, order_number FROM pool_order ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	p := pool.New()
	for _, name := range platforms {
		p.AddPlatform(name)
	}
	for _, o := range orders {
		p.Add(o.Platform, o.OrderNumber)
	}
	return p, nil
}

func (s *SQLStore) SavePool(ctx context.Context, p *pool.Pool) error {
	if p == nil {
		return fmt.Errorf("save order pool: nil pool")
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pool_order`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM platform`); err != nil {
			return err
		}

		insPlatform := tx.Rebind(`INSERT INTO platform (name, position) VALUES (?, ?)`)
		insOrder := tx.Rebind(`INSERT INTO pool_order (platform, order_number, position) VALUES (?, ?, ?)`)
		pos := 0
		for i, name := range p.Platforms() {
			if _, err := tx.ExecContext(ctx, insPlatform, name, i); err != nil {
				return fmt.Errorf("insert platform %q: %w", name, err)
			}
			for _, order := range p.Orders(name) {
				if _, err := tx.ExecContext(ctx, insOrder, name, order, pos); err != nil {
					return fmt.Errorf("insert order %q: %w", order, err)
				}
				pos++
			}
		}
		return markSaved(ctx, tx, metaPoolSaved)
	})
}

func (s *SQLStore) LoadWinners(ctx context.Context) ([]ledger.Record, error) {
	if err := s.requireSaved(ctx, metaWinnersSaved); err != nil {
		return nil, err
	}

	var rows []winnerRow
	err := s.db.SelectContext(ctx, &rows, `SELECT order_number, platform, selected_at FROM winner ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}

	records := make([]ledger.Record, len(rows))
	for i, r := range rows {
		records[i] = ledger.Record{OrderNumber: r.OrderNumber, Platform: r.Platform, Time: r.SelectedAt}
	}
	return records, nil
}

func (s *SQLStore) SaveWinners(ctx context.Context, records []ledger.Record) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM winner`); err != nil {
			return err
		}
		ins := tx.Rebind(`INSERT INTO winner (order_number, platform, selected_at, position) VALUES (?, ?, ?, ?)`)
		for i, r := range records {
			if _, err := tx.ExecContext(ctx, ins, r.OrderNumber, r.Platform, r.Time, i); err != nil {
				return fmt.Errorf("insert winner %q: %w", r.OrderNumber, err)
			}
		}
		return markSaved(ctx, tx, metaWinnersSaved)
	})
}

func (s *SQLStore) requireSaved(ctx context.Context, key string) error {
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT meta_value FROM store_meta WHERE meta_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	return nil
}

func markSaved(ctx context.Context, tx *sqlx.Tx, key string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO store_meta (meta_key, meta_value) VALUES (?, ?)
		ON CONFLICT (meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`), key, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
