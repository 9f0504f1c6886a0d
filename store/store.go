// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
)

var (
	ErrNotFound   = errors.New("no saved data")
	ErrCorrupt    = errors.New("saved data is corrupt")
	ErrPermission = errors.New("permission denied")
)

// Store persists the order pool snapshot and the winner ledger. Saves
// overwrite the previous contents wholesale.
type Store interface {
	LoadPool(ctx context.Context) (*pool.Pool, error)
	SavePool(ctx context.Context, p *pool.Pool) error
	LoadWinners(ctx context.Context) ([]ledger.Record, error)
	SaveWinners(ctx context.Context, records []ledger.Record) error
	Close() error
}

// Store types accepted by Open.
const (
	TypeJSON     = "json"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open returns the store for storeType. dataDir is used by the JSON store,
// dsn by the SQL stores.
func Open(ctx context.Context, storeType, dataDir, dsn string) (Store, error) {
	switch storeType {
	case "", TypeJSON:
		return NewFileStore(dataDir), nil
	case TypeSQLite, TypePostgres:
		return OpenSQL(ctx, storeType, dsn)
	}
	return nil, fmt.Errorf("unknown store type %q", storeType)
}
