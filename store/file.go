// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
)

const (
	PoolFile    = "initial_order_pool.json"
	WinnersFile = "winners.json"

	fileMode = 0o644
)

// FileStore keeps the pool and the ledger as indented JSON files in one
// directory. Writes go to a temporary file renamed into place.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) PoolPath() string { return filepath.Join(s.dir, PoolFile) }

func (s *FileStore) WinnersPath() string { return filepath.Join(s.dir, WinnersFile) }

func (s *FileStore) LoadPool(ctx context.Context) (*pool.Pool, error) {
	p := pool.New()
	if err := readJSON(s.PoolPath(), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FileStore) SavePool(ctx context.Context, p *pool.Pool) error {
	if p == nil {
		return fmt.Errorf("save order pool: nil pool")
	}
	return writeJSON(s.PoolPath(), p)
}

func (s *FileStore) LoadWinners(ctx context.Context) ([]ledger.Record, error) {
	var records []ledger.Record
	if err := readJSON(s.WinnersPath(), &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []ledger.Record{}
	}
	return records, nil
}

func (s *FileStore) SaveWinners(ctx context.Context, records []ledger.Record) error {
	if records == nil {
		records = []ledger.Record{}
	}
	return writeJSON(s.WinnersPath(), records)
}

func (s *FileStore) Close() error { return nil }

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return classify(path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return classify(dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return classify(path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return classify(path, err)
	}
	// CreateTemp opens with 0600 and the rename keeps it
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return classify(path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return classify(path, err)
	}
	if err := tmp.Close(); err != nil {
		return classify(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return classify(path, err)
	}
	return nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return fmt.Errorf("%s: %w", path, err)
}
