// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
	"github.com/danielhkuo/order-lottery/store"
)

var shanghai = time.FixedZone("CST", 8*3600)

// failingStore loads nothing and refuses every write.
type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) LoadPool(context.Context) (*pool.Pool, error) {
	return nil, f.loadErr
}

func (f *failingStore) SavePool(context.Context, *pool.Pool) error {
	f.saves++
	return f.saveErr
}

func (f *failingStore) LoadWinners(context.Context) ([]ledger.Record, error) {
	return nil, f.loadErr
}

func (f *failingStore) SaveWinners(context.Context, []ledger.Record) error {
	f.saves++
	return f.saveErr
}

func (f *failingStore) Close() error { return nil }

func newFileState(t *testing.T) (*State, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	s, warnings := New(context.Background(), fs, shanghai)
	require.Empty(t, warnings)
	return s, fs
}

func TestNew_MissingFilesUseDefaults(t *testing.T) {
	s, _ := newFileState(t)
	assert.Equal(t, pool.DefaultPlatforms, s.Pool().Platforms())
	assert.NotNil(t, s.Winners())
	assert.Empty(t, s.Winners())
}

func TestNew_CorruptFilesWarn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.PoolFile), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.WinnersFile), []byte("x"), 0o644))

	s, warnings := New(context.Background(), store.NewFileStore(dir), shanghai)
	assert.Len(t, warnings, 2)
	assert.Equal(t, pool.DefaultPlatforms, s.Pool().Platforms())
	assert.Empty(t, s.Winners())
}

func TestImportAndQuery(t *testing.T) {
	s, _ := newFileState(t)

	stats, applied := s.Import([]pool.Record{{Platform: "抖音", OrderNumber: "D2023001"}}, pool.Append)
	require.True(t, applied)
	assert.Equal(t, 1, stats.Added)

	platform, found := s.QueryOrder("D2023001")
	assert.True(t, found)
	assert.Equal(t, "抖音", platform)

	_, found = s.QueryOrder("X")
	assert.False(t, found)

	sum := s.PoolSummary()
	assert.Equal(t, 1, sum.ActivePlatforms)
	assert.Equal(t, 1, sum.TotalOrders)
	assert.Len(t, sum.Platforms, len(pool.DefaultPlatforms))
}

func TestImport_NotAppliedKeepsPool(t *testing.T) {
	s, _ := newFileState(t)
	s.Import([]pool.Record{{Platform: "A", OrderNumber: "1"}}, pool.Append)

	_, applied := s.Import([]pool.Record{{Platform: "A", OrderNumber: "1"}}, pool.Append)
	assert.False(t, applied)
	assert.Equal(t, 1, s.Pool().Total())
}

func TestSavePoolAsInitial(t *testing.T) {
	s, fs := newFileState(t)
	s.Import([]pool.Record{{Platform: "京东", OrderNumber: "J1"}, {Platform: "京东", OrderNumber: "J2"}}, pool.Append)

	sum, err := s.SavePoolAsInitial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ActivePlatforms)
	assert.Equal(t, 2, sum.TotalOrders)

	reloaded, err := fs.LoadPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"J1", "J2"}, reloaded.Orders("京东"))

	// a fresh process picks up the saved snapshot
	s2, warnings := New(context.Background(), fs, shanghai)
	require.Empty(t, warnings)
	platform, found := s2.QueryOrder("J2")
	assert.True(t, found)
	assert.Equal(t, "京东", platform)
}

func TestSavePoolAsInitial_PermissionError(t *testing.T) {
	st := &failingStore{loadErr: store.ErrNotFound, saveErr: store.ErrPermission}
	s, _ := New(context.Background(), st, shanghai)

	_, err := s.SavePoolAsInitial(context.Background())
	assert.ErrorIs(t, err, store.ErrPermission)
}

func TestResetPool(t *testing.T) {
	s, fs := newFileState(t)
	s.Import([]pool.Record{{Platform: "X", OrderNumber: "1"}}, pool.Replace)
	_, err := s.SavePoolAsInitial(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.ResetPool(context.Background()))
	assert.Equal(t, pool.DefaultPlatforms, s.Pool().Platforms())
	assert.Equal(t, 0, s.Pool().Total())

	saved, err := fs.LoadPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pool.DefaultPlatforms, saved.Platforms())
}

func TestResetPool_WriteFailureStillResetsMemory(t *testing.T) {
	st := &failingStore{loadErr: store.ErrNotFound, saveErr: errors.New("disk full")}
	s, _ := New(context.Background(), st, shanghai)
	s.Import([]pool.Record{{Platform: "X", OrderNumber: "1"}}, pool.Replace)

	assert.Error(t, s.ResetPool(context.Background()))
	assert.Equal(t, 0, s.Pool().Total())
}

func TestCommitWinners(t *testing.T) {
	s, fs := newFileState(t)
	ctx := context.Background()
	rec := ledger.Record{OrderNumber: "D1", Platform: "抖音", Time: "2024-05-01 10:00:00"}

	added, err := s.CommitWinners(ctx, []ledger.Record{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = s.CommitWinners(ctx, []ledger.Record{rec})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	got, found := s.QueryWinner("D1")
	require.True(t, found)
	assert.Equal(t, rec, got)

	saved, err := fs.LoadWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Record{rec}, saved)
}

func TestCommitWinners_NothingAddedSkipsSave(t *testing.T) {
	st := &failingStore{loadErr: store.ErrNotFound}
	s, _ := New(context.Background(), st, shanghai)

	added, err := s.CommitWinners(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, st.saves)
}

func TestResetWinners(t *testing.T) {
	s, fs := newFileState(t)
	ctx := context.Background()
	_, err := s.CommitWinners(ctx, []ledger.Record{{OrderNumber: "1", Platform: "A", Time: "t"}})
	require.NoError(t, err)

	require.NoError(t, s.ResetWinners(ctx))
	assert.Empty(t, s.Winners())

	data, err := os.ReadFile(fs.WinnersPath())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestNow(t *testing.T) {
	s, _ := newFileState(t)
	s.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	assert.Equal(t, 8, s.Now().Hour())
}
