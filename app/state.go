// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
	"github.com/danielhkuo/order-lottery/store"
)

// State owns the process-wide order pool and winner ledger together with
// the store backing them.
type State struct {
	mu      sync.Mutex
	store   store.Store
	pool    *pool.Pool
	winners []ledger.Record
	loc     *time.Location
	now     func() time.Time
}

// New loads the pool and ledger from st. Load failures are not fatal: the
// pool falls back to pool.Default, the ledger to empty, and the failures
// are returned as warnings.
func New(ctx context.Context, st store.Store, loc *time.Location) (*State, []error) {
	if loc == nil {
		loc = time.Local
	}
	s := &State{store: st, loc: loc, now: time.Now}

	var warnings []error
	p, err := loadPool(ctx, st)
	if err != nil {
		warnings = append(warnings, err)
	}
	s.pool = p

	winners, err := loadWinners(ctx, st)
	if err != nil {
		warnings = append(warnings, err)
	}
	s.winners = winners

	return s, warnings
}

func loadPool(ctx context.Context, st store.Store) (*pool.Pool, error) {
	p, err := st.LoadPool(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return pool.Default(), nil
		}
		logrus.WithError(err).Warn("加载订单池初始化数据失败")
		return pool.Default(), err
	}
	return p, nil
}

func loadWinners(ctx context.Context, st store.Store) ([]ledger.Record, error) {
	winners, err := st.LoadWinners(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []ledger.Record{}, nil
		}
		logrus.WithError(err).Warn("加载抽奖记录失败")
		return []ledger.Record{}, err
	}
	return winners, nil
}

// Location is the zone used for every timestamp the service produces.
func (s *State) Location() *time.Location {
	return s.loc
}

// Now returns the current time in Location.
func (s *State) Now() time.Time {
	return s.now().In(s.loc)
}

// SetClock replaces the time source. Intended for tests.
func (s *State) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// WithPool runs fn with the live pool under the state lock. fn must not
// retain p.
func (s *State) WithPool(fn func(p *pool.Pool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.pool)
}

// Pool returns a copy of the current pool.
func (s *State) Pool() *pool.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Clone()
}

// QueryOrder finds which platform lists order.
func (s *State) QueryOrder(order string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Find(order)
}

// QueryWinner returns the ledger record for order.
func (s *State) QueryWinner(order string) (ledger.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Find(s.winners, order)
}

// Winners returns the ledger, latest first.
func (s *State) Winners() []ledger.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Newest(s.winners)
}
