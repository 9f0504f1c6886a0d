// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
)

// PlatformSummary describes one platform of the pool for display.
type PlatformSummary struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Orders []string `json:"orders"`
	Lines  []string `json:"lines"`
}

// PoolSummary describes the whole pool for display.
type PoolSummary struct {
	ActivePlatforms int               `json:"active_platforms"`
	TotalOrders     int               `json:"total_orders"`
	Platforms       []PlatformSummary `json:"platforms"`
}

const ordersPerLine = 5

func summarize(p *pool.Pool) PoolSummary {
	sum := PoolSummary{
		ActivePlatforms: p.ActivePlatforms(),
		TotalOrders:     p.Total(),
	}
	for _, name := range p.Platforms() {
		orders := p.Orders(name)
		sum.Platforms = append(sum.Platforms, PlatformSummary{
			Name:   name,
			Count:  len(orders),
			Orders: orders,
			Lines:  pool.Chunk(orders, ordersPerLine),
		})
	}
	return sum
}

// PoolSummary summarises the live pool.
func (s *State) PoolSummary() PoolSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.pool)
}

// Import merges records into the live pool. The pool is swapped only
// when pool.Import says so; nothing is persisted.
func (s *State) Import(records []pool.Record, mode pool.Mode) (pool.ImportStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, stats, applied := pool.Import(s.pool, records, mode)
	if applied {
		s.pool = next
	}
	logrus.WithFields(logrus.Fields{
		"mode":      mode,
		"added":     stats.Added,
		"duplicate": stats.Duplicate,
		"errored":   stats.Errored,
		"applied":   applied,
	}).Info("order import")
	return stats, applied
}

// SavePoolAsInitial writes the live pool as the startup snapshot, then
// reads it back and summarises what was stored.
func (s *State) SavePoolAsInitial(ctx context.Context) (PoolSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SavePool(ctx, s.pool); err != nil {
		logrus.WithError(err).Error("保存订单池初始化数据失败")
		return PoolSummary{}, fmt.Errorf("save order pool: %w", err)
	}
	reloaded, err := s.store.LoadPool(ctx)
	if err != nil {
		return PoolSummary{}, fmt.Errorf("reload order pool: %w", err)
	}
	return summarize(reloaded), nil
}

// ResetPool empties the pool back to the default platforms and writes it
// as the startup snapshot. The live pool is reset even if the write
// fails.
func (s *State) ResetPool(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool = pool.Default()
	if err := s.store.SavePool(ctx, s.pool); err != nil {
		logrus.WithError(err).Error("清空订单池文件失败")
		return fmt.Errorf("reset order pool: %w", err)
	}
	logrus.Info("order pool reset")
	return nil
}

// CommitWinners adds the records not yet in the ledger and persists the
// ledger when something was added. added == 0 is not an error.
func (s *State) CommitWinners(ctx context.Context, records []ledger.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, added := ledger.Commit(s.winners, records)
	s.winners = next
	if added == 0 {
		return 0, nil
	}
	if err := s.store.SaveWinners(ctx, s.winners); err != nil {
		logrus.WithError(err).Error("保存抽奖记录失败")
		return added, fmt.Errorf("save winners: %w", err)
	}
	logrus.WithField("added", added).Info("winners committed")
	return added, nil
}

// ResetWinners clears the ledger and persists the empty list.
func (s *State) ResetWinners(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.winners = []ledger.Record{}
	if err := s.store.SaveWinners(ctx, s.winners); err != nil {
		logrus.WithError(err).Error("清空抽奖记录失败")
		return fmt.Errorf("reset winners: %w", err)
	}
	logrus.Info("winner ledger reset")
	return nil
}
