// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/order-lottery/auth"
	"github.com/danielhkuo/order-lottery/draw"
)

// Session is the state of one operator's browser: the two access gates,
// the drawing round and the pending destructive actions. Callers hold Mu
// while reading or changing any field.
type Session struct {
	Mu sync.Mutex

	ID       string
	lastSeen time.Time

	DrawGate auth.Gate
	PoolGate auth.Gate

	Round     *draw.Round
	LastRound *draw.Result

	ResetHistory auth.Confirmation
	SavePool     auth.Confirmation
	ResetPool    auth.Confirmation
}

// RoundFor returns the session round, creating it over platforms with a
// target of one on first use. A round nobody configured yet follows
// platforms on later calls. Callers hold Mu.
func (s *Session) RoundFor(platforms []string, opts ...draw.Option) *draw.Round {
	if s.Round == nil {
		s.Round = draw.NewRound(platforms, draw.MinTarget, opts...)
	} else {
		s.Round.FollowPool(platforms)
	}
	return s.Round
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id, or a new session under a fresh id when
// id is empty or unknown.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[id]
	if s == nil {
		s = &Session{ID: uuid.NewString()}
		m.sessions[s.ID] = s
	}
	s.lastSeen = m.now()
	return s
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
