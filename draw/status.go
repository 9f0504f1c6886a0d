// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import "github.com/danielhkuo/order-lottery/pool"

// Status is a read-only view of a round for display.
type Status struct {
	RoundID       string    `json:"round_id"`
	Platforms     []string  `json:"platforms"`
	Target        int       `json:"target"`
	Selected      int       `json:"selected"`
	Eligible      int       `json:"eligible"`
	TotalOrders   int       `json:"total_orders"`
	Rolling       bool      `json:"rolling"`
	Current       Candidate `json:"current"`
	Entries       []Entry   `json:"entries"`
	CanStart      bool      `json:"can_start"`
	BlockedReason string    `json:"blocked_reason,omitempty"`
	Complete      bool      `json:"complete"`
}

// Status summarises the round against p.
func (r *Round) Status(p *pool.Pool) Status {
	st := Status{
		RoundID:     r.id,
		Platforms:   r.Platforms(),
		Target:      r.target,
		Selected:    len(r.entries),
		Eligible:    len(r.Eligible(p)),
		TotalOrders: r.TotalSelected(p),
		Rolling:     r.rolling,
		Current:     r.current,
		Entries:     r.Entries(),
		Complete:    len(r.entries) == r.target,
	}
	if err := r.CanStart(p); err != nil {
		st.BlockedReason = err.Error()
	} else {
		st.CanStart = true
	}
	return st
}
