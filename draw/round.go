// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
)

const (
	MinTarget = 1
	MaxTarget = 100
)

var (
	ErrNoPlatforms     = errors.New("请先选择购物平台")
	ErrNoEligible      = errors.New("可选订单已耗尽")
	ErrRoundFull       = errors.New("本轮中奖订单已抽满")
	ErrNotEnoughOrders = errors.New("请录入足够的平台订单")
	ErrRolling         = errors.New("正在抽奖中")
	ErrNotRolling      = errors.New("当前未在抽奖")
	ErrNothingToReset  = errors.New("当前轮次没有已选中的订单")
	ErrRoundIncomplete = errors.New("本轮中奖订单尚未抽满")
	ErrInvalidTarget   = errors.New("抽奖订单数必须在 1 到 100 之间")

	ErrTargetBelowPicked = errors.New("抽奖订单数不能少于已选中订单数")
)

// Candidate is an order shown while rolling.
type Candidate struct {
	OrderNumber string `json:"order_number"`
	Platform    string `json:"platform"`
}

func (c Candidate) Empty() bool {
	return c.OrderNumber == ""
}

// Entry is an order selected into the current round.
type Entry struct {
	OrderNumber string `json:"order_number"`
	Platform    string `json:"platform"`
	SelectedAt  string `json:"selected_at"`
}

// Record converts the entry into a ledger record.
func (e Entry) Record() ledger.Record {
	return ledger.Record{OrderNumber: e.OrderNumber, Platform: e.Platform, Time: e.SelectedAt}
}

// Result is a completed round handed back by Complete.
type Result struct {
	RoundID     string  `json:"round_id"`
	Entries     []Entry `json:"entries"`
	ConfirmedAt string  `json:"confirmed_at"`
}

// Records converts the round entries into ledger records.
func (r Result) Records() []ledger.Record {
	out := make([]ledger.Record, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Record()
	}
	return out
}

// Round is the state of one drawing session: which platforms take part,
// how many winners are wanted, and the winners picked so far. A Round is
// not safe for concurrent use.
type Round struct {
	id        string
	platforms []string
	target    int
	current   Candidate
	entries   []Entry
	rolling   bool

	// configured is set once the operator chooses platforms; until then
	// the selection follows the pool.
	configured bool

	rng *rand.Rand
	loc *time.Location
}

// Option configures a Round.
type Option func(*Round)

// WithRand sets the random source used to pick candidates.
func WithRand(r *rand.Rand) Option {
	return func(rd *Round) { rd.rng = r }
}

// WithLocation sets the zone used for selection timestamps.
func WithLocation(loc *time.Location) Option {
	return func(rd *Round) { rd.loc = loc }
}

// NewRound returns an idle round over platforms wanting target winners.
func NewRound(platforms []string, target int, opts ...Option) *Round {
	r := &Round{
		id:        uuid.NewString(),
		platforms: append([]string{}, platforms...),
		target:    target,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return r
}

// Configure changes the platform selection and target. It is refused
// while rolling.
func (r *Round) Configure(platforms []string, target int) error {
	if r.rolling {
		return ErrRolling
	}
	if target < MinTarget || target > MaxTarget {
		return ErrInvalidTarget
	}
	if target < len(r.entries) {
		return ErrTargetBelowPicked
	}
	r.platforms = append([]string{}, platforms...)
	r.target = target
	r.configured = true
	return nil
}

// Configured reports whether the platform selection was chosen explicitly.
func (r *Round) Configured() bool { return r.configured }

// FollowPool replaces the default platform selection of an unconfigured
// round. Rounds that are rolling or hold entries keep their selection.
func (r *Round) FollowPool(platforms []string) {
	if r.configured || r.rolling || len(r.entries) > 0 {
		return
	}
	r.platforms = append([]string{}, platforms...)
}

func (r *Round) ID() string { return r.id }

func (r *Round) Target() int { return r.target }

func (r *Round) Rolling() bool { return r.rolling }

func (r *Round) Current() Candidate { return r.current }

func (r *Round) Platforms() []string { return append([]string{}, r.platforms...) }

func (r *Round) Entries() []Entry { return append([]Entry{}, r.entries...) }

// Full reports whether the round has as many entries as its target.
func (r *Round) Full() bool { return len(r.entries) >= r.target }

func (r *Round) selected(order string) bool {
	for _, e := range r.entries {
		if e.OrderNumber == order {
			return true
		}
	}
	return false
}

// Eligible lists the orders of the selected platforms that are not yet in
// the round. It is recomputed from p on every call.
func (r *Round) Eligible(p *pool.Pool) []Candidate {
	var out []Candidate
	for _, platform := range r.platforms {
		for _, order := range p.Orders(platform) {
			if r.selected(order) {
				continue
			}
			out = append(out, Candidate{OrderNumber: order, Platform: platform})
		}
	}
	return out
}

// TotalSelected counts all orders in the selected platforms, including
// those already picked this round.
func (r *Round) TotalSelected(p *pool.Pool) int {
	n := 0
	for _, platform := range r.platforms {
		n += len(p.Orders(platform))
	}
	return n
}

// CanStart reports why the round cannot start rolling, or nil.
func (r *Round) CanStart(p *pool.Pool) error {
	if r.rolling {
		return ErrRolling
	}
	if len(r.platforms) == 0 {
		return ErrNoPlatforms
	}
	if r.TotalSelected(p) <= r.target {
		return ErrNotEnoughOrders
	}
	if len(r.Eligible(p)) == 0 {
		return ErrNoEligible
	}
	if r.Full() {
		return ErrRoundFull
	}
	return nil
}

// Start moves the round from idle to rolling and shows a first candidate.
func (r *Round) Start(p *pool.Pool) (Candidate, error) {
	if err := r.CanStart(p); err != nil {
		return Candidate{}, err
	}
	r.rolling = true
	r.current = Candidate{}
	return r.Tick(p)
}

// Tick picks a new candidate uniformly from the eligible set. Repeats
// across ticks are expected. If nothing is eligible the round stops
// rolling and ErrNoEligible is returned.
func (r *Round) Tick(p *pool.Pool) (Candidate, error) {
	if !r.rolling {
		return Candidate{}, ErrNotRolling
	}
	eligible := r.Eligible(p)
	if len(eligible) == 0 {
		r.rolling = false
		r.current = Candidate{}
		return Candidate{}, ErrNoEligible
	}
	r.current = eligible[r.rng.IntN(len(eligible))]
	return r.current, nil
}

// Select stops rolling and records the current candidate at now. added is
// false when there was no candidate, it was already picked, or the round
// is full.
func (r *Round) Select(now time.Time) (entry Entry, added bool, err error) {
	if !r.rolling {
		return Entry{}, false, ErrNotRolling
	}
	r.rolling = false
	if r.current.Empty() || r.selected(r.current.OrderNumber) || r.Full() {
		return Entry{}, false, nil
	}
	entry = Entry{
		OrderNumber: r.current.OrderNumber,
		Platform:    r.current.Platform,
		SelectedAt:  ledger.FormatTime(now, r.loc),
	}
	r.entries = append(r.entries, entry)
	return entry, true, nil
}

// Stop forces the round idle without selecting.
func (r *Round) Stop() {
	r.rolling = false
}

// Reset discards the picked entries and forces the round idle.
func (r *Round) Reset() error {
	if len(r.entries) == 0 {
		return ErrNothingToReset
	}
	r.entries = nil
	r.current = Candidate{}
	r.rolling = false
	return nil
}

// Complete hands back the finished round and clears it for the next one.
func (r *Round) Complete(now time.Time) (Result, error) {
	if len(r.entries) != r.target {
		return Result{}, ErrRoundIncomplete
	}
	res := Result{
		RoundID:     r.id,
		Entries:     r.entries,
		ConfirmedAt: ledger.FormatTime(now, r.loc),
	}
	r.id = uuid.NewString()
	r.entries = nil
	r.current = Candidate{}
	r.rolling = false
	return res, nil
}
