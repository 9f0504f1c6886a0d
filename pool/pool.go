// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultPlatforms is the platform set of a fresh pool, in display order.
var DefaultPlatforms = []string{"抖音", "天猫", "京东", "小红书", "拼多多", "微信小店"}

var (
	ErrEmptyOrder  = errors.New("order number is empty")
	ErrInvalidMode = errors.New("invalid import mode")
)

// Pool maps platform names to their order numbers. Platform iteration
// follows insertion order, which is also the order used when encoding.
type Pool struct {
	platforms []string
	orders    map[string][]string
}

// New returns an empty pool with no platforms.
func New() *Pool {
	return &Pool{orders: make(map[string][]string)}
}

// Default returns a pool holding DefaultPlatforms, each with no orders.
func Default() *Pool {
	p := New()
	for _, name := range DefaultPlatforms {
		p.AddPlatform(name)
	}
	return p
}

// AddPlatform registers a platform if it is not already present.
func (p *Pool) AddPlatform(name string) {
	if _, ok := p.orders[name]; ok {
		return
	}
	p.platforms = append(p.platforms, name)
	p.orders[name] = []string{}
}

// Add appends an order to a platform, creating the platform if needed.
// It reports false when the order is already listed under that platform.
func (p *Pool) Add(platform, order string) bool {
	p.AddPlatform(platform)
	for _, existing := range p.orders[platform] {
		if existing == order {
			return false
		}
	}
	p.orders[platform] = append(p.orders[platform], order)
	return true
}

func (p *Pool) Platforms() []string {
	out := make([]string, len(p.platforms))
	copy(out, p.platforms)
	return out
}

// Orders returns the orders of a platform; nil if the platform is unknown.
func (p *Pool) Orders(platform string) []string {
	orders, ok := p.orders[platform]
	if !ok {
		return nil
	}
	out := make([]string, len(orders))
	copy(out, orders)
	return out
}

func (p *Pool) Has(platform string) bool {
	_, ok := p.orders[platform]
	return ok
}

// Find returns the first platform, in insertion order, that lists order.
func (p *Pool) Find(order string) (string, bool) {
	for _, platform := range p.platforms {
		for _, o := range p.orders[platform] {
			if o == order {
				return platform, true
			}
		}
	}
	return "", false
}

// Total counts orders across all platforms.
func (p *Pool) Total() int {
	n := 0
	for _, orders := range p.orders {
		n += len(orders)
	}
	return n
}

// ActivePlatforms counts platforms holding at least one order.
func (p *Pool) ActivePlatforms() int {
	n := 0
	for _, orders := range p.orders {
		if len(orders) > 0 {
			n++
		}
	}
	return n
}

func (p *Pool) Clone() *Pool {
	c := New()
	for _, platform := range p.platforms {
		c.platforms = append(c.platforms, platform)
		c.orders[platform] = append([]string{}, p.orders[platform]...)
	}
	return c
}

// MarshalJSON writes the pool as a JSON object keyed by platform in
// insertion order.
func (p *Pool) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, platform := range p.platforms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(platform)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		orders := p.orders[platform]
		if orders == nil {
			orders = []string{}
		}
		val, err := marshalNoEscape(orders)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of platform -> order list, keeping
// the platform order found in the document.
func (p *Pool) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("order pool must be a JSON object")
	}

	next := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		platform, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", tok)
		}
		var orders []string
		if err := dec.Decode(&orders); err != nil {
			return fmt.Errorf("platform %q: %w", platform, err)
		}
		next.AddPlatform(platform)
		next.orders[platform] = append(next.orders[platform], orders...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = *next
	return nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Chunk splits orders into lines of at most n entries joined by ", ".
func Chunk(orders []string, n int) []string {
	if n <= 0 {
		n = 1
	}
	var lines []string
	for i := 0; i < len(orders); i += n {
		end := min(i+n, len(orders))
		lines = append(lines, strings.Join(orders[i:end], ", "))
	}
	return lines
}
