// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pool

import "fmt"

// Mode selects whether an import keeps the current pool.
type Mode string

const (
	Append  Mode = "append"
	Replace Mode = "replace"
)

// ParseMode accepts "append" or "replace"; empty means Append.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Append:
		return Append, nil
	case Replace:
		return Replace, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Record is one (platform, order) pair fed to Import.
type Record struct {
	Platform    string
	OrderNumber string
}

type ImportStats struct {
	Added     int `json:"added"`
	Duplicate int `json:"duplicate"`
	Errored   int `json:"errored"`
}

// Import builds the next pool from records. Append starts from a copy of
// current, Replace from an empty pool. Records with an empty field count
// as errors; orders already listed under their platform count as
// duplicates.
//
// applied reports whether the caller should swap next in: true when at
// least one order was added, or when mode is Replace and records is
// non-empty. current is never modified.
func Import(current *Pool, records []Record, mode Mode) (next *Pool, stats ImportStats, applied bool) {
	if mode == Append && current != nil {
		next = current.Clone()
	} else {
		next = New()
	}

	for _, rec := range records {
		if rec.Platform == "" || rec.OrderNumber == "" {
			stats.Errored++
			continue
		}
		if next.Add(rec.Platform, rec.OrderNumber) {
			stats.Added++
		} else {
			stats.Duplicate++
		}
	}

	applied = stats.Added > 0 || (mode == Replace && len(records) > 0)
	return next, stats, applied
}
