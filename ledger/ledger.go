// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"sort"
	"time"
)

// TimeLayout is the timestamp format stored in winner records.
const TimeLayout = "2006-01-02 15:04:05"

// Record is one confirmed winner. The JSON keys match the persisted file.
type Record struct {
	OrderNumber string `json:"订单号"`
	Platform    string `json:"平台"`
	Time        string `json:"时间"`
}

// FormatTime renders t in loc using TimeLayout.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimeLayout)
}

// Commit appends entries whose order number is not yet in records and
// returns the new slice plus how many were appended. Entries repeating an
// order number already committed in the same call are skipped too.
func Commit(records []Record, entries []Record) ([]Record, int) {
	seen := make(map[string]struct{}, len(records)+len(entries))
	for _, r := range records {
		seen[r.OrderNumber] = struct{}{}
	}

	out := make([]Record, len(records), len(records)+len(entries))
	copy(out, records)

	added := 0
	for _, e := range entries {
		if _, ok := seen[e.OrderNumber]; ok {
			continue
		}
		seen[e.OrderNumber] = struct{}{}
		out = append(out, e)
		added++
	}
	return out, added
}

// Find returns the first record with the given order number.
func Find(records []Record, order string) (Record, bool) {
	for _, r := range records {
		if r.OrderNumber == order {
			return r, true
		}
	}
	return Record{}, false
}

// Newest returns a copy of records sorted by time, latest first. Records
// with equal times keep their ledger order.
func Newest(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time > out[j].Time
	})
	return out
}
