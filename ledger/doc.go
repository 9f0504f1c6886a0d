// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledger keeps the history of confirmed winners. An order number
// appears in the ledger at most once; Commit silently skips repeats.
package ledger
