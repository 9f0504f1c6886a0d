// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package app holds the process-wide state: the live order pool, the winner
ledger and the store they are saved to.

	state, warnings := app.New(ctx, st, loc)
	for _, w := range warnings {
		// reported, not fatal
	}

Every method takes the state lock, so handlers may call them
concurrently. Imports change only the in-memory pool; SavePoolAsInitial
persists it. Ledger commits persist immediately when they add records.
*/
package app
