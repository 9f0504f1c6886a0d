// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the order lottery API.

# Handler Types

Each handler is a struct over the shared application state:

  - QueryHandler: public order and winner lookups, ledger downloads
  - DrawHandler: drawing area (rounds, rolling, confirmation, history reset)
  - PoolHandler: pool management (imports, saving, reset)

Handlers are created via constructor functions:

	drawHandler := handlers.NewDrawHandler(state, cfg)

# Sessions and Gates

Every request carries a session (see middleware.WithSession). The drawing
area and the pool area are unlocked separately per session with their
own password; locked areas answer 401. The session mutex is held for the
whole request and is always taken before the state lock.

# Drawing

A round belongs to its session. It rolls through the eligible orders of
the chosen platforms until the operator selects one:

	POST /draw/start   → Start (first candidate)
	POST /draw/tick    → Tick (next candidate, polling clients)
	GET  /draw/roll    → Roll (websocket stream of candidates)
	POST /draw/select  → Select
	POST /draw/confirm → ConfirmRound (commit to the ledger unless save=false)

# Destructive Actions

Clearing the ledger, resetting the pool and overwriting the startup
snapshot are two-step: a request arms a per-session confirmation, then a
confirm carries it out or a cancel disarms it. Confirming without a
pending request answers 409.
*/
package handlers
