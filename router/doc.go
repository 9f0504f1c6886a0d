// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the order lottery API.

# Route Registration

NewRouter builds the route table and wraps it with the session, CORS and
metrics middleware:

	handler := router.NewRouter(state, sessions, imports, cfg)

imports rate-limits the two pool import endpoints per session. The unlock
endpoints accept any number of attempts.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Public queries:

	GET /orders/{order}       - Is the order in the pool?
	GET /winners              - Ledger, newest first
	GET /winners/{order}      - Did the order win?
	GET /winners/export.csv   - Ledger download
	GET /winners/export.xlsx

Drawing area (unlock first):

	POST /draw/unlock, /draw/lock
	GET  /draw/round          - Round status
	PUT  /draw/round          - Choose platforms and target
	POST /draw/start          - Begin rolling
	POST /draw/tick           - Next candidate (polling clients)
	GET  /draw/roll           - Candidate stream (websocket)
	POST /draw/select         - Pick the candidate on screen
	POST /draw/reset          - Discard picks of the round
	POST /draw/confirm        - Finish the round, optionally saving it
	GET  /draw/last/export.csv, /draw/last/export.xlsx
	POST /draw/history/reset[/confirm|/cancel]

Pool management (unlock first):

	POST /pool/unlock, /pool/lock
	GET  /pool
	POST /pool/import/text
	POST /pool/import/file    - multipart .csv or .xlsx
	POST /pool/save-initial[/confirm|/cancel]
	POST /pool/reset[/confirm|/cancel]

# Handler Initialization

	queryHandler := handlers.NewQueryHandler(state)
	drawHandler := handlers.NewDrawHandler(state, cfg)
	poolHandler := handlers.NewPoolHandler(state, cfg)

All handlers share the application state; sessions reach them through the
request context.
*/
package router
