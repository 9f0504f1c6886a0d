// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the request and response bodies of the API.

# Request Types

Types for parsing incoming JSON, validated by middleware.DecodeAndValidate:

  - UnlockRequest: password
  - RoundConfigRequest: platforms, target (1 to 100)
  - ConfirmRoundRequest: save
  - ImportTextRequest: mode (append or replace), text
  - RollCommand: action, sent over the roll websocket

# Response Types

  - GateResponse: area, unlocked
  - OrderQueryResponse, WinnerQueryResponse: found plus a display message
  - WinnersResponse: the ledger, newest first
  - TickResponse, SelectResponse, ConfirmRoundResponse: drawing progress
  - ImportResponse: import statistics and the resulting pool summary
  - ConfirmationResponse: state of a two-step destructive action
  - PoolSavedResponse: summary read back after saving the pool
  - ErrorResponse: error, message

Messages are in Chinese; they are shown to operators verbatim.
*/
package models
