// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/draw"
	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/pool"
)

// Protected areas
const (
	AreaDraw = "draw"
	AreaPool = "pool"
)

// Request types

type UnlockRequest struct {
	Password string `json:"password" validate:"required"`
}

type RoundConfigRequest struct {
	Platforms []string `json:"platforms" validate:"dive,required"`
	Target    int      `json:"target" validate:"min=1,max=100"`
}

// Save defaults to true when omitted.
type ConfirmRoundRequest struct {
	Save *bool `json:"save"`
}

type ImportTextRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=append replace"`
	Text string `json:"text" validate:"required"`
}

// RollCommand is sent by the client over the roll websocket.
type RollCommand struct {
	Action string `json:"action"`
}

// Response types

// Roll frame types
const (
	FrameTick     = "tick"
	FrameSelected = "selected"
	FrameStopped  = "stopped"
	FrameError    = "error"
)

// RollFrame is pushed to the client over the roll websocket.
type RollFrame struct {
	Type      string         `json:"type"`
	Candidate draw.Candidate `json:"candidate"`
	Entry     *draw.Entry    `json:"entry,omitempty"`
	Message   string         `json:"message,omitempty"`
}

type GateResponse struct {
	Area     string `json:"area"`
	Unlocked bool   `json:"unlocked"`
	Message  string `json:"message,omitempty"`
}

type OrderQueryResponse struct {
	OrderNumber string `json:"order_number"`
	Found       bool   `json:"found"`
	Platform    string `json:"platform,omitempty"`
	Message     string `json:"message"`
}

type WinnerQueryResponse struct {
	OrderNumber string         `json:"order_number"`
	Found       bool           `json:"found"`
	Winner      *ledger.Record `json:"winner,omitempty"`
	Message     string         `json:"message"`
}

type WinnersResponse struct {
	Count   int             `json:"count"`
	Winners []ledger.Record `json:"winners"`
	Message string          `json:"message,omitempty"`
}

type TickResponse struct {
	Candidate draw.Candidate `json:"candidate"`
	Rolling   bool           `json:"rolling"`
}

type SelectResponse struct {
	Entry   draw.Entry  `json:"entry"`
	Added   bool        `json:"added"`
	Message string      `json:"message"`
	Status  draw.Status `json:"status"`
}

type ConfirmRoundResponse struct {
	Result  draw.Result `json:"result"`
	Saved   bool        `json:"saved"`
	Added   int         `json:"added"`
	Message string      `json:"message"`
}

type ImportResponse struct {
	Mode      pool.Mode        `json:"mode"`
	Applied   bool             `json:"applied"`
	Stats     pool.ImportStats `json:"stats"`
	Malformed int              `json:"malformed,omitempty"`
	Messages  []string         `json:"messages"`
	Pool      app.PoolSummary  `json:"pool"`
}

type ConfirmationResponse struct {
	Action  string `json:"action"`
	Pending bool   `json:"pending"`
	Message string `json:"message"`
}

type PoolSavedResponse struct {
	Pool     app.PoolSummary `json:"pool"`
	Messages []string        `json:"messages"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
