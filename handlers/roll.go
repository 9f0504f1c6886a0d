// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/order-lottery/draw"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/models"
	"github.com/danielhkuo/order-lottery/session"
)

const (
	writeWait    = 5 * time.Second
	actionSelect = "select"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// same policy as the CORS middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Roll handles GET /draw/roll
// Upgrades to a websocket and pushes a new candidate every roll interval
// while the round is rolling. The client sends {"action":"select"} to pick
// the candidate on screen. The stream ends when the round stops, the
// eligible set runs out, or the client goes away; a disconnect leaves the
// round rolling so POST /draw/select still works.
func (h *DrawHandler) Roll(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFrom(r.Context())
	if s == nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgNoSession)
		return
	}
	s.Mu.Lock()
	unlocked := s.DrawGate.Unlocked()
	s.Mu.Unlock()
	if !unlocked {
		middleware.ErrorResponse(w, http.StatusUnauthorized, msgLocked)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		logrus.WithError(err).Warn("roll upgrade failed")
		return
	}
	defer conn.Close()

	commands := make(chan models.RollCommand)
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			var cmd models.RollCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			select {
			case commands <- cmd:
			case <-r.Context().Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(h.cfg.RollInterval)
	defer ticker.Stop()

	for {
		var frame models.RollFrame
		var done bool
		select {
		case <-gone:
			return
		case cmd := <-commands:
			if cmd.Action != actionSelect {
				continue
			}
			frame, done = h.rollSelect(s)
		case <-ticker.C:
			frame, done = h.rollTick(s)
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		if done {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, frame.Type))
			return
		}
	}
}

// rollTick advances the round one candidate. done reports that the
// stream should end.
func (h *DrawHandler) rollTick(s *session.Session) (frame models.RollFrame, done bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if !s.DrawGate.Unlocked() {
		return models.RollFrame{Type: models.FrameError, Message: msgLocked}, true
	}
	rd := h.round(s)
	c, err := h.tick(rd)
	switch {
	case errors.Is(err, draw.ErrNotRolling):
		return models.RollFrame{Type: models.FrameStopped, Candidate: rd.Current()}, true
	case errors.Is(err, draw.ErrNoEligible):
		return models.RollFrame{Type: models.FrameError, Message: "可选订单已耗尽（所有订单均已中奖）"}, true
	case err != nil:
		return models.RollFrame{Type: models.FrameError, Message: err.Error()}, true
	}
	return models.RollFrame{Type: models.FrameTick, Candidate: c}, false
}

func (h *DrawHandler) rollSelect(s *session.Session) (models.RollFrame, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	rd := h.round(s)
	candidate := rd.Current()
	resp, err := h.selectCurrent(rd)
	if err != nil {
		return models.RollFrame{Type: models.FrameError, Message: err.Error()}, true
	}
	frame := models.RollFrame{Type: models.FrameSelected, Candidate: candidate, Message: resp.Message}
	if resp.Added {
		frame.Entry = &resp.Entry
	}
	return frame, true
}
