// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/auth"
	"github.com/danielhkuo/order-lottery/cliparse"
	"github.com/danielhkuo/order-lottery/draw"
	"github.com/danielhkuo/order-lottery/logger"
	"github.com/danielhkuo/order-lottery/metrics"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/models"
	"github.com/danielhkuo/order-lottery/pool"
	"github.com/danielhkuo/order-lottery/session"
)

// DrawHandler serves the password-protected drawing area. Each session
// has its own round; the pool and the ledger are shared.
type DrawHandler struct {
	state *app.State
	cfg   cliparse.Config
	opts  []draw.Option

	resetHistory confirmation
}

func NewDrawHandler(state *app.State, cfg cliparse.Config, opts ...draw.Option) *DrawHandler {
	return &DrawHandler{
		state: state,
		cfg:   cfg,
		opts:  append([]draw.Option{draw.WithLocation(state.Location())}, opts...),
		resetHistory: confirmation{
			action:  "reset_history",
			area:    models.AreaDraw,
			pick:    func(s *session.Session) *auth.Confirmation { return &s.ResetHistory },
			warning: "重置所有抽奖历史将清除所有现有抽奖记录，请谨慎操作！",
			prompt:  "请确认是否要继续重置所有抽奖历史记录？",
		},
	}
}

// round returns the session round, defaulting to every pool platform.
// Callers hold s.Mu.
func (h *DrawHandler) round(s *session.Session) *draw.Round {
	var platforms []string
	h.state.WithPool(func(p *pool.Pool) { platforms = p.Platforms() })
	return s.RoundFor(platforms, h.opts...)
}

func (h *DrawHandler) status(rd *draw.Round) draw.Status {
	var st draw.Status
	h.state.WithPool(func(p *pool.Pool) { st = rd.Status(p) })
	return st
}

// Unlock handles POST /draw/unlock
func (h *DrawHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	unlock(w, r, models.AreaDraw, h.cfg.DrawPasswordHash, "密码正确，欢迎进入抽奖区域！")
}

// Lock handles POST /draw/lock
// A rolling round is stopped without selecting.
func (h *DrawHandler) Lock(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, "", func(s *session.Session) {
		s.DrawGate.Lock()
		if s.Round != nil {
			s.Round.Stop()
		}
		middleware.JSONResponse(w, http.StatusOK, models.GateResponse{Area: models.AreaDraw})
	})
}

// GetRound handles GET /draw/round
func (h *DrawHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		middleware.JSONResponse(w, http.StatusOK, h.status(h.round(s)))
	})
}

// ConfigureRound handles PUT /draw/round
func (h *DrawHandler) ConfigureRound(w http.ResponseWriter, r *http.Request) {
	var req models.RoundConfigRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	p := h.state.Pool()
	for _, name := range req.Platforms {
		if !p.Has(name) {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("未知平台: %s", name))
			return
		}
	}

	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		rd := h.round(s)
		if err := rd.Configure(req.Platforms, req.Target); err != nil {
			drawError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, h.status(rd))
	})
}

// Start handles POST /draw/start
func (h *DrawHandler) Start(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		rd := h.round(s)
		var (
			c   draw.Candidate
			err error
		)
		h.state.WithPool(func(p *pool.Pool) { c, err = rd.Start(p) })
		if err != nil {
			drawError(w, err)
			return
		}
		metrics.RecordDrawStarted()
		logrus.WithFields(logrus.Fields{
			"round_id": rd.ID(),
			"target":   rd.Target(),
		}).Info("draw started")
		middleware.JSONResponse(w, http.StatusOK, models.TickResponse{Candidate: c, Rolling: true})
	})
}

// Tick handles POST /draw/tick
// Clients that cannot hold a websocket poll this at the roll interval.
func (h *DrawHandler) Tick(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		c, err := h.tick(h.round(s))
		if err != nil {
			drawError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.TickResponse{Candidate: c, Rolling: true})
	})
}

func (h *DrawHandler) tick(rd *draw.Round) (c draw.Candidate, err error) {
	h.state.WithPool(func(p *pool.Pool) { c, err = rd.Tick(p) })
	return c, err
}

// Select handles POST /draw/select
func (h *DrawHandler) Select(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		resp, err := h.selectCurrent(h.round(s))
		if err != nil {
			drawError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, resp)
	})
}

// selectCurrent records the rolling candidate. Callers hold the session
// lock.
func (h *DrawHandler) selectCurrent(rd *draw.Round) (models.SelectResponse, error) {
	entry, added, err := rd.Select(h.state.Now())
	if err != nil {
		return models.SelectResponse{}, err
	}
	resp := models.SelectResponse{Entry: entry, Added: added, Status: h.status(rd)}
	if added {
		metrics.RecordSelected(entry.Platform)
		resp.Message = fmt.Sprintf("已选中第 %d/%d 个中奖订单！", resp.Status.Selected, resp.Status.Target)
	} else {
		resp.Message = "未选中新的订单"
	}
	return resp, nil
}

// ResetRound handles POST /draw/reset
func (h *DrawHandler) ResetRound(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		rd := h.round(s)
		if err := rd.Reset(); err != nil {
			drawError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.SelectResponse{
			Message: "已重置当前轮次，可重新开始抽奖",
			Status:  h.status(rd),
		})
	})
}

// ConfirmRound handles POST /draw/confirm
// The finished round is optionally committed to the ledger, kept for
// export and cleared either way.
func (h *DrawHandler) ConfirmRound(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmRoundRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ErrInvalidJSON.Error())
		return
	}
	save := req.Save == nil || *req.Save

	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		result, err := h.round(s).Complete(h.state.Now())
		if err != nil {
			drawError(w, err)
			return
		}
		s.LastRound = &result
		metrics.RecordRoundConfirmed(save)

		resp := models.ConfirmRoundResponse{Result: result, Message: "本轮抽奖已完成"}
		if save {
			added, err := h.state.CommitWinners(r.Context(), result.Records())
			resp.Added = added
			metrics.RecordLedgerAdded(added)
			switch {
			case err != nil:
				logger.LogError("handlers", "ConfirmRound", result.RoundID, err)
				resp.Message = "中奖结果保存失败"
			case added == 0:
				resp.Message = "所有选中的订单已存在于中奖记录中，无需重复保存"
			default:
				resp.Saved = true
				resp.Message = "所有中奖结果已保存！"
			}
		}
		middleware.JSONResponse(w, http.StatusOK, resp)
	})
}

// ExportLastCSV handles GET /draw/last/export.csv
func (h *DrawHandler) ExportLastCSV(w http.ResponseWriter, r *http.Request) {
	h.exportLast(w, r, "csv")
}

// ExportLastXLSX handles GET /draw/last/export.xlsx
func (h *DrawHandler) ExportLastXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportLast(w, r, "xlsx")
}

func (h *DrawHandler) exportLast(w http.ResponseWriter, r *http.Request, ext string) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		if s.LastRound == nil {
			middleware.ErrorResponse(w, http.StatusNotFound, "暂无已完成的抽奖结果")
			return
		}
		writeExport(w, s.LastRound.Records(), ext, h.state.Now(), h.state.Location())
	})
}

// RequestHistoryReset handles POST /draw/history/reset
func (h *DrawHandler) RequestHistoryReset(w http.ResponseWriter, r *http.Request) {
	h.resetHistory.request(w, r)
}

// CancelHistoryReset handles POST /draw/history/reset/cancel
func (h *DrawHandler) CancelHistoryReset(w http.ResponseWriter, r *http.Request) {
	h.resetHistory.cancel(w, r)
}

// ConfirmHistoryReset handles POST /draw/history/reset/confirm
func (h *DrawHandler) ConfirmHistoryReset(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaDraw, func(s *session.Session) {
		err := s.ResetHistory.Confirm(func() error {
			return h.state.ResetWinners(r.Context())
		})
		switch {
		case errors.Is(err, auth.ErrNotPending):
			middleware.ErrorResponse(w, http.StatusConflict, msgNotPending)
		case err != nil:
			logger.LogError("handlers", "ConfirmHistoryReset", nil, err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("清空文件时发生错误: %v", err))
		default:
			middleware.JSONResponse(w, http.StatusOK, models.ConfirmationResponse{
				Action:  h.resetHistory.action,
				Message: "所有抽奖历史记录已成功重置为空状态",
			})
		}
	})
}

// drawError maps round errors onto HTTP.
func drawError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draw.ErrInvalidTarget):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, draw.ErrNoEligible):
		middleware.ErrorResponse(w, http.StatusConflict, "可选订单已耗尽（所有订单均已中奖）")
	default:
		// every other round error is a precondition
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	}
}
