// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/models"
)

// QueryHandler serves the public pages: order lookup, winner lookup and
// the winner list.
type QueryHandler struct {
	state *app.State
}

func NewQueryHandler(state *app.State) *QueryHandler {
	return &QueryHandler{state: state}
}

// GetOrder handles GET /orders/{order}
func (h *QueryHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order := strings.TrimSpace(r.PathValue("order"))
	if order == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidOrder)
		return
	}

	platform, found := h.state.QueryOrder(order)
	resp := models.OrderQueryResponse{OrderNumber: order, Found: found, Platform: platform}
	if found {
		resp.Message = fmt.Sprintf("恭喜！您的订单号 %s 在 %s 订单池中！", order, platform)
	} else {
		resp.Message = fmt.Sprintf("抱歉，订单号 %s 不在订单池中。", order)
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetWinner handles GET /winners/{order}
func (h *QueryHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	order := strings.TrimSpace(r.PathValue("order"))
	if order == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidOrder)
		return
	}

	resp := models.WinnerQueryResponse{OrderNumber: order}
	if rec, found := h.state.QueryWinner(order); found {
		resp.Found = true
		resp.Winner = &rec
		resp.Message = fmt.Sprintf("恭喜！订单号 %s 在 %s 中奖了！请联系 %s 平台客服兑换。", order, rec.Time, rec.Platform)
	} else {
		resp.Message = fmt.Sprintf("抱歉，您的订单号 %s 暂未中奖。", order)
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ListWinners handles GET /winners
// Newest first.
func (h *QueryHandler) ListWinners(w http.ResponseWriter, r *http.Request) {
	winners := h.state.Winners()
	resp := models.WinnersResponse{Count: len(winners), Winners: winners}
	if len(winners) == 0 {
		resp.Message = "暂无抽奖记录"
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ExportWinnersCSV handles GET /winners/export.csv
func (h *QueryHandler) ExportWinnersCSV(w http.ResponseWriter, r *http.Request) {
	writeExport(w, h.state.Winners(), "csv", h.state.Now(), h.state.Location())
}

// ExportWinnersXLSX handles GET /winners/export.xlsx
func (h *QueryHandler) ExportWinnersXLSX(w http.ResponseWriter, r *http.Request) {
	writeExport(w, h.state.Winners(), "xlsx", h.state.Now(), h.state.Location())
}
