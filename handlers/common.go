// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/order-lottery/auth"
	"github.com/danielhkuo/order-lottery/export"
	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/metrics"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/models"
	"github.com/danielhkuo/order-lottery/session"
)

const (
	msgLocked       = "请先输入密码解锁"
	msgWrongSecret  = "密码错误，请重新输入"
	msgNotPending   = "没有待确认的操作"
	msgCancelled    = "已取消重置操作"
	msgNoSession    = "session unavailable"
	msgInvalidOrder = "请输入有效的订单号"
)

// gateOf picks the gate of area from s.
func gateOf(s *session.Session, area string) *auth.Gate {
	if area == models.AreaPool {
		return &s.PoolGate
	}
	return &s.DrawGate
}

// withSession runs fn with the caller's session locked. When area is not
// empty the area must be unlocked or the request is refused with 401.
func withSession(w http.ResponseWriter, r *http.Request, area string, fn func(s *session.Session)) {
	s := middleware.SessionFrom(r.Context())
	if s == nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgNoSession)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	if area != "" && !gateOf(s, area).Unlocked() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, msgLocked)
		return
	}
	fn(s)
}

// unlock handles POST /{area}/unlock for either protected area.
func unlock(w http.ResponseWriter, r *http.Request, area, storedHash, welcome string) {
	var req models.UnlockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	withSession(w, r, "", func(s *session.Session) {
		err := gateOf(s, area).Unlock(req.Password, storedHash)
		metrics.RecordUnlock(area, err == nil)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, msgWrongSecret)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.GateResponse{
			Area:     area,
			Unlocked: true,
			Message:  welcome,
		})
	})
}

// confirmation drives the request/confirm/cancel endpoints of a two-step
// destructive action.
type confirmation struct {
	action  string
	area    string
	pick    func(s *session.Session) *auth.Confirmation
	warning string
	prompt  string
}

func (c confirmation) request(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, c.area, func(s *session.Session) {
		c.pick(s).Request()
		middleware.JSONResponse(w, http.StatusOK, models.ConfirmationResponse{
			Action:  c.action,
			Pending: true,
			Message: c.warning + " " + c.prompt,
		})
	})
}

func (c confirmation) cancel(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, c.area, func(s *session.Session) {
		c.pick(s).Cancel()
		middleware.JSONResponse(w, http.StatusOK, models.ConfirmationResponse{
			Action:  c.action,
			Pending: false,
			Message: msgCancelled,
		})
	})
}

// writeExport streams records as a CSV or XLSX download.
func writeExport(w http.ResponseWriter, records []ledger.Record, ext string, now time.Time, loc *time.Location) {
	var buf bytes.Buffer
	var err error
	contentType := export.ContentTypeCSV
	switch ext {
	case "xlsx":
		contentType = export.ContentTypeXLSX
		err = export.XLSX(&buf, records)
	default:
		ext = "csv"
		err = export.CSV(&buf, records)
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "导出失败")
		return
	}

	name := export.FileName(now, loc, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(
		"attachment; filename=%q; filename*=UTF-8''%s",
		asciiFallback(name), url.PathEscape(name),
	))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// asciiFallback keeps the timestamp part of name for clients that ignore
// filename*.
func asciiFallback(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		return "lottery" + name[i:]
	}
	return name
}
