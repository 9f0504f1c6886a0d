// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/auth"
	"github.com/danielhkuo/order-lottery/cliparse"
	"github.com/danielhkuo/order-lottery/importer"
	"github.com/danielhkuo/order-lottery/logger"
	"github.com/danielhkuo/order-lottery/metrics"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/models"
	"github.com/danielhkuo/order-lottery/pool"
	"github.com/danielhkuo/order-lottery/session"
	"github.com/danielhkuo/order-lottery/store"
)

// maxUploadSize bounds multipart imports.
const maxUploadSize = 32 << 20

// PoolHandler serves the password-protected pool management area.
type PoolHandler struct {
	state *app.State
	cfg   cliparse.Config

	saveInitial confirmation
	reset       confirmation
}

func NewPoolHandler(state *app.State, cfg cliparse.Config) *PoolHandler {
	return &PoolHandler{
		state: state,
		cfg:   cfg,
		saveInitial: confirmation{
			action:  "save_initial",
			area:    models.AreaPool,
			pick:    func(s *session.Session) *auth.Confirmation { return &s.SavePool },
			warning: "确定要将当前订单池保存为初始化数据吗？此操作会覆盖现有的初始化数据！",
			prompt:  "请确认是否继续保存？",
		},
		reset: confirmation{
			action:  "reset_pool",
			area:    models.AreaPool,
			pick:    func(s *session.Session) *auth.Confirmation { return &s.ResetPool },
			warning: "重置订单池将清除所有现有订单信息，请谨慎操作！",
			prompt:  "请确认是否要继续重置订单池操作？",
		},
	}
}

// Unlock handles POST /pool/unlock
func (h *PoolHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	unlock(w, r, models.AreaPool, h.cfg.PoolPasswordHash, "密码正确，欢迎进入订单池管理功能！")
}

// Lock handles POST /pool/lock
func (h *PoolHandler) Lock(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, "", func(s *session.Session) {
		s.PoolGate.Lock()
		middleware.JSONResponse(w, http.StatusOK, models.GateResponse{Area: models.AreaPool})
	})
}

// GetPool handles GET /pool
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaPool, func(s *session.Session) {
		sum := h.state.PoolSummary()
		middleware.JSONResponse(w, http.StatusOK, models.PoolSavedResponse{
			Pool:     sum,
			Messages: []string{fmt.Sprintf("当前订单池包含 %d 个平台，总计 %d 个订单号", sum.ActivePlatforms, sum.TotalOrders)},
		})
	})
}

// ImportText handles POST /pool/import/text
// One "platform,order" pair per line.
func (h *PoolHandler) ImportText(w http.ResponseWriter, r *http.Request) {
	var req models.ImportTextRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := pool.ParseMode(req.Mode)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	withSession(w, r, models.AreaPool, func(s *session.Session) {
		parsed := importer.ParseText(req.Text)
		if len(parsed.Records) == 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "未找到有效数据，请检查输入格式")
			return
		}
		h.importRecords(w, parsed.Records, parsed.Malformed, mode)
	})
}

// ImportFile handles POST /pool/import/file
// Multipart form with a "file" part (.csv or .xlsx) and an optional
// "mode" field.
func (h *PoolHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaPool, func(s *session.Session) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		mode, err := pool.ParseMode(r.FormValue("mode"))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		records, err := importer.ParseFile(header.Filename, file)
		switch {
		case errors.Is(err, importer.ErrMissingColumns):
			middleware.ErrorResponse(w, http.StatusBadRequest, "文件格式不正确！请确保文件包含'平台'和'主订单编号'两列")
			return
		case errors.Is(err, importer.ErrUnsupportedFile):
			middleware.ErrorResponse(w, http.StatusBadRequest, "支持CSV和XLSX文件格式，文件需要包含'平台'和'主订单编号'两列数据")
			return
		case err != nil:
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("读取文件失败: %v", err))
			return
		}
		h.importRecords(w, records, 0, mode)
	})
}

// importRecords applies records to the live pool and reports the outcome.
func (h *PoolHandler) importRecords(w http.ResponseWriter, records []pool.Record, malformed int, mode pool.Mode) {
	stats, applied := h.state.Import(records, mode)
	metrics.RecordImport(stats.Added, stats.Duplicate, stats.Errored+malformed)

	sum := h.state.PoolSummary()
	resp := models.ImportResponse{
		Mode:      mode,
		Applied:   applied,
		Stats:     stats,
		Malformed: malformed,
		Pool:      sum,
	}
	errored := stats.Errored + malformed
	if applied {
		resp.Messages = append(resp.Messages,
			"订单数据导入成功！",
			fmt.Sprintf("导入统计：新增订单数: %d，重复订单数: %d，错误行数: %d", stats.Added, stats.Duplicate, errored),
			fmt.Sprintf("更新后订单池共有 %d 个平台，总计 %d 个订单号", len(sum.Platforms), sum.TotalOrders),
		)
	}
	if errored > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("导入过程中发现 %d 行错误数据，请检查格式", errored))
	}
	if stats.Duplicate > 0 {
		resp.Messages = append(resp.Messages, fmt.Sprintf("发现 %d 个重复订单，已自动去重", stats.Duplicate))
	}
	if !applied {
		resp.Messages = append(resp.Messages, "没有新数据被导入")
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// RequestSaveInitial handles POST /pool/save-initial
func (h *PoolHandler) RequestSaveInitial(w http.ResponseWriter, r *http.Request) {
	h.saveInitial.request(w, r)
}

// CancelSaveInitial handles POST /pool/save-initial/cancel
func (h *PoolHandler) CancelSaveInitial(w http.ResponseWriter, r *http.Request) {
	h.saveInitial.cancel(w, r)
}

// ConfirmSaveInitial handles POST /pool/save-initial/confirm
// Writes the live pool as the startup snapshot and reports what was read
// back.
func (h *PoolHandler) ConfirmSaveInitial(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaPool, func(s *session.Session) {
		var sum app.PoolSummary
		err := s.SavePool.Confirm(func() error {
			var err error
			sum, err = h.state.SavePoolAsInitial(r.Context())
			return err
		})
		switch {
		case errors.Is(err, auth.ErrNotPending):
			middleware.ErrorResponse(w, http.StatusConflict, msgNotPending)
		case errors.Is(err, store.ErrPermission):
			logger.LogError("handlers", "ConfirmSaveInitial", nil, err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "权限错误：无法写入文件，请检查目录权限")
		case err != nil:
			logger.LogError("handlers", "ConfirmSaveInitial", nil, err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "保存失败，请稍后重试")
		default:
			middleware.JSONResponse(w, http.StatusOK, models.PoolSavedResponse{
				Pool: sum,
				Messages: []string{
					"订单池已成功保存为初始化数据",
					fmt.Sprintf("重新加载的初始化数据包含 %d 个活跃平台（订单数>0）", sum.ActivePlatforms),
					fmt.Sprintf("初始化数据共有 %d 个订单", sum.TotalOrders),
				},
			})
		}
	})
}

// RequestReset handles POST /pool/reset
func (h *PoolHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	h.reset.request(w, r)
}

// CancelReset handles POST /pool/reset/cancel
func (h *PoolHandler) CancelReset(w http.ResponseWriter, r *http.Request) {
	h.reset.cancel(w, r)
}

// ConfirmReset handles POST /pool/reset/confirm
// The live pool is reset even when writing the snapshot fails.
func (h *PoolHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, models.AreaPool, func(s *session.Session) {
		err := s.ResetPool.Confirm(func() error {
			return h.state.ResetPool(r.Context())
		})
		switch {
		case errors.Is(err, auth.ErrNotPending):
			middleware.ErrorResponse(w, http.StatusConflict, msgNotPending)
		case err != nil:
			logger.LogError("handlers", "ConfirmReset", nil, err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("清空文件时发生错误: %v", err))
		default:
			sum := h.state.PoolSummary()
			middleware.JSONResponse(w, http.StatusOK, models.PoolSavedResponse{
				Pool: sum,
				Messages: []string{
					"订单池已成功重置为空状态",
					fmt.Sprintf("当前订单池共有 %d 个订单", sum.TotalOrders),
				},
			})
		}
	})
}
