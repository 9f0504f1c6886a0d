// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/order-lottery/models"
	"github.com/danielhkuo/order-lottery/pool"
)

// upload posts a multipart import with the given file name and content.
func (h *harness) upload(name string, content []byte, mode string) (*http.Response, []byte) {
	h.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if mode != "" {
		require.NoError(h.t, mw.WriteField("mode", mode))
	}
	part, err := mw.CreateFormFile("file", name)
	require.NoError(h.t, err)
	_, err = part.Write(content)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())

	req, err := http.NewRequest("POST", h.srv.URL+"/pool/import/file", &body)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, data
}

func TestPoolGate(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, msgLocked, h.errorMessage("GET", "/pool", nil, http.StatusUnauthorized))
	h.errorMessage("POST", "/pool/import/text", models.ImportTextRequest{Text: "抖音,D1"}, http.StatusUnauthorized)
	resp, _ := h.upload("orders.csv", []byte("平台,主订单编号\n抖音,D1\n"), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// the draw password does not open the pool
	assert.Equal(t, msgWrongSecret, h.errorMessage("POST", "/pool/unlock", models.UnlockRequest{Password: "draw-secret"}, http.StatusUnauthorized))

	var gate models.GateResponse
	h.call("POST", "/pool/unlock", models.UnlockRequest{Password: "pool-secret"}, http.StatusOK, &gate)
	assert.Equal(t, models.AreaPool, gate.Area)
	assert.Equal(t, "密码正确，欢迎进入订单池管理功能！", gate.Message)

	var got models.PoolSavedResponse
	h.call("GET", "/pool", nil, http.StatusOK, &got)
	assert.Len(t, got.Pool.Platforms, len(pool.DefaultPlatforms))
	assert.Equal(t, []string{"当前订单池包含 0 个平台，总计 0 个订单号"}, got.Messages)

	h.call("POST", "/pool/lock", nil, http.StatusOK, nil)
	h.errorMessage("GET", "/pool", nil, http.StatusUnauthorized)
}

func TestImportText(t *testing.T) {
	h := newHarness(t)
	h.unlockPool()

	var res models.ImportResponse
	h.call("POST", "/pool/import/text", models.ImportTextRequest{
		Text: "抖音,D1\n 抖音 , D2 \n\n天猫,T1\nno comma here\n抖音,D1\n",
	}, http.StatusOK, &res)
	assert.True(t, res.Applied)
	assert.Equal(t, pool.Append, res.Mode)
	assert.Equal(t, pool.ImportStats{Added: 3, Duplicate: 1}, res.Stats)
	assert.Equal(t, 1, res.Malformed)
	assert.Equal(t, []string{
		"订单数据导入成功！",
		"导入统计：新增订单数: 3，重复订单数: 1，错误行数: 1",
		"更新后订单池共有 6 个平台，总计 3 个订单号",
		"导入过程中发现 1 行错误数据，请检查格式",
		"发现 1 个重复订单，已自动去重",
	}, res.Messages)
	assert.Equal(t, 3, res.Pool.TotalOrders)
	assert.Equal(t, 2, res.Pool.ActivePlatforms)

	platform, ok := h.state.QueryOrder("D2")
	assert.True(t, ok)
	assert.Equal(t, "抖音", platform)

	// nothing new is not applied
	h.call("POST", "/pool/import/text", models.ImportTextRequest{Text: "抖音,D1"}, http.StatusOK, &res)
	assert.False(t, res.Applied)
	assert.Equal(t, 1, res.Stats.Duplicate)
	assert.Contains(t, res.Messages, "没有新数据被导入")
	assert.Equal(t, 3, h.state.Pool().Total())

	// imports are not persisted until saved
	_, err := h.fs.LoadPool(context.Background())
	assert.Error(t, err)
}

func TestImportText_Replace(t *testing.T) {
	h := newHarness(t, orders("抖音", "D1", "D2")...)
	h.unlockPool()

	var res models.ImportResponse
	h.call("POST", "/pool/import/text", models.ImportTextRequest{Mode: "replace", Text: "京东,J1"}, http.StatusOK, &res)
	assert.True(t, res.Applied)
	assert.Equal(t, pool.Replace, res.Mode)
	assert.Equal(t, 1, res.Pool.TotalOrders)
	assert.Equal(t, []string{"京东"}, h.state.Pool().Platforms())

	_, ok := h.state.QueryOrder("D1")
	assert.False(t, ok)
}

func TestImportText_Invalid(t *testing.T) {
	h := newHarness(t)
	h.unlockPool()

	tests := []struct {
		name string
		req  models.ImportTextRequest
		msg  string
	}{
		{name: "empty text", req: models.ImportTextRequest{}, msg: "text is required"},
		{name: "bad mode", req: models.ImportTextRequest{Mode: "merge", Text: "抖音,D1"}, msg: "mode must be one of: append replace"},
		{name: "no pairs", req: models.ImportTextRequest{Text: "just words\nmore words"}, msg: "未找到有效数据，请检查输入格式"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, h.errorMessage("POST", "/pool/import/text", tt.req, http.StatusBadRequest))
		})
	}
	assert.Equal(t, 0, h.state.Pool().Total())
}

func TestImportFile_CSV(t *testing.T) {
	h := newHarness(t)
	h.unlockPool()

	csv := append([]byte{0xEF, 0xBB, 0xBF}, []byte("序号,平台,主订单编号\n1,抖音,D1\n2,天猫,T1\n3,,X\n")...)
	resp, data := h.upload("orders.csv", csv, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var res models.ImportResponse
	require.NoError(t, json.Unmarshal(data, &res))
	assert.True(t, res.Applied)
	assert.Equal(t, pool.ImportStats{Added: 2, Errored: 1}, res.Stats)
	assert.Equal(t, 0, res.Malformed)
	assert.Equal(t, 2, h.state.Pool().Total())
}

func TestImportFile_XLSX(t *testing.T) {
	h := newHarness(t, orders("抖音", "D1")...)
	h.unlockPool()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"主订单编号", "平台"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"X1", "小红书"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"P1", "拼多多"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	resp, data := h.upload("orders.XLSX", buf.Bytes(), "replace")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var res models.ImportResponse
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, pool.Replace, res.Mode)
	assert.Equal(t, 2, res.Stats.Added)
	assert.Equal(t, []string{"小红书", "拼多多"}, h.state.Pool().Platforms())
}

func TestImportFile_Errors(t *testing.T) {
	h := newHarness(t)
	h.unlockPool()

	tests := []struct {
		name    string
		file    string
		content string
		mode    string
		msg     string
	}{
		{
			name:    "missing columns",
			file:    "orders.csv",
			content: "platform,order\n抖音,D1\n",
			msg:     "文件格式不正确！请确保文件包含'平台'和'主订单编号'两列",
		},
		{
			name:    "unsupported extension",
			file:    "orders.txt",
			content: "平台,主订单编号\n抖音,D1\n",
			msg:     "支持CSV和XLSX文件格式，文件需要包含'平台'和'主订单编号'两列数据",
		},
		{
			name:    "bad mode",
			file:    "orders.csv",
			content: "平台,主订单编号\n抖音,D1\n",
			mode:    "merge",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := h.upload(tt.file, []byte(tt.content), tt.mode)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var e models.ErrorResponse
			require.NoError(t, json.Unmarshal(data, &e))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, e.Message)
			}
		})
	}
	assert.Equal(t, 0, h.state.Pool().Total())
}

func TestSaveInitial(t *testing.T) {
	h := newHarness(t, orders("抖音", "D1", "D2")...)
	h.unlockPool()

	h.errorMessage("POST", "/pool/save-initial/confirm", nil, http.StatusConflict)

	var pending models.ConfirmationResponse
	h.call("POST", "/pool/save-initial", nil, http.StatusOK, &pending)
	assert.True(t, pending.Pending)
	assert.Equal(t, "save_initial", pending.Action)

	var saved models.PoolSavedResponse
	h.call("POST", "/pool/save-initial/confirm", nil, http.StatusOK, &saved)
	assert.Equal(t, 2, saved.Pool.TotalOrders)
	assert.Equal(t, []string{
		"订单池已成功保存为初始化数据",
		"重新加载的初始化数据包含 1 个活跃平台（订单数>0）",
		"初始化数据共有 2 个订单",
	}, saved.Messages)

	p, err := h.fs.LoadPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D2"}, p.Orders("抖音"))

	// a confirmation is used up
	h.errorMessage("POST", "/pool/save-initial/confirm", nil, http.StatusConflict)
}

func TestPoolReset(t *testing.T) {
	h := newHarness(t, orders("抖音", "D1", "D2")...)
	h.unlockPool()

	var pending models.ConfirmationResponse
	h.call("POST", "/pool/reset", nil, http.StatusOK, &pending)
	assert.Contains(t, pending.Message, "重置订单池将清除所有现有订单信息")

	h.call("POST", "/pool/reset/cancel", nil, http.StatusOK, &pending)
	assert.False(t, pending.Pending)
	h.errorMessage("POST", "/pool/reset/confirm", nil, http.StatusConflict)
	assert.Equal(t, 2, h.state.Pool().Total())

	h.call("POST", "/pool/reset", nil, http.StatusOK, nil)
	var done models.PoolSavedResponse
	h.call("POST", "/pool/reset/confirm", nil, http.StatusOK, &done)
	assert.Equal(t, []string{"订单池已成功重置为空状态", "当前订单池共有 0 个订单"}, done.Messages)
	assert.Equal(t, pool.DefaultPlatforms, h.state.Pool().Platforms())

	p, err := h.fs.LoadPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Total())
}

func TestPoolConfirmationsAreSeparate(t *testing.T) {
	h := newHarness(t, orders("抖音", "D1")...)
	h.unlockPool()

	// requesting a save does not arm the reset
	h.call("POST", "/pool/save-initial", nil, http.StatusOK, nil)
	h.errorMessage("POST", "/pool/reset/confirm", nil, http.StatusConflict)
	assert.Equal(t, 1, h.state.Pool().Total())
}
