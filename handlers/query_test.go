// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/order-lottery/ledger"
	"github.com/danielhkuo/order-lottery/models"
)

func TestGetOrder(t *testing.T) {
	h := newHarness(t, orders("抖音", "D2023001")...)

	var found models.OrderQueryResponse
	h.call("GET", "/orders/D2023001", nil, http.StatusOK, &found)
	assert.True(t, found.Found)
	assert.Equal(t, "抖音", found.Platform)
	assert.Equal(t, "恭喜！您的订单号 D2023001 在 抖音 订单池中！", found.Message)

	var missing models.OrderQueryResponse
	h.call("GET", "/orders/X999", nil, http.StatusOK, &missing)
	assert.False(t, missing.Found)
	assert.Empty(t, missing.Platform)
	assert.Equal(t, "抱歉，订单号 X999 不在订单池中。", missing.Message)

	// whitespace is trimmed before the lookup
	h.call("GET", "/orders/%20D2023001%20", nil, http.StatusOK, &found)
	assert.True(t, found.Found)

	assert.Equal(t, msgInvalidOrder, h.errorMessage("GET", "/orders/%20", nil, http.StatusBadRequest))
}

func TestWinners(t *testing.T) {
	h := newHarness(t)

	var empty models.WinnersResponse
	h.call("GET", "/winners", nil, http.StatusOK, &empty)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Winners)
	assert.Equal(t, "暂无抽奖记录", empty.Message)

	_, err := h.state.CommitWinners(context.Background(), []ledger.Record{
		{OrderNumber: "T1", Platform: "天猫", Time: "2024-05-01 09:00:00"},
		{OrderNumber: "D1", Platform: "抖音", Time: "2024-05-02 09:00:00"},
	})
	require.NoError(t, err)

	var list models.WinnersResponse
	h.call("GET", "/winners", nil, http.StatusOK, &list)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "D1", list.Winners[0].OrderNumber, "newest first")

	var won models.WinnerQueryResponse
	h.call("GET", "/winners/T1", nil, http.StatusOK, &won)
	require.True(t, won.Found)
	assert.Equal(t, "天猫", won.Winner.Platform)
	assert.Equal(t, "恭喜！订单号 T1 在 2024-05-01 09:00:00 中奖了！请联系 天猫 平台客服兑换。", won.Message)

	var lost models.WinnerQueryResponse
	h.call("GET", "/winners/NOPE", nil, http.StatusOK, &lost)
	assert.False(t, lost.Found)
	assert.Nil(t, lost.Winner)
	assert.Equal(t, "抱歉，您的订单号 NOPE 暂未中奖。", lost.Message)
}

func TestExportWinners(t *testing.T) {
	h := newHarness(t)
	_, err := h.state.CommitWinners(context.Background(), []ledger.Record{
		{OrderNumber: "J1", Platform: "京东", Time: "2024-05-01 09:00:00"},
	})
	require.NoError(t, err)

	resp, body := h.do("GET", "/winners/export.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment;")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")
	assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(string(body[3:])), "\n")
	assert.Equal(t, []string{"订单号,平台,时间", "J1,京东,2024-05-01 09:00:00"}, lines)

	resp, body = h.do("GET", "/winners/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"订单号", "平台", "时间"}, {"J1", "京东", "2024-05-01 09:00:00"}}, rows)
}
