// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/cliparse"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/models"
	"github.com/danielhkuo/order-lottery/pool"
	"github.com/danielhkuo/order-lottery/session"
	"github.com/danielhkuo/order-lottery/store"
	"github.com/danielhkuo/order-lottery/testutil"
)

// harness is a running server over a temp JSON store plus a client that
// keeps its session cookie.
type harness struct {
	t      *testing.T
	cfg    cliparse.Config
	state  *app.State
	fs     *store.FileStore
	srv    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, records ...pool.Record) *harness {
	t.Helper()

	cfg := testutil.GetTestConfig()
	state, fs := testutil.SetupTestState(t, cfg, records...)

	query := NewQueryHandler(state)
	drw := NewDrawHandler(state, cfg)
	pl := NewPoolHandler(state, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders/{order}", query.GetOrder)
	mux.HandleFunc("GET /winners", query.ListWinners)
	mux.HandleFunc("GET /winners/{order}", query.GetWinner)
	mux.HandleFunc("GET /winners/export.csv", query.ExportWinnersCSV)
	mux.HandleFunc("GET /winners/export.xlsx", query.ExportWinnersXLSX)

	mux.HandleFunc("POST /draw/unlock", drw.Unlock)
	mux.HandleFunc("POST /draw/lock", drw.Lock)
	mux.HandleFunc("GET /draw/round", drw.GetRound)
	mux.HandleFunc("PUT /draw/round", drw.ConfigureRound)
	mux.HandleFunc("POST /draw/start", drw.Start)
	mux.HandleFunc("POST /draw/tick", drw.Tick)
	mux.HandleFunc("POST /draw/select", drw.Select)
	mux.HandleFunc("POST /draw/reset", drw.ResetRound)
	mux.HandleFunc("POST /draw/confirm", drw.ConfirmRound)
	mux.HandleFunc("GET /draw/roll", drw.Roll)
	mux.HandleFunc("GET /draw/last/export.csv", drw.ExportLastCSV)
	mux.HandleFunc("GET /draw/last/export.xlsx", drw.ExportLastXLSX)
	mux.HandleFunc("POST /draw/history/reset", drw.RequestHistoryReset)
	mux.HandleFunc("POST /draw/history/reset/confirm", drw.ConfirmHistoryReset)
	mux.HandleFunc("POST /draw/history/reset/cancel", drw.CancelHistoryReset)

	mux.HandleFunc("POST /pool/unlock", pl.Unlock)
	mux.HandleFunc("POST /pool/lock", pl.Lock)
	mux.HandleFunc("GET /pool", pl.GetPool)
	mux.HandleFunc("POST /pool/import/text", pl.ImportText)
	mux.HandleFunc("POST /pool/import/file", pl.ImportFile)
	mux.HandleFunc("POST /pool/save-initial", pl.RequestSaveInitial)
	mux.HandleFunc("POST /pool/save-initial/confirm", pl.ConfirmSaveInitial)
	mux.HandleFunc("POST /pool/save-initial/cancel", pl.CancelSaveInitial)
	mux.HandleFunc("POST /pool/reset", pl.RequestReset)
	mux.HandleFunc("POST /pool/reset/confirm", pl.ConfirmReset)
	mux.HandleFunc("POST /pool/reset/cancel", pl.CancelReset)

	srv := httptest.NewServer(middleware.WithSession(session.NewManager(), mux))
	t.Cleanup(srv.Close)

	return &harness{
		t:      t,
		cfg:    cfg,
		state:  state,
		fs:     fs,
		srv:    srv,
		client: testutil.NewClient(t),
	}
}

// newClient gives the harness a fresh browser, i.e. a new session.
func (h *harness) newClient() *harness {
	c := *h
	c.client = testutil.NewClient(h.t)
	return &c
}

func (h *harness) do(method, path string, body interface{}) (*http.Response, []byte) {
	h.t.Helper()
	return testutil.Do(h.t, h.client, method, h.srv.URL+path, body)
}

// call sends the request, checks the status and decodes the body into v
// when v is not nil.
func (h *harness) call(method, path string, body interface{}, status int, v interface{}) {
	h.t.Helper()
	resp, data := h.do(method, path, body)
	require.Equal(h.t, status, resp.StatusCode, "%s %s: %s", method, path, data)
	if v != nil {
		testutil.DecodeJSON(h.t, data, v)
	}
}

func (h *harness) errorMessage(method, path string, body interface{}, status int) string {
	h.t.Helper()
	var e models.ErrorResponse
	h.call(method, path, body, status, &e)
	return e.Message
}

func (h *harness) unlockDraw() {
	h.t.Helper()
	h.call("POST", "/draw/unlock", models.UnlockRequest{Password: testutil.DrawPassword}, http.StatusOK, nil)
}

func (h *harness) unlockPool() {
	h.t.Helper()
	h.call("POST", "/pool/unlock", models.UnlockRequest{Password: testutil.PoolPassword}, http.StatusOK, nil)
}

func orders(platform string, numbers ...string) []pool.Record {
	out := make([]pool.Record, len(numbers))
	for i, n := range numbers {
		out[i] = pool.Record{Platform: platform, OrderNumber: n}
	}
	return out
}
