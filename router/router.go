// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/cliparse"
	"github.com/danielhkuo/order-lottery/handlers"
	"github.com/danielhkuo/order-lottery/metrics"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/session"
)

// NewRouter builds the route table. imports throttles the pool import
// endpoints.
func NewRouter(state *app.State, sessions *session.Manager, imports *middleware.RateLimiter, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	queryHandler := handlers.NewQueryHandler(state)
	drawHandler := handlers.NewDrawHandler(state, cfg)
	poolHandler := handlers.NewPoolHandler(state, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Public queries
	mux.HandleFunc("GET /orders/{order}", middleware.WithLogging(queryHandler.GetOrder))
	mux.HandleFunc("GET /winners", middleware.WithLogging(queryHandler.ListWinners))
	mux.HandleFunc("GET /winners/{order}", middleware.WithLogging(queryHandler.GetWinner))
	mux.HandleFunc("GET /winners/export.csv", middleware.WithLogging(queryHandler.ExportWinnersCSV))
	mux.HandleFunc("GET /winners/export.xlsx", middleware.WithLogging(queryHandler.ExportWinnersXLSX))

	// Drawing area (password protected)
	mux.HandleFunc("POST /draw/unlock", middleware.WithLogging(drawHandler.Unlock))
	mux.HandleFunc("POST /draw/lock", middleware.WithLogging(drawHandler.Lock))
	mux.HandleFunc("GET /draw/round", middleware.WithLogging(drawHandler.GetRound))
	mux.HandleFunc("PUT /draw/round", middleware.WithLogging(drawHandler.ConfigureRound))
	mux.HandleFunc("POST /draw/start", middleware.WithLogging(drawHandler.Start))
	mux.HandleFunc("POST /draw/tick", drawHandler.Tick)
	mux.HandleFunc("POST /draw/select", middleware.WithLogging(drawHandler.Select))
	mux.HandleFunc("POST /draw/reset", middleware.WithLogging(drawHandler.ResetRound))
	mux.HandleFunc("POST /draw/confirm", middleware.WithLogging(drawHandler.ConfirmRound))
	mux.HandleFunc("GET /draw/roll", middleware.WithLogging(drawHandler.Roll))
	mux.HandleFunc("GET /draw/last/export.csv", middleware.WithLogging(drawHandler.ExportLastCSV))
	mux.HandleFunc("GET /draw/last/export.xlsx", middleware.WithLogging(drawHandler.ExportLastXLSX))
	mux.HandleFunc("POST /draw/history/reset", middleware.WithLogging(drawHandler.RequestHistoryReset))
	mux.HandleFunc("POST /draw/history/reset/confirm", middleware.WithLogging(drawHandler.ConfirmHistoryReset))
	mux.HandleFunc("POST /draw/history/reset/cancel", middleware.WithLogging(drawHandler.CancelHistoryReset))

	// Pool management (password protected)
	mux.HandleFunc("POST /pool/unlock", middleware.WithLogging(poolHandler.Unlock))
	mux.HandleFunc("POST /pool/lock", middleware.WithLogging(poolHandler.Lock))
	mux.HandleFunc("GET /pool", middleware.WithLogging(poolHandler.GetPool))
	mux.HandleFunc("POST /pool/import/text", middleware.WithLogging(imports.Limit(poolHandler.ImportText)))
	mux.HandleFunc("POST /pool/import/file", middleware.WithLogging(imports.Limit(poolHandler.ImportFile)))
	mux.HandleFunc("POST /pool/save-initial", middleware.WithLogging(poolHandler.RequestSaveInitial))
	mux.HandleFunc("POST /pool/save-initial/confirm", middleware.WithLogging(poolHandler.ConfirmSaveInitial))
	mux.HandleFunc("POST /pool/save-initial/cancel", middleware.WithLogging(poolHandler.CancelSaveInitial))
	mux.HandleFunc("POST /pool/reset", middleware.WithLogging(poolHandler.RequestReset))
	mux.HandleFunc("POST /pool/reset/confirm", middleware.WithLogging(poolHandler.ConfirmReset))
	mux.HandleFunc("POST /pool/reset/cancel", middleware.WithLogging(poolHandler.CancelReset))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("order-lottery API v1"))
	})

	// instrumentation sits next to the mux so it sees the matched pattern
	return middleware.CORS(middleware.WithSession(sessions, metrics.InstrumentHandler(mux)))
}
