// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/cliparse"
	"github.com/danielhkuo/order-lottery/logger"
	"github.com/danielhkuo/order-lottery/middleware"
	"github.com/danielhkuo/order-lottery/router"
	"github.com/danielhkuo/order-lottery/session"
	"github.com/danielhkuo/order-lottery/store"
)

const (
	sessionIdle  = 12 * time.Hour
	pruneSpec    = "@every 1m"
	importBurst  = 10
	importRefill = 3 * time.Second
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Error("Error parsing flags")
		os.Exit(1)
	}
	if err := logger.Setup(cfg.LogLevel); err != nil {
		logrus.WithError(err).Error("logger setup failed")
		os.Exit(1)
	}
	middleware.TrustProxyHeaders(cfg.TrustProxy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the pool and ledger store
	st, err := store.Open(ctx, cfg.StoreType, cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).WithField("store", cfg.StoreType).Error("store open failed")
		os.Exit(1)
	}
	defer st.Close()

	// Load failures fall back to defaults; they are logged, not fatal
	state, warnings := app.New(ctx, st, cfg.Location)
	for _, w := range warnings {
		logrus.WithError(w).Warn("startup load fell back to defaults")
	}
	logrus.WithFields(logrus.Fields{
		"store":   cfg.StoreType,
		"orders":  state.Pool().Total(),
		"winners": len(state.Winners()),
	}).Info("state loaded")

	sessions := session.NewManager()
	imports := middleware.NewRateLimiter(rate.Every(importRefill), importBurst)

	// Idle sessions and import budgets are dropped in the background
	scheduler := cron.New()
	_, err = scheduler.AddFunc(pruneSpec, func() {
		n := sessions.Prune(sessionIdle)
		m := imports.Prune(sessionIdle)
		if n > 0 || m > 0 {
			logrus.WithFields(logrus.Fields{
				"sessions": n,
				"limiters": m,
			}).Debug("idle state pruned")
		}
	})
	if err != nil {
		logrus.WithError(err).Error("prune schedule failed")
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := http.Server{
		Handler: router.NewRouter(state, sessions, imports, cfg),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	logrus.WithField("port", cfg.Port).Info("Listening")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("Server closed")
	} else {
		logrus.Info("Server closed")
	}
}
