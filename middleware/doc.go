// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug level (method, path, remote) and completion
(duration_ms) through logrus.

# Sessions

WithSession resolves the lottery_session cookie to a session.Session and
stores it in the request context; a new cookie is issued for first visits
and for ids the server no longer knows:

	handler := middleware.WithSession(sessions, mux)

	s := middleware.SessionFrom(r.Context())

# Rate Limiting

RateLimiter keeps a token bucket per session (per client IP for requests
without one) and answers 429 with a Retry-After header once it is empty.
The router puts it in front of the pool import endpoints:

	imports := middleware.NewRateLimiter(rate.Every(3*time.Second), 10)
	mux.HandleFunc("POST /pool/import/text", imports.Limit(poolHandler.ImportText))

The password endpoints are never throttled.

Prune drops buckets of clients that have gone quiet.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

The request origin is echoed back with credentials allowed so the session
cookie works from a separately served frontend.

# JSON Helpers

Write JSON responses (HTML and non-ASCII characters are not escaped):

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse and validate JSON request bodies against their validate tags:

	var req models.RoundConfigRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

# Client IP Extraction

Get the client IP. X-Forwarded-For and X-Real-IP are honoured only after
TrustProxyHeaders(true), which main calls when -trust-proxy is set:

	middleware.TrustProxyHeaders(cfg.TrustProxy)
	ip := middleware.GetClientIP(r)

Used in request logs and as the rate limit key for requests without a
session.
*/
package middleware
