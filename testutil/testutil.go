// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/order-lottery/app"
	"github.com/danielhkuo/order-lottery/auth"
	"github.com/danielhkuo/order-lottery/cliparse"
	"github.com/danielhkuo/order-lottery/pool"
	"github.com/danielhkuo/order-lottery/store"
)

// Passwords whose hashes GetTestConfig configures.
const (
	DrawPassword = "draw-secret"
	PoolPassword = "pool-secret"
)

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	loc, err := time.LoadLocation(cliparse.DefaultTimeZone)
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return cliparse.Config{
		Port:             cliparse.DefaultPort,
		StoreType:        store.TypeJSON,
		DrawPasswordHash: auth.HashSecret(DrawPassword),
		PoolPasswordHash: auth.HashSecret(PoolPassword),
		TimeZone:         cliparse.DefaultTimeZone,
		Location:         loc,
		RollInterval:     5 * time.Millisecond,
		LogLevel:         "error",
	}
}

// SetupTestState creates application state over a JSON store in a fresh
// temp dir, seeded with records.
func SetupTestState(t *testing.T, cfg cliparse.Config, records ...pool.Record) (*app.State, *store.FileStore) {
	t.Helper()

	fs := store.NewFileStore(t.TempDir())
	state, warnings := app.New(context.Background(), fs, cfg.Location)
	if len(warnings) > 0 {
		t.Fatalf("Unexpected load warnings: %v", warnings)
	}
	if len(records) > 0 {
		if _, applied := state.Import(records, pool.Append); !applied {
			t.Fatalf("Failed to seed test pool")
		}
	}
	return state, fs
}

// NewClient returns an HTTP client that keeps cookies, so consecutive
// requests share one session.
func NewClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// Do sends body as JSON (when not nil) and returns the response with its
// body read.
func Do(t *testing.T, client *http.Client, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return resp, data
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// DecodeJSON decodes data into v
func DecodeJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to decode JSON %q: %v", data, err)
	}
}
