// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session keeps per-browser state keyed by a cookie id: access
// gates, the current drawing round and pending confirmations. Sessions
// live in memory only and are pruned after a period of inactivity.
package session
