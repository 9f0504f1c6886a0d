// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the access gates and the two-step confirmation used
by destructive operations.

# Secrets

Each protected area (drawing, pool management) has one stored hash
supplied by the deployment environment. The stored value is the hex
SHA-256 of the password:

	hash := auth.HashSecret("password")

A bcrypt hash ($2a$, $2b$, $2y$) is accepted as well. Unlock compares in
constant time. There is no lockout or attempt counting.

# Gates

	var g auth.Gate
	if err := g.Unlock(input, cfg.DrawPasswordHash); err != nil {
		// ErrInvalidSecret, flag unchanged
	}
	g.Lock()

# Confirmations

Reset and overwrite operations go through a Confirmation:

	c.Request()                 // first click, nothing happens
	err := c.Confirm(resetFunc) // second click, runs resetFunc
	c.Cancel()                  // abandons the request

Confirm returns ErrNotPending if Request was not called first.
*/
package auth
