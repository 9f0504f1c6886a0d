// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidSecret = errors.New("invalid secret")
	ErrNotPending    = errors.New("no pending confirmation")
)

// HashSecret returns the lowercase hex SHA-256 of secret. Stored hashes
// in the deployment environment are produced this way.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Unlock reports whether candidate hashes to storedHash. A bcrypt stored
// hash is checked with bcrypt; anything else is compared to the SHA-256
// hex digest of candidate.
func Unlock(candidate, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	if isBcrypt(storedHash) {
		return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
	}
	got := HashSecret(candidate)
	want := strings.ToLower(strings.TrimSpace(storedHash))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

// Gate is the unlocked flag of one protected area. The zero value is
// locked.
type Gate struct {
	unlocked bool
}

// Unlock sets the flag if candidate matches storedHash. A mismatch leaves
// the flag as it was and returns ErrInvalidSecret.
func (g *Gate) Unlock(candidate, storedHash string) error {
	if !Unlock(candidate, storedHash) {
		return ErrInvalidSecret
	}
	g.unlocked = true
	return nil
}

func (g *Gate) Lock() {
	g.unlocked = false
}

func (g *Gate) Unlocked() bool {
	return g.unlocked
}

// Confirmation guards a destructive action behind a request step and a
// confirm step. The zero value has nothing pending.
type Confirmation struct {
	pending bool
}

// Request marks the action as awaiting confirmation. It never mutates
// anything else.
func (c *Confirmation) Request() {
	c.pending = true
}

// Confirm runs action if a request is pending and clears the pending flag
// whether or not action fails.
func (c *Confirmation) Confirm(action func() error) error {
	if !c.pending {
		return ErrNotPending
	}
	c.pending = false
	return action()
}

// Cancel clears a pending request without running anything.
func (c *Confirmation) Cancel() {
	c.pending = false
}

func (c *Confirmation) Pending() bool {
	return c.pending
}
