// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashSecret(t *testing.T) {
	// sha256("password")
	want := "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	assert.Equal(t, want, HashSecret("password"))
	assert.Len(t, HashSecret(""), 64)
	assert.NotEqual(t, HashSecret("a"), HashSecret("b"))
}

func TestUnlock(t *testing.T) {
	stored := HashSecret("抽奖密码")
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name      string
		candidate string
		stored    string
		want      bool
	}{
		{"sha256 match", "抽奖密码", stored, true},
		{"sha256 uppercase stored", "抽奖密码", strings.ToUpper(stored), true},
		{"sha256 mismatch", "wrong", stored, false},
		{"empty candidate", "", stored, false},
		{"empty stored hash", "", "", false},
		{"bcrypt match", "s3cret", string(bcryptHash), true},
		{"bcrypt mismatch", "nope", string(bcryptHash), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unlock(tt.candidate, tt.stored))
		})
	}
}

func TestGate(t *testing.T) {
	stored := HashSecret("open")
	var g Gate
	assert.False(t, g.Unlocked())

	err := g.Unlock("closed", stored)
	assert.ErrorIs(t, err, ErrInvalidSecret)
	assert.False(t, g.Unlocked())

	// unlimited retries
	for i := 0; i < 5; i++ {
		assert.Error(t, g.Unlock("closed", stored))
	}

	require.NoError(t, g.Unlock("open", stored))
	assert.True(t, g.Unlocked())

	// a failed attempt does not relock
	assert.Error(t, g.Unlock("closed", stored))
	assert.True(t, g.Unlocked())

	g.Lock()
	assert.False(t, g.Unlocked())
}

func TestConfirmation(t *testing.T) {
	var c Confirmation
	mutations := 0
	action := func() error {
		mutations++
		return nil
	}

	// confirm without request does nothing
	assert.ErrorIs(t, c.Confirm(action), ErrNotPending)
	assert.Equal(t, 0, mutations)

	// request alone does not mutate
	c.Request()
	assert.True(t, c.Pending())
	assert.Equal(t, 0, mutations)

	// cancel clears without mutating
	c.Cancel()
	assert.False(t, c.Pending())
	assert.ErrorIs(t, c.Confirm(action), ErrNotPending)
	assert.Equal(t, 0, mutations)

	// request then confirm mutates once and clears
	c.Request()
	require.NoError(t, c.Confirm(action))
	assert.Equal(t, 1, mutations)
	assert.False(t, c.Pending())
	assert.ErrorIs(t, c.Confirm(action), ErrNotPending)
	assert.Equal(t, 1, mutations)
}

func TestConfirmation_ActionErrorClearsPending(t *testing.T) {
	var c Confirmation
	boom := errors.New("disk full")

	c.Request()
	err := c.Confirm(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Pending())
}
