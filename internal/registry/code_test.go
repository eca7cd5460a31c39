package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
)

func TestCodeRegistry_Create(t *testing.T) {
	t.Run("creates a resolvable six character code", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)

		code, err := codes.Create("m1")

		require.NoError(t, err)
		assert.Len(t, code, 6)

		matchID, err := codes.Resolve(code)
		require.NoError(t, err)
		assert.Equal(t, "m1", matchID)
	})

	t.Run("codes are unique among live codes", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)
		seen := make(map[string]bool)

		for i := 0; i < 100; i++ {
			code, err := codes.Create("m1")
			require.NoError(t, err)
			require.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	})
}

func TestCodeRegistry_Claim(t *testing.T) {
	t.Run("grants an exclusive claim", func(t *testing.T) {
		// Given: a code for a pending match
		codes := NewCodeRegistry(15 * time.Second)
		code, err := codes.Create("m1")
		require.NoError(t, err)

		// When: bob claims it
		matchID, expiry, err := codes.Claim(code, "bob")

		// Then: the claim resolves the match and carries a future expiry
		require.NoError(t, err)
		assert.Equal(t, "m1", matchID)
		assert.True(t, expiry.After(time.Now()))
	})

	t.Run("a different claimant is locked out while the claim lives", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)
		code, err := codes.Create("m1")
		require.NoError(t, err)

		_, _, err = codes.Claim(code, "bob")
		require.NoError(t, err)

		// When: carol tries to claim the same code
		_, _, err = codes.Claim(code, "carol")

		// Then: she is told to retry later, not queued
		require.ErrorIs(t, err, apperror.ErrCodeClaimed)

		holder, live := codes.Holder(code)
		assert.True(t, live)
		assert.Equal(t, "bob", holder)
	})

	t.Run("the same claimant refreshes its claim", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)
		code, err := codes.Create("m1")
		require.NoError(t, err)

		_, first, err := codes.Claim(code, "bob")
		require.NoError(t, err)

		_, second, err := codes.Claim(code, "bob")
		require.NoError(t, err)

		assert.False(t, second.Before(first))
	})

	t.Run("an expired claim can be taken by a new claimant", func(t *testing.T) {
		// Given: a very short lease held by bob
		codes := NewCodeRegistry(20 * time.Millisecond)
		code, err := codes.Create("m1")
		require.NoError(t, err)

		_, _, err = codes.Claim(code, "bob")
		require.NoError(t, err)

		// When: the lease expires
		time.Sleep(30 * time.Millisecond)

		// Then: carol can claim the code
		_, _, err = codes.Claim(code, "carol")
		require.NoError(t, err)
	})

	t.Run("a released claim frees the code immediately", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)
		code, err := codes.Create("m1")
		require.NoError(t, err)

		_, _, err = codes.Claim(code, "bob")
		require.NoError(t, err)

		codes.ReleaseClaim(code, "bob")

		_, _, err = codes.Claim(code, "carol")
		require.NoError(t, err)
	})

	t.Run("release by a non-holder is ignored", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)
		code, err := codes.Create("m1")
		require.NoError(t, err)

		_, _, err = codes.Claim(code, "bob")
		require.NoError(t, err)

		codes.ReleaseClaim(code, "carol")

		_, _, err = codes.Claim(code, "carol")
		require.ErrorIs(t, err, apperror.ErrCodeClaimed)
	})

	t.Run("unknown code", func(t *testing.T) {
		codes := NewCodeRegistry(15 * time.Second)

		_, _, err := codes.Claim("nosuch", "bob")

		require.ErrorIs(t, err, apperror.ErrCodeNotFound)
	})
}

func TestCodeRegistry_Consume(t *testing.T) {
	// Given: a claimed code
	codes := NewCodeRegistry(15 * time.Second)
	code, err := codes.Create("m1")
	require.NoError(t, err)

	// When: the join succeeds and consumes it
	codes.Consume(code)

	// Then: the code is single-use
	_, err = codes.Resolve(code)
	require.ErrorIs(t, err, apperror.ErrCodeNotFound)

	_, _, err = codes.Claim(code, "carol")
	require.ErrorIs(t, err, apperror.ErrCodeNotFound)
}

func TestCodeRegistry_DropMatch(t *testing.T) {
	codes := NewCodeRegistry(15 * time.Second)

	code1, err := codes.Create("m1")
	require.NoError(t, err)
	code2, err := codes.Create("m2")
	require.NoError(t, err)

	codes.DropMatch("m1")

	_, err = codes.Resolve(code1)
	require.ErrorIs(t, err, apperror.ErrCodeNotFound)

	_, err = codes.Resolve(code2)
	require.NoError(t, err)
}
