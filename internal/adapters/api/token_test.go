package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpiresAtReadsTheExpClaim(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, expiry)

	got, ok := tokenExpiresAt(token)
	require.True(t, ok)
	assert.True(t, got.Equal(expiry))
}

func TestTokenExpiresAtToleratesGarbage(t *testing.T) {
	t.Parallel()

	_, ok := tokenExpiresAt("not-a-jwt")
	assert.False(t, ok)

	_, ok = tokenExpiresAt("")
	assert.False(t, ok)
}

func TestTokenExpiringSoon(t *testing.T) {
	t.Parallel()

	now := time.Now()

	assert.True(t, tokenExpiringSoon(signedToken(t, now.Add(10*time.Second)), now, 30*time.Second))
	assert.True(t, tokenExpiringSoon(signedToken(t, now.Add(-time.Minute)), now, 30*time.Second))
	assert.False(t, tokenExpiringSoon(signedToken(t, now.Add(time.Hour)), now, 30*time.Second))
	assert.False(t, tokenExpiringSoon("opaque-token", now, 30*time.Second), "tokens without exp never trigger proactive refresh")
}
