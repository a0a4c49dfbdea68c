package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlacklist()

	assert.False(t, b.IsRevoked(ctx, "jti-1"))

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Hour))
	assert.True(t, b.IsRevoked(ctx, "jti-1"))
	assert.False(t, b.IsRevoked(ctx, "jti-2"))
}

func TestMemoryBlacklistIgnoresExpiredTokens(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlacklist()

	// Jeton déjà expiré : rien à révoquer
	require.NoError(t, b.Revoke(ctx, "old", 0))
	assert.False(t, b.IsRevoked(ctx, "old"))

	require.NoError(t, b.Revoke(ctx, "short", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.False(t, b.IsRevoked(ctx, "short"))
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "user:42", userKey("42"))
	assert.Equal(t, "blacklist:abc", blacklistKey("abc"))
}
