package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestSweepRemovesOnlyExpiredTokens(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshToken(ctx, 1, "live", time.Now().Add(time.Hour)))
	require.NoError(t, store.SaveRefreshToken(ctx, 1, "stale", time.Now().Add(-time.Hour)))
	require.NoError(t, store.SaveRefreshToken(ctx, 2, "stale-too", time.Now().Add(-time.Minute)))

	n := sweepExpiredRefreshTokens(store, zap.NewNop())
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, store.tokenCount())

	// the surviving row is still usable
	_, err := store.FindRefreshToken(ctx, 1, "live")
	assert.NoError(t, err)

	// a second sweep finds nothing
	assert.Equal(t, int64(0), sweepExpiredRefreshTokens(store, zap.NewNop()))
}

func TestExpiredRowIsInvisibleBeforeSweep(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshToken(ctx, 1, "stale", time.Now().Add(-time.Second)))

	// lazy expiry: reads treat the row as absent even before deletion
	_, err := store.FindRefreshToken(ctx, 1, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}
