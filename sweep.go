package main

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepExpiredRefreshTokens physically deletes whitelist rows past their
// expiry. Reads already treat those rows as absent, so the sweep only
// reclaims space; it never changes which tokens are accepted.
func sweepExpiredRefreshTokens(store Store, log *zap.Logger) int64 {
	n, err := store.DeleteExpiredRefreshTokens(context.Background())
	if err != nil {
		log.Error("refresh token sweep failed", zap.Error(err))
		return 0
	}
	log.Info("swept expired refresh tokens", zap.Int64("removed", n))
	return n
}

// startSweeper schedules the sweep outside the request path and returns the
// running scheduler so main can stop it on shutdown.
func startSweeper(schedule string, store Store, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		sweepExpiredRefreshTokens(store, log)
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
