package main

import (
	"context"
	"time"
)

// minSweepInterval bounds how often idle sessions are checked.
const minSweepInterval = time.Second

// sweepInterval checks twice per TTL, so a session outlives its TTL by at
// most half of it.
func sweepInterval(ttl time.Duration) time.Duration {
	if interval := ttl / 2; interval > minSweepInterval {
		return interval
	}
	return minSweepInterval
}

// sweepSessions ends idle game sessions every interval until ctx is done.
func (app *application) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.logger.Debug("session sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			app.logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			app.gameService.EvictIdle(ctx)
		}
	}
}
