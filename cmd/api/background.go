package main

import (
	"time"

	"ridepay/internal/ratelimiter"
)

func (app *application) cleanupRateLimiterEvery(rl *ratelimiter.FixedWindowRateLimiter, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if removed := rl.Cleanup(); removed > 0 {
				app.logger.Infow("expired rate limit windows removed", "count", removed)
			}
		}
	}()
}
