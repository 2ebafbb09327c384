package main

import (
	"context"
	"time"
)

const stalePushTokenAge = 60 * 24 * time.Hour

// pruneStalePushTokensDaily drops push tokens that have not been refreshed
// in two months. Expo rejects receipts for dead tokens anyway; this keeps
// the fan-out queries small.
func (app *application) pruneStalePushTokensDaily() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		prune := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.store.PushTokens.PruneStaleTokens(ctx, stalePushTokenAge); err != nil {
				app.logger.Errorw("failed to prune stale push tokens", "error", err)
				return
			}
			app.logger.Infow("pruned stale push tokens", "older_than", stalePushTokenAge.String())
		}

		prune()
		for range ticker.C {
			prune()
		}
	}()
}
