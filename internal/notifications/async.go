package notifications

import (
	"context"
	"log"
	"time"
)

// CallAsync runs a notification send on its own goroutine with a fresh
// timeout, so a slow Expo call never blocks the request that caused it.
// Failures are logged under the given label and otherwise dropped;
// pushes are best effort.
func CallAsync(fn func(ctx context.Context) error, label string) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("notification %s panicked: %v", label, rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Printf("notification %s failed: %v", label, err)
		}
	}()
}

// dedupe drops empty and repeated tokens. A user can register the same
// device twice through reinstalls; Expo rejects duplicate recipients in
// one batch.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
