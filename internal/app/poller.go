package app

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"

	"github.com/five82/chanwatch/internal/state"
)

const maxBackoff = 5 * time.Minute

// source is what the poller refreshes; *Watcher implements it.
type source interface {
	Board() string
	Refresh(ctx context.Context) ([]state.ThreadSummary, error)
}

// StartPoller launches a background goroutine that refreshes the store
// immediately and then every interval, waiting longer after consecutive
// failures. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, src source, interval time.Duration) {
	go func() {
		failures := 0
		for {
			if err := refresh(ctx, store, src); err != nil {
				failures++
			} else {
				failures = 0
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// refresh polls src once and records the outcome. A partial result, where
// some threads came back and others failed, is stored with its error but does
// not count as a failure for backoff.
func refresh(ctx context.Context, store *state.Store, src source) error {
	threads, err := src.Refresh(ctx)
	if err != nil && ctx.Err() != nil {
		return err
	}
	store.Update(src.Board(), threads, err)
	log := zerolog.Ctx(ctx)
	switch {
	case err != nil && threads == nil:
		log.Error().Stack().Err(err).Str("board", src.Board()).Msg("refresh failed")
		return err
	case err != nil:
		log.Warn().Stack().Err(err).Str("board", src.Board()).Int("threads", len(threads)).Msg("refresh partially failed")
	default:
		log.Debug().Str("board", src.Board()).Int("threads", len(threads)).Msg("refreshed")
	}
	return nil
}

// calculateBackoff returns the wait before the next poll: the base interval
// while polls succeed, doubling per consecutive failure up to maxBackoff (or
// the base interval when that is longer).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	b := &backoff.Backoff{Min: base, Max: max(maxBackoff, base), Factor: 2}
	return b.ForAttempt(float64(failures))
}
