package store

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// connectRetry controls how NewPostgres waits for a database that is still
// starting.
type connectRetry struct {
	Attempts int
	Backoff  time.Duration
	Max      time.Duration
}

func defaultConnectRetry() connectRetry {
	return connectRetry{Attempts: 5, Backoff: 500 * time.Millisecond, Max: 8 * time.Second}
}

// do runs fn until it succeeds, the attempts run out or ctx is done. The
// delay doubles after each failure with up to 25% jitter.
func (c connectRetry) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if c.Attempts <= 0 {
		c.Attempts = 1
	}

	delay := c.Backoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil || ctx.Err() != nil || attempt >= c.Attempts {
			return err
		}

		zap.L().Warn("store: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		jitter := time.Duration(rand.Float64() * 0.25 * float64(delay))
		timer := time.NewTimer(delay + jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay *= 2
		if c.Max > 0 && delay > c.Max {
			delay = c.Max
		}
	}
}
