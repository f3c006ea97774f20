package slack

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Retrier repeats a call that was rate limited. Other errors return at
// once. The wait is the server's Retry-After when given, otherwise
// Step multiplied by the attempt number.
type Retrier struct {
	Attempts int
	Step     time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
	Log      *zap.Logger
}

// NewRetrier returns a Retrier that sleeps on the real clock
func NewRetrier(attempts int, step time.Duration, log *zap.Logger) *Retrier {
	return &Retrier{Attempts: attempts, Step: step, Sleep: sleepContext, Log: log}
}

// Do calls fn until it succeeds, fails with a non-rate-limit error, or
// the attempts run out.
func (r *Retrier) Do(ctx context.Context, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		method, wait, limited := rateLimit(err)
		if err == nil || !limited || attempt == attempts {
			return err
		}

		if wait <= 0 {
			wait = r.Step * time.Duration(attempt)
		}
		if r.Log != nil {
			r.Log.Warn("Rate limited, waiting",
				zap.String("method", method),
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts))
		}
		if serr := r.Sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
