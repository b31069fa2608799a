// Package clock holds the injectable delay and time sources used by the
// simulated typing, export and upload waits.
package clock

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Now returns the current time
type Now func() time.Time

// Sleep is the real Sleeper
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay returns immediately; tests use it to collapse simulated waits
func NoDelay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Fixed returns a Now that always reports t
func Fixed(t time.Time) Now {
	return func() time.Time { return t }
}
