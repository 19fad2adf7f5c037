package executor

import (
	"context"
	"time"
)

// Cancellable timed waits. Every suspension point in a run -- start and step
// delays, the pause wait, and all trigger waits -- goes through these two
// primitives so cancellation behaves the same at each site.

// sleep waits for d or until the context ends. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// pollUntil evaluates cond every interval until it holds, the timeout
// elapses, or the context ends. A timeout of zero polls forever. It reports
// whether cond held.
func pollUntil(ctx context.Context, interval, timeout time.Duration, cond func() bool) bool {
	if cond() {
		return true
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	var deadline <-chan time.Time
	if timeout > 0 {
		dt := time.NewTimer(timeout)
		defer dt.Stop()
		deadline = dt.C
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return false
		case <-tick.C:
			if cond() {
				return true
			}
		}
	}
}
