package quiz

import (
	"context"
	"time"
)

// TickerFunc starts a periodic ticker and returns its channel and a stop func.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func SystemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// RunTimer calls step for every tick until step reports done or ctx is
// cancelled.
func RunTimer(ctx context.Context, tick <-chan time.Time, step func() (done bool)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tick:
			if !ok || step() {
				return
			}
		}
	}
}
