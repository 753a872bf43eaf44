package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunTimerStopsWhenDone(t *testing.T) {
	tick := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		tick <- time.Time{}
	}
	calls := 0
	RunTimer(context.Background(), tick, func() bool {
		calls++
		return calls == 2
	})
	assert.Equal(t, 2, calls)
	assert.Len(t, tick, 1)
}

func TestRunTimerStopsOnCancelAndClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	RunTimer(ctx, make(chan time.Time), func() bool {
		t.Fatal("step after cancel")
		return true
	})

	tick := make(chan time.Time)
	close(tick)
	RunTimer(context.Background(), tick, func() bool {
		t.Fatal("step on closed channel")
		return true
	})
}
