package backoff

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Exponential doubles the wait after every failed attempt, capped at limit
type Exponential struct {
	clock clock.Clock
	start time.Duration
	limit time.Duration
	next  time.Duration
}

func NewExponential(clk clock.Clock, start, limit time.Duration) *Exponential {
	if clk == nil {
		clk = clock.New()
	}
	b := &Exponential{clock: clk, start: start, limit: limit}
	b.Reset()
	return b
}

// Reset starts over from the initial wait after a success
func (b *Exponential) Reset() {
	b.next = b.start
}

// Next returns the wait the following Wait call sleeps for
func (b *Exponential) Next() time.Duration {
	return b.next
}

// Wait sleeps for the current wait and grows it. It returns ctx.Err() when
// ctx is done first.
func (b *Exponential) Wait(ctx context.Context) error {
	timer := b.clock.Timer(b.next)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	b.grow()
	return nil
}

func (b *Exponential) grow() {
	b.next *= 2
	if b.limit > 0 && b.next > b.limit {
		b.next = b.limit
	}
}
