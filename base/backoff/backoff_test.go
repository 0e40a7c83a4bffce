package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestGrowth(t *testing.T) {
	req := require.New(t)
	b := NewExponential(clock.NewMock(), time.Second, 5*time.Second)

	var got []time.Duration
	for i := 0; i < 5; i++ {
		got = append(got, b.Next())
		b.grow()
	}
	req.Equal([]time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}, got)

	b.Reset()
	req.Equal(time.Second, b.Next())
}

func TestWait(t *testing.T) {
	req := require.New(t)
	mock := clock.NewMock()
	b := NewExponential(mock, time.Second, 0)

	done := make(chan error)
	go func() { done <- b.Wait(context.Background()) }()
	// the timer is only registered once Wait runs
	for i := 0; i < 100; i++ {
		mock.Add(time.Second)
		select {
		case err := <-done:
			req.NoError(err)
			req.Equal(2*time.Second, b.Next())
			return
		case <-time.After(time.Millisecond):
		}
	}
	req.Fail("Wait never returned")
}

func TestWaitCancelled(t *testing.T) {
	req := require.New(t)
	b := NewExponential(clock.NewMock(), time.Hour, 0)
	c, cancel := context.WithCancel(context.Background())
	cancel()
	req.ErrorIs(b.Wait(c), context.Canceled)
	req.Equal(time.Hour, b.Next())
}
