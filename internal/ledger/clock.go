package ledger

import (
	"context"
	"fmt"
	"time"
)

// Clock is the ledger's authoritative time source, in unix seconds.
type Clock interface {
	UnixTimestamp(ctx context.Context) (int64, error)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func(ctx context.Context) (int64, error)

func (f ClockFunc) UnixTimestamp(ctx context.Context) (int64, error) {
	return f(ctx)
}

// SystemClock reads the host wall clock.
type SystemClock struct{}

func (SystemClock) UnixTimestamp(context.Context) (int64, error) {
	return time.Now().Unix(), nil
}

// FixedClock always returns the same timestamp.
func FixedClock(ts int64) Clock {
	return ClockFunc(func(context.Context) (int64, error) { return ts, nil })
}

// txClock memoises the first reading so every instruction in a transaction sees the same time.
type txClock struct {
	clock Clock
	read  bool
	value int64
}

func (c *txClock) now(ctx context.Context) (int64, error) {
	if c.read {
		return c.value, nil
	}
	ts, err := c.clock.UnixTimestamp(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrClockUnavailable, err)
	}
	c.read = true
	c.value = ts
	return ts, nil
}
