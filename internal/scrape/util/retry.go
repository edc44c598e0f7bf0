package util

import (
	"context"
	"time"
)

// Retry re-runs an operation after transient failures with
// multiplicative backoff. The zero value never retries.
type Retry struct {
	Max    int           // attempts beyond the first
	Delay  time.Duration // wait before the first retry
	Factor float64       // backoff multiplier between attempts
}

// Do runs fn until it succeeds or the attempts run out. permanent
// short-circuits retrying for errors that will not heal on their own;
// a done context always stops the loop.
func (r Retry) Do(ctx context.Context, permanent func(error) bool, fn func() error) error {
	delay := r.Delay
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= r.Max || ctx.Err() != nil {
			return err
		}
		if permanent != nil && permanent(err) {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
		if r.Factor > 1 {
			delay = time.Duration(float64(delay) * r.Factor)
		}
	}
}
