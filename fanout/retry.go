package fanout

import (
	"math"
	"time"
)

// RetryPolicy controls how often a failing call is attempted again.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first one.
	// Values below one are treated as one.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Multiplier grows the delay after every failed attempt. Values below
	// one are treated as one (constant delay).
	Multiplier float64
}

// DefaultRetryPolicy performs a single attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  1,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetries returns a copy of p allowing n additional attempts.
func (p RetryPolicy) WithRetries(n int) RetryPolicy {
	if n < 0 {
		n = 0
	}

	p.MaxAttempts = n + 1

	return p
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}

	return p.MaxAttempts
}

// delay returns the wait before the retry that follows failed attempt n (1-based).
func (p RetryPolicy) delay(n int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(p.InitialDelay) * math.Pow(mult, float64(n-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}

	return time.Duration(d)
}
