package aiclassifier

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// IntervalLimiter serializes calls to the text-generation provider so that
// no two calls begin less than a fixed interval apart. One instance is
// constructed per process and shared by every run; it is safe for
// concurrent use.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// DefaultMinInterval bounds the aggregate provider call rate across a run.
const DefaultMinInterval = 2 * time.Second

// NewIntervalLimiter creates a limiter allowing one call per interval.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &IntervalLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next call may begin or the context is done.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
