package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter caps how many documents per second a batch run opens. Useful when
// the manifest lives on a shared filesystem that throttles aggressive
// readers; zero or negative rate disables the cap.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter at filesPerSecond with the given burst.
func NewLimiter(filesPerSecond float64, burst int) *Limiter {
	if filesPerSecond <= 0 {
		return &Limiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(filesPerSecond), burst)}
}

// Wait blocks until the next document may be opened.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
