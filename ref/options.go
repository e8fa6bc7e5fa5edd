package ref

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single store read.
	DefaultTimeout = 10 * time.Second
	// DefaultConcurrency bounds the number of store reads in flight.
	DefaultConcurrency = 16
)

// Option configures a Fetcher.
type Option func(f *Fetcher)

// WithLogger sets the logger used to report failed and discarded reads.
func WithLogger(log *zap.Logger) Option {
	return func(f *Fetcher) {
		if log == nil {
			log = zap.NewNop()
		}
		f.log = log
	}
}

// WithTimeout sets the maximum duration of a single store read. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithConcurrency sets the maximum number of store reads in flight.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithRateLimit limits the rate of store reads.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = limiter
	}
}
