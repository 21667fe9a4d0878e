// Package semaphore limits the number of exchanges that are processed at the
// same time.
package semaphore

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore limits the number of exchanges that can be processed
// concurrently.
//
// The zero value imposes no limit.
type Semaphore struct {
	n   int
	sem *semaphore.Weighted
}

// New returns a semaphore that allows n exchanges to be processed
// concurrently.
//
// If n is not positive there is no limit.
func New(n int) *Semaphore {
	if n <= 0 {
		return &Semaphore{}
	}

	return &Semaphore{
		n,
		semaphore.NewWeighted(int64(n)),
	}
}

// Limit returns the number of exchanges that can be processed concurrently.
//
// It returns 0 if there is no limit.
func (s *Semaphore) Limit() int {
	if s == nil || s.sem == nil {
		return 0
	}

	return s.n
}

// Acquire blocks until the caller may begin an exchange, or until ctx is
// canceled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s == nil || s.sem == nil {
		return nil
	}

	return s.sem.Acquire(ctx, 1)
}

// Release signals that an exchange has completed.
func (s *Semaphore) Release() {
	if s != nil && s.sem != nil {
		s.sem.Release(1)
	}
}
