package service

// limiter.go bounds the number of uploads parsed at once.
//
// Parsing materializes the whole file in memory. Callers that find every
// slot taken wait up to maxWait, then fail with ErrTooManyUploads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyUploads is returned when no upload slot frees up in time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// UploadLimiter caps concurrent upload parsing.
type UploadLimiter struct {
	sem     *semaphore.Weighted
	maxWait time.Duration
	active  atomic.Int64
}

// NewUploadLimiter allows at most maxConcurrent uploads at once.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &UploadLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, which the caller must Release. With a zero maxWait
// it fails at once when every slot is taken.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	if !l.sem.TryAcquire(1) {
		if err := l.wait(ctx); err != nil {
			return err
		}
	}
	l.active.Add(1)
	return nil
}

func (l *UploadLimiter) wait(ctx context.Context) error {
	if l.maxWait <= 0 {
		return ErrTooManyUploads
	}
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUploads
	}
	return nil
}

// Release frees a slot taken by Acquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Active returns the number of slots in use.
func (l *UploadLimiter) Active() int {
	return int(l.active.Load())
}
