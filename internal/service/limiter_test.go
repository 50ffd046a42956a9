package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestUploadLimiter_Slots(t *testing.T) {
	l := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() #%d error = %v", i, err)
		}
		if got := l.Active(); got != i {
			t.Errorf("Active() = %d, want %d", got, i)
		}
	}
	l.Release()
	l.Release()
	if got := l.Active(); got != 0 {
		t.Errorf("Active() after Release = %d, want 0", got)
	}
}

func TestUploadLimiter_Full(t *testing.T) {
	tests := []struct {
		name    string
		wait    time.Duration
		minWait time.Duration
	}{
		{"fails at once without wait", 0, 0},
		{"fails after wait", 50 * time.Millisecond, 40 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewUploadLimiter(1, tt.wait)
			if err := l.Acquire(context.Background()); err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			defer l.Release()

			start := time.Now()
			err := l.Acquire(context.Background())
			if !errors.Is(err, ErrTooManyUploads) {
				t.Errorf("Acquire() error = %v, want ErrTooManyUploads", err)
			}
			if elapsed := time.Since(start); elapsed < tt.minWait {
				t.Errorf("Acquire() returned after %v, want at least %v", elapsed, tt.minWait)
			}
			if got := l.Active(); got != 1 {
				t.Errorf("Active() = %d, want 1", got)
			}
		})
	}
}

func TestUploadLimiter_Cancel(t *testing.T) {
	l := NewUploadLimiter(1, 5*time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() did not return after cancel")
	}
}

func TestUploadLimiter_WaitsForRelease(t *testing.T) {
	l := NewUploadLimiter(1, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		l.Release()
	}()

	if err := l.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() after Release error = %v", err)
	}
	wg.Wait()
	l.Release()
}

func TestAddUpload_Limited(t *testing.T) {
	s := newTestService(t, nil, Options{MaxConcurrentUploads: 1})
	if err := s.limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer s.limiter.Release()

	_, err := s.AddUpload(context.Background(), "orders.csv", strings.NewReader(ordersCSV), nil)
	if !errors.Is(err, ErrTooManyUploads) {
		t.Errorf("AddUpload() error = %v, want ErrTooManyUploads", err)
	}
	if n := s.Registry().Len(); n != 0 {
		t.Errorf("Registry().Len() = %d, want 0", n)
	}
}
