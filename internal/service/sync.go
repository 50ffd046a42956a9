package service

// sync.go runs the background reconciliation loop.
//
// Each tick pulls external changes into every open view whose model
// implements Syncer, then reconciles the view state against the new model
// version. Views idle longer than SessionTTL are closed on the same tick.
// A failed sync is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// StartSyncScheduler syncs open views every interval until ctx is cancelled.
func (s *Service) StartSyncScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		slog.Info("sync scheduler disabled")
		return
	}
	slog.Info("sync scheduler started",
		"interval", interval.String(),
		"session_ttl", s.opts.SessionTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.runSyncJob(ctx)
		}
	}
}

// runSyncJob performs one expire + sync cycle.
func (s *Service) runSyncJob(ctx context.Context) {
	start := time.Now()

	expired := s.ExpireViews(ctx, start)
	synced, failed := s.SyncViews(ctx)

	slog.Debug("sync job completed",
		"views_synced", synced,
		"views_failed", failed,
		"views_expired", expired,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// SyncViews pulls external changes into every syncable view and reconciles
// it. It returns the number of views synced and failed.
func (s *Service) SyncViews(ctx context.Context) (synced, failed int) {
	for _, v := range s.openViews() {
		if ctx.Err() != nil {
			return synced, failed
		}

		v.mu.Lock()
		syncer, ok := v.state.Source.(Syncer)
		if !ok {
			v.mu.Unlock()
			continue
		}
		err := syncer.Sync(ctx)
		v.state.RefreshModel()
		v.mu.Unlock()

		if err != nil {
			failed++
			slog.Warn("view sync failed", "view_id", v.id, "source", v.source.Key, "error", err)
			continue
		}
		synced++
	}
	return synced, failed
}

// ExpireViews closes views unused since now minus SessionTTL.
func (s *Service) ExpireViews(ctx context.Context, now time.Time) int {
	if s.opts.SessionTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.opts.SessionTTL)

	var stale []string
	for _, v := range s.openViews() {
		v.mu.Lock()
		if v.lastUsed.Before(cutoff) {
			stale = append(stale, v.id)
		}
		v.mu.Unlock()
	}

	closed := 0
	for _, id := range stale {
		if err := s.CloseView(ctx, id); err == nil {
			closed++
		}
	}
	return closed
}

func (s *Service) openViews() []*view {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*view, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, v)
	}
	return out
}
