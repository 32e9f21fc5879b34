package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gold_price/internal/domain"
)

// DefaultRefreshInterval is the production cadence
const DefaultRefreshInterval = 5 * time.Minute

// RefreshScheduler calls Refresh on a fixed interval for the life of the process.
// Ticks run on a single goroutine, so a slow refresh delays the next tick
// instead of overlapping with it.
type RefreshScheduler struct {
	refresher domain.PriceRefresher
	interval  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc // non-nil while running
	wg     sync.WaitGroup
}

// NewRefreshScheduler creates a scheduler; a non-positive interval means DefaultRefreshInterval
func NewRefreshScheduler(refresher domain.PriceRefresher, interval time.Duration) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshScheduler{
		refresher: refresher,
		interval:  interval,
	}
}

// Interval returns the refresh cadence
func (s *RefreshScheduler) Interval() time.Duration {
	return s.interval
}

// Start begins the refresh loop. It returns domain.ErrAlreadyStarted if the
// loop is running; call Stop first to restart it.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("refresh scheduler: %w", domain.ErrAlreadyStarted)
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Gold price refresh scheduler stopped")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()

	slog.Info("Gold price refresh scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// tick runs one scheduled refresh. A panic or error is logged and the loop goes on.
func (s *RefreshScheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scheduled refresh panic recovered", slog.Any("panic", r))
		}
	}()

	slog.Info("Running scheduled gold price update", slog.Duration("interval", s.interval))
	if err := s.refresher.Refresh(ctx); err != nil {
		slog.Warn("Scheduled gold price update failed",
			slog.Any("error", err),
			slog.Bool("retriable", domain.IsRetriable(err)),
		)
	}
}

// Stop stops the loop and waits for an in-progress tick to finish
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
}
