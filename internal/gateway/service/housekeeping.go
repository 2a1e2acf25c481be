package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
)

// DefaultMagicLinkRetention is how long expired magic links stay visible on
// the dashboard before housekeeping removes them.
const DefaultMagicLinkRetention = 30 * 24 * time.Hour

// HousekeepingService periodically removes magic links that expired longer
// than Retention ago. Access logs are never pruned.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Metrics   *metrics.Metrics
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService returns a worker. A non-positive interval defaults
// to one hour, a non-positive retention to DefaultMagicLinkRetention.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultMagicLinkRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background. It cleans up once immediately.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs a single pass and returns the number of removed links.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := clock(s.Now).Add(-s.Retention)

	n, err := s.Store.MagicLinks().DeleteExpiredMagicLinks(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete expired magic links", slog.Any("error", err))
		return 0
	}

	s.Metrics.HousekeepingDeleted(n)
	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("deleted_magic_links", n),
		slog.Time("cutoff", cutoff),
	)
	return n
}
