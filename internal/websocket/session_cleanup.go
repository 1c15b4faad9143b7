package websocket

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired voice channel history
type Sweeper interface {
	Sweep() int
}

// HistoryCleanupService periodically sweeps in-process history. Stores with
// native expiry, such as Redis, do not need it.
type HistoryCleanupService struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewHistoryCleanupService creates a new history cleanup service
func NewHistoryCleanupService(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *HistoryCleanupService {
	if interval <= 0 {
		interval = 30 * time.Minute
		logger.Info("Using default history cleanup interval", zap.Duration("interval", interval))
	}
	return &HistoryCleanupService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Name identifies the service in a service group
func (s *HistoryCleanupService) Name() string { return "history-cleanup" }

// Run sweeps on every interval until ctx is done
func (s *HistoryCleanupService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("History cleanup service started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("History cleanup service stopped")
			return nil
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *HistoryCleanupService) runCleanup() {
	removed := s.sweeper.Sweep()
	s.logger.Debug("History cleanup completed", zap.Int("removed", removed))
}
