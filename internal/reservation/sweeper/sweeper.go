package sweeper

import (
	"context"
	"time"

	"github.com/avolut/retail-stock-service/internal/reservation"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"go.uber.org/zap"
)

// Sweeper eagerly releases expired reservations on a timer. It is purely
// operational hygiene: every availability read already excludes expired
// holds, so correctness never depends on this job running.
type Sweeper struct {
	uc       reservation.UseCase
	interval time.Duration
	logger   logger.ZapLogger
}

func New(uc reservation.UseCase, interval time.Duration, log logger.ZapLogger) *Sweeper {
	return &Sweeper{
		uc:       uc,
		interval: interval,
		logger:   log,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting reservation sweeper", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping reservation sweeper")
			return
		case <-ticker.C:
			if _, err := s.uc.SweepExpired(ctx); err != nil {
				s.logger.Error("reservation sweep failed", zap.Error(err))
			}
		}
	}
}
