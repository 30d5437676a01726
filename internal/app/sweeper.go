package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/service"
)

// Sweeper runs the daily cleanup of pending appointment requests whose date
// has passed without the teacher acting on them.
type Sweeper struct {
	appointments *service.AppointmentService
	logger       *zap.Logger
	stopChan     chan struct{}
}

func NewSweeper(appointments *service.AppointmentService, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		appointments: appointments,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting background sweeper")
	go s.run(ctx)
}

// Stop stops the background loop.
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping background sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// First sweep right at startup, then daily.
	s.sweep(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Sweep task cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.appointments.SweepStalePending(ctx); err != nil {
		s.logger.Error("Failed to sweep stale appointments", zap.Error(err))
	}
}
