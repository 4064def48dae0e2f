package booking

import (
	"context"
	"errors"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/metrics"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

const sweepBatch = 200

// Sweeper completes confirmed bookings whose occurrence date has passed.
type Sweeper struct {
	repo     Repository
	svc      Service
	calc     schedule.Calculator
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(repo Repository, svc Service, calc schedule.Calculator, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		svc:      svc,
		calc:     calc,
		interval: interval,
		now:      time.Now,
	}
}

// Start sweeps once immediately and then every interval until ctx is
// cancelled. A non-positive interval disables the sweep.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		logger.Info("Booking sweep disabled")
		return
	}
	logger.Info("Booking sweep started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Booking sweep failed")
		}

		select {
		case <-ctx.Done():
			logger.Info("Booking sweep stopped")
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce completes every confirmed booking dated before today and
// returns how many it moved.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	today := s.calc.Today(s.now())
	completed := 0

	for {
		due, err := s.repo.ListConfirmedBefore(ctx, today, sweepBatch)
		if err != nil {
			metrics.RecordSweep(completed)
			return completed, err
		}

		progressed := 0
		for _, b := range due {
			_, err := s.svc.CompleteBooking(ctx, auth.SystemActor, b.ID)
			switch {
			case err == nil:
				progressed++
			case errors.Is(err, apperr.ErrConflictingUpdate):
				// cancelled between listing and completing
			default:
				logger.Error("Booking sweep could not complete booking", "booking_id", b.ID, "error", err)
			}
		}
		completed += progressed

		if len(due) < sweepBatch || progressed == 0 {
			break
		}
	}

	metrics.RecordSweep(completed)
	if completed > 0 {
		logger.Info("Booking sweep completed bookings", "count", completed, "before", day(today))
	}
	return completed, nil
}
