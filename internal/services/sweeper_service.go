package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/logger"
)

// SweeperService closes listings once their expires_at passes.
type SweeperService struct {
	Jobs     *JobService
	Interval time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time

	retryAttempts int
	retryDelay    time.Duration
}

func NewSweeperService(jobs *JobService, interval time.Duration, log *zap.SugaredLogger) *SweeperService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SweeperService{
		Jobs:          jobs,
		Interval:      interval,
		log:           log.With(logger.FieldComponent, "sweeper"),
		now:           func() time.Time { return time.Now().UTC() },
		retryAttempts: 3,
		retryDelay:    time.Second,
	}
}

// Start sweeps once immediately, then on every tick until ctx is done.
// The returned channel closes when the loop has exited.
func (s *SweeperService) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
	return done
}

func (s *SweeperService) sweep(ctx context.Context) {
	// One cycle must not outlive the interval
	ctx, cancel := context.WithTimeout(ctx, s.Interval)
	defer cancel()

	if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
		s.log.Errorw("sweep failed", logger.FieldError, err)
	}
}

// SweepOnce closes every expired listing, retrying transient failures.
func (s *SweeperService) SweepOnce(ctx context.Context) (int64, error) {
	var closed int64
	err := retry(ctx, s.retryAttempts, s.retryDelay, s.log, func() error {
		var e error
		closed, e = s.Jobs.CloseExpired(ctx, s.now())
		return e
	})
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		s.log.Infow("expired jobs closed", logger.FieldCount, closed)
	}
	return closed, nil
}

// retry runs f up to attempts times with exponential backoff.
func retry(ctx context.Context, attempts int, sleep time.Duration, log *zap.SugaredLogger, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		log.Warnw("retrying", logger.FieldError, err, "attempt", i+1, "backoff", sleep)
		select {
		case <-ctx.Done():
			return apperr.Wrap(ctx.Err(), "retry cancelled")
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return apperr.Wrapf(err, "failed after %d attempts", attempts)
}
