package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Prober checks whether the live backend is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// Scheduler periodically probes the backend so /health can report it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(prober Prober, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Start schedules the probe job and starts the underlying scheduler. The
// first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.prober.Probe(ctx); err != nil {
		s.logger.Warn("scheduler: backend probe failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	s.logger.Debug("scheduler: backend reachable", zap.Duration("took", time.Since(start)))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
