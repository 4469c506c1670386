package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UnbanSweeper lifts every ban whose scheduled time has passed.
type UnbanSweeper interface {
	UnbanDue(ctx context.Context) (int, error)
}

// UnbanWorker runs the sweep once on start, which recovers unbans that came
// due while the process was down, then on every tick.
type UnbanWorker struct {
	sweeper  UnbanSweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewUnbanWorker constructs the worker.
func NewUnbanWorker(sweeper UnbanSweeper, interval time.Duration, logger *zap.Logger) *UnbanWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &UnbanWorker{sweeper: sweeper, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *UnbanWorker) Run(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("unban worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns the number of users unbanned.
func (w *UnbanWorker) SweepOnce(ctx context.Context) (int, error) {
	return w.sweeper.UnbanDue(ctx)
}

func (w *UnbanWorker) sweep(ctx context.Context) {
	count, err := w.sweeper.UnbanDue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("unban sweep failed", zap.Error(err))
		}
		return
	}
	if count > 0 {
		w.logger.Info("unban sweep completed", zap.Int("unbanned", count))
	} else {
		w.logger.Debug("unban sweep completed", zap.Int("unbanned", 0))
	}
}
