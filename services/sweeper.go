package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// RunSweeper closes idle views every interval until ctx is done.
func RunSweeper(ctx context.Context, svc DashboardService, interval time.Duration, logger *zap.Logger) error {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(interval).WaitForSchedule().Do(func() {
		if closed := svc.SweepIdle(time.Now()); len(closed) > 0 {
			logger.Info("idle sweep finished", zap.Int("closed", len(closed)))
		}
	})
	if err != nil {
		return err
	}

	logger.Info("idle view sweeper started", zap.Duration("interval", interval))
	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	logger.Info("idle view sweeper stopped")
	return nil
}
