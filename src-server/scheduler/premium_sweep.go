package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stellarbot/src-server/premium"
	"stellarbot/src-server/utils"

	"github.com/go-co-op/gocron"
)

const (
	premiumSweepTag     = "premium-sweep"
	premiumSweepTimeout = 10 * time.Minute
)

// PremiumSweep removes the premium role from unentitled members every
// PREMIUM_SWEEP_INTERVAL, starting one interval after startup. Runs never
// overlap. The scheduler stops on graceful shutdown.
func PremiumSweep(as *utils.AppState) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	interval := as.Config.GetPremiumSweepInterval()
	if _, err := s.Every(interval).
		WaitForSchedule().
		Tag(premiumSweepTag).
		Do(runPremiumSweep, as); err != nil {
		return nil, fmt.Errorf("PremiumSweep: can't schedule: %w", err)
	}

	s.StartAsync()
	as.OnGracefulShutdown(s.Stop)
	slog.Info("premium sweep scheduled", "interval", interval)
	return s, nil
}

func runPremiumSweep(as *utils.AppState) {
	ctx, cancel := context.WithTimeout(context.Background(), premiumSweepTimeout)
	defer cancel()

	removed, err := premium.Sweep(ctx, as, time.Now())
	if err != nil {
		as.ReportError(err, "premium sweep")
	}
	slog.Info("premium sweep done", "removed", removed)
}
