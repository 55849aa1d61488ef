// Package jobs holds background maintenance scheduled with gocron.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Purger deletes funnel events older than a given age.
type Purger interface {
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Retention trims the funnel event log on a fixed interval.
type Retention struct {
	purger  Purger
	maxAge  time.Duration
	timeout time.Duration
	log     *slog.Logger
}

func NewRetention(purger Purger, retentionDays int) *Retention {
	return &Retention{
		purger:  purger,
		maxAge:  time.Duration(retentionDays) * 24 * time.Hour,
		timeout: 5 * time.Minute,
		log:     slog.Default().With("component", "retention"),
	}
}

// RunOnce performs a single purge pass.
func (r *Retention) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.purger.PurgeOlderThan(ctx, r.maxAge)
	if err != nil {
		r.log.Warn("funnel purge failed", "error", err)
		return
	}
	r.log.Info("funnel purge", "deleted", n, "max_age", r.maxAge.String())
}

// Start schedules RunOnce every interval, starting immediately. The returned
// scheduler must be shut down by the caller.
func (r *Retention) Start(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { r.RunOnce(context.Background()) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	return sched, nil
}
