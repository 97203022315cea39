package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Job one scheduled unit of work
type Job func(ctx context.Context) error

// Daily runs a job once a day at a fixed local clock time, retrying failed
// runs a bounded number of times.
type Daily struct {
	Name          string
	Hour, Minute  int
	RetryCount    int
	RetryInterval time.Duration
	Job           Job
	Logger        *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewDaily clock is "HH:MM".
func NewDaily(name, clock string, retryCount int, retryInterval time.Duration, job Job, logger *zap.Logger) (*Daily, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daily{
		Name:          name,
		Hour:          h,
		Minute:        m,
		RetryCount:    retryCount,
		RetryInterval: retryInterval,
		Job:           job,
		Logger:        logger.With(zap.String("component", "scheduler"), zap.String("job", name)),
		now:           time.Now,
		after:         time.After,
	}, nil
}

// ParseClock parses "HH:MM" in 24h form.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q, want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// NextRun first hour:minute strictly after now, in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start runs the schedule until ctx ends.
func (d *Daily) Start(ctx context.Context) {
	go d.loop(ctx)
}

func (d *Daily) loop(ctx context.Context) {
	for {
		now := d.now()
		next := NextRun(now, d.Hour, d.Minute)
		wait := next.Sub(now)
		d.Logger.Info("next run scheduled", zap.Time("at", next), zap.Duration("in", wait.Round(time.Minute)))

		select {
		case <-ctx.Done():
			return
		case <-d.after(wait):
		}
		d.RunWithRetry(ctx)
	}
}

// RunWithRetry runs the job, retrying up to RetryCount times.
func (d *Daily) RunWithRetry(ctx context.Context) error {
	var err error
	for i := 0; i <= d.RetryCount; i++ {
		if i > 0 {
			d.Logger.Info("retrying", zap.Int("attempt", i))
		}
		start := d.now()
		if err = d.Job(ctx); err == nil {
			d.Logger.Info("run completed", zap.Duration("took", d.now().Sub(start)))
			return nil
		}
		d.Logger.Warn("run failed", zap.Int("attempt", i), zap.Error(err))
		if i == d.RetryCount {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.after(d.RetryInterval):
		}
	}
	d.Logger.Error("run failed after retries", zap.Int("retries", d.RetryCount), zap.Error(err))
	return err
}
