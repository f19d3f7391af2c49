package jobs

import (
	"context"
	"time"

	"blackwallet.backend/pkg/logger"
	"go.uber.org/zap"
)

// SpendingRoller zeroes every wallet's daily spending counter.
type SpendingRoller interface {
	RollOverDailySpending(ctx context.Context) (int64, error)
}

// RolloverGuard coordinates instances so a day is rolled over exactly once.
// RunOnce calls roll unless the day was already rolled and reports whether
// it ran.
type RolloverGuard interface {
	RunOnce(ctx context.Context, day string, roll func(context.Context) error) (bool, error)
}

// DailySpendingRolloverJob resets spending counters once per UTC day.
// With a nil guard the job assumes it is the only instance.
type DailySpendingRolloverJob struct {
	roller   SpendingRoller
	guard    RolloverGuard
	interval time.Duration
	now      func() time.Time
	lastDay  string
	stop     chan struct{}
}

func NewDailySpendingRolloverJob(roller SpendingRoller, guard RolloverGuard, interval time.Duration) *DailySpendingRolloverJob {
	if interval <= 0 {
		interval = time.Minute
	}
	now := func() time.Time { return time.Now().UTC() }
	return &DailySpendingRolloverJob{
		roller:   roller,
		guard:    guard,
		interval: interval,
		now:      now,
		lastDay:  dayKey(now()),
		stop:     make(chan struct{}),
	}
}

func (j *DailySpendingRolloverJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting daily spending rollover job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Daily spending rollover job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Daily spending rollover job stopped")
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *DailySpendingRolloverJob) Stop() {
	close(j.stop)
}

// tick rolls over when the UTC date has changed since the last successful run.
// A failed run is retried on the next tick.
func (j *DailySpendingRolloverJob) tick(ctx context.Context) {
	today := dayKey(j.now())
	if today == j.lastDay {
		return
	}

	var n int64
	roll := func(ctx context.Context) error {
		var err error
		n, err = j.roller.RollOverDailySpending(ctx)
		return err
	}

	ran := true
	var err error
	if j.guard != nil {
		ran, err = j.guard.RunOnce(ctx, today, roll)
	} else {
		err = roll(ctx)
	}
	if err != nil {
		logger.Error(ctx, "Daily spending rollover failed", zap.String("day", today), zap.Error(err))
		return
	}

	j.lastDay = today
	if !ran {
		logger.Info(ctx, "Daily spending already rolled over by another instance", zap.String("day", today))
		return
	}
	logger.Info(ctx, "Daily spending rolled over", zap.String("day", today), zap.Int64("wallets", n))
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
