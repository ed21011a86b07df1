package scheduler

import (
	"context"
	"time"

	"mirror/internal/logger"
)

// IntervalScheduler runs a task on a fixed interval. Cancellation is
// cooperative: the context is checked between runs, so an in-flight task
// always finishes.
type IntervalScheduler struct {
	Interval       time.Duration
	RunImmediately bool
	Name           string

	ctx   context.Context
	nowFn func() time.Time
}

func NewIntervalScheduler(ctx context.Context, interval time.Duration) *IntervalScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IntervalScheduler{
		Interval: interval,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks, running task every Interval until the context is cancelled.
func (s *IntervalScheduler) Start(task func()) {
	if s == nil {
		return
	}
	if task == nil {
		logger.Warnf("IntervalScheduler: task is nil, exit")
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("IntervalScheduler: invalid interval=%s, exit", s.Interval)
		return
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	startAt := s.nowFn().UTC()
	logger.Infof("IntervalScheduler: started name=%s interval=%s run_immediately=%v at=%s",
		s.Name, s.Interval, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		task()
	}

	timer := time.NewTimer(s.Interval)
	defer timer.Stop()
	for {
		select {
		case <-s.ctx.Done():
			logger.Infof("IntervalScheduler: ctx done, exit name=%s uptime=%s",
				s.Name, s.nowFn().UTC().Sub(startAt).Truncate(time.Second))
			return
		case <-timer.C:
		}
		task()
		timer.Reset(s.Interval)
	}
}
