// Package scheduler runs the periodic order jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/robfig/cron/v3"
)

type Deliverer interface {
	AutoDeliver(ctx context.Context, now time.Time) (int, error)
}

// DeliverySweeper moves overdue Shipped orders to Delivered on a cron schedule.
type DeliverySweeper struct {
	orders Deliverer
	log    *slog.Logger
	cron   *cron.Cron

	Now func() time.Time
}

func NewDeliverySweeper(orders Deliverer, schedule string, l *slog.Logger) (*DeliverySweeper, error) {
	if l == nil {
		l = slog.Default()
	}
	l = l.With("job", "delivery_sweep")

	s := &DeliverySweeper{orders: orders, log: l}
	cl := cronLogger{l}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("delivery sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *DeliverySweeper) Start() {
	s.cron.Start()
	s.log.Info("delivery_sweep_started", "next", s.Next())
}

// Stop waits for a running sweep to finish or for ctx to expire.
func (s *DeliverySweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("delivery_sweep_stop_timeout", "error", ctx.Err())
	}
}

func (s *DeliverySweeper) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce performs one sweep and returns how many orders were delivered.
func (s *DeliverySweeper) RunOnce(ctx context.Context) int {
	ctx = logging.IntoContext(ctx, s.log)
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	n, err := s.orders.AutoDeliver(ctx, now)
	if err != nil {
		s.log.Error("delivery_sweep_failed", "error", err)
		return 0
	}
	return n
}

type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
