package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/maskctl/internal/engine"
)

// Func — одна активация расписания. n начинается с 1.
// Ошибка останавливает Scheduler.
type Func func(ctx context.Context, n int) error

// Config — конфигурация Scheduler.
type Config struct {
	Schedule cron.Schedule

	// MaxRuns — сколько активаций выполнить. 0 — до отмены ctx.
	MaxRuns int

	// Clock и Sleeper подменяются в тестах.
	Clock   engine.Clock
	Sleeper engine.Sleeper

	Logger *slog.Logger
}

// Scheduler запускает Func в моменты срабатывания cron-расписания.
type Scheduler struct {
	schedule cron.Schedule
	maxRuns  int
	clock    engine.Clock
	sleeper  engine.Sleeper
	logger   *slog.Logger
}

// New создаёт Scheduler.
func New(cfg Config) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}

	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = engine.TimerSleeper{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		schedule: cfg.Schedule,
		maxRuns:  cfg.MaxRuns,
		clock:    clock,
		sleeper:  sleeper,
		logger:   logger,
	}
}

// Run ждёт очередного момента срабатывания и вызывает fn.
//
// Возвращает ошибку ctx при отмене, ошибку fn или nil после MaxRuns активаций.
func (s *Scheduler) Run(ctx context.Context, fn Func) error {
	for n := 1; s.maxRuns == 0 || n <= s.maxRuns; n++ {
		now := s.clock.Now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			return fmt.Errorf("cron schedule has no future activations")
		}

		s.logger.Info("waiting for next activation",
			"activation", n,
			"next_at", next.Format(time.RFC3339),
		)

		if err := s.sleeper.Sleep(ctx, next.Sub(now)); err != nil {
			return err
		}

		s.logger.Info("activation started", "activation", n)
		if err := fn(ctx, n); err != nil {
			return fmt.Errorf("activation %d: %w", n, err)
		}
	}

	return nil
}
