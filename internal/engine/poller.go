package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/maskctl/internal/domain"
)

// DefaultPollInterval — интервал опроса по умолчанию.
const DefaultPollInterval = 10 * time.Second

// StatusFunc возвращает текущий снимок статуса операции.
type StatusFunc func(ctx context.Context) (domain.StatusSnapshot, error)

// ProgressFunc получает каждый промежуточный (нефинальный) снимок.
type ProgressFunc func(attempt int, snap domain.StatusSnapshot)

// PollerConfig — конфигурация Poller.
type PollerConfig struct {
	// Interval — пауза между запросами (default: 10s).
	Interval time.Duration

	// MaxWait — верхняя граница ожидания. 0 — без ограничения.
	MaxWait time.Duration

	// Clock и Sleeper подменяются в тестах.
	Clock   Clock
	Sleeper Sleeper

	Logger *slog.Logger
}

// Poller опрашивает источник статуса, пока тот не вернёт финальный статус.
type Poller struct {
	interval time.Duration
	maxWait  time.Duration
	clock    Clock
	sleeper  Sleeper
	logger   *slog.Logger
}

// NewPoller создаёт Poller.
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	clock := cfg.Clock
	if clock == nil {
		clock = RealClock{}
	}

	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		interval: interval,
		maxWait:  cfg.MaxWait,
		clock:    clock,
		sleeper:  sleeper,
		logger:   logger,
	}
}

// Poll вызывает fetch, пока статус не станет финальным.
//
// Финальный снимок возвращается сразу, без паузы. Нефинальный снимок
// передаётся в progress, после чего Poller ждёт Interval и повторяет запрос.
// Ошибка fetch прерывает опрос немедленно (*PollError), без повторов.
//
// Если задан MaxWait и операция не завершилась за это время, возвращается
// ErrWaitExceeded вместе с последним снимком. Проверка выполняется после
// каждого нефинального ответа, поэтому фактическое ожидание может превысить
// MaxWait не более чем на один Interval.
func (p *Poller) Poll(ctx context.Context, fetch StatusFunc, progress ProgressFunc) (domain.StatusSnapshot, error) {
	started := p.clock.Now()

	for attempt := 1; ; attempt++ {
		snap, err := fetch(ctx)
		if err != nil {
			return snap, &PollError{Attempt: attempt, Err: err}
		}

		p.logger.Debug("status polled",
			"id", snap.ID,
			"attempt", attempt,
			"status", snap.Status,
		)

		if snap.IsTerminal() {
			return snap, nil
		}

		if progress != nil {
			progress(attempt, snap)
		}

		if p.maxWait > 0 {
			if waited := p.clock.Now().Sub(started); waited >= p.maxWait {
				return snap, fmt.Errorf("%w: %s after %d polls, last status %s",
					ErrWaitExceeded, waited, attempt, snap.Status)
			}
		}

		if err := p.sleeper.Sleep(ctx, p.interval); err != nil {
			return snap, fmt.Errorf("poll interrupted: %w", err)
		}
	}
}
