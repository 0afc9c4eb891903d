package engine

import (
	"context"
	"time"
)

// Clock — источник текущего времени.
type Clock interface {
	Now() time.Time
}

// Sleeper — примитив ожидания между опросами.
// Sleep должен возвращать ошибку контекста, если ctx отменён раньше.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock — Clock на основе time.Now.
type RealClock struct{}

// Now возвращает текущее время.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TimerSleeper — Sleeper на основе time.Timer с поддержкой отмены.
type TimerSleeper struct{}

// Sleep блокируется на d или до отмены ctx.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
