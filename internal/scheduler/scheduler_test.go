package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// advancingSleeper сдвигает часы вместо реального ожидания.
type advancingSleeper struct {
	clock  *fakeClock
	slept  []time.Duration
	cancel context.CancelFunc
	limit  int
}

func (s *advancingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if s.limit > 0 && len(s.slept) == s.limit && s.cancel != nil {
		s.cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.slept = append(s.slept, d)
	s.clock.now = s.clock.now.Add(d)
	return nil
}

func newTestScheduler(t *testing.T, expr string, maxRuns int, sleeper *advancingSleeper) *Scheduler {
	t.Helper()
	sched, err := ParseCron(expr)
	require.NoError(t, err)

	return New(Config{
		Schedule: sched,
		MaxRuns:  maxRuns,
		Clock:    sleeper.clock,
		Sleeper:  sleeper,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"*/15 * * * *", false},
		{"0 2 * * 1-5", false},
		{"@hourly", false},
		{"@every 30m", false},
		{"CRON_TZ=UTC 0 3 * * *", false},
		{"", true},
		{"* * *", true},
		{"0 0 0 * * *", true},
		{"not a cron", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseCron(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScheduler_RunsAtActivations(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 7, 0, 0, time.UTC)}
	sleeper := &advancingSleeper{clock: clock}
	s := newTestScheduler(t, "*/15 * * * *", 3, sleeper)

	var fired []time.Time
	err := s.Run(context.Background(), func(_ context.Context, n int) error {
		assert.Equal(t, len(fired)+1, n)
		fired = append(fired, clock.now)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 10, 45, 0, 0, time.UTC),
	}, fired)
	assert.Equal(t, 8*time.Minute, sleeper.slept[0])
}

func TestScheduler_ErrorStops(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	sleeper := &advancingSleeper{clock: clock}
	s := newTestScheduler(t, "@every 1m", 0, sleeper)

	boom := errors.New("unauthorized")
	calls := 0
	err := s.Run(context.Background(), func(_ context.Context, n int) error {
		calls++
		if n == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestScheduler_CancelWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	sleeper := &advancingSleeper{clock: clock, cancel: cancel, limit: 2}
	s := newTestScheduler(t, "@every 1m", 0, sleeper)

	calls := 0
	err := s.Run(ctx, func(context.Context, int) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
