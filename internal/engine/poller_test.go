package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/maskctl/internal/domain"
)

// fakeClock — управляемое время для тестов.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// fakeSleeper записывает паузы и сдвигает fakeClock.
type fakeSleeper struct {
	clock *fakeClock
	slept []time.Duration
	err   error
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.slept = append(s.slept, d)
	if s.clock != nil {
		s.clock.now = s.clock.now.Add(d)
	}
	return nil
}

// scriptedSource возвращает статусы по очереди; последний повторяется.
type scriptedSource struct {
	statuses []domain.Status
	errAt    int // номер вызова (с 1), на котором вернуть err; 0 — никогда
	err      error
	calls    int
}

func (s *scriptedSource) fetch(_ context.Context) (domain.StatusSnapshot, error) {
	s.calls++
	if s.errAt == s.calls {
		return domain.StatusSnapshot{}, s.err
	}
	idx := min(s.calls-1, len(s.statuses)-1)
	end := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	snap := domain.StatusSnapshot{ID: 42, Status: s.statuses[idx]}
	if snap.Status.IsTerminal() {
		snap.EndTime = &end
	}
	return snap, nil
}

func newTestPoller(sleeper Sleeper, clock Clock, maxWait time.Duration) *Poller {
	return NewPoller(PollerConfig{
		Interval: 10 * time.Second,
		MaxWait:  maxWait,
		Clock:    clock,
		Sleeper:  sleeper,
	})
}

func TestPoller_RunningThenSucceeded(t *testing.T) {
	src := &scriptedSource{statuses: []domain.Status{domain.StatusRunning, domain.StatusSucceeded}}
	sleeper := &fakeSleeper{}
	p := newTestPoller(sleeper, nil, 0)

	var progress []domain.Status
	snap, err := p.Poll(context.Background(), src.fetch, func(_ int, s domain.StatusSnapshot) {
		progress = append(progress, s.Status)
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, snap.Status)
	assert.NotNil(t, snap.EndTime)
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, []time.Duration{10 * time.Second}, sleeper.slept)
	assert.Equal(t, []domain.Status{domain.StatusRunning}, progress)
}

func TestPoller_TerminalOnFirstQuery(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusSucceeded, domain.StatusFailed, domain.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			src := &scriptedSource{statuses: []domain.Status{status}}
			sleeper := &fakeSleeper{}
			p := newTestPoller(sleeper, nil, 0)

			snap, err := p.Poll(context.Background(), src.fetch, nil)

			require.NoError(t, err)
			assert.Equal(t, status, snap.Status)
			assert.Equal(t, 1, src.calls)
			assert.Empty(t, sleeper.slept)
		})
	}
}

func TestPoller_FetchErrorStopsImmediately(t *testing.T) {
	cause := errors.New("connection refused")
	src := &scriptedSource{statuses: []domain.Status{domain.StatusRunning}, errAt: 1, err: cause}
	sleeper := &fakeSleeper{}
	p := newTestPoller(sleeper, nil, 0)

	_, err := p.Poll(context.Background(), src.fetch, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPollFailed)
	assert.ErrorIs(t, err, cause)

	var pErr *PollError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 1, pErr.Attempt)
	assert.Equal(t, 1, src.calls)
	assert.Empty(t, sleeper.slept)
}

func TestPoller_FetchErrorAfterProgress(t *testing.T) {
	cause := errors.New("HTTP 500")
	src := &scriptedSource{statuses: []domain.Status{domain.StatusPending, domain.StatusRunning}, errAt: 3, err: cause}
	sleeper := &fakeSleeper{}
	p := newTestPoller(sleeper, nil, 0)

	_, err := p.Poll(context.Background(), src.fetch, nil)

	var pErr *PollError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 3, pErr.Attempt)
	assert.Equal(t, 3, src.calls)
	assert.Len(t, sleeper.slept, 2)
}

func TestPoller_MaxWaitExceeded(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}
	src := &scriptedSource{statuses: []domain.Status{domain.StatusRunning}}
	sleeper := &fakeSleeper{clock: clock}
	p := newTestPoller(sleeper, clock, 25*time.Second)

	snap, err := p.Poll(context.Background(), src.fetch, nil)

	require.ErrorIs(t, err, ErrWaitExceeded)
	assert.NotErrorIs(t, err, ErrPollFailed)
	assert.Equal(t, domain.StatusRunning, snap.Status)
	// 0s, 10s, 20s ещё в пределах, на 30s превышение
	assert.Equal(t, 4, src.calls)
	assert.Len(t, sleeper.slept, 3)
}

func TestPoller_SleepCancelled(t *testing.T) {
	src := &scriptedSource{statuses: []domain.Status{domain.StatusRunning}}
	sleeper := &fakeSleeper{err: context.Canceled}
	p := newTestPoller(sleeper, nil, 0)

	_, err := p.Poll(context.Background(), src.fetch, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.calls)
}

func TestPoller_UnknownStatusIsNotTerminal(t *testing.T) {
	src := &scriptedSource{statuses: []domain.Status{domain.ParseStatus("queued"), domain.StatusSucceeded}}
	sleeper := &fakeSleeper{}
	p := newTestPoller(sleeper, nil, 0)

	snap, err := p.Poll(context.Background(), src.fetch, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, snap.Status)
	assert.Equal(t, 2, src.calls)
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(PollerConfig{})

	assert.Equal(t, DefaultPollInterval, p.interval)
	assert.IsType(t, RealClock{}, p.clock)
	assert.IsType(t, TimerSleeper{}, p.sleeper)
}

func TestTimerSleeper_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := TimerSleeper{}.Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
}
