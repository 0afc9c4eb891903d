package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/engine"
	"github.com/shaiso/maskctl/internal/masking"
	"github.com/shaiso/maskctl/internal/orchestrator"
)

// stubEngine — in-memory masking engine для меню.
type stubEngine struct {
	rulesets   []domain.Ruleset
	connectors []domain.Connector
	jobs       []domain.Job
	profile    []domain.Job

	executions map[int]*domain.Execution
	unauth     bool
	nextID     int
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		rulesets:   []domain.Ruleset{{ID: 1, Name: "customers", ConnectorID: 3}, {ID: 2, Name: "orders", ConnectorID: 3}},
		connectors: []domain.Connector{{ID: 3, Name: "crm-db"}},
		profile:    []domain.Job{{ID: 50, Name: "profile-crm", RulesetID: 1, Kind: domain.JobKindProfile}},
		executions: map[int]*domain.Execution{},
		nextID:     100,
	}
}

func (s *stubEngine) Login(_ context.Context, creds masking.Credentials) (domain.Session, error) {
	return domain.Session{Token: "t", Username: creds.Username}, nil
}

func (s *stubEngine) ListRulesets(context.Context, domain.Session) ([]domain.Ruleset, error) {
	if s.unauth {
		return nil, masking.ErrUnauthorized
	}
	return s.rulesets, nil
}

func (s *stubEngine) CreateRuleset(_ context.Context, _ domain.Session, spec domain.RulesetSpec) (*domain.Ruleset, error) {
	s.nextID++
	rs := domain.Ruleset{ID: s.nextID, Name: spec.Name, ConnectorID: spec.ConnectorID}
	s.rulesets = append(s.rulesets, rs)
	return &rs, nil
}

func (s *stubEngine) ListConnectors(context.Context, domain.Session) ([]domain.Connector, error) {
	return s.connectors, nil
}

func (s *stubEngine) ListMaskingJobs(context.Context, domain.Session) ([]domain.Job, error) {
	return append([]domain.Job(nil), s.jobs...), nil
}

func (s *stubEngine) ListProfileJobs(context.Context, domain.Session) ([]domain.Job, error) {
	return s.profile, nil
}

func (s *stubEngine) GetMaskingJob(_ context.Context, _ domain.Session, id int) (*domain.Job, error) {
	for _, j := range s.jobs {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, &masking.APIError{StatusCode: 404}
}

func (s *stubEngine) CreateMaskingJob(_ context.Context, _ domain.Session, spec domain.JobSpec) (*domain.Job, error) {
	s.nextID++
	job := domain.Job{ID: s.nextID, Name: spec.Name, RulesetID: spec.RulesetID, Kind: domain.JobKindMasking}
	s.jobs = append(s.jobs, job)
	return &job, nil
}

func (s *stubEngine) CreateExecution(_ context.Context, _ domain.Session, jobID int) (*domain.Execution, error) {
	exec := &domain.Execution{ID: jobID * 10, JobID: jobID, Status: domain.StatusRunning}
	s.executions[exec.ID] = exec
	return exec, nil
}

func (s *stubEngine) GetExecution(_ context.Context, _ domain.Session, id int) (*domain.Execution, error) {
	exec, ok := s.executions[id]
	if !ok {
		return nil, &masking.APIError{StatusCode: 404}
	}
	done := *exec
	done.Status = domain.StatusSucceeded
	return &done, nil
}

func (s *stubEngine) RefreshRuleset(context.Context, domain.Session, int) (int, error) {
	return 9, nil
}

func (s *stubEngine) GetAsyncTask(_ context.Context, _ domain.Session, id int) (*domain.AsyncTask, error) {
	return &domain.AsyncTask{ID: id, Status: domain.StatusSucceeded}, nil
}

type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func runMenu(t *testing.T, eng *stubEngine, input string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	orch := orchestrator.New(orchestrator.Config{
		Engine:   eng,
		Poller:   engine.NewPoller(engine.PollerConfig{Interval: time.Millisecond, Sleeper: noSleep{}, Logger: logger}),
		Reporter: NewConsoleReporter(&out),
		Logger:   logger,
	})

	m := NewMenu(eng, orch, domain.Session{Token: "t"}, strings.NewReader(input), NewOutputTo(false, &out, &errOut))
	err := m.Run(context.Background())
	return out.String(), errOut.String(), err
}

func TestMenu_ListAndExit(t *testing.T) {
	out, _, err := runMenu(t, newStubEngine(), "1\n2\n0\n")
	require.NoError(t, err)

	assert.Contains(t, out, "1. List existing rulesets")
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "crm-db")
	assert.Contains(t, out, "Exiting...")
}

func TestMenu_EOFExits(t *testing.T) {
	out, _, err := runMenu(t, newStubEngine(), "1\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Exiting...")
}

func TestMenu_InvalidInputContinues(t *testing.T) {
	out, _, err := runMenu(t, newStubEngine(), "abc\n42\n6\nnot-a-number\n0\n")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "Invalid choice. Please try again."))
	assert.Contains(t, out, "Invalid input. Please enter a numeric ruleset ID.")
	assert.Contains(t, out, "Exiting...")
}

func TestMenu_CreateRunAndCheck(t *testing.T) {
	eng := newStubEngine()

	out, errOut, err := runMenu(t, eng, strings.Join([]string{
		"7", "1-2", // jobs для rulesets 1 и 2
		"8", "101-102", // запуск без ожидания
		"10", "1010,1020,5", // 5 не существует
		"0",
	}, "\n")+"\n")
	require.NoError(t, err)

	require.Len(t, eng.jobs, 2)
	assert.Equal(t, "customers", eng.jobs[0].Name)
	assert.Contains(t, out, "OK   create_job 1")
	assert.Contains(t, out, "OK   run_job 101: execution 1010 RUNNING")
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "SUCCEEDED")
	assert.Contains(t, errOut, "2 succeeded, 0 failed")
}

func TestMenu_RefreshAndRunProfile(t *testing.T) {
	out, _, err := runMenu(t, newStubEngine(), "9\n50\n0\n")
	require.NoError(t, err)

	assert.Contains(t, out, "profile-crm")
	assert.Contains(t, out, "Final ruleset refresh status: SUCCEEDED")
	assert.Contains(t, out, "Final job status: SUCCEEDED")
}

func TestMenu_UnauthorizedStops(t *testing.T) {
	eng := newStubEngine()
	eng.unauth = true

	_, _, err := runMenu(t, eng, "1\n2\n0\n")
	assert.ErrorIs(t, err, masking.ErrUnauthorized)
}
