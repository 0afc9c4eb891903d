package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/engine"
	"github.com/shaiso/maskctl/internal/masking"
	"github.com/shaiso/maskctl/internal/telemetry"
)

// Orchestrator выполняет workflow над masking engine.
//
// Состояние между вызовами не хранится: всё, что нужно workflow,
// передаётся аргументами (в том числе domain.Session).
type Orchestrator struct {
	api         Engine
	provisioner *Provisioner
	poller      *engine.Poller
	reporter    Reporter
	metrics     *telemetry.Metrics
	clock       engine.Clock
	logger      *slog.Logger

	requireRefreshSuccess bool
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Engine — клиент masking API (обязателен).
	Engine Engine

	// Poller — опрос статусов (default: engine.NewPoller с интервалом 10s).
	Poller *engine.Poller

	// Reporter — получатель прогресса (default: NopReporter).
	Reporter Reporter

	// Metrics — Prometheus метрики; nil отключает.
	Metrics *telemetry.Metrics

	// Clock — для измерения времени ожидания (default: engine.RealClock).
	Clock engine.Clock

	// RequireRefreshSuccess — не запускать job, если refresh ruleset
	// завершился не SUCCEEDED.
	RequireRefreshSuccess bool

	Logger *slog.Logger
}

// RunOptions — параметры запуска job.
type RunOptions struct {
	// Wait — дождаться финального статуса execution.
	Wait bool
}

// JobRef — ссылка на job с указанием типа.
type JobRef struct {
	ID   int
	Kind domain.JobKind
}

// RefreshRunResult — итог workflow refresh → run.
type RefreshRunResult struct {
	Job       *domain.Job           `json:"job"`
	Refresh   domain.StatusSnapshot `json:"refresh"`
	Execution *domain.Execution     `json:"execution,omitempty"`
}

// New создаёт Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	poller := cfg.Poller
	if poller == nil {
		poller = engine.NewPoller(engine.PollerConfig{Logger: logger})
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}

	return &Orchestrator{
		api:                   cfg.Engine,
		provisioner:           NewProvisioner(cfg.Engine, logger),
		poller:                poller,
		reporter:              reporter,
		metrics:               cfg.Metrics,
		clock:                 clock,
		logger:                logger,
		requireRefreshSuccess: cfg.RequireRefreshSuccess,
	}
}

// workflow — контекст одного вызова публичной операции.
type workflow struct {
	id     string
	op     Operation
	logger *slog.Logger
}

func (o *Orchestrator) begin(ctx context.Context, op Operation) (context.Context, *workflow) {
	id := uuid.NewString()
	logger := telemetry.WithWorkflowID(o.logger, id).With("operation", op)
	return telemetry.WithLogger(ctx, logger), &workflow{id: id, op: op, logger: logger}
}

// finish строит ItemResult, пишет метрику и отдаёт результат в Reporter.
func (o *Orchestrator) finish(wf *workflow, id int, err error, fill func(*ItemResult)) ItemResult {
	res := ItemResult{
		WorkflowID: wf.id,
		Operation:  wf.op,
		ID:         id,
		OK:         err == nil,
	}
	if fill != nil {
		fill(&res)
	}

	outcome := "ok"
	if err != nil {
		res.Kind = Classify(err)
		res.Message = err.Error()
		outcome = string(res.Kind)

		wf.logger.Warn("item failed", "id", id, "kind", res.Kind, "error", err)
	}

	o.metrics.ObserveItem(string(wf.op), outcome)
	o.reporter.ItemDone(res)
	return res
}

// --- Single operations ---

// CreateJob создаёт masking job name для ruleset rulesetID.
func (o *Orchestrator) CreateJob(ctx context.Context, sess domain.Session, rulesetID int, name string) (*domain.Job, error) {
	ctx, wf := o.begin(ctx, OpCreateJob)

	job, err := o.provisioner.Create(ctx, sess, rulesetID, name)
	o.finish(wf, rulesetID, err, func(r *ItemResult) { r.Job = job })
	return job, err
}

// RunJob запускает job. С opts.Wait дожидается финального статуса;
// статус, отличный от SUCCEEDED, возвращается как *StatusError.
func (o *Orchestrator) RunJob(ctx context.Context, sess domain.Session, jobID int, opts RunOptions) (*domain.Execution, error) {
	ctx, wf := o.begin(ctx, OpRunJob)

	exec, err := o.runJob(ctx, wf, sess, jobID, opts)
	o.finish(wf, jobID, err, func(r *ItemResult) { r.Execution = exec })
	return exec, err
}

// RefreshAndRun обновляет ruleset job, дожидается refresh и запускает job.
//
// Execution создаётся только после того, как опрос refresh вернул
// финальный статус. Неуспешный refresh по умолчанию не блокирует запуск
// (только логируется и попадает в отчёт); Config.RequireRefreshSuccess
// меняет это поведение.
func (o *Orchestrator) RefreshAndRun(ctx context.Context, sess domain.Session, ref JobRef) (*RefreshRunResult, error) {
	ctx, wf := o.begin(ctx, OpRefreshRun)

	result, err := o.refreshAndRun(ctx, wf, sess, ref)
	o.finish(wf, ref.ID, err, func(r *ItemResult) {
		if result == nil {
			return
		}
		r.Job = result.Job
		r.Execution = result.Execution
		if result.Refresh.Status != "" {
			refresh := result.Refresh
			r.Refresh = &refresh
		}
	})
	return result, err
}

// --- Batch operations ---

// CreateJobsFromRulesets создаёт по masking job на каждый ruleset,
// называя job именем ruleset.
//
// Список rulesets читается один раз. Ошибка элемента записывается в его
// результат, обработка продолжается; ErrUnauthorized прерывает пакет.
// Если список прочитать не удалось, каждый ID получает результат с этой
// ошибкой.
func (o *Orchestrator) CreateJobsFromRulesets(ctx context.Context, sess domain.Session, rulesetIDs []int) (*BatchResult, error) {
	ctx, wf := o.begin(ctx, OpCreateJob)
	batch := &BatchResult{WorkflowID: wf.id, Operation: wf.op, Items: []ItemResult{}}

	if len(rulesetIDs) == 0 {
		return batch, nil
	}

	rulesets, err := o.api.ListRulesets(ctx, sess)
	if err != nil {
		// без каталога ни один ID не проверить: ошибка записывается каждому
		err = fmt.Errorf("list rulesets: %w", err)
		for _, id := range rulesetIDs {
			batch.Items = append(batch.Items, o.finish(wf, id, err, nil))
		}
		if isFatal(err) {
			return batch, err
		}
		return batch, nil
	}

	byID := make(map[int]domain.Ruleset, len(rulesets))
	for _, rs := range rulesets {
		byID[rs.ID] = rs
	}

	for _, id := range rulesetIDs {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		var job *domain.Job
		rs, ok := byID[id]
		if ok {
			job, err = o.provisioner.Create(ctx, sess, rs.ID, rs.Name)
		} else {
			err = fmt.Errorf("ruleset %d: %w", id, ErrRulesetNotFound)
		}

		batch.Items = append(batch.Items, o.finish(wf, id, err, func(r *ItemResult) { r.Job = job }))
		if isFatal(err) {
			return batch, err
		}
	}

	wf.logger.Info("batch finished",
		"items", len(batch.Items),
		"failed", batch.Failed(),
	)
	return batch, nil
}

// RunJobs запускает jobs по очереди в порядке jobIDs.
func (o *Orchestrator) RunJobs(ctx context.Context, sess domain.Session, jobIDs []int, opts RunOptions) (*BatchResult, error) {
	ctx, wf := o.begin(ctx, OpRunJob)
	batch := &BatchResult{WorkflowID: wf.id, Operation: wf.op, Items: []ItemResult{}}

	for _, id := range jobIDs {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		exec, err := o.runJob(ctx, wf, sess, id, opts)
		batch.Items = append(batch.Items, o.finish(wf, id, err, func(r *ItemResult) { r.Execution = exec }))
		if isFatal(err) {
			return batch, err
		}
	}

	wf.logger.Info("batch finished",
		"items", len(batch.Items),
		"failed", batch.Failed(),
	)
	return batch, nil
}

// CheckExecutions собирает статусы executions в один отчёт.
//
// Отчёты возвращаются в порядке executionIDs все вместе. Если имя job
// получить не удалось, подставляется UnknownName. Ошибка чтения execution
// попадает в отчёт этого ID; ErrUnauthorized прерывает сбор.
func (o *Orchestrator) CheckExecutions(ctx context.Context, sess domain.Session, executionIDs []int) ([]ExecutionReport, error) {
	ctx, wf := o.begin(ctx, OpCheckExecution)
	reports := make([]ExecutionReport, 0, len(executionIDs))

	// имена jobs в пределах одного вызова
	names := make(map[int]string)

	for _, id := range executionIDs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := o.checkExecution(ctx, sess, id, names)
		outcome := "ok"
		if err != nil {
			outcome = string(Classify(err))
			wf.logger.Warn("execution status unavailable", "execution_id", id, "error", err)
		}
		o.metrics.ObserveItem(string(wf.op), outcome)

		reports = append(reports, report)
		if isFatal(err) {
			return reports, err
		}
	}

	return reports, nil
}

func (o *Orchestrator) checkExecution(ctx context.Context, sess domain.Session, id int, names map[int]string) (ExecutionReport, error) {
	report := ExecutionReport{
		ExecutionID: id,
		JobName:     UnknownName,
		Status:      domain.StatusUnknown,
	}

	exec, err := o.api.GetExecution(ctx, sess, id)
	if err != nil {
		report.Kind = Classify(err)
		report.Error = err.Error()
		return report, err
	}

	report.JobID = exec.JobID
	report.Status = exec.Status
	report.RowsMasked = exec.RowsMasked
	report.StartTime = exec.StartTime
	report.EndTime = exec.EndTime

	if name, ok := names[exec.JobID]; ok {
		report.JobName = name
		return report, nil
	}

	job, err := o.api.GetMaskingJob(ctx, sess, exec.JobID)
	switch {
	case err == nil:
		report.JobName = job.Name
	case isFatal(err):
		return report, err
	default:
		telemetry.FromContext(ctx).Debug("job name lookup failed", "job_id", exec.JobID, "error", err)
	}
	names[exec.JobID] = report.JobName

	return report, nil
}

// --- Workflow steps ---

func (o *Orchestrator) runJob(ctx context.Context, wf *workflow, sess domain.Session, jobID int, opts RunOptions) (*domain.Execution, error) {
	logger := telemetry.WithJobID(wf.logger, jobID)

	exec, err := o.api.CreateExecution(ctx, sess, jobID)
	if err != nil {
		return nil, err
	}

	logger.Info("execution started", "execution_id", exec.ID, "status", exec.Status)
	o.reporter.Progress(ProgressEvent{
		WorkflowID: wf.id,
		Operation:  wf.op,
		Stage:      StageStarted,
		Source:     SourceExecution,
		JobID:      jobID,
		Snapshot:   exec.Snapshot(),
	})

	if !opts.Wait {
		return exec, nil
	}

	return o.awaitExecution(ctx, wf, sess, exec)
}

func (o *Orchestrator) refreshAndRun(ctx context.Context, wf *workflow, sess domain.Session, ref JobRef) (*RefreshRunResult, error) {
	job, err := o.resolveJob(ctx, sess, ref)
	if err != nil {
		return nil, err
	}

	result := &RefreshRunResult{Job: job}
	logger := telemetry.WithJobID(wf.logger, job.ID).With("ruleset_id", job.RulesetID)

	taskID, err := o.api.RefreshRuleset(ctx, sess, job.RulesetID)
	if err != nil {
		return result, err
	}

	logger.Info("ruleset refresh started", "async_task_id", taskID)

	fetch := func(ctx context.Context) (domain.StatusSnapshot, error) {
		task, err := o.api.GetAsyncTask(ctx, sess, taskID)
		if err != nil {
			return domain.StatusSnapshot{}, err
		}
		return task.Snapshot(), nil
	}

	refresh, err := o.poll(ctx, wf, SourceAsyncTask, job.ID, fetch)
	result.Refresh = refresh
	if err != nil {
		return result, err
	}

	if !refresh.Status.IsSuccess() {
		logger.Warn("ruleset refresh did not succeed",
			"async_task_id", taskID,
			"status", refresh.Status,
			"blocking", o.requireRefreshSuccess,
		)
		if o.requireRefreshSuccess {
			return result, &StatusError{Source: SourceAsyncTask, ID: taskID, Status: refresh.Status}
		}
	}

	exec, err := o.runJob(ctx, wf, sess, job.ID, RunOptions{Wait: true})
	result.Execution = exec
	return result, err
}

// resolveJob находит job по ID в каталоге нужного типа.
func (o *Orchestrator) resolveJob(ctx context.Context, sess domain.Session, ref JobRef) (*domain.Job, error) {
	if ref.Kind == domain.JobKindProfile {
		jobs, err := o.api.ListProfileJobs(ctx, sess)
		if err != nil {
			return nil, err
		}
		for i := range jobs {
			if jobs[i].ID == ref.ID {
				return &jobs[i], nil
			}
		}
		return nil, fmt.Errorf("profile job %d: %w", ref.ID, ErrJobNotFound)
	}

	job, err := o.api.GetMaskingJob(ctx, sess, ref.ID)
	if errors.Is(err, masking.ErrNotFound) {
		return nil, fmt.Errorf("masking job %d: %w", ref.ID, ErrJobNotFound)
	}
	return job, err
}

// awaitExecution опрашивает execution до финального статуса.
func (o *Orchestrator) awaitExecution(ctx context.Context, wf *workflow, sess domain.Session, started *domain.Execution) (*domain.Execution, error) {
	last := started

	fetch := func(ctx context.Context) (domain.StatusSnapshot, error) {
		exec, err := o.api.GetExecution(ctx, sess, started.ID)
		if err != nil {
			return domain.StatusSnapshot{}, err
		}
		last = exec
		return exec.Snapshot(), nil
	}

	snap, err := o.poll(ctx, wf, SourceExecution, started.JobID, fetch)
	if err != nil {
		return last, err
	}

	telemetry.WithExecutionID(wf.logger, started.ID).Info("execution finished",
		"job_id", started.JobID,
		"status", snap.Status,
		"duration", last.Duration(),
	)

	if !snap.Status.IsSuccess() {
		return last, &StatusError{Source: SourceExecution, ID: started.ID, Status: snap.Status}
	}
	return last, nil
}

// poll запускает Poller, пересылая снимки в Reporter и метрики.
func (o *Orchestrator) poll(ctx context.Context, wf *workflow, source Source, jobID int, fetch engine.StatusFunc) (domain.StatusSnapshot, error) {
	started := o.clock.Now()

	counted := func(ctx context.Context) (domain.StatusSnapshot, error) {
		o.metrics.ObservePoll(string(source))
		return fetch(ctx)
	}

	progress := func(attempt int, snap domain.StatusSnapshot) {
		o.reporter.Progress(ProgressEvent{
			WorkflowID: wf.id,
			Operation:  wf.op,
			Stage:      StagePolling,
			Source:     source,
			JobID:      jobID,
			Attempt:    attempt,
			Snapshot:   snap,
		})
	}

	snap, err := o.poller.Poll(ctx, counted, progress)
	if err != nil {
		return snap, err
	}

	o.metrics.ObserveTerminal(string(source), snap.Status.String(), o.clock.Now().Sub(started))
	o.reporter.Progress(ProgressEvent{
		WorkflowID: wf.id,
		Operation:  wf.op,
		Stage:      StageFinished,
		Source:     source,
		JobID:      jobID,
		Snapshot:   snap,
	})

	return snap, nil
}
