package orchestrator

import (
	"time"

	"github.com/shaiso/maskctl/internal/domain"
)

// Operation — тип workflow.
type Operation string

const (
	OpCreateJob      Operation = "create_job"
	OpRunJob         Operation = "run_job"
	OpRefreshRun     Operation = "refresh_run"
	OpCheckExecution Operation = "check_execution"
)

// Source — источник статуса для опроса.
type Source string

const (
	SourceExecution Source = "execution"
	SourceAsyncTask Source = "async_task"
)

// Stage — этап жизненного цикла опрашиваемой операции.
type Stage string

const (
	// StageStarted — операция запущена на engine.
	StageStarted Stage = "started"

	// StagePolling — получен промежуточный снимок.
	StagePolling Stage = "polling"

	// StageFinished — получен финальный снимок.
	StageFinished Stage = "finished"
)

// ProgressEvent — промежуточное состояние execution или async task.
type ProgressEvent struct {
	WorkflowID string                `json:"workflow_id"`
	Operation  Operation             `json:"operation"`
	Stage      Stage                 `json:"stage"`
	Source     Source                `json:"source"`
	JobID      int                   `json:"job_id,omitempty"`
	Attempt    int                   `json:"attempt,omitempty"`
	Snapshot   domain.StatusSnapshot `json:"snapshot"`
}

// ItemResult — результат обработки одного ID.
type ItemResult struct {
	WorkflowID string      `json:"workflow_id"`
	Operation  Operation   `json:"operation"`
	ID         int         `json:"id"`
	OK         bool        `json:"ok"`
	Kind       FailureKind `json:"kind,omitempty"`
	Message    string      `json:"message,omitempty"`

	Job       *domain.Job            `json:"job,omitempty"`
	Refresh   *domain.StatusSnapshot `json:"refresh,omitempty"`
	Execution *domain.Execution      `json:"execution,omitempty"`
}

// BatchResult — результаты пакета в порядке входных ID.
type BatchResult struct {
	WorkflowID string       `json:"workflow_id"`
	Operation  Operation    `json:"operation"`
	Items      []ItemResult `json:"items"`
}

// Succeeded возвращает количество успешных элементов.
func (b *BatchResult) Succeeded() int {
	n := 0
	for _, item := range b.Items {
		if item.OK {
			n++
		}
	}
	return n
}

// Failed возвращает количество неуспешных элементов.
func (b *BatchResult) Failed() int {
	return len(b.Items) - b.Succeeded()
}

// ExecutionReport — строка сводного отчёта о статусах executions.
type ExecutionReport struct {
	ExecutionID int           `json:"execution_id"`
	JobID       int           `json:"job_id,omitempty"`
	JobName     string        `json:"job_name"`
	Status      domain.Status `json:"status"`
	RowsMasked  *int64        `json:"rows_masked,omitempty"`
	StartTime   *time.Time    `json:"start_time,omitempty"`
	EndTime     *time.Time    `json:"end_time,omitempty"`
	Kind        FailureKind   `json:"kind,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// UnknownName подставляется, когда имя job получить не удалось.
const UnknownName = "Unknown"

// Reporter получает прогресс и результаты элементов.
// Методы вызываются синхронно из goroutine, выполняющей workflow.
type Reporter interface {
	Progress(ProgressEvent)
	ItemDone(ItemResult)
}

// NopReporter игнорирует все события.
type NopReporter struct{}

func (NopReporter) Progress(ProgressEvent) {}
func (NopReporter) ItemDone(ItemResult)    {}

// MultiReporter рассылает события всем reporters по порядку.
type MultiReporter []Reporter

func (m MultiReporter) Progress(ev ProgressEvent) {
	for _, r := range m {
		r.Progress(ev)
	}
}

func (m MultiReporter) ItemDone(res ItemResult) {
	for _, r := range m {
		r.ItemDone(res)
	}
}
