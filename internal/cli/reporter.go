package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/shaiso/maskctl/internal/orchestrator"
)

// ConsoleReporter печатает прогресс workflow в человекочитаемом виде.
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ orchestrator.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter создаёт ConsoleReporter, пишущий в w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Progress печатает снимок статуса.
func (r *ConsoleReporter) Progress(ev orchestrator.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := ev.Snapshot

	switch {
	case ev.Source == orchestrator.SourceAsyncTask && ev.Stage == orchestrator.StageFinished:
		fmt.Fprintf(r.w, "Final ruleset refresh status: %s, endTime: %s\n", snap.Status, formatTime(snap.EndTime))
	case ev.Source == orchestrator.SourceAsyncTask:
		fmt.Fprintf(r.w, "Ruleset refresh status: %s, startTime: %s\n", snap.Status, formatTime(snap.StartTime))
	case ev.Stage == orchestrator.StageStarted:
		fmt.Fprintf(r.w, "Job %d started: executionId %d, status %s, startTime: %s\n",
			ev.JobID, snap.ID, snap.Status, formatTime(snap.StartTime))
	case ev.Stage == orchestrator.StageFinished:
		fmt.Fprintf(r.w, "Final job status: %s, rowsMasked: %s, endTime: %s\n",
			snap.Status, formatRows(snap.RowsMasked), formatTime(snap.EndTime))
	default:
		fmt.Fprintf(r.w, "Current job status: %s (execution %d, poll %d)\n", snap.Status, snap.ID, ev.Attempt)
	}
}

// ItemDone печатает результат элемента.
func (r *ConsoleReporter) ItemDone(res orchestrator.ItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !res.OK {
		fmt.Fprintf(r.w, "FAIL %s %d [%s]: %s\n", res.Operation, res.ID, res.Kind, res.Message)
		return
	}

	fmt.Fprintf(r.w, "OK   %s %d: %s\n", res.Operation, res.ID, itemDetail(res))
}

// itemDetail — краткое описание успешного результата.
func itemDetail(res orchestrator.ItemResult) string {
	switch {
	case res.Execution != nil:
		return fmt.Sprintf("execution %d %s", res.Execution.ID, res.Execution.Status)
	case res.Job != nil:
		return fmt.Sprintf("job %d %q", res.Job.ID, res.Job.Name)
	default:
		return "done"
	}
}
