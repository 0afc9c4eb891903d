package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/mq"
	"github.com/shaiso/maskctl/internal/orchestrator"
)

func TestConsoleReporter_Progress(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	rows := int64(10)

	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Progress(orchestrator.ProgressEvent{
		Source: orchestrator.SourceAsyncTask,
		Stage:  orchestrator.StagePolling,
		Snapshot: domain.StatusSnapshot{
			ID: 7, Status: domain.StatusRunning, StartTime: &start,
		},
	})
	r.Progress(orchestrator.ProgressEvent{
		Source:   orchestrator.SourceAsyncTask,
		Stage:    orchestrator.StageFinished,
		Snapshot: domain.StatusSnapshot{ID: 7, Status: domain.StatusSucceeded, EndTime: &end},
	})
	r.Progress(orchestrator.ProgressEvent{
		Source:   orchestrator.SourceExecution,
		Stage:    orchestrator.StageStarted,
		JobID:    3,
		Snapshot: domain.StatusSnapshot{ID: 30, Status: domain.StatusRunning, StartTime: &start},
	})
	r.Progress(orchestrator.ProgressEvent{
		Source:   orchestrator.SourceExecution,
		Stage:    orchestrator.StagePolling,
		JobID:    3,
		Attempt:  2,
		Snapshot: domain.StatusSnapshot{ID: 30, Status: domain.StatusRunning},
	})
	r.Progress(orchestrator.ProgressEvent{
		Source:   orchestrator.SourceExecution,
		Stage:    orchestrator.StageFinished,
		JobID:    3,
		Snapshot: domain.StatusSnapshot{ID: 30, Status: domain.StatusSucceeded, RowsMasked: &rows, EndTime: &end},
	})

	assert.Equal(t,
		"Ruleset refresh status: RUNNING, startTime: 2024-03-01T10:00:00\n"+
			"Final ruleset refresh status: SUCCEEDED, endTime: 2024-03-01T10:01:00\n"+
			"Job 3 started: executionId 30, status RUNNING, startTime: 2024-03-01T10:00:00\n"+
			"Current job status: RUNNING (execution 30, poll 2)\n"+
			"Final job status: SUCCEEDED, rowsMasked: 10, endTime: 2024-03-01T10:01:00\n",
		buf.String())
}

func TestConsoleReporter_ItemDone(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.ItemDone(orchestrator.ItemResult{
		Operation: orchestrator.OpCreateJob,
		ID:        5,
		OK:        true,
		Job:       &domain.Job{ID: 101, Name: "customers"},
	})
	r.ItemDone(orchestrator.ItemResult{
		Operation: orchestrator.OpRunJob,
		ID:        9,
		Kind:      orchestrator.FailureNotFound,
		Message:   "job not found",
	})
	r.ItemDone(orchestrator.ItemResult{
		Operation: orchestrator.OpRunJob,
		ID:        4,
		OK:        true,
		Execution: &domain.Execution{ID: 40, Status: domain.StatusRunning},
	})

	assert.Equal(t,
		"OK   create_job 5: job 101 \"customers\"\n"+
			"FAIL run_job 9 [not_found]: job not found\n"+
			"OK   run_job 4: execution 40 RUNNING\n",
		buf.String())
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	printer := NewConsoleReporter(&buf)

	msg, err := mq.NewMessage(mq.MessageTypeItem, orchestrator.ItemResult{
		Operation: orchestrator.OpRunJob,
		ID:        4,
		OK:        true,
	})
	require.NoError(t, err)

	require.NoError(t, printEvent(printer, msg, mq.ItemKey(string(orchestrator.OpRunJob))))
	assert.Equal(t, "OK   run_job 4: done\n", buf.String())

	msg.Type = "unknown"
	assert.Error(t, printEvent(printer, msg, "x"))
}
