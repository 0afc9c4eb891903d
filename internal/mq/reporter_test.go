package mq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/orchestrator"
)

type published struct {
	key RoutingKey
	msg *Message
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key RoutingKey, msg *Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{key: key, msg: msg})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRoutingKeys(t *testing.T) {
	assert.Equal(t, RoutingKey("progress.execution"), ProgressKey(string(orchestrator.SourceExecution)))
	assert.Equal(t, RoutingKey("item.run_job"), ItemKey(string(orchestrator.OpRunJob)))
}

func TestEventReporter_Progress(t *testing.T) {
	pub := &fakePublisher{}
	r := newEventReporter(context.Background(), pub, discardLogger())

	r.Progress(orchestrator.ProgressEvent{
		WorkflowID: "wf-1",
		Operation:  orchestrator.OpRefreshRun,
		Stage:      orchestrator.StagePolling,
		Source:     orchestrator.SourceAsyncTask,
		Attempt:    2,
		Snapshot:   domain.StatusSnapshot{ID: 77, Status: domain.StatusRunning},
	})

	require.Len(t, pub.sent, 1)
	assert.Equal(t, RoutingKey("progress.async_task"), pub.sent[0].key)
	assert.Equal(t, MessageTypeProgress, pub.sent[0].msg.Type)
	assert.NotEmpty(t, pub.sent[0].msg.ID)

	ev, err := DecodePayload[orchestrator.ProgressEvent](pub.sent[0].msg)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", ev.WorkflowID)
	assert.Equal(t, 77, ev.Snapshot.ID)
	assert.Equal(t, domain.StatusRunning, ev.Snapshot.Status)
}

func TestEventReporter_ItemDone(t *testing.T) {
	pub := &fakePublisher{}
	r := newEventReporter(context.Background(), pub, discardLogger())

	r.ItemDone(orchestrator.ItemResult{
		Operation: orchestrator.OpCreateJob,
		ID:        3,
		Kind:      orchestrator.FailureConflict,
		Message:   `job "RS" already exists (id 1)`,
	})

	require.Len(t, pub.sent, 1)
	assert.Equal(t, RoutingKey("item.create_job"), pub.sent[0].key)

	res, err := DecodePayload[orchestrator.ItemResult](pub.sent[0].msg)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, orchestrator.FailureConflict, res.Kind)
}

func TestEventReporter_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r := newEventReporter(context.Background(), pub, discardLogger())

	assert.NotPanics(t, func() {
		r.ItemDone(orchestrator.ItemResult{Operation: orchestrator.OpRunJob, ID: 1, OK: true})
	})
	assert.Empty(t, pub.sent)
}

func TestDecodePayload_WrongShape(t *testing.T) {
	msg := &Message{Type: MessageTypeItem, Payload: []byte(`[1,2]`)}

	_, err := DecodePayload[orchestrator.ItemResult](msg)
	assert.Error(t, err)
}
