package mq

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/maskctl/internal/orchestrator"
)

const defaultPublishTimeout = 5 * time.Second

// eventPublisher — часть Publisher, нужная EventReporter.
type eventPublisher interface {
	Publish(ctx context.Context, key RoutingKey, msg *Message) error
}

// EventReporter публикует прогресс и результаты workflow в RabbitMQ.
//
// Ошибки публикации только логируются: недоступный брокер не должен
// останавливать работу с engine.
type EventReporter struct {
	ctx       context.Context
	publisher eventPublisher
	timeout   time.Duration
	logger    *slog.Logger
}

var _ orchestrator.Reporter = (*EventReporter)(nil)

// NewEventReporter создаёт EventReporter. ctx ограничивает время жизни публикаций.
func NewEventReporter(ctx context.Context, publisher *Publisher, logger *slog.Logger) *EventReporter {
	return newEventReporter(ctx, publisher, logger)
}

func newEventReporter(ctx context.Context, publisher eventPublisher, logger *slog.Logger) *EventReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventReporter{
		ctx:       ctx,
		publisher: publisher,
		timeout:   defaultPublishTimeout,
		logger:    logger,
	}
}

// Progress публикует снимок статуса.
func (r *EventReporter) Progress(ev orchestrator.ProgressEvent) {
	r.publish(MessageTypeProgress, ProgressKey(string(ev.Source)), ev)
}

// ItemDone публикует результат элемента.
func (r *EventReporter) ItemDone(res orchestrator.ItemResult) {
	r.publish(MessageTypeItem, ItemKey(string(res.Operation)), res)
}

func (r *EventReporter) publish(msgType MessageType, key RoutingKey, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		r.logger.Warn("failed to encode event", "type", msgType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, key, msg); err != nil {
		r.logger.Warn("failed to publish event",
			"routing_key", key,
			"type", msgType,
			"error", err,
		)
	}
}
