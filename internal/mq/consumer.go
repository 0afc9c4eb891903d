package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler обрабатывает одно событие. Ошибка логируется, сообщение
// подтверждается в любом случае: очередь наблюдателя временная.
type Handler func(ctx context.Context, msg *Message, key RoutingKey) error

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	// Exchange — exchange событий (default: maskctl.events).
	Exchange string

	// Keys — шаблоны routing keys (default: "#").
	Keys []RoutingKey

	Handler Handler
}

// Consumer читает события через временную очередь.
//
// Очередь эксклюзивная, поэтому после переподключения она объявляется
// заново; события, пришедшие во время разрыва, теряются.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	exchange string
	keys     []RoutingKey
	handler  Handler

	// start объявляет очередь и начинает потребление (подменяется в тестах).
	start func(ctx context.Context) (<-chan amqp.Delivery, error)
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Consumer{
		conn:     conn,
		logger:   logger,
		exchange: exchange,
		keys:     cfg.Keys,
		handler:  cfg.Handler,
	}
	c.start = c.setup

	return c
}

// Run потребляет события, пока не отменён ctx.
//
// Если канала нет (соединение восстанавливается), Run ждёт
// переподключения. Отказ брокера при объявлении очереди или exchange
// (например, 406 из-за exchange другого типа) возвращается сразу:
// повтор дал бы тот же отказ.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		deliveries, err := c.start(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !retryableSetup(err) {
				return fmt.Errorf("start consuming from %s: %w", c.exchange, err)
			}
			c.logger.Warn("consumer waiting for channel", "exchange", c.exchange, "error", err)
		} else {
			c.logger.Info("watching events", "exchange", c.exchange, "keys", c.keys)
			c.process(ctx, deliveries)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// ждём переподключения
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.ReconnectNotify():
			c.logger.Info("reconnected, restarting consumer", "exchange", c.exchange)
		}
	}
}

// retryableSetup возвращает true для ошибок, после которых канал
// восстановится сам: канала нет или он закрылся вместе с соединением.
func retryableSetup(err error) bool {
	return errors.Is(err, ErrNoChannel) || errors.Is(err, amqp.ErrClosed)
}

func (c *Consumer) setup(ctx context.Context) (<-chan amqp.Delivery, error) {
	var deliveries <-chan amqp.Delivery

	err := c.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		queue, err := declareWatchQueue(ch, c.exchange, c.keys)
		if err != nil {
			return err
		}

		deliveries, err = ch.ConsumeWithContext(
			ctx,
			queue, // queue
			"",    // consumer tag (auto-generated)
			false, // auto-ack
			true,  // exclusive
			false, // no-local
			false, // no-wait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("consume %s: %w", queue, err)
		}
		return nil
	})

	return deliveries, err
}

// process обрабатывает сообщения до закрытия канала доставки или ctx.
func (c *Consumer) process(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				c.logger.Warn("deliveries channel closed", "exchange", c.exchange)
				return
			}
			c.handle(ctx, raw)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, raw amqp.Delivery) {
	defer raw.Ack(false)

	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.logger.Warn("skipping malformed event",
			"routing_key", raw.RoutingKey,
			"error", err,
		)
		return
	}

	if err := c.handler(ctx, &msg, RoutingKey(raw.RoutingKey)); err != nil {
		c.logger.Warn("event handler failed",
			"message_id", msg.ID,
			"type", msg.Type,
			"error", err,
		)
	}
}

// DecodePayload разбирает payload события в T.
func DecodePayload[T any](msg *Message) (T, error) {
	var result T
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		return result, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
	}
	return result, nil
}
