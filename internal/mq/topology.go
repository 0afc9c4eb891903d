package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange — exchange событий по умолчанию.
const DefaultExchange = "maskctl.events"

// RoutingKey — ключ маршрутизации события.
type RoutingKey string

// Префиксы routing keys.
const (
	routingPrefixProgress = "progress"
	routingPrefixItem     = "item"
)

// Шаблоны для подписки на события.
const (
	BindAll      RoutingKey = "#"
	BindProgress RoutingKey = routingPrefixProgress + ".*"
	BindItems    RoutingKey = routingPrefixItem + ".*"
)

// ProgressKey возвращает routing key снимка статуса для source.
func ProgressKey(source string) RoutingKey {
	return RoutingKey(routingPrefixProgress + "." + source)
}

// ItemKey возвращает routing key результата элемента для операции.
func ItemKey(operation string) RoutingKey {
	return RoutingKey(routingPrefixItem + "." + operation)
}

// DeclareExchange объявляет durable topic exchange для событий.
func DeclareExchange(ctx context.Context, conn *Connection, exchange string) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		return declareExchange(ch, exchange)
	})
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// declareWatchQueue создаёт эксклюзивную auto-delete очередь с именем от
// сервера и привязывает её к exchange по каждому ключу.
func declareWatchQueue(ch *amqp.Channel, exchange string, keys []RoutingKey) (string, error) {
	if err := declareExchange(ch, exchange); err != nil {
		return "", err
	}

	q, err := ch.QueueDeclare(
		"",    // name (server-generated)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare watch queue: %w", err)
	}

	if len(keys) == 0 {
		keys = []RoutingKey{BindAll}
	}

	for _, key := range keys {
		if err := ch.QueueBind(q.Name, string(key), exchange, false, nil); err != nil {
			return "", fmt.Errorf("bind queue %s to %s [%s]: %w", q.Name, exchange, key, err)
		}
	}

	return q.Name, nil
}
