package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/mq"
	"github.com/shaiso/maskctl/internal/orchestrator"
)

// NewEventsCmd создаёт группу команд для событий workflow в RabbitMQ.
func NewEventsCmd(envFn func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Workflow events published to RabbitMQ",
	}

	cmd.AddCommand(newEventsWatchCmd(envFn))

	return cmd
}

func newEventsWatchCmd(envFn func() *Env) *cobra.Command {
	var keys []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print workflow events as other maskctl processes publish them",
		Long: `Bind a temporary queue to the events exchange and print every event.
Requires --amqp-url. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()

			conn, err := env.AMQP()
			if err != nil {
				return err
			}

			bindings := make([]mq.RoutingKey, len(keys))
			for i, k := range keys {
				bindings[i] = mq.RoutingKey(k)
			}

			printer := NewConsoleReporter(env.Out.w)

			consumer := mq.NewConsumer(conn, env.Logger, mq.ConsumerConfig{
				Exchange: env.Config.EventsExchange,
				Keys:     bindings,
				Handler: func(_ context.Context, msg *mq.Message, key mq.RoutingKey) error {
					if env.Out.JSONMode() {
						env.Out.JSON(msg)
						return nil
					}
					return printEvent(printer, msg, key)
				},
			})

			err = consumer.Run(cmd.Context())
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&keys, "keys", []string{string(mq.BindAll)}, "Routing key patterns to bind (progress.*, item.*, #)")

	return cmd
}

// printEvent печатает событие тем же форматом, что и ConsoleReporter.
func printEvent(printer *ConsoleReporter, msg *mq.Message, key mq.RoutingKey) error {
	switch msg.Type {
	case mq.MessageTypeProgress:
		ev, err := mq.DecodePayload[orchestrator.ProgressEvent](msg)
		if err != nil {
			return err
		}
		printer.Progress(ev)
	case mq.MessageTypeItem:
		res, err := mq.DecodePayload[orchestrator.ItemResult](msg)
		if err != nil {
			return err
		}
		printer.ItemDone(res)
	default:
		return fmt.Errorf("unknown event type %q (routing key %s)", msg.Type, key)
	}
	return nil
}
