// maskctl — инструмент командной строки для masking engine:
// справочники, создание и запуск jobs, refresh ruleset, статусы executions.
//
// Использование:
//
//	maskctl [--config FILE] [--engine-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	login      Проверка учётных данных
//	ruleset    Database rulesets
//	connector  Database connectors
//	job        Masking и profile jobs
//	execution  Статусы executions
//	events     Поток событий из RabbitMQ
//	menu       Интерактивное меню
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/cli"
	"github.com/shaiso/maskctl/internal/config"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var env *cli.Env

	rootCmd := &cobra.Command{
		Use:           "maskctl",
		Short:         "maskctl — masking engine job orchestration tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Root().PersistentFlags()

			configFile, err := flags.GetString("config")
			if err != nil {
				return err
			}

			cfg, err := config.Load(flags, configFile)
			if err != nil {
				return err
			}

			env, err = cli.NewEnv(cmd.Context(), cfg)
			return err
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	envFn := func() *cli.Env { return env }

	rootCmd.AddCommand(
		cli.NewLoginCmd(envFn),
		cli.NewRulesetCmd(envFn),
		cli.NewConnectorCmd(envFn),
		cli.NewJobCmd(envFn),
		cli.NewExecutionCmd(envFn),
		cli.NewEventsCmd(envFn),
		cli.NewMenuCmd(envFn),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	if env != nil {
		if cerr := env.Close(); cerr != nil {
			fmt.Fprintln(os.Stderr, "Error:", cerr)
		}
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
