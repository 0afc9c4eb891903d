package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/config"
	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/engine"
	"github.com/shaiso/maskctl/internal/masking"
	"github.com/shaiso/maskctl/internal/mq"
	"github.com/shaiso/maskctl/internal/orchestrator"
	"github.com/shaiso/maskctl/internal/telemetry"
)

// ErrAMQPDisabled — команда требует amqp-url, но он не задан.
var ErrAMQPDisabled = errors.New("amqp-url is not configured")

// Engine — операции masking API, нужные командам.
// Реализуется *masking.Client.
type Engine interface {
	orchestrator.Engine

	ListConnectors(ctx context.Context, sess domain.Session) ([]domain.Connector, error)
	CreateRuleset(ctx context.Context, sess domain.Session, spec domain.RulesetSpec) (*domain.Ruleset, error)
	Login(ctx context.Context, creds masking.Credentials) (domain.Session, error)
}

// Env — зависимости команд.
type Env struct {
	Config  *config.Config
	Logger  *slog.Logger
	Out     *Output
	Engine  Engine
	Metrics *telemetry.Metrics

	mu      sync.Mutex
	session *domain.Session
	amqp    *mq.Connection
	cancel  context.CancelFunc
}

// NewEnv создаёт Env из конфигурации.
//
// Если задан metrics-addr, на время работы процесса поднимается HTTP
// сервер с /metrics и /healthz.
func NewEnv(ctx context.Context, cfg *config.Config) (*Env, error) {
	logger := telemetry.SetupLogger(telemetry.LogOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: os.Stderr,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := masking.NewClient(masking.ClientConfig{
		EngineURL:  cfg.EngineURL,
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.HTTPTimeout,
		PageSize:   cfg.PageSize,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(ctx)

	env := &Env{
		Config:  cfg,
		Logger:  logger,
		Out:     NewOutput(cfg.JSON),
		Engine:  client,
		Metrics: telemetry.NewMetrics(registry),
		cancel:  cancel,
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := telemetry.ServeMetrics(ctx, cfg.MetricsAddr, registry, logger); err != nil {
				logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	return env, nil
}

// Session возвращает сессию engine, выполняя login при первом вызове.
func (e *Env) Session(ctx context.Context) (domain.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return *e.session, nil
	}

	if err := e.Config.ValidateEngine(); err != nil {
		return domain.Session{}, err
	}

	sess, err := e.Engine.Login(ctx, masking.Credentials{
		Username: e.Config.Username,
		Password: e.Config.Password,
	})
	if err != nil {
		return domain.Session{}, err
	}

	e.session = &sess
	return sess, nil
}

// AMQP возвращает соединение с RabbitMQ, подключаясь при первом вызове.
func (e *Env) AMQP() (*mq.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.amqp != nil {
		return e.amqp, nil
	}
	if strings.TrimSpace(e.Config.AMQPURL) == "" {
		return nil, ErrAMQPDisabled
	}

	conn, err := mq.Dial(e.Config.AMQPURL, e.Logger)
	if err != nil {
		return nil, err
	}

	e.amqp = conn
	return conn, nil
}

// Reporter собирает Reporter для workflow: консоль и, если настроен
// amqp-url, публикация событий в RabbitMQ.
func (e *Env) Reporter(ctx context.Context) (orchestrator.Reporter, error) {
	reporters := orchestrator.MultiReporter{NewConsoleReporter(e.Out.errW)}

	if e.Config.AMQPURL == "" {
		return reporters, nil
	}

	conn, err := e.AMQP()
	if err != nil {
		return nil, err
	}

	if err := mq.DeclareExchange(ctx, conn, e.Config.EventsExchange); err != nil {
		return nil, err
	}

	publisher := mq.NewPublisher(conn, e.Config.EventsExchange, e.Logger)
	return append(reporters, mq.NewEventReporter(ctx, publisher, e.Logger)), nil
}

// Orchestrator создаёт Orchestrator с настройками опроса из конфигурации.
func (e *Env) Orchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	reporter, err := e.Reporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("setup reporter: %w", err)
	}

	poller := engine.NewPoller(engine.PollerConfig{
		Interval: e.Config.PollInterval,
		MaxWait:  e.Config.MaxWait,
		Logger:   e.Logger,
	})

	return orchestrator.New(orchestrator.Config{
		Engine:                e.Engine,
		Poller:                poller,
		Reporter:              reporter,
		Metrics:               e.Metrics,
		RequireRefreshSuccess: e.Config.RequireRefreshSuccess,
		Logger:                e.Logger,
	}), nil
}

// Close освобождает ресурсы Env.
func (e *Env) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	if e.amqp != nil {
		return e.amqp.Close()
	}
	return nil
}

// parseIDs объединяет аргументы через запятую и раскрывает диапазоны.
func parseIDs(args []string) ([]int, error) {
	ids, err := engine.ExpandIDs(strings.Join(args, ","))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no IDs given")
	}
	return ids, nil
}

// markRequired помечает флаги обязательными. Ошибка возможна только для
// необъявленного флага, то есть это ошибка сборки команды.
func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("%s: %v", cmd.CommandPath(), err))
		}
	}
}
