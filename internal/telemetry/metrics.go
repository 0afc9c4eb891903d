package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — метрики опроса статусов и batch-операций.
type Metrics struct {
	// Polls — количество запросов статуса (source: execution, async_task).
	Polls *prometheus.CounterVec

	// PollWait — время до финального статуса.
	PollWait *prometheus.HistogramVec

	// TerminalStatus — финальные статусы по источнику.
	TerminalStatus *prometheus.CounterVec

	// WorkflowItems — результаты элементов batch-операций.
	WorkflowItems *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg.
// Если reg == nil, используется отдельный registry (удобно для тестов).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Polls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskctl_polls_total",
			Help: "Total status queries made by the poller",
		}, []string{"source"}),
		PollWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maskctl_poll_wait_seconds",
			Help:    "Time until an operation reached a terminal status",
			Buckets: []float64{10, 30, 60, 300, 900, 1800, 3600, 4 * 3600},
		}, []string{"source"}),
		TerminalStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskctl_terminal_status_total",
			Help: "Terminal statuses observed, by source",
		}, []string{"source", "status"}),
		WorkflowItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskctl_workflow_items_total",
			Help: "Batch items processed, by operation and outcome",
		}, []string{"operation", "outcome"}),
	}
}

// ObservePoll учитывает один запрос статуса.
func (m *Metrics) ObservePoll(source string) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(source).Inc()
}

// ObserveTerminal учитывает финальный статус и время ожидания.
func (m *Metrics) ObserveTerminal(source, status string, waited time.Duration) {
	if m == nil {
		return
	}
	m.TerminalStatus.WithLabelValues(source, status).Inc()
	m.PollWait.WithLabelValues(source).Observe(waited.Seconds())
}

// ObserveItem учитывает результат элемента batch-операции.
func (m *Metrics) ObserveItem(operation, outcome string) {
	if m == nil {
		return
	}
	m.WorkflowItems.WithLabelValues(operation, outcome).Inc()
}

// ServeMetrics поднимает HTTP сервер с /metrics и /healthz до отмены ctx.
func ServeMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           NewMetricsHandler(gatherer, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics shutdown error", "error", err)
		}
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
