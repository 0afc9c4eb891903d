// Package telemetry обеспечивает наблюдаемость maskctl.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики опроса и batch-операций
//
// Логи CLI пишутся в stderr: stdout занят данными (таблицы, JSON).
package telemetry
