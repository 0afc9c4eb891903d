// Package mq публикует события workflow maskctl в RabbitMQ и читает их.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — exchange событий и временные очереди наблюдателей
//   - publisher.go  — публикация событий
//   - consumer.go   — потребление событий (maskctl events watch)
//   - reporter.go   — EventReporter: orchestrator.Reporter поверх Publisher
//
// Типы сообщений:
//   - workflow.progress — снимок статуса execution или async task
//   - workflow.item     — результат обработки одного ID
//
// Routing keys (topic exchange, по умолчанию maskctl.events):
//   - progress.execution, progress.async_task
//   - item.create_job, item.run_job, item.refresh_run
package mq
