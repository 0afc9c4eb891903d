// Package orchestrator выполняет workflow поверх masking engine.
//
// Orchestrator отвечает за:
//   - Refresh ruleset и ожидание async task перед запуском job
//   - Создание masking jobs без дубликатов имён (Provisioner)
//   - Запуск executions и ожидание финального статуса
//   - Пакетные операции по спискам ID с изоляцией ошибок по элементам
//   - Сбор статусов executions в один отчёт
//
// Пакеты обрабатываются строго последовательно, в порядке входных ID.
// Ошибка одного элемента не прерывает пакет; исключение: ErrUnauthorized,
// после которой продолжать с тем же токеном бессмысленно.
//
// Orchestrator ничего не печатает: промежуточные снимки и результаты
// элементов уходят в Reporter, итог возвращается структурами.
package orchestrator
