// Package cli реализует команды maskctl.
//
// # Обзор
//
// CLI работает с masking engine через internal/masking и выполняет
// workflow через internal/orchestrator. Листинги каталога вызывают
// клиент напрямую, всё, что ждёт статуса или обрабатывает пакеты ID,
// идёт через Orchestrator.
//
// # Ключевые компоненты
//
// ## Env
//
// Зависимости команд: конфигурация, логгер, клиент engine, метрики,
// ленивые сессия и соединение с RabbitMQ. Создаётся после парсинга
// флагов в PersistentPreRunE корневой команды.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, прогресс и сообщения в stderr.
// Это позволяет использовать pipe: maskctl job list --json | jq .
//
// ## ConsoleReporter
//
// orchestrator.Reporter, печатающий снимки статусов и результаты
// элементов пакета по мере выполнения.
//
// ## Commands
//
//   - login
//   - ruleset: list, create
//   - connector: list
//   - job: list, create, create-from-rulesets, run, refresh-run
//   - execution: status
//   - events: watch
//   - menu — интерактивное меню поверх тех же компонентов
//
// Каждая группа создаётся фабричной функцией (NewJobCmd и т.д.),
// принимающей envFn: замыкание, возвращающее Env после парсинга флагов.
package cli
