// Package masking — HTTP-клиент для masking API engine.
//
// Клиент покрывает операции, которые нужны maskctl:
//
//   - login → domain.Session
//   - каталог: database rulesets, database connectors, masking и profile jobs
//   - создание ruleset и masking job
//   - запуск execution, refresh ruleset
//   - чтение execution и async task для опроса статуса
//
// Все методы, кроме Login, принимают domain.Session явно. Токен
// передаётся в заголовке Authorization как есть, без схемы.
//
// Ответы 401/403 превращаются в ErrUnauthorized, 404 в ErrNotFound,
// остальные ошибки транспорта и HTTP в ErrRequestFailed.
// Повторных попыток нет.
package masking
