// Package engine содержит примитивы, на которых строятся workflows maskctl.
//
//   - ranges.go — разбор пользовательских списков идентификаторов ("1,3,5-7")
//   - poller.go — блокирующий опрос статуса до финального состояния
//   - clock.go  — абстракции времени (Clock, Sleeper) для тестов без реальных задержек
//
// Пакет не делает сетевых вызовов: источник статуса передаётся снаружи.
package engine
