package domain

import "strings"

// Status — статус execution или async task на стороне masking engine.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	          (или) → CANCELLED (из PENDING или RUNNING)
//
// Финальные статусы монотонны: после SUCCEEDED/FAILED/CANCELLED
// состояние больше не меняется.
type Status string

const (
	// StatusPending — операция создана, но ещё не начала выполняться.
	StatusPending Status = "PENDING"

	// StatusQueued — операция ждёт свободного слота на engine.
	StatusQueued Status = "QUEUED"

	// StatusRunning — операция выполняется.
	StatusRunning Status = "RUNNING"

	// StatusWaiting — execution ждёт завершения зависимого шага на engine.
	StatusWaiting Status = "WAITING"

	// StatusCancelling — отмена запрошена, но ещё не завершена.
	StatusCancelling Status = "CANCELLING"

	// StatusSucceeded — операция успешно завершена.
	StatusSucceeded Status = "SUCCEEDED"

	// StatusFailed — операция завершилась с ошибкой.
	StatusFailed Status = "FAILED"

	// StatusCancelled — операция отменена.
	StatusCancelled Status = "CANCELLED"
)

// StatusUnknown используется в отчётах, когда engine не вернул статус.
const StatusUnknown Status = "Unknown"

// IsTerminal возвращает true, если статус финальный.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsSuccess возвращает true только для SUCCEEDED.
func (s Status) IsSuccess() bool {
	return s == StatusSucceeded
}

// String возвращает строковое представление Status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus приводит значение из ответа engine к Status.
// Пустая строка превращается в StatusUnknown, неизвестные значения
// сохраняются как есть и считаются нефинальными.
func ParseStatus(s string) Status {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return StatusUnknown
	}
	return Status(s)
}
