package engine

import (
	"errors"
	"fmt"
)

// Ошибки разбора списков идентификаторов.
var (
	// ErrInvalidRange — токен не является числом или диапазоном a-b.
	ErrInvalidRange = errors.New("invalid identifier range")
)

// Ошибки опроса статуса.
var (
	// ErrPollFailed — источник статуса вернул ошибку.
	ErrPollFailed = errors.New("status poll failed")

	// ErrWaitExceeded — операция не завершилась за отведённое время.
	ErrWaitExceeded = errors.New("maximum wait exceeded")
)

// ParseError — ошибка разбора списка идентификаторов с контекстом.
type ParseError struct {
	Input    string // исходная строка
	Token    string // токен, вызвавший ошибку
	Position int    // номер токена (с 1)
	Message  string // описание ошибки
}

// Error реализует интерфейс error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("token %d %q: %s", e.Position, e.Token, e.Message)
}

// Unwrap возвращает базовую ошибку.
func (e *ParseError) Unwrap() error {
	return ErrInvalidRange
}

// PollError — ошибка источника статуса во время опроса.
//
// Опрос прекращается сразу, повторных попыток нет.
type PollError struct {
	Attempt int   // номер запроса (с 1), на котором произошла ошибка
	Err     error // ошибка источника
}

// Error реализует интерфейс error.
func (e *PollError) Error() string {
	return fmt.Sprintf("poll attempt %d: %v", e.Attempt, e.Err)
}

// Unwrap позволяет проверять как ErrPollFailed, так и исходную причину.
func (e *PollError) Unwrap() []error {
	return []error{ErrPollFailed, e.Err}
}
