package masking

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized — engine отклонил учётные данные или токен.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound — запрошенная сущность не существует.
	ErrNotFound = errors.New("not found")

	// ErrRequestFailed — сетевая ошибка или неуспешный HTTP-ответ.
	ErrRequestFailed = errors.New("request failed")
)

// APIError — неуспешный HTTP-ответ engine.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap позволяет проверять вид ошибки через errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRequestFailed
	}
}
