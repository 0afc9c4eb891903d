package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/engine"
	"github.com/shaiso/maskctl/internal/masking"
)

// Ошибки оркестратора.
var (
	// ErrJobExists — job с таким именем уже есть на engine.
	ErrJobExists = errors.New("job already exists")

	// ErrRulesetNotFound — ruleset с указанным ID не найден.
	ErrRulesetNotFound = errors.New("ruleset not found")

	// ErrJobNotFound — job с указанным ID не найден.
	ErrJobNotFound = errors.New("job not found")

	// ErrUnsuccessful — операция на engine завершилась не SUCCEEDED.
	ErrUnsuccessful = errors.New("operation did not succeed")

	// ErrInvalidInput — некорректные входные данные операции.
	ErrInvalidInput = errors.New("invalid input")
)

// ConflictError — попытка создать job с занятым именем.
type ConflictError struct {
	Name  string
	JobID int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("job %q already exists (id %d)", e.Name, e.JobID)
}

func (e *ConflictError) Unwrap() error {
	return ErrJobExists
}

// StatusError — операция дошла до финального статуса, отличного от SUCCEEDED.
type StatusError struct {
	Source Source
	ID     int
	Status domain.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d finished with status %s", e.Source, e.ID, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUnsuccessful
}

// FailureKind — вид ошибки элемента в структурированном результате.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureAuth         FailureKind = "auth"
	FailureNotFound     FailureKind = "not_found"
	FailureConflict     FailureKind = "conflict"
	FailureNetwork      FailureKind = "network"
	FailureParse        FailureKind = "parse"
	FailurePoll         FailureKind = "poll"
	FailureTimeout      FailureKind = "timeout"
	FailureCancelled    FailureKind = "cancelled"
	FailureUnsuccessful FailureKind = "unsuccessful"
	FailureInvalidInput FailureKind = "invalid_input"
	FailureInternal     FailureKind = "internal"
)

// Classify определяет вид ошибки.
//
// Порядок проверок важен: PollError оборачивает исходную ошибку, поэтому
// авторизация и отмена проверяются раньше, чем сам факт ошибки опроса.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, masking.ErrUnauthorized):
		return FailureAuth
	case errors.Is(err, ErrJobExists):
		return FailureConflict
	case errors.Is(err, ErrUnsuccessful):
		return FailureUnsuccessful
	case errors.Is(err, engine.ErrWaitExceeded), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	case errors.Is(err, engine.ErrPollFailed):
		return FailurePoll
	case errors.Is(err, masking.ErrNotFound),
		errors.Is(err, ErrRulesetNotFound),
		errors.Is(err, ErrJobNotFound):
		return FailureNotFound
	case errors.Is(err, engine.ErrInvalidRange):
		return FailureParse
	case errors.Is(err, ErrInvalidInput):
		return FailureInvalidInput
	case errors.Is(err, masking.ErrRequestFailed):
		return FailureNetwork
	default:
		return FailureInternal
	}
}

// isFatal возвращает true для ошибок, прерывающих весь пакет.
func isFatal(err error) bool {
	return errors.Is(err, masking.ErrUnauthorized)
}
