package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Виды ошибок провайдера.
const (
	KindNetwork = "network"
	KindTimeout = "timeout"
	KindStatus  = "status"
	KindSchema  = "schema"
	KindEmpty   = "empty"
)

// ErrEmptyContent возвращается, когда провайдер ответил пустым содержимым.
var ErrEmptyContent = errors.New("empty content")

// ErrConfig помечает ошибки конфигурации и аргументов командной строки.
var ErrConfig = errors.New("configuration error")

// ProviderError - сбой внешнего провайдера: сеть, таймаут, не-2xx статус или неожиданная схема ответа.
type ProviderError struct {
	Provider   string
	Kind       string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError определяет вид ошибки транспорта по ее содержимому.
func NewProviderError(provider string, err error) *ProviderError {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// GenerationError - LLM не смог выдать пригодный текст.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError - документ не удалось записать.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CommitError - сбой операции git.
type CommitError struct {
	Op     string
	Output string
	Err    error
}

func (e *CommitError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("git %s: %v: %s", e.Op, e.Err, e.Output)
	}
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// ExitCode отображает ошибку запуска в код завершения процесса.
// Истекший таймаут запуска важнее вида операции, на которой он случился.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var (
		genErr     *GenerationError
		persistErr *PersistenceError
		commitErr  *CommitError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return 6
	case errors.Is(err, ErrConfig):
		return 2
	case errors.As(err, &genErr):
		return 3
	case errors.As(err, &persistErr):
		return 4
	case errors.As(err, &commitErr):
		return 5
	default:
		return 1
	}
}
