// Package errors defines the sentinel errors shared across the concordance
// tool and maps them onto process exit codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrSourceRead        = errors.New("reading input")
	ErrSinkWrite         = errors.New("writing output")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Exit codes returned by the CLI.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitInvalidConfig     = 2
	ExitResourceExhausted = 3
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ExitCode reports the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitInvalidConfig
	case errors.Is(err, ErrResourceExhausted):
		return ExitResourceExhausted
	default:
		return ExitFailure
	}
}
