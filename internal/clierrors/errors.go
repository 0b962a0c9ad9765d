// Package clierrors gives the CLI a small typed error taxonomy so main can
// translate a failure into the right exit code without string-matching
// error messages.
package clierrors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes a CLI failure.
type ErrorType string

const (
	TypeInput  ErrorType = "input"
	TypeStrict ErrorType = "strict"
	TypeOutput ErrorType = "output"
)

// AppError is a CLI-facing error carrying enough context to pick an exit
// code and print a useful message.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError wraps a failure reading the input file or stdin.
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: TypeInput, Message: message, Err: err}
}

// NewStrictError wraps a *repair.StrictModeError raised during parsing.
func NewStrictError(message string, err error) *AppError {
	return &AppError{Type: TypeStrict, Message: message, Err: err}
}

// NewOutputError wraps a failure writing the result back out.
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: TypeOutput, Message: message, Err: err}
}

// ExitCode maps err to the process exit code specified for the CLI: 0 on
// success (including a successful repair), non-zero only when strict mode
// raised or an I/O error occurred.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case TypeStrict:
			return 2
		case TypeInput, TypeOutput:
			return 1
		}
	}
	return 1
}
