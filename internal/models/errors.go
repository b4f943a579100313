package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that can never succeed as given.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when a project, activity or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the request clashes with current state,
	// e.g. a duplicate project name or starting a running project.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Errorf wraps a sentinel with a formatted message so that errors.Is keeps
// working while Error() shows only the message.
func Errorf(sentinel error, format string, args ...any) error {
	return &domainError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}

type domainError struct {
	sentinel error
	msg      string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.sentinel }
