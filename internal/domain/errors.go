package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no quiz session is registered under an ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidState is returned when a command is not allowed in the current session state.
	ErrInvalidState = errors.New("command not allowed in current state")
	// ErrAnswerLocked is returned when the current question was already answered.
	ErrAnswerLocked = errors.New("question already answered")
	// ErrInvalidChoice indicates a choice index outside the presented choices.
	ErrInvalidChoice = errors.New("choice not found")
	// ErrInvalidDifficulty indicates an unknown difficulty value.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrFetchTransport matches any FetchError of kind FetchTransport.
	ErrFetchTransport = errors.New("question fetch failed")
	// ErrNoQuestions matches any FetchError of kind FetchEmpty.
	ErrNoQuestions = errors.New("no quiz questions found")
)

// FetchErrorKind classifies question source failures.
type FetchErrorKind int

const (
	FetchTransport FetchErrorKind = iota
	FetchEmpty
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchTransport:
		return "transport"
	case FetchEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// FetchError is returned by question sources.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // HTTP status, when the service answered
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchEmpty {
		return ErrNoQuestions.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrFetchTransport, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", ErrFetchTransport, e.StatusCode)
	}
	return ErrFetchTransport.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets callers match a FetchError by kind with errors.Is.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrFetchTransport:
		return e.Kind == FetchTransport
	case ErrNoQuestions:
		return e.Kind == FetchEmpty
	}
	return false
}
