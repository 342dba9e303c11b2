package plans

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the parent of every "plan or task absent" error.
	ErrNotFound = errors.New("not found")
	// ErrPlanNotFound is returned when no plan file carries the requested ID.
	ErrPlanNotFound = fmt.Errorf("plan %w", ErrNotFound)
	// ErrTaskNotFound is returned when the plan exists but the task does not.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)
	// ErrInvalidInput rejects arguments before any file is touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("malformed plan markdown")
)

// ParseErrorKind classifies why a markdown blob could not be decoded.
type ParseErrorKind string

const (
	MissingField   ParseErrorKind = "missing field"
	MissingSection ParseErrorKind = "missing section"
	NoTasks        ParseErrorKind = "no tasks"
	BadDate        ParseErrorKind = "bad date"
)

// ParseError is returned by Decode.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Path   string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	if e.Path != "" {
		return fmt.Sprintf("parsing %s: %s", e.Path, msg)
	}
	return "parsing plan: " + msg
}

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
