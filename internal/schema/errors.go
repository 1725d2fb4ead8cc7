package schema

import (
	"errors"
	"strings"
)

var (
	// ErrParse is returned when schema or document bytes are not valid JSON.
	ErrParse = errors.New("invalid json")
	// ErrSchemaLoad is returned when a parsed schema cannot be compiled.
	ErrSchemaLoad = errors.New("schema load failed")
	// ErrValidation is returned when a document does not conform to its schema.
	ErrValidation = errors.New("document does not conform to schema")
	// ErrFileOpen is returned when a schema or document file cannot be opened.
	ErrFileOpen = errors.New("failed to open file")
	// ErrFileRead is returned when an opened file cannot be read to the end.
	ErrFileRead = errors.New("failed to read file")
)

// Kind classifies the outcome of a validation call.
type Kind string

const (
	KindOK         Kind = "ok"
	KindParse      Kind = "parse"
	KindSchemaLoad Kind = "schema_load"
	KindValidation Kind = "validation"
	KindFileOpen   Kind = "file_open"
	KindFileRead   Kind = "file_read"
	KindInternal   Kind = "internal"
)

// KindOf maps an error returned by the Validate methods to its Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	// Checked first: a broken $ref target can carry file or parse errors.
	case errors.Is(err, ErrSchemaLoad):
		return KindSchemaLoad
	case errors.Is(err, ErrFileOpen):
		return KindFileOpen
	case errors.Is(err, ErrFileRead):
		return KindFileRead
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindInternal
	}
}

// Violation is a single failed constraint, located by JSON pointer into
// the document.
type Violation struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + v.Message
}

// ConformanceError reports every violation found in a document.
// It matches ErrValidation under errors.Is.
type ConformanceError struct {
	Violations []Violation
}

func (e *ConformanceError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ConformanceError) Unwrap() error {
	return ErrValidation
}
