package normalizer

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema matches every *SchemaError.
	ErrSchema = errors.New("schema error")
	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("format error")
)

// SchemaError reports input that does not have the expected column layout.
// Line is 1 for the header and counts data rows from 2.
type SchemaError struct {
	Line   int
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at line %d: %s", e.Line, e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// FormatError reports a field that could not be coerced to its canonical
// type. It fails the whole normalization call.
type FormatError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error at line %d, column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
