package core

// errors.go defines the error taxonomy for dataset loading and querying.
//
// All failures are request-scoped. Handlers use errors.As to pick a status code
// and MapError to pick the message shown to the user.

import (
	"errors"
	"fmt"
	"strings"
)

// Upload sentinel errors.
var (
	ErrEmptyFilename   = errors.New("no file provided")
	ErrNotCSV          = errors.New("invalid file type, only csv allowed")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrFileTooLarge    = errors.New("file too large")
)

// NotFoundError is returned when a dataset identifier does not resolve to a
// readable source.
type NotFoundError struct {
	Identifier string
	Err        error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset not found: %s: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("dataset not found: %s", e.Identifier)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when a dataset lacks required columns, carries a
// malformed value in a typed column, or cannot be parsed as CSV.
type SchemaError struct {
	Identifier string
	Missing    []string // Required columns absent from the header
	Line       int      // Source line of a bad value (0 if not applicable)
	Column     string
	Value      string
	Err        error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Identifier != "" {
		b.WriteString(": ")
		b.WriteString(e.Identifier)
	}
	switch {
	case len(e.Missing) > 0:
		fmt.Fprintf(&b, ": missing required column(s): %s", strings.Join(e.Missing, ", "))
	case e.Line > 0:
		fmt.Fprintf(&b, ": line %d: invalid %s value %q", e.Line, e.Column, e.Value)
	case e.Column != "":
		fmt.Fprintf(&b, ": column not found: %s", e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// InvalidParameterError is returned for malformed request parameters such as
// a non-numeric page number.
type InvalidParameterError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidParameterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid parameter %s=%q: %v", e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid parameter %s=%q", e.Name, e.Value)
}

func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsSchema reports whether err is or wraps a *SchemaError.
func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsInvalidParameter reports whether err is or wraps an *InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var ip *InvalidParameterError
	return errors.As(err, &ip)
}
