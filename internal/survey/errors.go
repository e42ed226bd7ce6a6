package survey

import (
	"errors"
	"fmt"
	"strings"
)

// DecodingError reports that none of the configured text encodings could decode a source.
type DecodingError struct {
	Source    string
	Attempted []string
	Err       error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode %s: tried %s: %v", e.Source, strings.Join(e.Attempted, ", "), e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// MalformedRowError reports a CSV row that does not line up with the header.
// Row is the 1-based data row index (0 means the header itself); Line is the
// source line where the row starts.
type MalformedRowError struct {
	Row  int
	Line int
	Err  error
}

func (e *MalformedRowError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed header (line %d): %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed row %d (line %d): %v", e.Row, e.Line, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// EmptyColumnError reports a numeric field with no parseable values, so no mean
// exists to impute from.
type EmptyColumnError struct {
	Field string
	Rows  int
}

func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("field %q has no numeric values in %d rows; cannot impute", e.Field, e.Rows)
}

// InsufficientDataError reports a correlation that is undefined for a field pair.
type InsufficientDataError struct {
	A, B   string
	N      int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "fewer than 2 joint observations"
	}
	return fmt.Sprintf("correlation %s ~ %s undefined (n=%d): %s", e.A, e.B, e.N, reason)
}

// ConfigError reports an invalid pipeline configuration.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("invalid config %s: %v", e.Key, e.Err) }

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrUnknownField is returned when an operation names a column the table does not have.
var ErrUnknownField = errors.New("unknown field")

// ErrNotNumeric is returned when an operation needs a numeric column.
var ErrNotNumeric = errors.New("field is not numeric")
