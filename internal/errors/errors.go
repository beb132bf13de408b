// Package errors defines the typed diagnostics recorded while processing
// samples and the collector that persists them to the error log.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies where in the pipeline a diagnostic originated.
type Kind string

const (
	KindDiscovery  Kind = "discovery"
	KindLoad       Kind = "load"
	KindExtraction Kind = "extraction"
	KindRender     Kind = "render"
	KindOutput     Kind = "output"
)

// Kinds lists every diagnostic kind in pipeline order.
var Kinds = []Kind{KindDiscovery, KindLoad, KindExtraction, KindRender, KindOutput}

// NoEntry marks a diagnostic that does not refer to an array entry.
const NoEntry = -1

// Sentinel causes matched with errors.Is.
var (
	ErrReportNotFound   = errors.New("report file not found")
	ErrReportUnreadable = errors.New("report file unreadable")
	ErrEmptyReport      = errors.New("report file is empty")
	ErrMalformedReport  = errors.New("report is not valid JSON")
	ErrInvalidShape     = errors.New("unexpected JSON shape")
	ErrMissingField     = errors.New("required field missing")
	ErrMissingSection   = errors.New("report section missing")
	ErrEmptyIdentifier  = errors.New("sample folder has an empty identifier")
	ErrInvalidSample    = errors.New("sample failed validation")
	ErrCellTooLong      = errors.New("cell text exceeds the spreadsheet limit")
)

// ProcessingError is a single diagnostic about a sample, report entry or
// output artifact.
type ProcessingError struct {
	Kind       Kind
	Sample     string
	Path       string
	EntryIndex int
	Field      string
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Kind)
	if e.Sample != "" {
		fmt.Fprintf(&b, " %s:", e.Sample)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
	if e.EntryIndex >= 0 {
		fmt.Fprintf(&b, " (entry %d", e.EntryIndex)
		if e.Field != "" {
			fmt.Fprintf(&b, ", field %s", e.Field)
		}
		b.WriteString(")")
	} else if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// WithSample sets the sample name
func (e *ProcessingError) WithSample(sample string) *ProcessingError {
	e.Sample = sample
	return e
}

// WithPath sets the file or directory the diagnostic refers to
func (e *ProcessingError) WithPath(path string) *ProcessingError {
	e.Path = path
	return e
}

// WithEntry sets the array index of the offending report entry
func (e *ProcessingError) WithEntry(index int) *ProcessingError {
	e.EntryIndex = index
	return e
}

// WithField sets the offending field path
func (e *ProcessingError) WithField(field string) *ProcessingError {
	e.Field = field
	return e
}

// New creates a diagnostic of the given kind.
func New(kind Kind, message string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:       kind,
		EntryIndex: NoEntry,
		Message:    message,
		Cause:      cause,
	}
}

// NewDiscoveryError creates a sample discovery diagnostic
func NewDiscoveryError(message string, cause error) *ProcessingError {
	return New(KindDiscovery, message, cause)
}

// NewLoadError creates a report loading diagnostic
func NewLoadError(message string, cause error) *ProcessingError {
	return New(KindLoad, message, cause)
}

// NewExtractionError creates a record extraction diagnostic
func NewExtractionError(message string, cause error) *ProcessingError {
	return New(KindExtraction, message, cause)
}

// NewRenderError creates a chart rendering diagnostic
func NewRenderError(message string, cause error) *ProcessingError {
	return New(KindRender, message, cause)
}

// NewOutputError creates an output diagnostic. Output errors are fatal.
func NewOutputError(message string, cause error) *ProcessingError {
	return New(KindOutput, message, cause)
}

// KindOf returns the kind of the first ProcessingError in err's chain.
func KindOf(err error) (Kind, bool) {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
