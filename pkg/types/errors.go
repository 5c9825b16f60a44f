package types

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes shared by the settings codec and the character loader.
// Legacy store absence is not an error; importers report it as a bool.
var (
	ErrMalformedStream = errors.New("malformed stream")
	ErrValidation      = errors.New("validation failed")
)

// ErrNoFileName is returned when loading a character without a file name.
var ErrNoFileName = errors.New("character has no file name")

// Settings model errors.
var (
	ErrInvalidColorMode = errors.New("invalid color mode")
	ErrDirectoryUnknown = errors.New("custom data directory not found")
	ErrInvalidText      = errors.New("text is not valid UTF-8")
)

// StreamError reports where a settings stream stopped making sense.
// Line is 1-based; zero means the problem is not tied to a line
// (for example an empty or truncated stream).
type StreamError struct {
	Line   int
	Reason string
	Err    error
}

func (e *StreamError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("settings stream line %d: %s", e.Line, e.Reason)
	}
	return "settings stream: " + e.Reason
}

// Unwrap lets errors.Is match ErrMalformedStream and any cause.
func (e *StreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedStream}
	}
	return []error{ErrMalformedStream, e.Err}
}

// LoadError describes why a character document failed to load. Kind is
// ErrMalformedStream or ErrValidation. Record names the offending element,
// e.g. "gear[3]" or "improvement 0d8f...", and may be empty.
type LoadError struct {
	File   string
	Record string
	Kind   error
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Record != "" {
		b.WriteString(": ")
		b.WriteString(e.Record)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the failure class and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// BatchError collects per-file failures from a keep-going batch load.
type BatchError struct {
	Failures []error
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}
	return fmt.Sprintf("%d characters failed to load; first: %v", len(e.Failures), e.Failures[0])
}

// Unwrap returns every per-file failure.
func (e *BatchError) Unwrap() []error {
	return e.Failures
}
