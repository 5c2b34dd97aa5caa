package ingest

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input validation errors
	ErrEmptyInput = errors.New("topology input is empty")

	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// Manifest structure errors
	ErrNoNodes          = errors.New("manifest must define at least one node")
	ErrUnknownNodeKind  = errors.New("unknown node kind")
	ErrUnknownEdgeKind  = errors.New("unknown edge kind")
	ErrUnknownValue     = errors.New("unknown enumeration value")
	ErrDuplicateNode    = errors.New("duplicate node id")
	ErrMissingField     = errors.New("required field is missing")

	// Compose import errors
	ErrNoServices         = errors.New("compose spec must define at least one service")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrUnsupportedFeature = errors.New("unsupported compose feature")
)

// ParseError wraps errors with context about where parsing failed.
type ParseError struct {
	Field   string // e.g., "nodes[2].engine"
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
