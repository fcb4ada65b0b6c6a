// Package errkind defines the typed error taxonomy the core pipeline fails
// with, so callers can discriminate failure modes with errors.As instead of
// string-matching. These types wrap plain fmt.Errorf/errors.New values
// rather than replacing them.
package errkind

import "fmt"

// MalformedInput is returned by event sources and splitters when the input
// byte stream is not well-formed at the given offset.
type MalformedInput struct {
	Offset  int64
	Message string
}

func (e *MalformedInput) Error() string {
	return fmt.Sprintf("malformed input at offset %d: %s", e.Offset, e.Message)
}

// UnsupportedMimeType is returned by the indexer framework when a chunk's
// mime type maps to no known event-source kind.
type UnsupportedMimeType struct {
	MimeType string
}

func (e *UnsupportedMimeType) Error() string {
	return fmt.Sprintf("unsupported mime type: %s", e.MimeType)
}

// UnmatchableTerm is returned by the query compiler when no registered
// factory can compile a term.
type UnmatchableTerm struct {
	Term string
}

func (e *UnmatchableTerm) Error() string {
	return fmt.Sprintf("unmatchable query term: %s", e.Term)
}

// MalformedQuery is returned by the query parser/compiler for structurally
// invalid input, e.g. an inverted bbox.
type MalformedQuery struct {
	Query   string
	Message string
}

func (e *MalformedQuery) Error() string {
	return fmt.Sprintf("malformed query %q: %s", e.Query, e.Message)
}

// UpstreamFailure wraps a failure returned by the store or index backend.
type UpstreamFailure struct {
	Op    string
	Cause error
}

func (e *UpstreamFailure) Error() string {
	return fmt.Sprintf("upstream failure during %s: %v", e.Op, e.Cause)
}

func (e *UpstreamFailure) Unwrap() error {
	return e.Cause
}

// Cancelled is returned when a pipeline is torn down mid-flight via context
// cancellation.
type Cancelled struct {
	Stage string
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("cancelled during %s", e.Stage)
}
