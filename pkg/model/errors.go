package model

import "errors"

// Sentinel errors for the engine's failure taxonomy. Callers wrap these
// with fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	// ErrValidation marks a malformed graph at load time: a dangling
	// edge endpoint, a duplicate edge, or a self-loop.
	ErrValidation = errors.New("graph validation failed")

	// ErrNotFound marks a reference to a node or edge that does not
	// exist in the graph.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks a caller error such as a negative depth
	// bound or an empty source id.
	ErrInvalidArgument = errors.New("invalid argument")
)
