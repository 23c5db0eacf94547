// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import "fmt"

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectionFailed indicates the target database could not be reached.
	ConnectionFailed Kind = "connection_failed"
	// GenerateFailed indicates a dsdgen/dsqgen run failed.
	GenerateFailed Kind = "generate_failed"
	// ImportFailed indicates a bulk import failed.
	ImportFailed Kind = "import_failed"
	// DistributeFailed indicates a query rewrite run failed.
	DistributeFailed Kind = "distribute_failed"
	// ConfigInvalid indicates bad harness configuration or mapping input.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
