package errors

import (
	"errors"
	"fmt"
)

// SchemaError is the one fatal condition inside the pipeline: an input
// document whose structure cannot support normalization (no NOI row in an
// income statement, a rent roll with zero parsable rows). It halts the run
// for that document set and always carries the originating document ID.
type SchemaError struct {
	DocumentID string
	Reason     string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error in document %s: %s", e.DocumentID, e.Reason)
}

// NewSchemaError creates a schema error for the given document
func NewSchemaError(documentID, format string, args ...interface{}) *SchemaError {
	return &SchemaError{
		DocumentID: documentID,
		Reason:     fmt.Sprintf(format, args...),
	}
}

// AsSchemaError unwraps err to a *SchemaError when possible
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsSchemaError reports whether err is (or wraps) a SchemaError
func IsSchemaError(err error) bool {
	_, ok := AsSchemaError(err)
	return ok
}
