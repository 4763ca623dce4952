package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors, usable with errors.Is. A SchemaError is fatal to
// startup: it means the deployed documents are misconfigured, not that the
// user did anything wrong.
var (
	// ErrInvalidDocument is returned for structurally malformed base or
	// overlay documents (missing groups/fields arrays, bad field types).
	ErrInvalidDocument = errors.New("invalid schema document")

	// ErrUnknownAction is returned when an overlay directive names an
	// action outside replace-field/append-field/add-group.
	ErrUnknownAction = errors.New("unknown overlay action")

	// ErrGroupNotFound is returned when a field directive targets a group
	// that does not exist in the schema being resolved.
	ErrGroupNotFound = errors.New("overlay target group not found")
)

// SchemaError carries which document failed and why
type SchemaError struct {
	Doc    string // "base" or "overlay"
	Detail string
	err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s schema: %s", e.Doc, e.Detail)
}

func (e *SchemaError) Unwrap() error {
	return e.err
}

func invalidDoc(doc, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Doc: doc, Detail: fmt.Sprintf(format, args...), err: ErrInvalidDocument}
}
