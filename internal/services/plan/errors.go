package plan

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a write names a key the resolved schema
// does not define
var ErrUnknownField = errors.New("unknown field")

// LoadError reports a saved plan document that could not be decoded. The
// in-memory state is left untouched when one is returned.
type LoadError struct {
	Path   string
	Detail string
	err    error
}

func (e *LoadError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("load plan %s: %s: %v", e.Path, e.Detail, e.err)
	}
	return fmt.Sprintf("load plan %s: %s", e.Path, e.Detail)
}

func (e *LoadError) Unwrap() error {
	return e.err
}
