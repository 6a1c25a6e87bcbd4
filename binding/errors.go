package binding

import (
	"errors"

	"github.com/TenniS-Open/omega/notation"
)

var (
	// ErrBindingIntegrity means a field registration does not belong to
	// the object it was registered on.
	ErrBindingIntegrity = errors.New("binding integrity violated")

	// ErrMissingRequiredField means a required key is absent from the input.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrUnexpectedType means the input has the wrong shape for a field.
	ErrUnexpectedType = notation.ErrUnexpectedType
)

// FieldError locates a parse failure, e.g. "Config.users[3].name".
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return "binding: " + e.Path + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }

// under prefixes seg to the path of err.
func under(seg string, err error) error {
	if fe, ok := err.(*FieldError); ok {
		return &FieldError{Path: seg + fe.Path, Err: fe.Err}
	}
	return &FieldError{Path: seg, Err: err}
}
