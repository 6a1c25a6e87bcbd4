package vario

import (
	"errors"

	"github.com/TenniS-Open/omega/notation"
)

// Error kinds shared by every codec. Test with errors.Is.
var (
	ErrEndOfStream        = errors.New("unexpected end of stream")
	ErrUnrecognizedType   = errors.New("unrecognized type")
	ErrUnexpectedType     = notation.ErrUnexpectedType
	ErrUnrecognizedFormat = errors.New("unrecognized format")
	ErrSyntax             = errors.New("syntax error")
	ErrFileNotFound       = errors.New("file not found")
	ErrCommand            = errors.New("command failed")
)

// IOError is a codec failure located by the breadcrumb of the value being
// read or written when it happened.
type IOError struct {
	Kind error  // one of the Err* kinds above
	Path string // breadcrumb, e.g. "<>.users[3].name"
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *IOError) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "while import " + e.Path + ", got exception: " + msg
}

func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
