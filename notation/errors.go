package notation

import (
	"errors"
	"fmt"
)

// Error kinds raised by the value model. Test with errors.Is.
var (
	ErrOperatorNotSupported = errors.New("operator not supported")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrAttributeNotFound    = errors.New("attribute not found")
	ErrUnexpectedType       = errors.New("unexpected type")
	ErrParameterMismatch    = errors.New("parameter mismatch")
	ErrOutOfRange           = errors.New("value out of range")
)

// Error describes a failed operation on a value.
type Error struct {
	Kind error    // one of the Err* kinds above
	Type DataType // type of the receiver
	Op   string   // operation, e.g. "[]", "int64()"
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("notation: %s operator %s: %v", e.Type, e.Op, e.Kind)
	}
	return fmt.Sprintf("notation: %s operator %s: %v: %s", e.Type, e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, t DataType, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Type: t, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notSupported(t DataType, op string, supported ...DataType) *Error {
	if len(supported) == 0 {
		return &Error{Kind: ErrOperatorNotSupported, Type: t, Op: op}
	}
	msg := "expecting: "
	for i, s := range supported {
		if i > 0 {
			msg += ", "
		}
		msg += s.Name()
	}
	return &Error{Kind: ErrOperatorNotSupported, Type: t, Op: op, Msg: msg}
}

func indexError(t DataType, index, size int) *Error {
	if size == 0 {
		return newError(ErrIndexOutOfRange, t, "[]", "index %d, the %s is empty", index, t.Name())
	}
	return newError(ErrIndexOutOfRange, t, "[]", "index %d, must be in [-%d, %d]", index, size, size-1)
}
