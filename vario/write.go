package vario

import (
	"io"
	"math"

	"github.com/TenniS-Open/omega/notation"
)

// WriteOptions configures Write.
type WriteOptions struct {
	// Magic prefixes the 8-byte module header.
	Magic bool
}

// Write encodes v to w and returns the number of bytes written.
func Write(w io.Writer, v *notation.Var, opts WriteOptions) (int, error) {
	var buf []byte
	if opts.Magic {
		buf = AppendHeader(buf)
	}
	buf, err := appendElement(NewContext(""), buf, v.Element())
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

// WriteVar encodes v without header and returns the number of bytes
// written.
func WriteVar(w io.Writer, v *notation.Var) (int, error) {
	return Write(w, v, WriteOptions{})
}

// Marshal encodes v with the module header.
func Marshal(v *notation.Var) ([]byte, error) {
	return appendElement(NewContext(""), AppendHeader(nil), v.Element())
}

// AppendHeader appends the module header to b.
func AppendHeader(b []byte) []byte {
	b = order.AppendUint32(b, 0)
	return order.AppendUint32(b, Magic)
}

func appendCode(b []byte, code notation.DataType) []byte {
	return order.AppendUint16(b, uint16(code))
}

func appendSize(ctx *Context, b []byte, n int) ([]byte, error) {
	if n > math.MaxInt32 {
		return nil, ctx.Errorf(notation.ErrOutOfRange, "size %d does not fit int32", n)
	}
	b = appendCode(b, notation.ScalarType(notation.SubInt32))
	return order.AppendUint32(b, uint32(n)), nil
}

func appendElement(ctx *Context, b []byte, e notation.Element) ([]byte, error) {
	var err error
	switch x := e.(type) {
	case nil:
		return appendCode(b, notation.TypeUndefined), nil
	case *notation.NullElement:
		return appendCode(b, notation.TypeNone), nil
	case *notation.BooleanElement:
		b = appendCode(b, notation.TypeBoolean)
		if x.Value {
			return append(b, 1), nil
		}
		return append(b, 0), nil
	case *notation.ScalarElement:
		b = appendCode(b, x.Type())
		return x.AppendBinary(b), nil
	case *notation.StringElement:
		b = appendCode(b, notation.TypeString)
		if b, err = appendSize(ctx, b, len(x.Value)); err != nil {
			return nil, err
		}
		return append(b, x.Value...), nil
	case *notation.BinaryElement:
		b = appendCode(b, notation.TypeBinary)
		if b, err = appendSize(ctx, b, len(x.Data)); err != nil {
			return nil, err
		}
		return append(b, x.Data...), nil
	case *notation.VectorElement:
		b = appendCode(b, x.Type())
		if b, err = appendSize(ctx, b, x.Len()); err != nil {
			return nil, err
		}
		return append(b, x.Bytes()...), nil
	case *notation.ArrayElement:
		b = appendCode(b, notation.TypeArray)
		if b, err = appendSize(ctx, b, len(x.Items)); err != nil {
			return nil, err
		}
		for i, item := range x.Items {
			ctx.PushIndex(i)
			if b, err = appendElement(ctx, b, item); err != nil {
				return nil, err
			}
			ctx.Pop()
		}
		return b, nil
	case *notation.ObjectElement:
		b = appendCode(b, notation.TypeObject)
		if b, err = appendSize(ctx, b, len(x.Fields)); err != nil {
			return nil, err
		}
		for _, key := range x.Keys() {
			b = appendCode(b, notation.TypeString)
			if b, err = appendSize(ctx, b, len(key)); err != nil {
				return nil, err
			}
			b = append(b, key...)
			ctx.PushKey(key)
			if b, err = appendElement(ctx, b, x.Fields[key]); err != nil {
				return nil, err
			}
			ctx.Pop()
		}
		return b, nil
	}
	return nil, ctx.Errorf(ErrUnrecognizedType, "element %T", e)
}
