package vario

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/TenniS-Open/omega/notation"
)

// Magic identifies a binary module file. It follows a zero int32 in the
// 8-byte header.
const Magic uint32 = 0x19900714

// HeaderSize is the byte length of the module header.
const HeaderSize = 8

// Payloads up to this size are allocated at once; larger ones grow with
// the bytes actually received.
const eagerPayload = 64 << 10

var order = binary.LittleEndian

// ReadOptions configures Read.
type ReadOptions struct {
	// Magic expects the 8-byte module header before the value.
	Magic bool
	// Sysroot is recorded in the context for callers that resolve paths.
	Sysroot string
}

// Read decodes one value from r.
func Read(r io.Reader, opts ReadOptions) (*notation.Var, error) {
	ctx := NewContext(opts.Sysroot)
	if opts.Magic {
		if err := ReadHeader(ctx, r); err != nil {
			return nil, err
		}
	}
	return ReadVar(ctx, r)
}

// ReadHeader consumes and checks the module header.
func ReadHeader(ctx *Context, r io.Reader) error {
	var hdr [HeaderSize]byte
	if err := ReadFull(ctx, r, hdr[:]); err != nil {
		return err
	}
	if got := order.Uint32(hdr[4:]); got != Magic {
		return ctx.Errorf(ErrUnrecognizedFormat, "bad magic 0x%08x, expecting 0x%08x", got, Magic)
	}
	return nil
}

// ReadVar decodes one value without header. A nil ctx starts at the root.
func ReadVar(ctx *Context, r io.Reader) (*notation.Var, error) {
	if ctx == nil {
		ctx = NewContext("")
	}
	e, err := readElement(ctx, r)
	if err != nil {
		return nil, err
	}
	return notation.FromElement(e), nil
}

// Unmarshal decodes a value from data, which may start with the module
// header.
func Unmarshal(data []byte) (*notation.Var, error) {
	r := bytes.NewReader(data)
	return Read(r, ReadOptions{Magic: HasHeader(data)})
}

// HasHeader reports whether data starts with the module header.
func HasHeader(data []byte) bool {
	return len(data) >= HeaderSize && order.Uint32(data) == 0 && order.Uint32(data[4:]) == Magic
}

// ReadFull fills buf from r; a short read fails with ErrEndOfStream.
func ReadFull(ctx *Context, r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ctx.Errorf(ErrEndOfStream, "need %d bytes", len(buf))
		}
		return ctx.Wrap(ErrEndOfStream, err, "read")
	}
	return nil
}

// ReadPayload reads exactly n bytes. Large payloads are buffered as they
// arrive so a lying size on a short stream cannot force the allocation.
func ReadPayload(ctx *Context, r io.Reader, n int) ([]byte, error) {
	if n <= eagerPayload {
		buf := make([]byte, n)
		if err := ReadFull(ctx, r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	var buf bytes.Buffer
	got, err := io.CopyN(&buf, r, int64(n))
	if got < int64(n) {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, ctx.Wrap(ErrEndOfStream, err, "payload of %d bytes", n)
		}
		return nil, ctx.Errorf(ErrEndOfStream, "payload of %d bytes, got %d", n, got)
	}
	return buf.Bytes(), nil
}

func readCode(ctx *Context, r io.Reader) (notation.DataType, error) {
	var b [2]byte
	if err := ReadFull(ctx, r, b[:]); err != nil {
		return 0, err
	}
	return notation.DataType(order.Uint16(b[:])), nil
}

func readElement(ctx *Context, r io.Reader) (notation.Element, error) {
	code, err := readCode(ctx, r)
	if err != nil {
		return nil, err
	}
	if !code.IsKnown() {
		return nil, ctx.Errorf(ErrUnrecognizedType, "type code 0x%04x", uint16(code))
	}
	switch code.Main() {
	case notation.TypeUndefined:
		return nil, nil
	case notation.TypeNone:
		return &notation.NullElement{}, nil
	case notation.TypeBoolean:
		var b [1]byte
		if err := ReadFull(ctx, r, b[:]); err != nil {
			return nil, err
		}
		return &notation.BooleanElement{Value: b[0] != 0}, nil
	case notation.TypeScalar:
		buf := make([]byte, code.Sub().Size())
		if err := ReadFull(ctx, r, buf); err != nil {
			return nil, err
		}
		return notation.DecodeScalar(code.Sub(), buf)
	case notation.TypeString:
		data, err := readSized(ctx, r)
		if err != nil {
			return nil, err
		}
		return &notation.StringElement{Value: string(data)}, nil
	case notation.TypeBinary:
		data, err := readSized(ctx, r)
		if err != nil {
			return nil, err
		}
		return &notation.BinaryElement{Data: data}, nil
	case notation.TypeVector:
		count, err := readSize(ctx, r)
		if err != nil {
			return nil, err
		}
		width := code.Sub().Size()
		if width > 0 && count > math.MaxInt32/width {
			return nil, ctx.Errorf(ErrUnexpectedType, "vector of %d %s is too large", count, code.Sub())
		}
		data, err := ReadPayload(ctx, r, count*width)
		if err != nil {
			return nil, err
		}
		return notation.VectorFromBytes(code.Sub(), count, data)
	case notation.TypeArray:
		return readArray(ctx, r)
	case notation.TypeObject:
		return readObject(ctx, r)
	}
	return nil, ctx.Errorf(ErrUnrecognizedType, "type code 0x%04x", uint16(code))
}

func readArray(ctx *Context, r io.Reader) (notation.Element, error) {
	if err := ctx.CheckDepth(ErrUnexpectedType); err != nil {
		return nil, err
	}
	n, err := readSize(ctx, r)
	if err != nil {
		return nil, err
	}
	arr := &notation.ArrayElement{Items: make([]notation.Element, 0, min(n, 1024))}
	for i := 0; i < n; i++ {
		ctx.PushIndex(i)
		item, err := readElement(ctx, r)
		if err != nil {
			return nil, err
		}
		ctx.Pop()
		arr.Items = append(arr.Items, item)
	}
	return arr, nil
}

func readObject(ctx *Context, r io.Reader) (notation.Element, error) {
	if err := ctx.CheckDepth(ErrUnexpectedType); err != nil {
		return nil, err
	}
	n, err := readSize(ctx, r)
	if err != nil {
		return nil, err
	}
	obj := notation.NewObjectElement()
	for i := 0; i < n; i++ {
		key, err := readKey(ctx, r)
		if err != nil {
			return nil, err
		}
		ctx.PushKey(key)
		value, err := readElement(ctx, r)
		if err != nil {
			return nil, err
		}
		ctx.Pop()
		obj.Fields[key] = value
	}
	return obj, nil
}

// readSize reads a size var: an integer scalar, never negative.
func readSize(ctx *Context, r io.Reader) (int, error) {
	e, err := readElement(ctx, r)
	if err != nil {
		return 0, err
	}
	s, ok := e.(*notation.ScalarElement)
	if !ok || !s.Sub().IsInteger() {
		return 0, ctx.Errorf(ErrUnexpectedType, "expecting integer size, but got: %s", typeName(e))
	}
	n, err := notation.ToInt[int](notation.FromElement(s))
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0, ctx.Errorf(ErrUnexpectedType, "invalid size %v", s)
	}
	return n, nil
}

func readSized(ctx *Context, r io.Reader) ([]byte, error) {
	n, err := readSize(ctx, r)
	if err != nil {
		return nil, err
	}
	return ReadPayload(ctx, r, n)
}

func readKey(ctx *Context, r io.Reader) (string, error) {
	e, err := readElement(ctx, r)
	if err != nil {
		return "", err
	}
	s, ok := e.(*notation.StringElement)
	if !ok {
		return "", ctx.Errorf(ErrUnexpectedType, "expecting string key, but got: %s", typeName(e))
	}
	return s.Value, nil
}

func typeName(e notation.Element) string {
	if e == nil {
		return notation.TypeUndefined.String()
	}
	return e.Type().String()
}
