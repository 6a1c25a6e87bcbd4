// Package sta reads the legacy tag-length binary format. It is read-only;
// new data is written with package vario.
package sta

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/vario"
)

// Magic identifies a legacy file.
const Magic uint32 = 0x19910929

// Tags of the legacy format.
const (
	TagNil     byte = 0
	TagInt     byte = 1
	TagFloat   byte = 2
	TagString  byte = 3
	TagBinary  byte = 4
	TagList    byte = 5
	TagDict    byte = 6
	TagBoolean byte = 7
)

var order = binary.LittleEndian

// ReadSta decodes one legacy value. A nil ctx starts at the root.
func ReadSta(ctx *vario.Context, r io.Reader) (*notation.Var, error) {
	if ctx == nil {
		ctx = vario.NewContext("")
	}
	e, err := readElement(ctx, r)
	if err != nil {
		return nil, err
	}
	return notation.FromElement(e), nil
}

func readElement(ctx *vario.Context, r io.Reader) (notation.Element, error) {
	var tag [1]byte
	if err := vario.ReadFull(ctx, r, tag[:]); err != nil {
		return nil, err
	}
	switch tag[0] {
	case TagNil:
		// one pad byte follows
		if err := vario.ReadFull(ctx, r, tag[:]); err != nil {
			return nil, err
		}
		return &notation.NullElement{}, nil
	case TagInt:
		v, err := readInt32(ctx, r)
		if err != nil {
			return nil, err
		}
		return notation.NewScalar(v), nil
	case TagFloat:
		var b [4]byte
		if err := vario.ReadFull(ctx, r, b[:]); err != nil {
			return nil, err
		}
		return notation.NewScalar(math.Float32frombits(order.Uint32(b[:]))), nil
	case TagString:
		s, err := readString(ctx, r)
		if err != nil {
			return nil, err
		}
		return &notation.StringElement{Value: s}, nil
	case TagBinary:
		data, err := readSized(ctx, r)
		if err != nil {
			return nil, err
		}
		return &notation.BinaryElement{Data: data}, nil
	case TagList:
		return readList(ctx, r)
	case TagDict:
		return readDict(ctx, r)
	case TagBoolean:
		if err := vario.ReadFull(ctx, r, tag[:]); err != nil {
			return nil, err
		}
		return &notation.BooleanElement{Value: tag[0] != 0}, nil
	}
	return nil, ctx.Errorf(vario.ErrUnrecognizedType, "legacy tag %d", tag[0])
}

func readInt32(ctx *vario.Context, r io.Reader) (int32, error) {
	var b [4]byte
	if err := vario.ReadFull(ctx, r, b[:]); err != nil {
		return 0, err
	}
	return int32(order.Uint32(b[:])), nil
}

func readSize(ctx *vario.Context, r io.Reader) (int, error) {
	n, err := readInt32(ctx, r)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ctx.Errorf(vario.ErrUnexpectedType, "negative size %d", n)
	}
	return int(n), nil
}

func readSized(ctx *vario.Context, r io.Reader) ([]byte, error) {
	n, err := readSize(ctx, r)
	if err != nil {
		return nil, err
	}
	return vario.ReadPayload(ctx, r, n)
}

// readString reads a length-prefixed string. Legacy writers stored C
// strings, so the value ends at the first NUL.
func readString(ctx *vario.Context, r io.Reader) (string, error) {
	data, err := readSized(ctx, r)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}

func readList(ctx *vario.Context, r io.Reader) (notation.Element, error) {
	if err := ctx.CheckDepth(vario.ErrUnexpectedType); err != nil {
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

func readDict(ctx *vario.Context, r io.Reader) (notation.Element, error) {
	if err := ctx.CheckDepth(vario.ErrUnexpectedType); err != nil {
		return nil, err
	}
	n, err := readSize(ctx, r)
	if err != nil {
		return nil, err
	}
	obj := notation.NewObjectElement()
	for i := 0; i < n; i++ {
		key, err := readString(ctx, r)
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
