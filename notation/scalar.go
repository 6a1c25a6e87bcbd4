package notation

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Pointer is a pointer-width opaque scalar.
type Pointer uint64

// Character scalars. They are distinct from the integers of the same width
// so that their sub type survives construction.
type (
	Char8  uint8
	Char16 uint16
	Char32 rune
)

// Opaque fixed-width scalars.
type (
	Unknown8   [1]byte
	Unknown16  [2]byte
	Unknown32  [4]byte
	Unknown64  [8]byte
	Unknown128 [16]byte
)

// Complex32 is a complex number made of two half precision floats.
type Complex32 struct {
	Real float16.Float16
	Imag float16.Float16
}

// Void is the payload of the zero-width void scalar.
type Void struct{}

// ScalarValue is the closed set of Go types a scalar can hold. Each type maps
// to exactly one SubType.
type ScalarValue interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float16.Float16 | float32 | float64 | Pointer |
		Char8 | Char16 | Char32 |
		Unknown8 | Unknown16 | Unknown32 | Unknown64 | Unknown128 |
		bool | Complex32 | complex64 | complex128 | Void
}

// subTypeFor maps a ScalarValue held in an interface to its sub type.
func subTypeFor(v any) SubType {
	switch v.(type) {
	case int8:
		return SubInt8
	case uint8:
		return SubUint8
	case int16:
		return SubInt16
	case uint16:
		return SubUint16
	case int32:
		return SubInt32
	case uint32:
		return SubUint32
	case int64:
		return SubInt64
	case uint64:
		return SubUint64
	case float16.Float16:
		return SubFloat16
	case float32:
		return SubFloat32
	case float64:
		return SubFloat64
	case Pointer:
		return SubPointer
	case Char8:
		return SubChar8
	case Char16:
		return SubChar16
	case Char32:
		return SubChar32
	case Unknown8:
		return SubUnknown8
	case Unknown16:
		return SubUnknown16
	case Unknown32:
		return SubUnknown32
	case Unknown64:
		return SubUnknown64
	case Unknown128:
		return SubUnknown128
	case bool:
		return SubBool
	case Complex32:
		return SubComplex32
	case complex64:
		return SubComplex64
	case complex128:
		return SubComplex128
	default:
		return SubVoid
	}
}

// AppendBinary appends the little-endian wire bytes of the scalar to b.
func (s *ScalarElement) AppendBinary(b []byte) []byte {
	le := binary.LittleEndian
	switch v := s.value.(type) {
	case int8:
		return append(b, byte(v))
	case uint8:
		return append(b, v)
	case int16:
		return le.AppendUint16(b, uint16(v))
	case uint16:
		return le.AppendUint16(b, v)
	case int32:
		return le.AppendUint32(b, uint32(v))
	case uint32:
		return le.AppendUint32(b, v)
	case int64:
		return le.AppendUint64(b, uint64(v))
	case uint64:
		return le.AppendUint64(b, v)
	case float16.Float16:
		return le.AppendUint16(b, v.Bits())
	case float32:
		return le.AppendUint32(b, math.Float32bits(v))
	case float64:
		return le.AppendUint64(b, math.Float64bits(v))
	case Pointer:
		return le.AppendUint64(b, uint64(v))
	case Char8:
		return append(b, byte(v))
	case Char16:
		return le.AppendUint16(b, uint16(v))
	case Char32:
		return le.AppendUint32(b, uint32(v))
	case Unknown8:
		return append(b, v[:]...)
	case Unknown16:
		return append(b, v[:]...)
	case Unknown32:
		return append(b, v[:]...)
	case Unknown64:
		return append(b, v[:]...)
	case Unknown128:
		return append(b, v[:]...)
	case bool:
		if v {
			return append(b, 1)
		}
		return append(b, 0)
	case Complex32:
		b = le.AppendUint16(b, v.Real.Bits())
		return le.AppendUint16(b, v.Imag.Bits())
	case complex64:
		b = le.AppendUint32(b, math.Float32bits(real(v)))
		return le.AppendUint32(b, math.Float32bits(imag(v)))
	case complex128:
		b = le.AppendUint64(b, math.Float64bits(real(v)))
		return le.AppendUint64(b, math.Float64bits(imag(v)))
	default:
		return b
	}
}

// DecodeScalar rebuilds a scalar of the given sub type from exactly
// sub.Size() little-endian bytes.
func DecodeScalar(sub SubType, b []byte) (*ScalarElement, error) {
	if !sub.Valid() {
		return nil, newError(ErrUnexpectedType, ScalarType(sub), "decode", "unknown scalar sub type %d", uint8(sub))
	}
	if len(b) != sub.Size() {
		return nil, newError(ErrUnexpectedType, ScalarType(sub), "decode", "need %d bytes, got %d", sub.Size(), len(b))
	}
	le := binary.LittleEndian
	var v any
	switch sub {
	case SubVoid:
		v = Void{}
	case SubInt8:
		v = int8(b[0])
	case SubUint8:
		v = b[0]
	case SubInt16:
		v = int16(le.Uint16(b))
	case SubUint16:
		v = le.Uint16(b)
	case SubInt32:
		v = int32(le.Uint32(b))
	case SubUint32:
		v = le.Uint32(b)
	case SubInt64:
		v = int64(le.Uint64(b))
	case SubUint64:
		v = le.Uint64(b)
	case SubFloat16:
		v = float16.Frombits(le.Uint16(b))
	case SubFloat32:
		v = math.Float32frombits(le.Uint32(b))
	case SubFloat64:
		v = math.Float64frombits(le.Uint64(b))
	case SubPointer:
		v = Pointer(le.Uint64(b))
	case SubChar8:
		v = Char8(b[0])
	case SubChar16:
		v = Char16(le.Uint16(b))
	case SubChar32:
		v = Char32(le.Uint32(b))
	case SubUnknown8:
		v = Unknown8(b)
	case SubUnknown16:
		v = Unknown16(b)
	case SubUnknown32:
		v = Unknown32(b)
	case SubUnknown64:
		v = Unknown64(b)
	case SubUnknown128:
		v = Unknown128(b)
	case SubBool:
		v = b[0] != 0
	case SubComplex32:
		v = Complex32{Real: float16.Frombits(le.Uint16(b)), Imag: float16.Frombits(le.Uint16(b[2:]))}
	case SubComplex64:
		v = complex(math.Float32frombits(le.Uint32(b)), math.Float32frombits(le.Uint32(b[4:])))
	case SubComplex128:
		v = complex(math.Float64frombits(le.Uint64(b)), math.Float64frombits(le.Uint64(b[8:])))
	}
	return &ScalarElement{value: v, sub: sub}, nil
}

// numKind classifies the numeric reading of a scalar.
type numKind uint8

const (
	numNone numKind = iota
	numInt
	numUint
	numFloat
)

type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
}

// number returns the numeric reading of the scalar. Opaque and complex
// scalars have none.
func (s *ScalarElement) number() number {
	switch v := s.value.(type) {
	case int8:
		return number{kind: numInt, i: int64(v)}
	case int16:
		return number{kind: numInt, i: int64(v)}
	case int32:
		return number{kind: numInt, i: int64(v)}
	case int64:
		return number{kind: numInt, i: v}
	case uint8:
		return number{kind: numUint, u: uint64(v)}
	case uint16:
		return number{kind: numUint, u: uint64(v)}
	case uint32:
		return number{kind: numUint, u: uint64(v)}
	case uint64:
		return number{kind: numUint, u: v}
	case Char8:
		return number{kind: numUint, u: uint64(v)}
	case Char16:
		return number{kind: numUint, u: uint64(v)}
	case Char32:
		return number{kind: numInt, i: int64(v)}
	case Pointer:
		return number{kind: numUint, u: uint64(v)}
	case float16.Float16:
		return number{kind: numFloat, f: float64(v.Float32())}
	case float32:
		return number{kind: numFloat, f: float64(v)}
	case float64:
		return number{kind: numFloat, f: v}
	case bool:
		if v {
			return number{kind: numInt, i: 1}
		}
		return number{kind: numInt}
	case Void:
		return number{kind: numInt}
	}
	return number{}
}

// Format renders the scalar for diagnostics.
func (s *ScalarElement) Format(f fmt.State, verb rune) {
	switch v := s.value.(type) {
	case float16.Float16:
		fmt.Fprintf(f, "%v", v.Float32())
	default:
		fmt.Fprintf(f, "%v", v)
	}
}
