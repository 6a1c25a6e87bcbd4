package notation

import "fmt"

// DataType is the 16-bit type code of a value: main type in the high byte,
// sub type in the low byte for scalars and vectors.
type DataType uint16

// Main types. The numeric values are part of the binary wire format.
const (
	TypeNone      DataType = 0x0000
	TypeScalar    DataType = 0x0100
	TypeString    DataType = 0x0200
	TypeBoolean   DataType = 0x0400
	TypeArray     DataType = 0x0500
	TypeObject    DataType = 0x0600
	TypeVector    DataType = 0x0700
	TypeBinary    DataType = 0x0800
	TypeUndefined DataType = 0xFF00
)

// SubType identifies the primitive carried by a scalar or a vector.
type SubType uint8

const (
	SubVoid SubType = iota
	SubInt8
	SubUint8
	SubInt16
	SubUint16
	SubInt32
	SubUint32
	SubInt64
	SubUint64
	SubFloat16
	SubFloat32
	SubFloat64
	SubPointer
	SubChar8
	SubChar16
	SubChar32
	SubUnknown8
	SubUnknown16
	SubUnknown32
	SubUnknown64
	SubUnknown128
	SubBool
	SubComplex32
	SubComplex64
	SubComplex128
)

// PointerSize is the wire width of SubPointer.
const PointerSize = 8

var subTypeNames = [...]string{
	SubVoid:       "void",
	SubInt8:       "int8",
	SubUint8:      "uint8",
	SubInt16:      "int16",
	SubUint16:     "uint16",
	SubInt32:      "int32",
	SubUint32:     "uint32",
	SubInt64:      "int64",
	SubUint64:     "uint64",
	SubFloat16:    "float16",
	SubFloat32:    "float32",
	SubFloat64:    "float64",
	SubPointer:    "pointer",
	SubChar8:      "char8",
	SubChar16:     "char16",
	SubChar32:     "char32",
	SubUnknown8:   "unknown8",
	SubUnknown16:  "unknown16",
	SubUnknown32:  "unknown32",
	SubUnknown64:  "unknown64",
	SubUnknown128: "unknown128",
	SubBool:       "bool",
	SubComplex32:  "complex32",
	SubComplex64:  "complex64",
	SubComplex128: "complex128",
}

var subTypeSizes = [...]int{
	SubVoid:       0,
	SubInt8:       1,
	SubUint8:      1,
	SubInt16:      2,
	SubUint16:     2,
	SubInt32:      4,
	SubUint32:     4,
	SubInt64:      8,
	SubUint64:     8,
	SubFloat16:    2,
	SubFloat32:    4,
	SubFloat64:    8,
	SubPointer:    PointerSize,
	SubChar8:      1,
	SubChar16:     2,
	SubChar32:     4,
	SubUnknown8:   1,
	SubUnknown16:  2,
	SubUnknown32:  4,
	SubUnknown64:  8,
	SubUnknown128: 16,
	SubBool:       1,
	SubComplex32:  4,
	SubComplex64:  8,
	SubComplex128: 16,
}

// Valid reports whether s is one of the known sub types.
func (s SubType) Valid() bool {
	return int(s) < len(subTypeNames)
}

// String returns the sub type name, or "unknown".
func (s SubType) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return subTypeNames[s]
}

// Size returns the fixed byte width of s. Void and unknown codes are 0.
func (s SubType) Size() int {
	if !s.Valid() {
		return 0
	}
	return subTypeSizes[s]
}

// IsInteger reports whether s is a signed or unsigned integer.
func (s SubType) IsInteger() bool {
	return s >= SubInt8 && s <= SubUint64
}

// IsSigned reports whether s is a signed integer.
func (s SubType) IsSigned() bool {
	switch s {
	case SubInt8, SubInt16, SubInt32, SubInt64:
		return true
	}
	return false
}

// IsFloat reports whether s is a floating point type.
func (s SubType) IsFloat() bool {
	return s == SubFloat16 || s == SubFloat32 || s == SubFloat64
}

// IsChar reports whether s is a character type.
func (s SubType) IsChar() bool {
	return s == SubChar8 || s == SubChar16 || s == SubChar32
}

// IsComplex reports whether s is a complex type.
func (s SubType) IsComplex() bool {
	return s == SubComplex32 || s == SubComplex64 || s == SubComplex128
}

// IsNumeric reports whether values of s have a natural numeric reading.
func (s SubType) IsNumeric() bool {
	return s.IsInteger() || s.IsFloat() || s.IsChar() || s == SubBool
}

// MainType returns the main type of code.
func MainType(code DataType) DataType {
	return code & 0xFF00
}

// SubTypeOf returns the sub type byte of code.
func SubTypeOf(code DataType) SubType {
	return SubType(code & 0x00FF)
}

// ScalarType returns the scalar type code for sub.
func ScalarType(sub SubType) DataType {
	return TypeScalar | DataType(sub)
}

// VectorType returns the vector type code for sub.
func VectorType(sub SubType) DataType {
	return TypeVector | DataType(sub)
}

// Main returns the main type of t.
func (t DataType) Main() DataType { return MainType(t) }

// Sub returns the sub type of t.
func (t DataType) Sub() SubType { return SubTypeOf(t) }

func (t DataType) IsUndefined() bool { return MainType(t) == TypeUndefined }
func (t DataType) IsNull() bool      { return MainType(t) == TypeNone }
func (t DataType) IsBoolean() bool   { return MainType(t) == TypeBoolean }
func (t DataType) IsString() bool    { return MainType(t) == TypeString }
func (t DataType) IsArray() bool     { return MainType(t) == TypeArray }
func (t DataType) IsObject() bool    { return MainType(t) == TypeObject }
func (t DataType) IsVector() bool    { return MainType(t) == TypeVector }
func (t DataType) IsBinary() bool    { return MainType(t) == TypeBinary }
func (t DataType) IsScalar() bool    { return MainType(t) == TypeScalar }

// IsInteger reports whether t is an integer scalar.
func (t DataType) IsInteger() bool {
	return t.IsScalar() && t.Sub().IsInteger()
}

// IsFloat reports whether t is a floating point scalar.
func (t DataType) IsFloat() bool {
	return t.IsScalar() && t.Sub().IsFloat()
}

// IsKnown reports whether t is a code this package can represent.
func (t DataType) IsKnown() bool {
	switch MainType(t) {
	case TypeScalar, TypeVector:
		return t.Sub().Valid()
	case TypeNone, TypeString, TypeBoolean, TypeArray, TypeObject, TypeBinary, TypeUndefined:
		return SubTypeOf(t) == 0
	}
	return false
}

// Name returns the main type name: "scalar" and "vector" for those families.
func (t DataType) Name() string {
	switch MainType(t) {
	case TypeNone:
		return "null"
	case TypeScalar:
		return "scalar"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeVector:
		return "vector"
	case TypeBinary:
		return "binary"
	case TypeUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// String returns the full type name, e.g. "int32" or "vector<float32>".
func (t DataType) String() string {
	switch MainType(t) {
	case TypeScalar:
		return t.Sub().String()
	case TypeVector:
		return "vector<" + t.Sub().String() + ">"
	default:
		return t.Name()
	}
}

// GoString makes %#v print the raw code next to the name.
func (t DataType) GoString() string {
	return fmt.Sprintf("DataType(0x%04x %s)", uint16(t), t)
}
