package notation

import (
	"math"
	"strconv"
)

// Integer is the set of Go integer kinds ToInt can produce.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Floating is the set of Go float kinds ToFloat can produce.
type Floating interface {
	~float32 | ~float64
}

// Scalar returns the scalar node of v.
func (v *Var) Scalar() (*ScalarElement, error) {
	s, ok := v.Element().(*ScalarElement)
	if !ok {
		return nil, notSupported(v.Type(), "scalar()", TypeScalar)
	}
	return s, nil
}

// AsBool converts booleans, numeric scalars and null.
func (v *Var) AsBool() (bool, error) {
	switch e := v.Element().(type) {
	case *BooleanElement:
		return e.Value, nil
	case *NullElement:
		return false, nil
	case *ScalarElement:
		n := e.number()
		switch n.kind {
		case numInt:
			return n.i != 0, nil
		case numUint:
			return n.u != 0, nil
		case numFloat:
			return n.f != 0, nil
		}
	}
	return false, notSupported(v.Type(), "bool()", TypeBoolean, TypeScalar, TypeNone)
}

// AsInt64 converts to int64. Floats must be integral and in range; strings
// must parse exactly.
func (v *Var) AsInt64() (int64, error) {
	switch e := v.Element().(type) {
	case *BooleanElement:
		if e.Value {
			return 1, nil
		}
		return 0, nil
	case *StringElement:
		i, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return 0, newError(ErrUnexpectedType, TypeString, "int64()", "%q is not an integer", e.Value)
		}
		return i, nil
	case *ScalarElement:
		n := e.number()
		switch n.kind {
		case numInt:
			return n.i, nil
		case numUint:
			if n.u > math.MaxInt64 {
				return 0, newError(ErrOutOfRange, e.Type(), "int64()", "%d overflows int64", n.u)
			}
			return int64(n.u), nil
		case numFloat:
			if n.f != math.Trunc(n.f) || n.f < math.MinInt64 || n.f >= math.MaxInt64 {
				return 0, newError(ErrOutOfRange, e.Type(), "int64()", "%v is not an int64", n.f)
			}
			return int64(n.f), nil
		}
	}
	return 0, notSupported(v.Type(), "int64()", TypeBoolean, TypeString, TypeScalar)
}

// AsUint64 converts to uint64. Negative values fail with ErrOutOfRange.
func (v *Var) AsUint64() (uint64, error) {
	switch e := v.Element().(type) {
	case *BooleanElement:
		if e.Value {
			return 1, nil
		}
		return 0, nil
	case *StringElement:
		u, err := strconv.ParseUint(e.Value, 10, 64)
		if err != nil {
			return 0, newError(ErrUnexpectedType, TypeString, "uint64()", "%q is not an unsigned integer", e.Value)
		}
		return u, nil
	case *ScalarElement:
		n := e.number()
		switch n.kind {
		case numInt:
			if n.i < 0 {
				return 0, newError(ErrOutOfRange, e.Type(), "uint64()", "%d is negative", n.i)
			}
			return uint64(n.i), nil
		case numUint:
			return n.u, nil
		case numFloat:
			if n.f != math.Trunc(n.f) || n.f < 0 || n.f >= math.MaxUint64 {
				return 0, newError(ErrOutOfRange, e.Type(), "uint64()", "%v is not a uint64", n.f)
			}
			return uint64(n.f), nil
		}
	}
	return 0, notSupported(v.Type(), "uint64()", TypeBoolean, TypeString, TypeScalar)
}

// AsFloat64 converts numeric scalars, booleans and numeric strings.
func (v *Var) AsFloat64() (float64, error) {
	switch e := v.Element().(type) {
	case *BooleanElement:
		if e.Value {
			return 1, nil
		}
		return 0, nil
	case *StringElement:
		f, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return 0, newError(ErrUnexpectedType, TypeString, "float64()", "%q is not a number", e.Value)
		}
		return f, nil
	case *ScalarElement:
		n := e.number()
		switch n.kind {
		case numInt:
			return float64(n.i), nil
		case numUint:
			return float64(n.u), nil
		case numFloat:
			return n.f, nil
		}
	}
	return 0, notSupported(v.Type(), "float64()", TypeBoolean, TypeString, TypeScalar)
}

// AsComplex128 converts complex and real numeric scalars.
func (v *Var) AsComplex128() (complex128, error) {
	if s, ok := v.Element().(*ScalarElement); ok {
		switch c := s.value.(type) {
		case complex128:
			return c, nil
		case complex64:
			return complex128(c), nil
		case Complex32:
			return complex(float64(c.Real.Float32()), float64(c.Imag.Float32())), nil
		}
	}
	f, err := v.AsFloat64()
	if err != nil {
		return 0, err
	}
	return complex(f, 0), nil
}

// AsString returns the payload of a string value.
func (v *Var) AsString() (string, error) {
	s, ok := v.Element().(*StringElement)
	if !ok {
		return "", notSupported(v.Type(), "string()", TypeString)
	}
	return s.Value, nil
}

// AsBytes returns the payload of a binary value, or the bytes of a string.
func (v *Var) AsBytes() ([]byte, error) {
	switch e := v.Element().(type) {
	case *BinaryElement:
		return e.Data, nil
	case *StringElement:
		return []byte(e.Value), nil
	}
	return nil, notSupported(v.Type(), "binary()", TypeBinary, TypeString)
}

// ToInt converts v to the integer type T, failing with ErrOutOfRange when
// the value does not fit.
func ToInt[T Integer](v *Var) (T, error) {
	if ^T(0) < 0 {
		i, err := v.AsInt64()
		if err != nil {
			return 0, err
		}
		if int64(T(i)) != i {
			return 0, newError(ErrOutOfRange, v.Type(), "int()", "%d overflows target", i)
		}
		return T(i), nil
	}
	u, err := v.AsUint64()
	if err != nil {
		return 0, err
	}
	if uint64(T(u)) != u {
		return 0, newError(ErrOutOfRange, v.Type(), "int()", "%d overflows target", u)
	}
	return T(u), nil
}

// ToFloat converts v to the float type T. Finite values that overflow T
// fail with ErrOutOfRange.
func ToFloat[T Floating](v *Var) (T, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return 0, err
	}
	if !math.IsInf(f, 0) && math.IsInf(float64(T(f)), 0) {
		return 0, newError(ErrOutOfRange, v.Type(), "float()", "%v overflows target", f)
	}
	return T(f), nil
}

// VectorOf unpacks a vector whose element type is T.
func VectorOf[T ScalarValue](v *Var) ([]T, error) {
	vec, ok := v.Element().(*VectorElement)
	if !ok {
		return nil, notSupported(v.Type(), "vector()", TypeVector)
	}
	return VectorValues[T](vec)
}
