package notation

import (
	"fmt"
	"time"

	"github.com/x448/float16"
)

// ============================================================
// Go value bridge
// ============================================================
//
// Converts between Var trees and the generic Go values produced and
// consumed by third-party codecs (map[string]any, []any, primitives).
// Scalars keep their Go type where one exists, so float32 stays float32.

// ToAny converts v into plain Go values. Undefined and null become nil.
func ToAny(v *Var) (any, error) {
	return elementToAny(v.Element())
}

func elementToAny(e Element) (any, error) {
	switch x := e.(type) {
	case nil, *NullElement:
		return nil, nil
	case *BooleanElement:
		return x.Value, nil
	case *ScalarElement:
		return scalarToAny(x), nil
	case *StringElement:
		return x.Value, nil
	case *BinaryElement:
		return x.Data, nil
	case *VectorElement:
		items := make([]any, x.count)
		for i := range items {
			s, err := x.At(i)
			if err != nil {
				return nil, err
			}
			items[i] = scalarToAny(s)
		}
		return items, nil
	case *ArrayElement:
		items := make([]any, len(x.Items))
		for i, item := range x.Items {
			a, err := elementToAny(item)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items[i] = a
		}
		return items, nil
	case *ObjectElement:
		obj := make(map[string]any, len(x.Fields))
		for k, f := range x.Fields {
			a, err := elementToAny(f)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = a
		}
		return obj, nil
	}
	return nil, fmt.Errorf("notation: unsupported element %T", e)
}

func scalarToAny(s *ScalarElement) any {
	switch v := s.value.(type) {
	case float16.Float16:
		return v.Float32()
	case Pointer:
		return uint64(v)
	case Char8:
		return uint8(v)
	case Char16:
		return uint16(v)
	case Char32:
		return int32(v)
	case Unknown8:
		return v[:]
	case Unknown16:
		return v[:]
	case Unknown32:
		return v[:]
	case Unknown64:
		return v[:]
	case Unknown128:
		return v[:]
	case Complex32:
		return []any{v.Real.Float32(), v.Imag.Float32()}
	case complex64:
		return []any{real(v), imag(v)}
	case complex128:
		return []any{real(v), imag(v)}
	case Void:
		return nil
	}
	return s.value
}

// FromAny converts plain Go values into a Var tree. Go int becomes int64,
// []byte becomes binary and time.Time becomes an RFC 3339 string.
func FromAny(x any) (*Var, error) {
	e, err := anyToElement(x)
	if err != nil {
		return nil, err
	}
	return FromElement(e), nil
}

func anyToElement(x any) (Element, error) {
	switch v := x.(type) {
	case nil:
		return &NullElement{}, nil
	case *Var:
		return v.Element(), nil
	case bool:
		return &BooleanElement{Value: v}, nil
	case int:
		return NewScalar(int64(v)), nil
	case int8:
		return NewScalar(v), nil
	case int16:
		return NewScalar(v), nil
	case int32:
		return NewScalar(v), nil
	case int64:
		return NewScalar(v), nil
	case uint:
		return NewScalar(uint64(v)), nil
	case uint8:
		return NewScalar(v), nil
	case uint16:
		return NewScalar(v), nil
	case uint32:
		return NewScalar(v), nil
	case uint64:
		return NewScalar(v), nil
	case float32:
		return NewScalar(v), nil
	case float64:
		return NewScalar(v), nil
	case string:
		return &StringElement{Value: v}, nil
	case []byte:
		return &BinaryElement{Data: v}, nil
	case time.Time:
		return &StringElement{Value: v.Format(time.RFC3339Nano)}, nil
	case []any:
		arr := &ArrayElement{Items: make([]Element, len(v))}
		for i, item := range v {
			e, err := anyToElement(item)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr.Items[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := NewObjectElement()
		for k, item := range v {
			e, err := anyToElement(item)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj.Fields[k] = e
		}
		return obj, nil
	case map[any]any:
		obj := NewObjectElement()
		for k, item := range v {
			ks := fmt.Sprint(k)
			e, err := anyToElement(item)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", ks, err)
			}
			obj.Fields[ks] = e
		}
		return obj, nil
	}
	return nil, fmt.Errorf("notation: unsupported Go value %T", x)
}
