package notation

import "sort"

// Element is a value node. The concrete arms are NullElement,
// BooleanElement, ScalarElement, StringElement, BinaryElement,
// ArrayElement, ObjectElement and VectorElement; a nil Element is
// undefined.
type Element interface {
	Type() DataType
	isElement()
}

// NullElement is the null value.
type NullElement struct{}

// BooleanElement is a boolean value.
type BooleanElement struct {
	Value bool
}

// ScalarElement holds one fixed-width primitive. The sub type is derived
// from the Go type of the held value.
type ScalarElement struct {
	value any
	sub   SubType
}

// StringElement is an owned byte string, UTF-8 assumed.
type StringElement struct {
	Value string
}

// BinaryElement is an owned raw byte buffer.
type BinaryElement struct {
	Data []byte
}

// ArrayElement is an ordered, dense sequence of values.
type ArrayElement struct {
	Items []Element
}

// ObjectElement maps unique keys to values. Iteration order is key order.
type ObjectElement struct {
	Fields map[string]Element
}

func (*NullElement) Type() DataType    { return TypeNone }
func (*BooleanElement) Type() DataType { return TypeBoolean }
func (s *ScalarElement) Type() DataType {
	return ScalarType(s.sub)
}
func (*StringElement) Type() DataType { return TypeString }
func (*BinaryElement) Type() DataType { return TypeBinary }
func (*ArrayElement) Type() DataType  { return TypeArray }
func (*ObjectElement) Type() DataType { return TypeObject }

func (*NullElement) isElement()    {}
func (*BooleanElement) isElement() {}
func (*ScalarElement) isElement()  {}
func (*StringElement) isElement()  {}
func (*BinaryElement) isElement()  {}
func (*ArrayElement) isElement()   {}
func (*ObjectElement) isElement()  {}

// NewScalar builds a scalar element; T selects the sub type.
func NewScalar[T ScalarValue](v T) *ScalarElement {
	return &ScalarElement{value: v, sub: subTypeFor(any(v))}
}

// Sub returns the scalar sub type.
func (s *ScalarElement) Sub() SubType { return s.sub }

// Value returns the held Go value; its dynamic type is one of ScalarValue.
func (s *ScalarElement) Value() any { return s.value }

// NewObjectElement returns an empty object node.
func NewObjectElement() *ObjectElement {
	return &ObjectElement{Fields: make(map[string]Element)}
}

// Keys returns the object keys in sorted order.
func (o *ObjectElement) Keys() []string {
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// typeOf returns the type of e, TypeUndefined for nil.
func typeOf(e Element) DataType {
	if e == nil {
		return TypeUndefined
	}
	return e.Type()
}

// EqualElements compares two trees structurally: same tags, same payloads,
// arrays in order, objects by key set.
func EqualElements(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *NullElement:
		return true
	case *BooleanElement:
		return x.Value == b.(*BooleanElement).Value
	case *ScalarElement:
		y := b.(*ScalarElement)
		return string(x.AppendBinary(nil)) == string(y.AppendBinary(nil))
	case *StringElement:
		return x.Value == b.(*StringElement).Value
	case *BinaryElement:
		return string(x.Data) == string(b.(*BinaryElement).Data)
	case *ArrayElement:
		y := b.(*ArrayElement)
		if len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !EqualElements(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *ObjectElement:
		y := b.(*ObjectElement)
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			w, ok := y.Fields[k]
			if !ok || !EqualElements(v, w) {
				return false
			}
		}
		return true
	case *VectorElement:
		y := b.(*VectorElement)
		return x.count == y.count && string(x.data) == string(y.data)
	}
	return false
}
