package binding

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/TenniS-Open/omega/notation"
)

// Codec moves one Go value in and out of a Var.
type Codec interface {
	// Target returns the bound Go location, a pointer or slice.
	Target() any
	Parse(v *notation.Var) error
	Dump() *notation.Var
}

type defaulter interface {
	applyDefault()
}

// targetAddr returns the address a codec writes to.
func targetAddr(t any) (uintptr, bool) {
	rv := reflect.ValueOf(t)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	}
	return 0, false
}

// ============================================================
// Scalars
// ============================================================

// ScalarCodec binds a single scalar, string or boolean field. With a
// default, values that fail to convert fall back to the default instead
// of failing the parse.
type ScalarCodec[T any] struct {
	p    *T
	from func(*notation.Var) (T, error)
	to   func(T) *notation.Var
	def  *T
}

// Default sets the field to v now and on every failed conversion.
func (c *ScalarCodec[T]) Default(v T) *ScalarCodec[T] {
	c.def = &v
	return c
}

func (c *ScalarCodec[T]) Target() any { return c.p }

func (c *ScalarCodec[T]) Parse(v *notation.Var) error {
	x, err := c.from(v)
	if err != nil {
		if c.def != nil {
			*c.p = *c.def
			return nil
		}
		return err
	}
	*c.p = x
	return nil
}

func (c *ScalarCodec[T]) Dump() *notation.Var { return c.to(*c.p) }

func (c *ScalarCodec[T]) applyDefault() {
	if c.def != nil {
		*c.p = *c.def
	}
}

// Int binds an integer field of any width or signedness.
func Int[T notation.Integer](p *T) *ScalarCodec[T] {
	return &ScalarCodec[T]{p: p, from: notation.ToInt[T], to: dumpInt[T]}
}

// Unsigned is the set of unsigned integer kinds.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Uint binds an unsigned field; negative input fails with ErrOutOfRange.
func Uint[T Unsigned](p *T) *ScalarCodec[T] {
	return &ScalarCodec[T]{p: p, from: notation.ToInt[T], to: dumpInt[T]}
}

func dumpInt[T notation.Integer](x T) *notation.Var {
	if ^T(0) < 0 {
		return notation.Of(int64(x))
	}
	return notation.Of(uint64(x))
}

// Float binds a float32 or float64 field.
func Float[T notation.Floating](p *T) *ScalarCodec[T] {
	return &ScalarCodec[T]{p: p, from: notation.ToFloat[T], to: func(x T) *notation.Var {
		return notation.Of(float64(x))
	}}
}

// String binds a string field.
func String(p *string) *ScalarCodec[string] {
	return &ScalarCodec[string]{p: p, from: (*notation.Var).AsString, to: notation.String}
}

// Bool binds a boolean field.
func Bool(p *bool) *ScalarCodec[bool] {
	return &ScalarCodec[bool]{p: p, from: (*notation.Var).AsBool, to: notation.Bool}
}

// ============================================================
// Opaque values
// ============================================================

type bytesCodec struct{ p *[]byte }

// Bytes binds a byte slice to a binary value. Strings are accepted on input.
func Bytes(p *[]byte) Codec { return bytesCodec{p} }

func (c bytesCodec) Target() any { return c.p }

func (c bytesCodec) Parse(v *notation.Var) error {
	b, err := v.AsBytes()
	if err != nil {
		return err
	}
	*c.p = append([]byte(nil), b...)
	return nil
}

func (c bytesCodec) Dump() *notation.Var { return notation.Binary(*c.p) }

type valueCodec struct{ p **notation.Var }

// Value binds a raw Var field, stored as is.
func Value(p **notation.Var) Codec { return valueCodec{p} }

func (c valueCodec) Target() any { return c.p }

func (c valueCodec) Parse(v *notation.Var) error {
	*c.p = v
	return nil
}

func (c valueCodec) Dump() *notation.Var {
	if *c.p == nil {
		return notation.Undefined()
	}
	return *c.p
}

type nestedCodec struct {
	target any
	obj    *Object
}

// Nested binds a field whose type itself embeds an initialised Object.
func Nested(b Bindable) Codec { return &nestedCodec{target: b, obj: b.Binding()} }

func (c *nestedCodec) Target() any { return c.target }

func (c *nestedCodec) Parse(v *notation.Var) error { return c.obj.parse(v) }

func (c *nestedCodec) Dump() *notation.Var { return c.obj.Dump() }

// ============================================================
// Containers
// ============================================================

// ElemFunc builds the codec for one container element. For bindable
// element types it is also where the element gets initialised.
type ElemFunc[T any] func(p *T) Codec

type sliceCodec[T any] struct {
	p    *[]T
	elem ElemFunc[T]
}

// Slice binds a slice; the input must be an array or a vector.
func Slice[T any](p *[]T, elem ElemFunc[T]) Codec {
	return &sliceCodec[T]{p: p, elem: elem}
}

func (c *sliceCodec[T]) Target() any { return c.p }

func (c *sliceCodec[T]) Parse(v *notation.Var) error {
	n, err := sequenceLen(v)
	if err != nil {
		return err
	}
	out := make([]T, n)
	if err := parseItems(v, out, c.elem); err != nil {
		return err
	}
	*c.p = out
	return nil
}

func (c *sliceCodec[T]) Dump() *notation.Var { return dumpItems(*c.p, c.elem) }

type fixedCodec[T any] struct {
	s    []T
	elem ElemFunc[T]
}

// FixedArray binds a Go array through a slice of it, e.g. FixedArray(o.Pos[:], ...).
// The input must have exactly len(s) items.
func FixedArray[T any](s []T, elem ElemFunc[T]) Codec {
	return &fixedCodec[T]{s: s, elem: elem}
}

func (c *fixedCodec[T]) Target() any { return c.s }

func (c *fixedCodec[T]) Parse(v *notation.Var) error {
	n, err := sequenceLen(v)
	if err != nil {
		return err
	}
	if n != len(c.s) {
		return fmt.Errorf("%w: expecting %d items, got %d", ErrUnexpectedType, len(c.s), n)
	}
	return parseItems(v, c.s, c.elem)
}

func (c *fixedCodec[T]) Dump() *notation.Var { return dumpItems(c.s, c.elem) }

func sequenceLen(v *notation.Var) (int, error) {
	if t := v.Type(); t != notation.TypeArray && !t.IsVector() {
		return 0, fmt.Errorf("%w: expecting array, got %s", ErrUnexpectedType, t)
	}
	return v.Len()
}

func parseItems[T any](v *notation.Var, out []T, elem ElemFunc[T]) error {
	for i := range out {
		item, err := v.At(i)
		if err != nil {
			return err
		}
		if err := elem(&out[i]).Parse(item); err != nil {
			return under(fmt.Sprintf("[%d]", i), err)
		}
	}
	return nil
}

// dumpItems works on copies so building element codecs never touches s.
func dumpItems[T any](s []T, elem ElemFunc[T]) *notation.Var {
	items := make([]*notation.Var, len(s))
	for i := range s {
		x := s[i]
		items[i] = elem(&x).Dump()
	}
	return notation.Array(items...)
}

type mapCodec[T any] struct {
	p    *map[string]T
	elem ElemFunc[T]
}

// Map binds a string-keyed map to an object value.
func Map[T any](p *map[string]T, elem ElemFunc[T]) Codec {
	return &mapCodec[T]{p: p, elem: elem}
}

func (c *mapCodec[T]) Target() any { return c.p }

func (c *mapCodec[T]) Parse(v *notation.Var) error {
	obj, ok := v.Element().(*notation.ObjectElement)
	if !ok {
		return fmt.Errorf("%w: expecting object, got %s", ErrUnexpectedType, v.Type())
	}
	out := make(map[string]T, len(obj.Fields))
	for _, k := range obj.Keys() {
		var x T
		if err := c.elem(&x).Parse(notation.FromElement(obj.Fields[k])); err != nil {
			return under("."+k, err)
		}
		out[k] = x
	}
	*c.p = out
	return nil
}

func (c *mapCodec[T]) Dump() *notation.Var {
	keys := make([]string, 0, len(*c.p))
	for k := range *c.p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]notation.Entry, len(keys))
	for i, k := range keys {
		x := (*c.p)[k]
		entries[i] = notation.Field(k, c.elem(&x).Dump())
	}
	return notation.Object(entries...)
}
