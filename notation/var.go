package notation

// Var is the handle applications work with. It wraps a possibly absent
// element and, for handles produced by Key and Index, a pending commit that
// writes an assigned element back into the owning container.
//
// Reads never create anything: Key on an absent key, or on an absent
// receiver, returns a pending handle and the owner is only touched when
// that handle is assigned with Set. Pending handles on the same slot see
// each other's writes. A Var tree is not safe for concurrent mutation.
type Var struct {
	elem   Element
	commit func(Element) error
	// peek reads the owner's slot, so a pending handle adopts a node a
	// sibling handle installed first.
	peek func() Element
}

// Entry is one key/value pair of an object literal.
type Entry struct {
	Key   string
	Value *Var
}

// Field creates an Entry for use with Object.
func Field(key string, value *Var) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Constructors
// ============================================================

// Undefined returns an absent value.
func Undefined() *Var { return &Var{} }

// FromElement wraps an existing element. The element is shared, not copied.
func FromElement(e Element) *Var { return &Var{elem: e} }

// Null creates a null value.
func Null() *Var { return &Var{elem: &NullElement{}} }

// Bool creates a boolean value.
func Bool(b bool) *Var { return &Var{elem: &BooleanElement{Value: b}} }

// Of creates a scalar; the Go type of v picks the sub type.
func Of[T ScalarValue](v T) *Var { return &Var{elem: NewScalar(v)} }

// Int creates an int64 scalar.
func Int(v int) *Var { return Of(int64(v)) }

// Float creates a float64 scalar.
func Float(v float64) *Var { return Of(v) }

// String creates a string value.
func String(s string) *Var { return &Var{elem: &StringElement{Value: s}} }

// Binary creates a binary value owning b.
func Binary(b []byte) *Var { return &Var{elem: &BinaryElement{Data: b}} }

// Vector creates a packed vector of items.
func Vector[T ScalarValue](items []T) *Var { return &Var{elem: NewVectorElement(items)} }

// Array creates an array of items. Nil items become undefined elements.
func Array(items ...*Var) *Var {
	arr := &ArrayElement{Items: make([]Element, len(items))}
	for i, item := range items {
		arr.Items[i] = item.Element()
	}
	return &Var{elem: arr}
}

// Object creates an object from entries; later duplicates win.
func Object(entries ...Entry) *Var {
	obj := NewObjectElement()
	for _, e := range entries {
		obj.Fields[e.Key] = e.Value.Element()
	}
	return &Var{elem: obj}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the value type, TypeUndefined when absent.
func (v *Var) Type() DataType {
	if v == nil {
		return TypeUndefined
	}
	return typeOf(v.Element())
}

// Element returns the wrapped element, nil when absent.
func (v *Var) Element() Element {
	if v == nil {
		return nil
	}
	v.refresh()
	return v.elem
}

func (v *Var) refresh() {
	if v.elem == nil && v.peek != nil {
		v.elem = v.peek()
	}
}

// IsUndefined reports whether the value is absent.
func (v *Var) IsUndefined() bool { return v.Element() == nil }

// IsNull reports whether the value is null.
func (v *Var) IsNull() bool { return v.Type() == TypeNone }

// Equal reports whether a and b are structurally equal.
func Equal(a, b *Var) bool {
	return EqualElements(a.Element(), b.Element())
}

// Len returns the size of a string, binary, array, object or vector.
func (v *Var) Len() (int, error) {
	switch e := v.Element().(type) {
	case *StringElement:
		return len(e.Value), nil
	case *BinaryElement:
		return len(e.Data), nil
	case *ArrayElement:
		return len(e.Items), nil
	case *ObjectElement:
		return len(e.Fields), nil
	case *VectorElement:
		return e.count, nil
	}
	return 0, notSupported(v.Type(), "size", TypeString, TypeBinary, TypeArray, TypeObject, TypeVector)
}

// Keys returns the sorted keys of an object.
func (v *Var) Keys() ([]string, error) {
	obj, ok := v.Element().(*ObjectElement)
	if !ok {
		return nil, notSupported(v.Type(), "keys", TypeObject)
	}
	return obj.Keys(), nil
}

// Has reports whether an object has key.
func (v *Var) Has(key string) bool {
	obj, ok := v.Element().(*ObjectElement)
	if !ok {
		return false
	}
	_, ok = obj.Fields[key]
	return ok
}

// Get reads key from an object without creating anything. A missing key
// yields an undefined value.
func (v *Var) Get(key string) (*Var, error) {
	obj, ok := v.Element().(*ObjectElement)
	if !ok {
		return nil, newError(ErrOperatorNotSupported, v.Type(), "[]", "[%q] on %s", key, v.Type().Name())
	}
	return &Var{elem: obj.Fields[key]}, nil
}

// At reads element i of an array or vector. Negative indices count from
// the end.
func (v *Var) At(i int) (*Var, error) {
	switch e := v.Element().(type) {
	case *ArrayElement:
		idx, err := fixIndex(TypeArray, i, len(e.Items))
		if err != nil {
			return nil, err
		}
		return &Var{elem: e.Items[idx]}, nil
	case *VectorElement:
		idx, err := fixIndex(e.Type(), i, e.count)
		if err != nil {
			return nil, err
		}
		s, err := e.At(idx)
		if err != nil {
			return nil, err
		}
		return &Var{elem: s}, nil
	}
	return nil, newError(ErrOperatorNotSupported, v.Type(), "[]", "[%d] on %s", i, v.Type().Name())
}

func fixIndex(t DataType, i, size int) (int, error) {
	idx := i
	if idx < 0 {
		idx += size
	}
	if idx < 0 || idx >= size {
		return 0, indexError(t, i, size)
	}
	return idx, nil
}

// ============================================================
// Proxies
// ============================================================

// Key returns a handle on key of an object or absent receiver. An existing
// child is aliased: writes through the handle replace it in the object. A
// missing key yields a pending handle that inserts on its first Set; an
// absent receiver becomes an object at that moment.
func (v *Var) Key(key string) (*Var, error) {
	switch e := v.Element().(type) {
	case nil:
		return &Var{
			commit: func(child Element) error {
				obj, err := v.vivifyObject()
				if err != nil {
					return err
				}
				obj.Fields[key] = child
				return nil
			},
			peek: func() Element {
				if obj, ok := v.Element().(*ObjectElement); ok {
					return obj.Fields[key]
				}
				return nil
			},
		}, nil
	case *ObjectElement:
		return &Var{
			elem: e.Fields[key],
			commit: func(child Element) error {
				e.Fields[key] = child
				return nil
			},
			peek: func() Element { return e.Fields[key] },
		}, nil
	}
	return nil, newError(ErrOperatorNotSupported, v.Type(), "[]", "[%q] on %s", key, v.Type().Name())
}

// Index returns a handle on element i of an array or absent receiver.
// Existing elements are aliased; i == len yields a pending append handle;
// any other index fails with ErrIndexOutOfRange so arrays never get holes.
func (v *Var) Index(i int) (*Var, error) {
	switch e := v.Element().(type) {
	case nil:
		if i != 0 {
			return nil, indexError(TypeArray, i, 0)
		}
		return &Var{
			commit: func(child Element) error {
				arr, err := v.vivifyArray()
				if err != nil {
					return err
				}
				return placeAt(arr, 0, child)
			},
			peek: func() Element {
				if arr, ok := v.Element().(*ArrayElement); ok && len(arr.Items) > 0 {
					return arr.Items[0]
				}
				return nil
			},
		}, nil
	case *ArrayElement:
		n := len(e.Items)
		if i == n {
			return &Var{
				commit: func(child Element) error {
					return placeAt(e, n, child)
				},
				peek: func() Element {
					if len(e.Items) > n {
						return e.Items[n]
					}
					return nil
				},
			}, nil
		}
		idx, err := fixIndex(TypeArray, i, n)
		if err != nil {
			return nil, err
		}
		return &Var{elem: e.Items[idx], commit: func(child Element) error {
			return placeAt(e, idx, child)
		}}, nil
	}
	return nil, newError(ErrOperatorNotSupported, v.Type(), "[]", "[%d] on %s", i, v.Type().Name())
}

// placeAt writes child at pos, appending when pos is the current length.
func placeAt(arr *ArrayElement, pos int, child Element) error {
	switch {
	case pos < len(arr.Items):
		arr.Items[pos] = child
	case pos == len(arr.Items):
		arr.Items = append(arr.Items, child)
	default:
		return indexError(TypeArray, pos, len(arr.Items))
	}
	return nil
}

func (v *Var) vivifyObject() (*ObjectElement, error) {
	switch e := v.Element().(type) {
	case nil:
		obj := NewObjectElement()
		if err := v.install(obj); err != nil {
			return nil, err
		}
		return obj, nil
	case *ObjectElement:
		return e, nil
	}
	return nil, notSupported(v.Type(), "[]", TypeObject)
}

func (v *Var) vivifyArray() (*ArrayElement, error) {
	switch e := v.Element().(type) {
	case nil:
		arr := &ArrayElement{}
		if err := v.install(arr); err != nil {
			return nil, err
		}
		return arr, nil
	case *ArrayElement:
		return e, nil
	}
	return nil, notSupported(v.Type(), "[]", TypeArray)
}

func (v *Var) install(e Element) error {
	if v.commit != nil {
		if err := v.commit(e); err != nil {
			return err
		}
	}
	v.elem = e
	return nil
}

// ============================================================
// Mutators
// ============================================================

// Set replaces the payload of v with that of x and, for handles produced
// by Key or Index, writes it into the owner.
func (v *Var) Set(x *Var) error {
	return v.install(x.Element())
}

// Append adds x to the end of an array.
func (v *Var) Append(x *Var) error {
	arr, ok := v.Element().(*ArrayElement)
	if !ok {
		return notSupported(v.Type(), "append", TypeArray)
	}
	arr.Items = append(arr.Items, x.Element())
	return nil
}

// Extend appends the items of another array, or merges the fields of
// another object.
func (v *Var) Extend(other *Var) error {
	switch e := v.Element().(type) {
	case *ArrayElement:
		o, ok := other.Element().(*ArrayElement)
		if !ok {
			return newError(ErrParameterMismatch, v.Type(), "extend", "parameter 0 expecting array, got %s", other.Type())
		}
		e.Items = append(e.Items, o.Items...)
		return nil
	case *ObjectElement:
		o, ok := other.Element().(*ObjectElement)
		if !ok {
			return newError(ErrParameterMismatch, v.Type(), "extend", "parameter 0 expecting object, got %s", other.Type())
		}
		for k, f := range o.Fields {
			e.Fields[k] = f
		}
		return nil
	}
	return notSupported(v.Type(), "extend", TypeArray, TypeObject)
}

// Delete removes key from an object.
func (v *Var) Delete(key string) error {
	obj, ok := v.Element().(*ObjectElement)
	if !ok {
		return notSupported(v.Type(), "delete", TypeObject)
	}
	if _, ok := obj.Fields[key]; !ok {
		return newError(ErrAttributeNotFound, TypeObject, "delete", "attribute %q not found", key)
	}
	delete(obj.Fields, key)
	return nil
}
