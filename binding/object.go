// Package binding maps typed struct fields onto keys of an object value.
//
// A bindable struct embeds Object, calls Init from its constructor and then
// registers each field:
//
//	type Server struct {
//		binding.Object
//		Host string
//		Port int
//	}
//
//	func NewServer() *Server {
//		s := &Server{}
//		s.MustInit(s)
//		s.MustBind("host", binding.String(&s.Host), true)
//		s.MustBind("port", binding.Int(&s.Port).Default(8080), false)
//		return s
//	}
//
// Registration checks that every bound field lives inside the struct that
// embeds the Object, so a misplaced or copied binding fails loudly.
package binding

import (
	"fmt"
	"reflect"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/parser"
)

const guardValue uint64 = 0x6f6d6567615f6f62

var objectType = reflect.TypeOf(Object{})

// Bindable is implemented by every struct that embeds Object.
type Bindable interface {
	Binding() *Object
}

// Object holds the field table of the struct embedding it.
type Object struct {
	guard  uint64
	owner  reflect.Value // pointer to the embedding struct
	name   string
	fields []boundField
	byName map[string]int
	// rebound is set when Init runs on an already initialised Object;
	// Bind then leaves the current field values alone.
	rebound bool
}

type boundField struct {
	name     string
	required bool
	codec    Codec
}

// Binding returns o itself, which makes every embedding struct Bindable.
func (o *Object) Binding() *Object { return o }

// Init records owner, a pointer to the struct embedding o. It resets any
// previous registrations. Defaults are applied by Bind only after the first
// Init; a re-initialised Object keeps its field values.
func (o *Object) Init(owner any) error {
	rv := reflect.ValueOf(owner)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: owner must be a pointer to struct, got %T", ErrBindingIntegrity, owner)
	}
	st := rv.Elem()
	embeds := false
	for i := 0; i < st.NumField(); i++ {
		sf := st.Type().Field(i)
		if sf.Anonymous && sf.Type == objectType && st.Field(i).Addr().Interface().(*Object) == o {
			embeds = true
			break
		}
	}
	if !embeds {
		return fmt.Errorf("%w: %s does not embed this Object", ErrBindingIntegrity, st.Type())
	}
	o.rebound = o.guard == guardValue
	o.guard = guardValue
	o.owner = rv
	o.name = st.Type().Name()
	o.fields = nil
	o.byName = make(map[string]int)
	return nil
}

// MustInit is Init for constructors; it panics on error.
func (o *Object) MustInit(owner any) {
	if err := o.Init(owner); err != nil {
		panic(err)
	}
}

// check verifies that o was initialised and still sits inside its owner.
func (o *Object) check() error {
	if o.guard != guardValue {
		return fmt.Errorf("%w: object not initialised, call Init from the constructor", ErrBindingIntegrity)
	}
	if !o.contains(reflect.ValueOf(o).Pointer()) {
		return fmt.Errorf("%w: %s was copied after Init", ErrBindingIntegrity, o.name)
	}
	return nil
}

func (o *Object) contains(addr uintptr) bool {
	start := o.owner.Pointer()
	return addr >= start && addr < start+o.owner.Elem().Type().Size()
}

// Bind registers a field under name. Fields are parsed and dumped in
// registration order.
func (o *Object) Bind(name string, c Codec, required bool) error {
	if err := o.check(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: nil codec for field %q", ErrBindingIntegrity, name)
	}
	addr, ok := targetAddr(c.Target())
	if !ok || !o.contains(addr) {
		return fmt.Errorf("%w: field %q does not belong to %s", ErrBindingIntegrity, name, o.name)
	}
	self := reflect.ValueOf(o).Pointer()
	if addr >= self && addr < self+objectType.Size() {
		return fmt.Errorf("%w: field %q points into the binding table", ErrBindingIntegrity, name)
	}
	if _, dup := o.byName[name]; dup {
		return fmt.Errorf("%w: field %q bound twice on %s", ErrBindingIntegrity, name, o.name)
	}
	if n, ok := c.(*nestedCodec); ok {
		if err := n.obj.check(); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	if d, ok := c.(defaulter); ok && !o.rebound {
		d.applyDefault()
	}
	o.byName[name] = len(o.fields)
	o.fields = append(o.fields, boundField{name: name, required: required, codec: c})
	return nil
}

// MustBind is Bind for constructors; it panics on error.
func (o *Object) MustBind(name string, c Codec, required bool) {
	if err := o.Bind(name, c, required); err != nil {
		panic(err)
	}
}

// Fields returns the bound field names in registration order.
func (o *Object) Fields() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.name
	}
	return names
}

// Parse fills the bound fields from an object value. Missing optional keys
// leave their fields untouched.
func (o *Object) Parse(v *notation.Var) error {
	err := o.parse(v)
	if fe, ok := err.(*FieldError); ok {
		return &FieldError{Path: o.name + fe.Path, Err: fe.Err}
	}
	return err
}

func (o *Object) parse(v *notation.Var) error {
	if err := o.check(); err != nil {
		return err
	}
	obj, ok := v.Element().(*notation.ObjectElement)
	if !ok {
		return fmt.Errorf("%w: %s expects an object, got %s", ErrUnexpectedType, o.name, v.Type())
	}
	for _, f := range o.fields {
		child := obj.Fields[f.name]
		if child == nil {
			if f.required {
				return &FieldError{Path: "." + f.name, Err: fmt.Errorf("%w: %q", ErrMissingRequiredField, f.name)}
			}
			continue
		}
		if err := f.codec.Parse(notation.FromElement(child)); err != nil {
			return under("."+f.name, err)
		}
	}
	return nil
}

// Dump snapshots the bound fields into a new object value.
func (o *Object) Dump() *notation.Var {
	obj := notation.NewObjectElement()
	for _, f := range o.fields {
		obj.Fields[f.name] = f.codec.Dump().Element()
	}
	return notation.FromElement(obj)
}

// JSON renders Dump as compact JSON.
func (o *Object) JSON() string {
	return parser.Repr(o.Dump())
}

// ParseJSON parses s and binds the result.
func (o *Object) ParseJSON(s string) error {
	v, err := parser.ParseString(s)
	if err != nil {
		return err
	}
	return o.Parse(v)
}
