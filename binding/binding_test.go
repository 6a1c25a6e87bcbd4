package binding_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenniS-Open/omega/binding"
	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/parser"
)

type simple struct {
	binding.Object
	A int
	B string
}

func newSimple() *simple {
	s := &simple{}
	s.MustInit(s)
	s.MustBind("a", binding.Int(&s.A), true)
	s.MustBind("b", binding.String(&s.B).Default("x"), false)
	return s
}

type point struct {
	binding.Object
	X, Y float64
	Name string
}

func (p *point) setup() {
	p.MustInit(p)
	p.MustBind("x", binding.Float(&p.X), true)
	p.MustBind("y", binding.Float(&p.Y), true)
	p.MustBind("name", binding.String(&p.Name), false)
}

func bindPoint(p *point) binding.Codec {
	p.setup()
	return binding.Nested(p)
}

type scene struct {
	binding.Object
	Origin  point
	Points  []point
	Tags    map[string]int
	Box     [2]int32
	Count   uint16
	Visible bool
	Blob    []byte
	Extra   *notation.Var
}

func newScene() *scene {
	s := &scene{}
	s.MustInit(s)
	s.Origin.setup()
	s.MustBind("origin", binding.Nested(&s.Origin), false)
	s.MustBind("points", binding.Slice(&s.Points, bindPoint), false)
	s.MustBind("tags", binding.Map(&s.Tags, func(p *int) binding.Codec { return binding.Int(p) }), false)
	s.MustBind("box", binding.FixedArray(s.Box[:], func(p *int32) binding.Codec { return binding.Int(p) }), false)
	s.MustBind("count", binding.Uint(&s.Count), false)
	s.MustBind("visible", binding.Bool(&s.Visible).Default(true), false)
	s.MustBind("blob", binding.Bytes(&s.Blob), false)
	s.MustBind("extra", binding.Value(&s.Extra), false)
	return s
}

func TestRequiredAndDefault(t *testing.T) {
	s := newSimple()
	assert.Equal(t, "x", s.B)

	require.NoError(t, s.ParseJSON(`{"a": 3}`))
	assert.Equal(t, 3, s.A)
	assert.Equal(t, "x", s.B)

	err := newSimple().ParseJSON(`{}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, binding.ErrMissingRequiredField))
	assert.Contains(t, err.Error(), `"a"`)

	var fe *binding.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "simple.a", fe.Path)
}

func TestDefaultOnBadValue(t *testing.T) {
	s := newSimple()
	require.NoError(t, s.ParseJSON(`{"a": 1, "b": 5}`))
	assert.Equal(t, "x", s.B)

	err := newSimple().ParseJSON(`{"a": "one"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, notation.ErrUnexpectedType))
}

func TestParseNonObject(t *testing.T) {
	err := newSimple().Parse(notation.Int(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, binding.ErrUnexpectedType))
}

func TestDumpAndJSON(t *testing.T) {
	s := newSimple()
	s.A = 7
	assert.Equal(t, `{"a": 7, "b": "x"}`, s.JSON())
	assert.Equal(t, []string{"a", "b"}, s.Fields())

	back := newSimple()
	require.NoError(t, back.Parse(s.Dump()))
	assert.Equal(t, 7, back.A)
}

func TestNestedContainers(t *testing.T) {
	s := newScene()
	assert.True(t, s.Visible)

	src := `{
		"origin": {"x": 1.5, "y": -2},
		"points": [{"x": 0, "y": 0}, {"x": 1, "y": 2, "name": "p1"}],
		"tags": {"red": 1, "blue": 2},
		"box": [10, 20],
		"count": 65535,
		"visible": false,
		"blob": "@base64@AQID",
		"extra": [null, "raw"]
	}`
	require.NoError(t, s.ParseJSON(src))

	assert.Equal(t, 1.5, s.Origin.X)
	assert.Equal(t, -2.0, s.Origin.Y)
	require.Len(t, s.Points, 2)
	assert.Equal(t, "p1", s.Points[1].Name)
	assert.Equal(t, 2.0, s.Points[1].Y)
	assert.Equal(t, map[string]int{"red": 1, "blue": 2}, s.Tags)
	assert.Equal(t, [2]int32{10, 20}, s.Box)
	assert.Equal(t, uint16(65535), s.Count)
	assert.False(t, s.Visible)
	assert.Equal(t, []byte{1, 2, 3}, s.Blob)
	assert.Equal(t, notation.TypeArray, s.Extra.Type())

	back := newScene()
	require.NoError(t, back.Parse(s.Dump()))
	assert.Equal(t, s.Points[1].Name, back.Points[1].Name)
	assert.Equal(t, s.Tags, back.Tags)
	assert.Equal(t, s.Box, back.Box)
	assert.Equal(t, s.Blob, back.Blob)
}

func TestFieldErrorPath(t *testing.T) {
	s := newScene()
	err := s.ParseJSON(`{"points": [{"x": 0, "y": 0}, {"x": 1}]}`)
	require.Error(t, err)
	var fe *binding.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "scene.points[1].y", fe.Path)
	assert.True(t, errors.Is(err, binding.ErrMissingRequiredField))

	err = newScene().ParseJSON(`{"tags": {"ok": 1, "bad": "z"}}`)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "scene.tags.bad", fe.Path)

	err = newScene().ParseJSON(`{"count": -1}`)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "scene.count", fe.Path)
	assert.True(t, errors.Is(err, notation.ErrOutOfRange))
}

func TestFixedArrayLength(t *testing.T) {
	err := newScene().ParseJSON(`{"box": [1, 2, 3]}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, binding.ErrUnexpectedType))
}

func TestSliceFromVector(t *testing.T) {
	type holder struct {
		binding.Object
		V []float32
	}
	h := &holder{}
	h.MustInit(h)
	h.MustBind("v", binding.Slice(&h.V, func(p *float32) binding.Codec { return binding.Float(p) }), true)

	v := notation.Object(notation.Field("v", notation.Vector([]float32{1, 2.5})))
	require.NoError(t, h.Parse(v))
	assert.Equal(t, []float32{1, 2.5}, h.V)
}

func TestIntegrity(t *testing.T) {
	t.Run("not initialised", func(t *testing.T) {
		s := &simple{}
		err := s.Bind("a", binding.Int(&s.A), true)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
	})

	t.Run("foreign field", func(t *testing.T) {
		s := &simple{}
		s.MustInit(s)
		var outside int
		err := s.Bind("a", binding.Int(&outside), true)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
	})

	t.Run("wrong owner", func(t *testing.T) {
		a, b := &simple{}, &simple{}
		err := a.Init(b)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
		err = a.Init(42)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
	})

	t.Run("duplicate", func(t *testing.T) {
		s := newSimple()
		err := s.Bind("a", binding.Int(&s.A), false)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
	})

	t.Run("copied", func(t *testing.T) {
		s := newSimple()
		c := *s
		err := c.ParseJSON(`{"a": 1}`)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
	})

	t.Run("nested not initialised", func(t *testing.T) {
		s := &scene{}
		s.MustInit(s)
		err := s.Bind("origin", binding.Nested(&s.Origin), false)
		assert.True(t, errors.Is(err, binding.ErrBindingIntegrity))
	})

	t.Run("must bind panics", func(t *testing.T) {
		s := &simple{}
		assert.Panics(t, func() { s.MustBind("a", binding.Int(&s.A), true) })
	})
}

func TestParseFromBinaryValue(t *testing.T) {
	v, err := parser.ParseString(`{"a": 9, "b": "y"}`)
	require.NoError(t, err)
	s := newSimple()
	require.NoError(t, s.Parse(v))
	assert.Equal(t, 9, s.A)
	assert.Equal(t, "y", s.B)
}

type counter struct {
	binding.Object
	N int
}

func bindCounter(c *counter) binding.Codec {
	c.MustInit(c)
	c.MustBind("n", binding.Int(&c.N).Default(5), false)
	return binding.Nested(c)
}

type counters struct {
	binding.Object
	Items []counter
	By    map[string]counter
}

func newCounters() *counters {
	c := &counters{}
	c.MustInit(c)
	c.MustBind("items", binding.Slice(&c.Items, bindCounter), false)
	c.MustBind("by", binding.Map(&c.By, bindCounter), false)
	return c
}

func TestDumpKeepsContainerElementValues(t *testing.T) {
	c := newCounters()
	require.NoError(t, c.ParseJSON(`{"items": [{"n": 1}, {}], "by": {"k": {"n": 9}}}`))
	require.Len(t, c.Items, 2)
	assert.Equal(t, 1, c.Items[0].N)
	assert.Equal(t, 5, c.Items[1].N)
	assert.Equal(t, 9, c.By["k"].N)

	assert.Equal(t, `{"by": {"k": {"n": 9}}, "items": [{"n": 1}, {"n": 5}]}`, c.JSON())
	assert.Equal(t, 1, c.Items[0].N)
	assert.Equal(t, 9, c.By["k"].N)

	c.Items[0].N = 4
	assert.Equal(t, `{"by": {"k": {"n": 9}}, "items": [{"n": 4}, {"n": 5}]}`, c.JSON())
}
