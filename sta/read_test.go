package sta

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/vario"
)

// builder assembles legacy payloads for tests.
type builder struct{ bytes.Buffer }

func (b *builder) tag(t byte) *builder { b.WriteByte(t); return b }

func (b *builder) i32(v int32) *builder {
	b.Write(order.AppendUint32(nil, uint32(v)))
	return b
}

func (b *builder) str(s string) *builder {
	b.i32(int32(len(s)))
	b.WriteString(s)
	return b
}

func TestReadScalars(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want *notation.Var
	}{
		{"nil", []byte{TagNil, 0}, notation.Null()},
		{"int", (&builder{}).tag(TagInt).i32(-5).Bytes(), notation.Of(int32(-5))},
		{"float", append([]byte{TagFloat}, order.AppendUint32(nil, math.Float32bits(1.5))...), notation.Of(float32(1.5))},
		{"string", (&builder{}).tag(TagString).str("hi").Bytes(), notation.String("hi")},
		{"c string", (&builder{}).tag(TagString).str("hi\x00junk").Bytes(), notation.String("hi")},
		{"binary", (&builder{}).tag(TagBinary).str("\x00\x01").Bytes(), notation.Binary([]byte{0, 1})},
		{"true", []byte{TagBoolean, 1}, notation.Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ReadSta(nil, bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.True(t, notation.Equal(tt.want, v))
		})
	}
}

func TestReadNested(t *testing.T) {
	b := &builder{}
	b.tag(TagDict).i32(2)
	b.str("list").tag(TagList).i32(2).tag(TagInt).i32(1).tag(TagNil).WriteByte(0)
	b.str("name").tag(TagString).str("omega")

	v, err := ReadSta(nil, bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	want := notation.Object(
		notation.Field("list", notation.Array(notation.Of(int32(1)), notation.Null())),
		notation.Field("name", notation.String("omega")),
	)
	assert.True(t, notation.Equal(want, v))
}

func TestUnknownTag(t *testing.T) {
	_, err := ReadSta(nil, bytes.NewReader([]byte{9}))
	assert.ErrorIs(t, err, vario.ErrUnrecognizedType)
}

func TestTruncated(t *testing.T) {
	b := &builder{}
	b.tag(TagList).i32(3).tag(TagInt).i32(1).tag(TagString).i32(10)
	b.WriteString("abc")

	_, err := ReadSta(nil, bytes.NewReader(b.Bytes()))
	require.ErrorIs(t, err, vario.ErrEndOfStream)
	var ioErr *vario.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "<>[1]", ioErr.Path)
}

func TestNegativeSize(t *testing.T) {
	_, err := ReadSta(nil, bytes.NewReader((&builder{}).tag(TagList).i32(-1).Bytes()))
	assert.ErrorIs(t, err, vario.ErrUnexpectedType)
}

func TestNestingLimit(t *testing.T) {
	b := &builder{}
	for i := 0; i <= vario.MaxDepth; i++ {
		b.tag(TagList).i32(1)
	}
	b.tag(TagNil).WriteByte(0)
	_, err := ReadSta(nil, bytes.NewReader(b.Bytes()))
	require.ErrorIs(t, err, vario.ErrUnexpectedType)
	assert.Contains(t, err.Error(), "nesting deeper than")
}
