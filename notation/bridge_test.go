package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnyRoundTrip(t *testing.T) {
	v := Object(
		Field("n", Int(3)),
		Field("f", Of(float32(1.5))),
		Field("s", String("x")),
		Field("b", Binary([]byte{9})),
		Field("list", Array(Bool(true), Null())),
	)
	a, err := ToAny(v)
	require.NoError(t, err)

	m, ok := a.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(3), m["n"])
	assert.Equal(t, float32(1.5), m["f"])
	assert.Equal(t, []byte{9}, m["b"])
	assert.Equal(t, []any{true, nil}, m["list"])

	back, err := FromAny(a)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestFromAnyNormalises(t *testing.T) {
	v, err := FromAny(map[any]any{1: "one", "k": 7})
	require.NoError(t, err)
	assert.True(t, Equal(Object(Field("1", String("one")), Field("k", Int(7))), v))

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestToAnyVector(t *testing.T) {
	a, err := ToAny(Vector([]Char8{'a', 'b'}))
	require.NoError(t, err)
	assert.Equal(t, []any{uint8('a'), uint8('b')}, a)
}
