package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGet(t *testing.T, v *Var, key string) *Var {
	t.Helper()
	child, err := v.Get(key)
	require.NoError(t, err)
	return child
}

func TestKeyOnAbsentReceiverIsLazy(t *testing.T) {
	root := Undefined()
	p, err := root.Key("a")
	require.NoError(t, err)
	assert.True(t, root.IsUndefined(), "reading a key must not vivify the receiver")
	assert.True(t, p.IsUndefined())

	require.NoError(t, p.Set(Int(1)))
	assert.Equal(t, TypeObject, root.Type())
	n, err := mustGet(t, root, "a").AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestKeyChainVivifiesOnWrite(t *testing.T) {
	root := Undefined()
	a, err := root.Key("a")
	require.NoError(t, err)
	b, err := a.Key("b")
	require.NoError(t, err)
	assert.True(t, root.IsUndefined())

	require.NoError(t, b.Set(String("x")))
	s, err := mustGet(t, mustGet(t, root, "a"), "b").AsString()
	require.NoError(t, err)
	assert.Equal(t, "x", s)
}

func TestPendingSiblingsShareVivifiedObject(t *testing.T) {
	root := Undefined()
	p1, err := root.Key("a")
	require.NoError(t, err)
	p2, err := root.Key("b")
	require.NoError(t, err)

	require.NoError(t, p1.Set(Int(1)))
	require.NoError(t, p2.Set(Int(2)))
	keys, err := root.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestPendingHandlesOnSameKeyAlias(t *testing.T) {
	obj := Object()
	p1, err := obj.Key("x")
	require.NoError(t, err)
	p2, err := obj.Key("x")
	require.NoError(t, err)
	b, err := p2.Key("b")
	require.NoError(t, err)

	a, err := p1.Key("a")
	require.NoError(t, err)
	require.NoError(t, a.Set(Int(1)))
	require.NoError(t, b.Set(Int(2)))

	keys, err := mustGet(t, obj, "x").Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, TypeObject, p2.Type())
}

func TestPendingAppendHandlesAlias(t *testing.T) {
	root := Undefined()
	p1, err := root.Index(0)
	require.NoError(t, err)
	p2, err := root.Index(0)
	require.NoError(t, err)

	k1, err := p1.Key("a")
	require.NoError(t, err)
	k2, err := p2.Key("b")
	require.NoError(t, err)
	require.NoError(t, k1.Set(Int(1)))
	require.NoError(t, k2.Set(Int(2)))

	n, err := root.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	first, err := root.At(0)
	require.NoError(t, err)
	keys, err := first.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestMissingKeyReadDoesNotInsert(t *testing.T) {
	obj := Object()
	p, err := obj.Key("missing")
	require.NoError(t, err)
	assert.True(t, p.IsUndefined())
	assert.False(t, obj.Has("missing"))

	got, err := obj.Get("missing")
	require.NoError(t, err)
	assert.True(t, got.IsUndefined())
	assert.False(t, obj.Has("missing"))
}

func TestKeyAliasesExistingChild(t *testing.T) {
	obj := Object(Field("a", Int(1)))
	p, err := obj.Key("a")
	require.NoError(t, err)
	require.NoError(t, p.Set(Int(2)))
	n, err := mustGet(t, obj, "a").AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestKeyOnScalarFails(t *testing.T) {
	_, err := Int(1).Key("a")
	assert.ErrorIs(t, err, ErrOperatorNotSupported)
	_, err = String("s").Get("a")
	assert.ErrorIs(t, err, ErrOperatorNotSupported)
}

func TestIndexAppendAndAlias(t *testing.T) {
	arr := Array(Int(1))

	p, err := arr.Index(1)
	require.NoError(t, err)
	n, _ := arr.Len()
	assert.Equal(t, 1, n, "pending append must not grow the array")

	require.NoError(t, p.Set(Int(2)))
	n, _ = arr.Len()
	assert.Equal(t, 2, n)

	last, err := arr.Index(-1)
	require.NoError(t, err)
	require.NoError(t, last.Set(Int(20)))
	got, err := arr.At(1)
	require.NoError(t, err)
	assert.True(t, Equal(Int(20), got))

	_, err = arr.Index(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = arr.Index(-3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestIndexOnAbsentReceiver(t *testing.T) {
	root := Undefined()
	_, err := root.Index(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	p, err := root.Index(0)
	require.NoError(t, err)
	assert.True(t, root.IsUndefined())
	require.NoError(t, p.Set(Bool(true)))
	assert.Equal(t, TypeArray, root.Type())
	assert.True(t, Equal(Array(Bool(true)), root))
}

func TestAtVector(t *testing.T) {
	vec := Vector([]float32{1, 2, 3})
	assert.Equal(t, VectorType(SubFloat32), vec.Type())

	last, err := vec.At(-1)
	require.NoError(t, err)
	f, err := last.AsFloat64()
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	_, err = vec.At(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAppendExtendDelete(t *testing.T) {
	arr := Array()
	require.NoError(t, arr.Append(Int(1)))
	require.NoError(t, arr.Extend(Array(Int(2), Int(3))))
	assert.True(t, Equal(Array(Int(1), Int(2), Int(3)), arr))

	err := arr.Extend(Object())
	assert.ErrorIs(t, err, ErrParameterMismatch)
	assert.ErrorIs(t, Int(1).Append(Int(2)), ErrOperatorNotSupported)

	obj := Object(Field("a", Int(1)))
	require.NoError(t, obj.Extend(Object(Field("b", Int(2)))))
	assert.True(t, obj.Has("b"))
	require.NoError(t, obj.Delete("a"))
	assert.False(t, obj.Has("a"))
	assert.ErrorIs(t, obj.Delete("a"), ErrAttributeNotFound)
}

func TestLen(t *testing.T) {
	tests := []struct {
		name string
		v    *Var
		want int
	}{
		{"string", String("abc"), 3},
		{"binary", Binary([]byte{1, 2}), 2},
		{"array", Array(Null(), Null()), 2},
		{"object", Object(Field("k", Null())), 1},
		{"vector", Vector([]int16{1, 2, 3, 4}), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.v.Len()
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	_, err := Bool(true).Len()
	assert.ErrorIs(t, err, ErrOperatorNotSupported)
}

func TestEqual(t *testing.T) {
	a := Object(Field("x", Array(Int(1), String("s"))), Field("y", Null()))
	b := Object(Field("y", Null()), Field("x", Array(Int(1), String("s"))))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(Int(1), Of(int32(1))), "sub types differ")
	assert.False(t, Equal(Undefined(), Null()))
	assert.True(t, Equal(Undefined(), nil))
}
