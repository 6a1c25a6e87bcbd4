package parser

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/vario"
)

func TestNumberClassification(t *testing.T) {
	tests := []struct {
		input string
		want  notation.DataType
	}{
		{"3", notation.ScalarType(notation.SubInt64)},
		{"-17", notation.ScalarType(notation.SubInt64)},
		{"3.0", notation.ScalarType(notation.SubFloat64)},
		{"3.5", notation.ScalarType(notation.SubFloat64)},
		{"1e3", notation.ScalarType(notation.SubFloat64)},
		{"0", notation.ScalarType(notation.SubInt64)},
		{"-0.5", notation.ScalarType(notation.SubFloat64)},
		{"9223372036854775808", notation.ScalarType(notation.SubUint64)},
		{"18446744073709551615", notation.ScalarType(notation.SubUint64)},
		{"18446744073709551616", notation.ScalarType(notation.SubFloat64)},
		{"NaN", notation.ScalarType(notation.SubFloat64)},
		{"-Infinity", notation.ScalarType(notation.SubFloat64)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Type())
		})
	}
}

func TestMalformedNumbers(t *testing.T) {
	for _, input := range []string{"-", "1.", "1e", "1e+", "-x", "Nope", "01", "-007", "00.5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseString(input)
			assert.ErrorIs(t, err, vario.ErrSyntax)
		})
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"plain"`, "plain"},
		{`"a\"b\\c\/d"`, `a"b\c/d`},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{`"caf\u00e9"`, "café"},
		{`"\ud83d\ude00"`, "😀"},
		{`"\ud83d!"`, "�!"},
		{`"raw ü"`, "raw ü"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseString(tt.input)
			require.NoError(t, err)
			s, err := v.AsString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   "},
		{"unterminated string", `"abc`},
		{"invalid escape", `"a\qb"`},
		{"invalid unicode", `"\u12G4"`},
		{"short unicode", `"\u12"`},
		{"unclosed array", `[1, 2`},
		{"unclosed object", `{"a": 1`},
		{"missing colon", `{"a" 1}`},
		{"bad key", `{a: 1}`},
		{"trailing garbage", `1 2`},
		{"unknown symbol", `[1, ?]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			assert.ErrorIs(t, err, vario.ErrSyntax)
		})
	}
}

func TestUint64RoundTrip(t *testing.T) {
	v, err := ParseString(`[18446744073709551615, 9223372036854775808]`)
	require.NoError(t, err)
	assert.Equal(t, "[18446744073709551615, 9223372036854775808]", Repr(v))

	first, err := v.At(0)
	require.NoError(t, err)
	u, err := first.AsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)
}

func TestNestingLimit(t *testing.T) {
	_, err := ParseString(strings.Repeat("[", 20000))
	require.ErrorIs(t, err, vario.ErrSyntax)
	assert.Contains(t, err.Error(), "nesting deeper than")

	_, err = ParseString(strings.Repeat(`{"a": `, vario.MaxDepth+1) + "1" + strings.Repeat("}", vario.MaxDepth+1))
	require.ErrorIs(t, err, vario.ErrSyntax)

	ok := strings.Repeat("[", 100) + strings.Repeat("]", 100)
	_, err = ParseString(ok)
	assert.NoError(t, err)
}

func TestErrorBreadcrumb(t *testing.T) {
	_, err := ParseString(`{"users": [{"name": "a"}, {"name": tru}]}`)
	require.Error(t, err)
	var ioErr *vario.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "<>.users[1].name", ioErr.Path)
	assert.Contains(t, ioErr.Msg, "line 1")
}

func TestRoundTrip(t *testing.T) {
	input := `{"a": 1, "b": [1,2,3], "c": "x"}`
	v, err := ParseString(input)
	require.NoError(t, err)

	out := Repr(v)
	assert.Equal(t, `{"a": 1, "b": [1, 2, 3], "c": "x"}`, out)

	back, err := ParseString(out)
	require.NoError(t, err)
	assert.True(t, notation.Equal(v, back))

	pretty, err := ParseString(Dumps(v))
	require.NoError(t, err)
	assert.True(t, notation.Equal(v, pretty))
}

func TestTypedValuesRoundTrip(t *testing.T) {
	v := notation.Object(
		notation.Field("bin", notation.Binary([]byte{1, 2, 3, 250})),
		notation.Field("char", notation.Of(notation.Char8('A'))),
		notation.Field("flag", notation.Of(true)),
		notation.Field("void", notation.Of(notation.Void{})),
		notation.Field("f", notation.Float(3)),
		notation.Field("nan", notation.Float(math.Inf(-1))),
		notation.Field("esc", notation.String("tab\there\x01")),
		notation.Field("undef", notation.Undefined()),
	)
	back, err := ParseString(Repr(v))
	require.NoError(t, err)
	assert.True(t, notation.Equal(v, back), Repr(back))
}

func TestReprScalars(t *testing.T) {
	assert.Equal(t, "3.0", Repr(notation.Float(3)))
	assert.Equal(t, "0.5", Repr(notation.Of(float32(0.5))))
	assert.Equal(t, "NaN", Repr(notation.Float(math.NaN())))
	assert.Equal(t, `"@char8@0x41"`, Repr(notation.Of(notation.Char8('A'))))
	assert.Equal(t, `"@base64@AQI="`, Repr(notation.Binary([]byte{1, 2})))
	assert.Equal(t, `"@undefined"`, Repr(notation.Undefined()))
	assert.Equal(t, `[1, 2]`, Repr(notation.Vector([]int32{1, 2})))
	assert.Equal(t, `"\u001f"`, Repr(notation.String("\x1f")))
}

func TestDumps(t *testing.T) {
	v := notation.Object(
		notation.Field("a", notation.Array(notation.Int(1), notation.Int(2))),
		notation.Field("b", notation.Object(notation.Field("c", notation.String("x")))),
		notation.Field("e", notation.Array()),
	)
	want := "{\n" +
		"  \"a\": [1, 2],\n" +
		"  \"b\": {\n" +
		"    \"c\": \"x\"\n" +
		"  },\n" +
		"  \"e\": []\n" +
		"}"
	assert.Equal(t, want, Dumps(v))
}

func TestDumpsBreaksLongArrays(t *testing.T) {
	items := make([]*notation.Var, 16)
	for i := range items {
		items[i] = notation.Int(i)
	}
	out := Dumps(notation.Array(items...))
	assert.True(t, strings.HasPrefix(out, "[\n  0,\n  1,"))

	mixed := Dumps(notation.Array(notation.Int(1), notation.String("s")))
	assert.Equal(t, "[\n  1,\n  \"s\"\n]", mixed)

	wide := Dumps(notation.Array(notation.Float(math.Pi), notation.Float(math.Pi), notation.Float(math.Pi),
		notation.Float(math.Pi), notation.Float(math.Pi), notation.Float(math.Pi), notation.Float(math.Pi)))
	assert.Contains(t, wide, "\n")
}

func TestCommands(t *testing.T) {
	now := time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
	opts := Options{Now: func() time.Time { return now }}

	v, err := Parse([]byte(`["@date", "@time", "@datetime", "@nil", "@what@ever", "@base64@AQID", "plain@x"]`), opts)
	require.NoError(t, err)
	want := notation.Array(
		notation.String("2024-03-09"),
		notation.String("07:05:02"),
		notation.String("2024-03-09 07:05:02"),
		notation.Null(),
		notation.String("@what@ever"),
		notation.Binary([]byte{1, 2, 3}),
		notation.String("plain@x"),
	)
	assert.True(t, notation.Equal(want, v), Repr(v))
}

func TestCommandErrors(t *testing.T) {
	_, err := ParseString(`"@binary@12"`)
	assert.ErrorIs(t, err, vario.ErrCommand)

	_, err = ParseString(`"@base64@!!"`)
	assert.ErrorIs(t, err, vario.ErrCommand)

	_, err = ParseString(`"@file"`)
	assert.ErrorIs(t, err, vario.ErrCommand)

	_, err = Parse([]byte(`{"x": "@file@missing.bin"}`), Options{Sysroot: t.TempDir()})
	assert.ErrorIs(t, err, vario.ErrFileNotFound)
}

func TestFileCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{7, 8, 9}, 0o644))

	v, err := Parse([]byte(`{"blob": "@file@blob.bin"}`), Options{Sysroot: dir})
	require.NoError(t, err)
	blob, err := v.Get("blob")
	require.NoError(t, err)
	data, err := blob.AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8, 9}, data)

	abs := filepath.Join(dir, "blob.bin")
	v, err = ParseString(`"@file@` + filepath.ToSlash(abs) + `"`)
	require.NoError(t, err)
	assert.Equal(t, notation.TypeBinary, v.Type())
}

func TestAllowComments(t *testing.T) {
	input := []byte(`{
		// line comment
		"a": 1, /* block */
		"b": [true, false,],
	}`)
	_, err := Parse(input, Options{})
	assert.ErrorIs(t, err, vario.ErrSyntax, "comments are rejected by default")

	v, err := Parse(input, Options{AllowComments: true})
	require.NoError(t, err)
	want := notation.Object(
		notation.Field("a", notation.Int(1)),
		notation.Field("b", notation.Array(notation.Bool(true), notation.Bool(false))),
	)
	assert.True(t, notation.Equal(want, v))
}

func TestReadWriteJSON(t *testing.T) {
	var sb strings.Builder
	n, err := WriteJSON(&sb, notation.Array(notation.Int(1), notation.Null()))
	require.NoError(t, err)
	assert.Equal(t, sb.Len(), n)

	v, err := ReadJSON(nil, strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.True(t, notation.Equal(notation.Array(notation.Int(1), notation.Null()), v))
}
