package parser

import (
	"encoding/base64"
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/x448/float16"

	"github.com/TenniS-Open/omega/notation"
)

// Arrays shorter than this, made only of scalars, may print on one line.
const inlineItems = 16

// Inline arrays longer than this many characters are broken up.
const inlineWidth = 120

// Repr renders v as compact single-line JSON.
func Repr(v *notation.Var) string {
	e := &emitter{}
	e.emit(v.Element())
	return e.sb.String()
}

// Dumps renders v as JSON indented by two spaces. Short arrays of scalars
// stay on one line.
func Dumps(v *notation.Var) string {
	e := &emitter{}
	e.dumps(v.Element(), "")
	return e.sb.String()
}

// WriteJSON writes the compact rendering of v and returns the number of
// bytes written.
func WriteJSON(w io.Writer, v *notation.Var) (int, error) {
	return io.WriteString(w, Repr(v))
}

type emitter struct {
	sb strings.Builder
}

func (e *emitter) emit(el notation.Element) {
	switch x := el.(type) {
	case nil:
		e.sb.WriteString(`"@undefined"`)
	case *notation.NullElement:
		e.sb.WriteString("null")
	case *notation.BooleanElement:
		e.sb.WriteString(strconv.FormatBool(x.Value))
	case *notation.ScalarElement:
		e.emitScalar(x)
	case *notation.StringElement:
		e.emitString(x.Value)
	case *notation.BinaryElement:
		e.sb.WriteString(`"@base64@`)
		e.sb.WriteString(base64.StdEncoding.EncodeToString(x.Data))
		e.sb.WriteByte('"')
	case *notation.VectorElement:
		e.sb.WriteByte('[')
		for i := 0; i < x.Len(); i++ {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			s, _ := x.At(i)
			e.emitScalar(s)
		}
		e.sb.WriteByte(']')
	case *notation.ArrayElement:
		e.sb.WriteByte('[')
		for i, item := range x.Items {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			e.emit(item)
		}
		e.sb.WriteByte(']')
	case *notation.ObjectElement:
		e.sb.WriteByte('{')
		for i, key := range x.Keys() {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			e.emitString(key)
			e.sb.WriteString(": ")
			e.emit(x.Fields[key])
		}
		e.sb.WriteByte('}')
	}
}

func (e *emitter) dumps(el notation.Element, indent string) {
	next := indent + "  "
	switch x := el.(type) {
	case *notation.ArrayElement:
		if len(x.Items) == 0 {
			e.sb.WriteString("[]")
			return
		}
		if couldInline(x.Items) {
			s := Repr(notation.FromElement(x))
			if len(s) <= inlineWidth {
				e.sb.WriteString(s)
				return
			}
		}
		e.sb.WriteString("[\n" + next)
		for i, item := range x.Items {
			if i > 0 {
				e.sb.WriteString(",\n" + next)
			}
			e.dumps(item, next)
		}
		e.sb.WriteString("\n" + indent + "]")
	case *notation.VectorElement:
		items := make([]notation.Element, x.Len())
		for i := range items {
			items[i], _ = x.At(i)
		}
		e.dumps(&notation.ArrayElement{Items: items}, indent)
	case *notation.ObjectElement:
		if len(x.Fields) == 0 {
			e.sb.WriteString("{}")
			return
		}
		e.sb.WriteString("{\n" + next)
		for i, key := range x.Keys() {
			if i > 0 {
				e.sb.WriteString(",\n" + next)
			}
			e.emitString(key)
			e.sb.WriteString(": ")
			e.dumps(x.Fields[key], next)
		}
		e.sb.WriteString("\n" + indent + "}")
	default:
		e.emit(el)
	}
}

func couldInline(items []notation.Element) bool {
	if len(items) >= inlineItems {
		return false
	}
	for _, item := range items {
		switch item.(type) {
		case nil, *notation.NullElement, *notation.ScalarElement, *notation.BooleanElement:
		default:
			return false
		}
	}
	return true
}

func (e *emitter) emitScalar(s *notation.ScalarElement) {
	switch v := s.Value().(type) {
	case int8:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int16:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int32:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		e.sb.WriteString(strconv.FormatInt(v, 10))
	case uint8:
		e.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		e.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		e.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		e.sb.WriteString(strconv.FormatUint(v, 10))
	case float16.Float16:
		e.emitFloat(float64(v.Float32()), 32)
	case float32:
		e.emitFloat(float64(v), 32)
	case float64:
		e.emitFloat(v, 64)
	default:
		e.sb.WriteString(`"@`)
		e.sb.WriteString(s.Sub().String())
		if raw := s.AppendBinary(nil); len(raw) > 0 {
			e.sb.WriteString("@0x")
			e.sb.WriteString(hex.EncodeToString(raw))
		}
		e.sb.WriteByte('"')
	}
}

// emitFloat always leaves a '.' or an exponent so the literal parses back
// as a float.
func (e *emitter) emitFloat(f float64, bits int) {
	switch {
	case math.IsNaN(f):
		e.sb.WriteString("NaN")
		return
	case math.IsInf(f, 1):
		e.sb.WriteString("Infinity")
		return
	case math.IsInf(f, -1):
		e.sb.WriteString("-Infinity")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	e.sb.WriteString(s)
}

func (e *emitter) emitString(s string) {
	e.sb.WriteByte('"')
	e.sb.WriteString(escapeString(s))
	e.sb.WriteByte('"')
}

// escapeString escapes a string for quoted output.
func escapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteString(hex.EncodeToString([]byte{c}))
				continue
			}
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
