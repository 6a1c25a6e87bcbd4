package parser

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/jsonc"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/vario"
)

// Options configures Parse.
type Options struct {
	// Sysroot resolves relative @file paths.
	Sysroot string

	// AllowComments accepts // and /* */ comments and trailing commas.
	AllowComments bool

	// Now is the clock behind @date, @time and @datetime (default time.Now).
	Now func() time.Time
}

// Parse decodes one JSON document.
func Parse(data []byte, opts Options) (*notation.Var, error) {
	return parseWithContext(vario.NewContext(opts.Sysroot), data, opts)
}

// ParseString decodes one JSON document with default options.
func ParseString(s string) (*notation.Var, error) {
	return Parse([]byte(s), Options{})
}

// ReadJSON reads r to the end and decodes it. @file paths resolve against
// ctx.Sysroot.
func ReadJSON(ctx *vario.Context, r io.Reader) (*notation.Var, error) {
	if ctx == nil {
		ctx = vario.NewContext("")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ctx.Wrap(vario.ErrEndOfStream, err, "read json")
	}
	return parseWithContext(ctx, data, Options{Sysroot: ctx.Sysroot})
}

func parseWithContext(ctx *vario.Context, data []byte, opts Options) (*notation.Var, error) {
	if opts.AllowComments {
		data = jsonc.ToJSON(data)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if ctx.Sysroot == "" {
		ctx.Sysroot = opts.Sysroot
	}
	p := &parser{cur: cursor{data: data}, ctx: ctx, opts: opts}
	p.cur.skipSpace()
	if p.cur.eof() {
		return nil, p.errorf("converting empty json")
	}
	e, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.cur.skipSpace()
	if !p.cur.eof() {
		return nil, p.errorf("unexpected %q after value", p.cur.peek())
	}
	return notation.FromElement(e), nil
}

type parser struct {
	cur  cursor
	ctx  *vario.Context
	opts Options
}

func (p *parser) errorf(format string, args ...any) error {
	line, col := p.cur.lineCol()
	err := p.ctx.Errorf(vario.ErrSyntax, format, args...)
	err.Msg += " at line " + strconv.Itoa(line) + ", column " + strconv.Itoa(col)
	return err
}

func (p *parser) parseValue() (notation.Element, error) {
	p.cur.skipSpace()
	if p.cur.eof() {
		return nil, p.errorf("unexpected end of json")
	}
	switch c := p.cur.peek(); {
	case c == '"':
		return p.parseStringValue()
	case c == '[':
		return p.parseList()
	case c == '{':
		return p.parseDict()
	case c == '-' || (c >= '0' && c <= '9') || c == 'N' || c == 'I':
		return p.parseNumber()
	case p.cur.hasPrefix("true"):
		p.cur.advance(4)
		return &notation.BooleanElement{Value: true}, nil
	case p.cur.hasPrefix("false"):
		p.cur.advance(5)
		return &notation.BooleanElement{Value: false}, nil
	case p.cur.hasPrefix("null"):
		p.cur.advance(4)
		return &notation.NullElement{}, nil
	default:
		return nil, p.errorf("unrecognized symbol %q", c)
	}
}

// enter fails once the input nests deeper than vario.MaxDepth.
func (p *parser) enter() error {
	if p.ctx.Depth() >= vario.MaxDepth {
		return p.errorf("nesting deeper than %d levels", vario.MaxDepth)
	}
	return nil
}

func (p *parser) parseList() (notation.Element, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	p.cur.advance(1)
	arr := &notation.ArrayElement{}
	for {
		p.cur.skipSpace()
		if p.cur.peek() == ']' {
			p.cur.advance(1)
			return arr, nil
		}
		p.ctx.PushIndex(len(arr.Items))
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.ctx.Pop()
		arr.Items = append(arr.Items, item)

		p.cur.skipSpace()
		switch p.cur.peek() {
		case ',':
			p.cur.advance(1)
		case ']':
			p.cur.advance(1)
			return arr, nil
		default:
			return nil, p.errorf("can not find match ]")
		}
	}
}

func (p *parser) parseDict() (notation.Element, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	p.cur.advance(1)
	obj := notation.NewObjectElement()
	for {
		p.cur.skipSpace()
		switch p.cur.peek() {
		case '}':
			p.cur.advance(1)
			return obj, nil
		case '"':
		default:
			return nil, p.errorf("can not find match }")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.cur.skipSpace()
		if p.cur.peek() != ':' {
			return nil, p.errorf("dict key:value must split with :")
		}
		p.cur.advance(1)

		p.ctx.PushKey(key)
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.ctx.Pop()
		obj.Fields[key] = value

		p.cur.skipSpace()
		switch p.cur.peek() {
		case ',':
			p.cur.advance(1)
		case '}':
			p.cur.advance(1)
			return obj, nil
		default:
			return nil, p.errorf("can not find match }")
		}
	}
}

// parseNumber reads a JSON number, NaN, Infinity or -Infinity. Literals
// without fraction or exponent become int64 when they fit, then uint64.
// Integer parts may not carry leading zeros.
func (p *parser) parseNumber() (notation.Element, error) {
	start := p.cur.pos
	for _, lit := range []struct {
		text  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	} {
		if p.cur.hasPrefix(lit.text) {
			p.cur.advance(len(lit.text))
			return notation.NewScalar(lit.value), nil
		}
	}

	isFloat := false
	if p.cur.peek() == '-' {
		p.cur.advance(1)
	}
	leadingZero := p.cur.peek() == '0'
	if n := p.skipDigits(); n == 0 || (leadingZero && n > 1) {
		return nil, p.malformed(start)
	}
	if p.cur.peek() == '.' {
		isFloat = true
		p.cur.advance(1)
		if p.skipDigits() == 0 {
			return nil, p.malformed(start)
		}
	}
	if c := p.cur.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.cur.advance(1)
		if c := p.cur.peek(); c == '+' || c == '-' {
			p.cur.advance(1)
		}
		if p.skipDigits() == 0 {
			return nil, p.malformed(start)
		}
	}
	lit := string(p.cur.data[start:p.cur.pos])

	if !isFloat {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return notation.NewScalar(i), nil
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return notation.NewScalar(u), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, p.malformed(start)
	}
	return notation.NewScalar(f), nil
}

func (p *parser) skipDigits() int {
	n := 0
	for c := p.cur.peek(); c >= '0' && c <= '9'; c = p.cur.peek() {
		p.cur.advance(1)
		n++
	}
	return n
}

func (p *parser) malformed(start int) error {
	end := p.cur.pos + 1
	p.cur.seek(start)
	return p.errorf("malformed number %q", p.cur.cut(end))
}

func (p *parser) parseStringValue() (notation.Element, error) {
	s, err := p.parseString()
	if err != nil {
		return nil, err
	}
	return p.evalCommand(s)
}

// parseString reads a quoted string and decodes its escapes. \u escapes
// become UTF-8, surrogate pairs included.
func (p *parser) parseString() (string, error) {
	start := p.cur.pos
	p.cur.advance(1)
	var sb strings.Builder
	for {
		run := p.cur.pos
		for !p.cur.eof() {
			if c := p.cur.peek(); c == '"' || c == '\\' {
				break
			}
			p.cur.advance(1)
		}
		sb.Write(p.cur.data[run:p.cur.pos])
		if p.cur.eof() {
			p.cur.seek(start)
			return "", p.errorf("can not find match \"")
		}
		if p.cur.peek() == '"' {
			p.cur.advance(1)
			return sb.String(), nil
		}

		p.cur.advance(1)
		esc := p.cur.peek()
		p.cur.advance(1)
		switch esc {
		case '"', '\\', '/':
			sb.WriteByte(esc)
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'u':
			r, err := p.parseUnicode()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			p.cur.advance(-2)
			if p.cur.pos+1 >= len(p.cur.data) {
				p.cur.seek(start)
				return "", p.errorf("can not find match \"")
			}
			return "", p.errorf("invalid escape %q", p.cur.cut(p.cur.pos+2))
		}
	}
}

// parseUnicode decodes the hex digits after \u, consuming a trailing low
// surrogate escape when the first unit is a high surrogate.
func (p *parser) parseUnicode() (rune, error) {
	r1, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if !utf16.IsSurrogate(r1) {
		return r1, nil
	}
	if p.cur.hasPrefix("\\u") {
		save := p.cur.pos
		p.cur.advance(2)
		r2, err := p.hex4()
		if err != nil {
			return 0, err
		}
		if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
			return r, nil
		}
		p.cur.seek(save)
	}
	return utf8.RuneError, nil
}

func (p *parser) hex4() (rune, error) {
	if p.cur.pos+4 > len(p.cur.data) {
		return 0, p.errorf("unrecognized unicode %q", p.cur.cut(p.cur.pos+4))
	}
	var r rune
	for i := 0; i < 4; i++ {
		c := p.cur.data[p.cur.pos+i]
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, p.errorf("unrecognized unicode %q", p.cur.cut(p.cur.pos+4))
		}
		r = r<<4 | rune(d)
	}
	p.cur.advance(4)
	return r, nil
}
