package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/parser"
	"github.com/TenniS-Open/omega/vario"
)

// Reader reads frames from an io.Reader.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verify     bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum payload size, compressed or not.
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) { r.maxPayload = max }
}

// WithoutVerification skips CRC and digest checks.
func WithoutVerification() ReaderOption {
	return func(r *Reader) { r.verify = false }
}

// NewReader creates a frame reader. CRC and digest are verified when present.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verify:     true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

type frameHeader struct {
	frame  *Frame
	length int
	raw    int
}

// Next reads the next frame. It returns io.EOF when the input is exhausted
// between frames.
func (r *Reader) Next() (*Frame, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line == "" {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	h, err := parseHeader(line)
	if err != nil {
		return nil, err
	}
	if h.length > r.maxPayload || h.raw > r.maxPayload {
		return nil, &ParseError{Reason: fmt.Sprintf("payload too large: %d > %d", max(h.length, h.raw), r.maxPayload), Offset: -1}
	}

	frame := h.frame
	var wire []byte
	if h.length > 0 {
		wire = make([]byte, h.length)
		if _, err := io.ReadFull(r.r, wire); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	}

	// The trailing newline is optional at EOF.
	if b, err := r.r.ReadByte(); err == nil && b != '\n' {
		_ = r.r.UnreadByte()
	}

	if r.verify && frame.CRC != nil {
		if got := ComputeCRC(wire); got != *frame.CRC {
			return nil, &CRCMismatchError{Expected: *frame.CRC, Got: got}
		}
	}

	if frame.Zip != ZipNone {
		if wire, err = decompress(frame.Zip, wire, h.raw); err != nil {
			return nil, fmt.Errorf("sid %d seq %d: %w", frame.SID, frame.Seq, err)
		}
	}
	frame.Payload = wire

	if r.verify && frame.Digest != nil {
		if got := Digest(frame.Payload); got != *frame.Digest {
			return nil, &DigestMismatchError{Expected: *frame.Digest, Got: got}
		}
	}
	return frame, nil
}

// ReadAll reads frames until EOF.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// Var decodes the payload with the frame's codec. Frames without a payload
// yield an undefined value.
func (f *Frame) Var() (*notation.Var, error) {
	if len(f.Payload) == 0 {
		return notation.Undefined(), nil
	}
	if f.Format == FormatJSON {
		return parser.Parse(f.Payload, parser.Options{})
	}
	return vario.Unmarshal(f.Payload)
}

func parseHeader(line string) (*frameHeader, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "@frame{") {
		return nil, &ParseError{Reason: "expected @frame{", Offset: 0}
	}
	end := strings.LastIndex(line, "}")
	if end < 0 {
		return nil, &ParseError{Reason: "missing closing }", Offset: len(line)}
	}

	h := &frameHeader{frame: &Frame{Version: Version}}
	f := h.frame
	hasLen := false
	for _, pair := range tokenize(line[len("@frame{"):end]) {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case "v":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return nil, &ParseError{Reason: "invalid version", Offset: -1}
			}
			f.Version = uint8(v)
		case "sid":
			sid, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, &ParseError{Reason: "invalid sid", Offset: -1}
			}
			f.SID = sid
		case "seq":
			seq, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, &ParseError{Reason: "invalid seq", Offset: -1}
			}
			f.Seq = seq
		case "kind":
			kind, ok := ParseKind(val)
			if !ok {
				return nil, &ParseError{Reason: "invalid kind: " + val, Offset: -1}
			}
			f.Kind = kind
		case "fmt":
			format, ok := parsePayloadFormat(val)
			if !ok {
				return nil, &ParseError{Reason: "invalid fmt: " + val, Offset: -1}
			}
			f.Format = format
		case "len":
			l, err := strconv.ParseUint(val, 10, 31)
			if err != nil {
				return nil, &ParseError{Reason: "invalid len", Offset: -1}
			}
			h.length = int(l)
			hasLen = true
		case "zip":
			zip, ok := ParseCompression(val)
			if !ok {
				return nil, &ParseError{Reason: "invalid zip: " + val, Offset: -1}
			}
			f.Zip = zip
		case "raw":
			l, err := strconv.ParseUint(val, 10, 31)
			if err != nil {
				return nil, &ParseError{Reason: "invalid raw", Offset: -1}
			}
			h.raw = int(l)
		case "crc":
			crc, ok := parseCRC(val)
			if !ok {
				return nil, &ParseError{Reason: "invalid crc: " + val, Offset: -1}
			}
			f.CRC = &crc
		case "digest":
			d, ok := HexToDigest(strings.TrimPrefix(val, "blake3:"))
			if !ok {
				return nil, &ParseError{Reason: "invalid digest: " + val, Offset: -1}
			}
			f.Digest = &d
		case "final":
			f.Final = val == "true" || val == "1"
		}
	}
	if f.Version != Version {
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported version %d", f.Version), Offset: -1}
	}
	if !hasLen {
		return nil, &ParseError{Reason: "missing len", Offset: -1}
	}
	return h, nil
}

// tokenize splits key=value pairs separated by spaces or commas.
func tokenize(s string) []string {
	var tokens []string
	var current bytes.Buffer
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			current.WriteByte(c)
		case (c == ' ' || c == ',' || c == '\t') && !inQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// parseCRC accepts "crc32:XXXXXXXX" or "XXXXXXXX".
func parseCRC(val string) (uint32, bool) {
	val = strings.TrimPrefix(val, "crc32:")
	if len(val) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(val, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
