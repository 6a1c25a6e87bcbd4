package stream

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/parser"
	"github.com/TenniS-Open/omega/vario"
)

// Writer writes frames to an io.Writer.
type Writer struct {
	w          io.Writer
	format     PayloadFormat
	zip        Compression
	withCRC    bool
	withDigest bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC adds a CRC-32 of the wire bytes to every frame with a payload.
func WithCRC() WriterOption {
	return func(w *Writer) { w.withCRC = true }
}

// WithDigest adds a BLAKE3 digest of the payload to every frame with a payload.
func WithDigest() WriterOption {
	return func(w *Writer) { w.withDigest = true }
}

// WithCompression compresses payloads when that makes them smaller.
func WithCompression(c Compression) WriterOption {
	return func(w *Writer) { w.zip = c }
}

// WithFormat selects the codec used by WriteVar and friends.
func WithFormat(f PayloadFormat) WriterOption {
	return func(w *Writer) { w.format = f }
}

// NewWriter creates a frame writer. Values are binary encoded by default.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	fw := &Writer{w: w}
	for _, opt := range opts {
		opt(fw)
	}
	return fw
}

// WriteFrame writes f. f.Payload is the uncompressed payload; the writer
// decides the compression and fills in CRC and digest when configured. A
// CRC set on f is recomputed when the payload goes out compressed.
func (w *Writer) WriteFrame(f *Frame) error {
	wire := f.Payload
	zip := ZipNone
	if w.zip != ZipNone && len(f.Payload) > 0 {
		packed, err := compress(w.zip, f.Payload)
		switch {
		case err == nil:
			wire, zip = packed, w.zip
		case !errors.Is(err, errIncompressible):
			return err
		}
	}

	var header strings.Builder
	header.WriteString("@frame{v=")
	if f.Version == 0 {
		header.WriteByte('1')
	} else {
		header.WriteString(strconv.Itoa(int(f.Version)))
	}
	header.WriteString(" sid=")
	header.WriteString(strconv.FormatUint(f.SID, 10))
	header.WriteString(" seq=")
	header.WriteString(strconv.FormatUint(f.Seq, 10))
	header.WriteString(" kind=")
	header.WriteString(f.Kind.String())
	header.WriteString(" fmt=")
	header.WriteString(f.Format.String())
	header.WriteString(" len=")
	header.WriteString(strconv.Itoa(len(wire)))
	if zip != ZipNone {
		header.WriteString(" zip=")
		header.WriteString(zip.String())
		header.WriteString(" raw=")
		header.WriteString(strconv.Itoa(len(f.Payload)))
	}

	// A caller CRC covers the plain payload, which is not what goes on
	// the wire once compressed.
	crc := f.CRC
	if crc != nil && zip != ZipNone {
		computed := ComputeCRC(wire)
		crc = &computed
	}
	if crc == nil && w.withCRC && len(wire) > 0 {
		computed := ComputeCRC(wire)
		crc = &computed
	}
	if crc != nil {
		fmt.Fprintf(&header, " crc=%08x", *crc)
	}

	digest := f.Digest
	if digest == nil && w.withDigest && len(f.Payload) > 0 {
		computed := Digest(f.Payload)
		digest = &computed
	}
	if digest != nil {
		header.WriteString(" digest=blake3:")
		header.WriteString(DigestToHex(*digest))
	}

	if f.Final {
		header.WriteString(" final=true")
	}
	header.WriteString("}\n")

	if _, err := io.WriteString(w.w, header.String()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(wire) > 0 {
		if _, err := w.w.Write(wire); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}

func (w *Writer) encode(v *notation.Var) ([]byte, error) {
	if w.format == FormatJSON {
		return []byte(parser.Repr(v)), nil
	}
	return vario.Marshal(v)
}

func (w *Writer) writeValue(sid, seq uint64, kind FrameKind, v *notation.Var, final bool) error {
	payload, err := w.encode(v)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", kind, err)
	}
	return w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    kind,
		Format:  w.format,
		Payload: payload,
		Final:   final,
	})
}

// WriteVar writes v as a doc frame.
func (w *Writer) WriteVar(sid, seq uint64, v *notation.Var) error {
	return w.writeValue(sid, seq, KindDoc, v, false)
}

// WriteRow writes v as one row of a streamed sequence.
func (w *Writer) WriteRow(sid, seq uint64, v *notation.Var) error {
	return w.writeValue(sid, seq, KindRow, v, false)
}

// WriteFinal writes v as the last doc frame of sid.
func (w *Writer) WriteFinal(sid, seq uint64, v *notation.Var) error {
	return w.writeValue(sid, seq, KindDoc, v, true)
}

// WriteErr writes an error frame carrying msg as a string value.
func (w *Writer) WriteErr(sid, seq uint64, msg string) error {
	return w.writeValue(sid, seq, KindErr, notation.String(msg), false)
}

// WriteAck writes an acknowledgement frame.
func (w *Writer) WriteAck(sid, seq uint64) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindAck})
}

// WritePing writes a ping frame.
func (w *Writer) WritePing(sid, seq uint64) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindPing})
}

// WritePong writes a pong frame.
func (w *Writer) WritePong(sid, seq uint64) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindPong})
}
