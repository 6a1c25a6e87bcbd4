// Package stream frames encoded values for transport.
//
// Every frame is a one-line text header followed by the payload bytes:
//
//	@frame{v=1 sid=N seq=N kind=K fmt=binary len=N [zip=lz4 raw=N] [crc=X] [digest=blake3:X] [final=true]}\n
//	<payload>\n
//
// The header gives:
//   - message boundaries via len
//   - multiplexing via stream IDs (sid)
//   - ordering via per-SID sequence numbers (seq)
//   - optional CRC-32 of the bytes on the wire
//   - optional BLAKE3 digest of the decoded payload
//   - optional lz4 or zstd payload compression
//
// The payload is a value in the binary or JSON codec, selected by fmt.
package stream

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// Version is the framing protocol version.
const Version uint8 = 1

// FrameKind indicates the semantic category of a frame.
type FrameKind uint8

const (
	KindDoc  FrameKind = 0 // Complete value
	KindRow  FrameKind = 1 // One item of a streamed sequence
	KindAck  FrameKind = 2 // Acknowledgement
	KindErr  FrameKind = 3 // Error message
	KindPing FrameKind = 4 // Keepalive
	KindPong FrameKind = 5 // Ping response
)

var kindNames = [...]string{"doc", "row", "ack", "err", "ping", "pong"}

// String returns the kind name.
func (k FrameKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", k)
}

// ParseKind parses a kind name or its numeric value.
func ParseKind(s string) (FrameKind, bool) {
	for i, name := range kindNames {
		if s == name {
			return FrameKind(i), true
		}
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, false
	}
	return FrameKind(n), true
}

// PayloadFormat selects the codec of a frame payload.
type PayloadFormat uint8

const (
	FormatBinary PayloadFormat = iota
	FormatJSON
)

func (f PayloadFormat) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "binary"
}

func parsePayloadFormat(s string) (PayloadFormat, bool) {
	switch s {
	case "binary", "bin":
		return FormatBinary, true
	case "json":
		return FormatJSON, true
	}
	return 0, false
}

// Compression selects the on-wire payload compression.
type Compression uint8

const (
	ZipNone Compression = iota
	ZipLZ4
	ZipZstd
)

func (c Compression) String() string {
	switch c {
	case ZipLZ4:
		return "lz4"
	case ZipZstd:
		return "zstd"
	}
	return "none"
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, bool) {
	switch s {
	case "none", "":
		return ZipNone, true
	case "lz4":
		return ZipLZ4, true
	case "zstd":
		return ZipZstd, true
	}
	return 0, false
}

// Frame is a single decoded frame. Payload always holds the decompressed
// bytes; Zip only records how they travelled.
type Frame struct {
	Version uint8
	SID     uint64
	Seq     uint64
	Kind    FrameKind
	Format  PayloadFormat
	Zip     Compression
	Payload []byte

	CRC    *uint32   // CRC-32 of the wire bytes
	Digest *[32]byte // BLAKE3 of Payload
	Final  bool      // End of stream for this SID
}

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// ParseError reports a malformed frame header.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("stream: %s at offset %d", e.Reason, e.Offset)
	}
	return "stream: " + e.Reason
}

// CRCMismatchError is returned when CRC verification fails.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("stream: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// DigestMismatchError is returned when the payload digest does not match.
type DigestMismatchError struct {
	Expected [32]byte
	Got      [32]byte
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("stream: digest mismatch: expected %s, got %s",
		hex.EncodeToString(e.Expected[:8]), hex.EncodeToString(e.Got[:8]))
}

// SequenceError is returned for out of order frames.
type SequenceError struct {
	SID      uint64
	Expected uint64
	Got      uint64
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("stream: sid %d: expected seq %d, got %d", e.SID, e.Expected, e.Got)
}
