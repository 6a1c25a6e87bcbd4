package varfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/TenniS-Open/omega/sta"
	"github.com/TenniS-Open/omega/vario"
)

// sniff inspects at most 8 bytes of br without consuming them and returns
// the detected format together with the header length to discard.
func sniff(br *bufio.Reader) (Format, int, error) {
	le := binary.LittleEndian
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, 0, err
	}
	if len(head) == 4 && le.Uint32(head) == sta.Magic {
		return FormatLegacy, 4, nil
	}
	head, err = br.Peek(vario.HeaderSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, 0, err
	}
	if len(head) == vario.HeaderSize {
		switch le.Uint32(head[4:]) {
		case vario.Magic:
			return FormatBinary, vario.HeaderSize, nil
		case sta.Magic:
			return FormatLegacy, vario.HeaderSize, nil
		}
	}
	return FormatJSON, 0, nil
}

// Detect reports the format of the data in r. The returned reader yields
// the complete input, header included.
func Detect(r io.Reader) (Format, io.Reader, error) {
	br := bufio.NewReader(r)
	f, _, err := sniff(br)
	return f, br, err
}
