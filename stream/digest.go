package stream

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/vario"
)

// Digest computes the BLAKE3-256 digest of data.
func Digest(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// DigestVar digests the binary encoding of v. Object keys are written in
// sorted order, so equal values have equal digests.
func DigestVar(v *notation.Var) ([32]byte, error) {
	data, err := vario.Marshal(v)
	if err != nil {
		return [32]byte{}, err
	}
	return Digest(data), nil
}

// DigestToHex converts a digest to lowercase hex.
func DigestToHex(d [32]byte) string {
	return hex.EncodeToString(d[:])
}

// HexToDigest parses a 64 character hex digest.
func HexToDigest(s string) ([32]byte, bool) {
	var d [32]byte
	if len(s) != 64 {
		return d, false
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, false
	}
	return d, true
}
