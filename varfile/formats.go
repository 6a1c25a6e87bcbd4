package varfile

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/TenniS-Open/omega/notation"
)

// Format selects an encoding for Write and ReadAs.
type Format int

const (
	// FormatBinary is the vario codec with the module header.
	FormatBinary Format = iota
	// FormatJSON is compact JSON.
	FormatJSON
	// FormatPrettyJSON is indented JSON.
	FormatPrettyJSON
	// FormatLegacy is the read-only sta codec.
	FormatLegacy
	// FormatCBOR is RFC 8949 CBOR through the generic Go value bridge.
	FormatCBOR
	// FormatYAML is YAML through the generic Go value bridge.
	FormatYAML
)

var formatNames = [...]string{
	FormatBinary:     "binary",
	FormatJSON:       "json",
	FormatPrettyJSON: "pretty",
	FormatLegacy:     "legacy",
	FormatCBOR:       "cbor",
	FormatYAML:       "yaml",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat resolves a format name. "sta" and "yml" are accepted aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binary", "bin", "":
		return FormatBinary, nil
	case "json":
		return FormatJSON, nil
	case "pretty":
		return FormatPrettyJSON, nil
	case "legacy", "sta":
		return FormatLegacy, nil
	case "cbor":
		return FormatCBOR, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("varfile: unknown format %q", name)
}

var cborEnc cbor.EncMode

var cborDec cbor.DecMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("varfile: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		// values are read into a Var tree, which only has string keys
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("varfile: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshalCBOR(v *notation.Var) ([]byte, error) {
	a, err := notation.ToAny(v)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(a)
}

func unmarshalCBOR(data []byte) (*notation.Var, error) {
	var a any
	if err := cborDec.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("varfile: cbor: %w", err)
	}
	return notation.FromAny(a)
}

func marshalYAML(v *notation.Var) ([]byte, error) {
	a, err := notation.ToAny(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(a)
}

func unmarshalYAML(data []byte) (*notation.Var, error) {
	var a any
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("varfile: yaml: %w", err)
	}
	return notation.FromAny(a)
}
