// Package varfile loads and stores values in files, choosing the codec by
// sniffing the leading bytes on read.
package varfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/parser"
	"github.com/TenniS-Open/omega/sta"
	"github.com/TenniS-Open/omega/vario"
)

// Loader reads and writes value files.
type Loader struct {
	// Logger receives debug records for each load and store. Nil discards.
	Logger *slog.Logger

	// AllowComments lets JSON input carry comments and trailing commas.
	AllowComments bool
}

var defaultLoader = &Loader{}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

// Read loads the file at path. Relative @file commands in JSON input
// resolve against the directory of path.
func (l *Loader) Read(path string) (*notation.Var, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	defer f.Close()
	v, err := l.Decode(f, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	l.logger().Debug("loaded value file", "path", path, "type", v.Type().String())
	return v, nil
}

// Decode sniffs the input format and decodes one value.
func (l *Loader) Decode(r io.Reader, sysroot string) (*notation.Var, error) {
	br := bufio.NewReader(r)
	format, skip, err := sniff(br)
	if err != nil {
		return nil, vario.NewContext(sysroot).Wrap(vario.ErrEndOfStream, err, "sniff")
	}
	if _, err := br.Discard(skip); err != nil {
		return nil, vario.NewContext(sysroot).Wrap(vario.ErrEndOfStream, err, "header")
	}
	l.logger().Debug("detected value format", "format", format.String(), "header", skip)

	ctx := vario.NewContext(sysroot)
	switch format {
	case FormatBinary:
		return vario.ReadVar(ctx, br)
	case FormatLegacy:
		return sta.ReadSta(ctx, br)
	}
	return l.readJSON(br, sysroot)
}

// ReadBytes decodes one value from data.
func (l *Loader) ReadBytes(data []byte, sysroot string) (*notation.Var, error) {
	return l.Decode(bytes.NewReader(data), sysroot)
}

// ReadAs decodes r with an explicit format, skipping detection. The
// binary and legacy formats still expect their headers.
func (l *Loader) ReadAs(r io.Reader, format Format, sysroot string) (*notation.Var, error) {
	ctx := vario.NewContext(sysroot)
	switch format {
	case FormatBinary:
		return vario.Read(r, vario.ReadOptions{Magic: true, Sysroot: sysroot})
	case FormatLegacy:
		br := bufio.NewReader(r)
		detected, skip, err := sniff(br)
		if err != nil {
			return nil, ctx.Wrap(vario.ErrEndOfStream, err, "sniff")
		}
		if detected != FormatLegacy {
			return nil, ctx.Errorf(vario.ErrUnrecognizedFormat, "missing legacy magic")
		}
		if _, err := br.Discard(skip); err != nil {
			return nil, ctx.Wrap(vario.ErrEndOfStream, err, "header")
		}
		return sta.ReadSta(ctx, br)
	case FormatJSON, FormatPrettyJSON:
		return l.readJSON(r, sysroot)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ctx.Wrap(vario.ErrEndOfStream, err, "read")
	}
	var v *notation.Var
	switch format {
	case FormatCBOR:
		v, err = unmarshalCBOR(data)
	case FormatYAML:
		v, err = unmarshalYAML(data)
	default:
		return nil, ctx.Errorf(vario.ErrUnrecognizedFormat, "%s", format)
	}
	if err != nil {
		return nil, ctx.Wrap(vario.ErrSyntax, err, "%s", format)
	}
	return v, nil
}

func (l *Loader) readJSON(r io.Reader, sysroot string) (*notation.Var, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, vario.NewContext(sysroot).Wrap(vario.ErrEndOfStream, err, "read json")
	}
	return parser.Parse(data, parser.Options{Sysroot: sysroot, AllowComments: l.AllowComments})
}

// Write stores v at path and returns the number of bytes written.
func (l *Loader) Write(v *notation.Var, path string, format Format) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fileError(path, err)
	}
	n, err := l.Encode(f, v, format)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fileError(path, cerr)
	}
	if err != nil {
		return n, err
	}
	l.logger().Debug("stored value file", "path", path, "format", format.String(), "bytes", n)
	return n, nil
}

// Encode encodes v to w and returns the number of bytes written.
func (l *Loader) Encode(w io.Writer, v *notation.Var, format Format) (int, error) {
	switch format {
	case FormatBinary:
		return vario.Write(w, v, vario.WriteOptions{Magic: true})
	case FormatJSON:
		return parser.WriteJSON(w, v)
	case FormatPrettyJSON:
		return io.WriteString(w, parser.Dumps(v)+"\n")
	case FormatCBOR, FormatYAML:
		var data []byte
		var err error
		if format == FormatCBOR {
			data, err = marshalCBOR(v)
		} else {
			data, err = marshalYAML(v)
		}
		if err != nil {
			return 0, fmt.Errorf("varfile: encode %s: %w", format, err)
		}
		return w.Write(data)
	case FormatLegacy:
		return 0, fmt.Errorf("varfile: %s format is read-only: %w", format, vario.ErrUnrecognizedFormat)
	}
	return 0, fmt.Errorf("varfile: %s: %w", format, vario.ErrUnrecognizedFormat)
}

// fileError reports a path that can not be opened. Every access failure
// carries ErrFileNotFound; the cause tells them apart.
func fileError(path string, err error) error {
	msg := "can not access file"
	if errors.Is(err, fs.ErrNotExist) {
		msg = "no such file"
	}
	return &vario.IOError{Kind: vario.ErrFileNotFound, Path: path, Msg: msg, Err: err}
}

// Read loads the file at path with the default loader.
func Read(path string) (*notation.Var, error) { return defaultLoader.Read(path) }

// Decode decodes r with the default loader.
func Decode(r io.Reader, sysroot string) (*notation.Var, error) {
	return defaultLoader.Decode(r, sysroot)
}

// ReadBytes decodes data with the default loader.
func ReadBytes(data []byte, sysroot string) (*notation.Var, error) {
	return defaultLoader.ReadBytes(data, sysroot)
}

// ReadAs decodes r as format with the default loader.
func ReadAs(r io.Reader, format Format, sysroot string) (*notation.Var, error) {
	return defaultLoader.ReadAs(r, format, sysroot)
}

// Write stores v at path with the default loader.
func Write(v *notation.Var, path string, format Format) (int, error) {
	return defaultLoader.Write(v, path, format)
}

// Encode encodes v to w with the default loader.
func Encode(w io.Writer, v *notation.Var, format Format) (int, error) {
	return defaultLoader.Encode(w, v, format)
}
