package parser

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/vario"
)

// A command string looks like "@name@arg@arg". Known names are evaluated
// while parsing; anything else stays a plain string.
type commandFunc func(p *parser, args []string) (notation.Element, error)

var commands map[string]commandFunc

func init() {
	commands = map[string]commandFunc{
		"date":      packDate,
		"time":      packTime,
		"datetime":  packDatetime,
		"nil":       packNil,
		"undefined": packUndefined,
		"binary":    packUnsupported,
		"file":      packFile,
		"base64":    packBase64,
	}
	for sub := notation.SubVoid; sub.Valid(); sub++ {
		commands[sub.String()] = packScalar(sub)
	}
}

func (p *parser) evalCommand(s string) (notation.Element, error) {
	if len(s) == 0 || s[0] != '@' {
		return &notation.StringElement{Value: s}, nil
	}
	args := strings.Split(s[1:], "@")
	cmd, ok := commands[args[0]]
	if !ok {
		return &notation.StringElement{Value: s}, nil
	}
	return cmd(p, args)
}

func (p *parser) commandError(kind error, format string, args ...any) error {
	return p.ctx.Errorf(kind, format, args...)
}

func packDate(p *parser, _ []string) (notation.Element, error) {
	return &notation.StringElement{Value: p.opts.Now().Format("2006-01-02")}, nil
}

func packTime(p *parser, _ []string) (notation.Element, error) {
	return &notation.StringElement{Value: p.opts.Now().Format("15:04:05")}, nil
}

func packDatetime(p *parser, _ []string) (notation.Element, error) {
	return &notation.StringElement{Value: p.opts.Now().Format("2006-01-02 15:04:05")}, nil
}

func packNil(*parser, []string) (notation.Element, error) {
	return &notation.NullElement{}, nil
}

func packUndefined(*parser, []string) (notation.Element, error) {
	return nil, nil
}

func packUnsupported(p *parser, args []string) (notation.Element, error) {
	return nil, p.commandError(vario.ErrCommand, "not supported command: @%s", strings.Join(args, "@"))
}

// packFile loads a file as binary. Relative paths resolve against the
// sysroot.
func packFile(p *parser, args []string) (notation.Element, error) {
	if len(args) < 2 || args[1] == "" {
		return nil, p.commandError(vario.ErrCommand, "command format error, should be @file@...")
	}
	path := strings.Join(args[1:], "@")
	if !filepath.IsAbs(path) && p.ctx.Sysroot != "" {
		path = filepath.Join(p.ctx.Sysroot, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, p.ctx.Wrap(vario.ErrFileNotFound, err, "@file")
		}
		return nil, p.ctx.Wrap(vario.ErrCommand, err, "@file")
	}
	if len(data) == 0 {
		return nil, p.commandError(vario.ErrCommand, "%s is not a valid file", path)
	}
	return &notation.BinaryElement{Data: data}, nil
}

func packBase64(p *parser, args []string) (notation.Element, error) {
	if len(args) < 2 {
		return nil, p.commandError(vario.ErrCommand, "command format error, should be @base64@...")
	}
	data, err := base64.StdEncoding.DecodeString(args[1])
	if err != nil {
		return nil, p.ctx.Wrap(vario.ErrCommand, err, "@base64")
	}
	return &notation.BinaryElement{Data: data}, nil
}

// packScalar rebuilds a typed scalar printed as "@<sub>@0x<hex>", the hex
// being its little-endian wire bytes.
func packScalar(sub notation.SubType) commandFunc {
	return func(p *parser, args []string) (notation.Element, error) {
		raw := ""
		if len(args) > 1 {
			raw = strings.TrimPrefix(args[1], "0x")
		}
		data, err := hex.DecodeString(raw)
		if err != nil {
			return nil, p.ctx.Wrap(vario.ErrCommand, err, "@%s", sub)
		}
		s, err := notation.DecodeScalar(sub, data)
		if err != nil {
			return nil, p.ctx.Wrap(vario.ErrCommand, err, "@%s", sub)
		}
		return s, nil
	}
}
