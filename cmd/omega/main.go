// omega - value file CLI tool
//
// Usage:
//
//	omega convert [--from F] [--to F] [-o out] [file]   Convert between value formats
//	omega inspect [--from F] [file]                     Print format, type and size
//	omega stream encode [options] [file...]             Frame values for transport
//	omega stream decode [file]                          Decode frames and print them
//	omega version                                       Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/TenniS-Open/omega/notation"
	"github.com/TenniS-Open/omega/parser"
	"github.com/TenniS-Open/omega/stream"
	"github.com/TenniS-Open/omega/varfile"
)

const libVersion = "0.3.0"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "omega: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	loader *varfile.Loader
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	switch cmd := args[0]; cmd {
	case "convert":
		return a.convert(args[1:])
	case "inspect":
		return a.inspect(args[1:])
	case "stream":
		if len(args) < 2 {
			return errors.New("stream: missing subcommand (encode, decode)")
		}
		switch args[1] {
		case "encode":
			return a.streamEncode(args[2:])
		case "decode":
			return a.streamDecode(args[2:])
		}
		return fmt.Errorf("stream: unknown subcommand: %s", args[1])
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "omega %s\n", libVersion)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `omega - value file CLI tool

Usage:
  omega convert [--from F] [--to F] [-o out] [file]   Convert between value formats
  omega inspect [--from F] [file]                     Print format, type and size
  omega stream encode [options] [file...]             Frame values for transport
  omega stream decode [file]                          Decode frames and print them
  omega version                                       Print version info

Formats: binary, json, pretty, legacy (read only), cbor, yaml.
Without --from the input format is detected; cbor and yaml need --from.

Every command accepts --verbose for debug logging on stderr.

Examples:
  omega convert --to pretty model.bin
  echo '{"b":1,"a":[1,2]}' | omega convert --to binary -o model.bin
  omega stream encode --zip zstd --digest a.json b.json | omega stream decode
`)
}

// newFlags creates a flag set carrying the common --verbose and
// --comments flags. setup must be called after Parse.
func (a *app) newFlags(name string) (*pflag.FlagSet, func()) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("verbose", false, "log debug records to stderr")
	comments := fs.Bool("comments", false, "allow comments and trailing commas in JSON input")
	return fs, func() {
		level := slog.LevelWarn
		if *verbose {
			level = slog.LevelDebug
		}
		a.loader = &varfile.Loader{
			Logger:        slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})),
			AllowComments: *comments,
		}
	}
}

// load reads one value from path, or stdin for "" and "-".
func (a *app) load(path, from string) (*notation.Var, varfile.Format, int64, error) {
	var data []byte
	var err error
	sysroot := "."
	if path == "" || path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
		sysroot = filepath.Dir(path)
	}
	if err != nil {
		return nil, 0, 0, err
	}

	var format varfile.Format
	if from != "" {
		if format, err = varfile.ParseFormat(from); err != nil {
			return nil, 0, 0, err
		}
	} else if format, _, err = varfile.Detect(bytes.NewReader(data)); err != nil {
		return nil, 0, 0, err
	}

	var v *notation.Var
	if from == "" {
		v, err = a.loader.ReadBytes(data, sysroot)
	} else {
		v, err = a.loader.ReadAs(bytes.NewReader(data), format, sysroot)
	}
	if err != nil {
		return nil, 0, 0, err
	}
	a.loader.Logger.Debug("input loaded", "path", path, "format", format.String(), "bytes", len(data))
	return v, format, int64(len(data)), nil
}

func (a *app) convert(args []string) error {
	fs, setup := a.newFlags("convert")
	from := fs.String("from", "", "input format (detected when empty)")
	to := fs.String("to", "json", "output format")
	out := fs.StringP("output", "o", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setup()

	format, err := varfile.ParseFormat(*to)
	if err != nil {
		return err
	}
	v, _, _, err := a.load(fs.Arg(0), *from)
	if err != nil {
		return err
	}

	var n int
	if *out == "" {
		bw := bufio.NewWriter(a.stdout)
		if n, err = a.loader.Encode(bw, v, format); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	} else if n, err = a.loader.Write(v, *out, format); err != nil {
		return err
	}
	a.loader.Logger.Debug("output written", "format", format.String(), "bytes", n)
	return nil
}

func (a *app) inspect(args []string) error {
	fs, setup := a.newFlags("inspect")
	from := fs.String("from", "", "input format (detected when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setup()

	v, format, size, err := a.load(fs.Arg(0), *from)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "format: %s\n", format)
	fmt.Fprintf(a.stdout, "size:   %s\n", humanize.Bytes(uint64(size)))
	fmt.Fprintf(a.stdout, "type:   %s\n", v.Type())
	if n, err := v.Len(); err == nil {
		fmt.Fprintf(a.stdout, "length: %s\n", humanize.Comma(int64(n)))
	}
	if keys, err := v.Keys(); err == nil {
		for _, k := range keys {
			child, _ := v.Get(k)
			fmt.Fprintf(a.stdout, "  %s: %s\n", k, child.Type())
		}
	}
	return nil
}

func (a *app) streamEncode(args []string) error {
	fs, setup := a.newFlags("stream encode")
	sid := fs.Uint64("sid", 1, "stream id")
	seq := fs.Uint64("seq", 0, "first sequence number")
	payload := fs.String("fmt", "binary", "payload codec: binary or json")
	zip := fs.String("zip", "none", "payload compression: none, lz4 or zstd")
	withCRC := fs.Bool("crc", false, "add CRC-32 of each payload")
	withDigest := fs.Bool("digest", false, "add BLAKE3 digest of each payload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setup()

	opts := []stream.WriterOption{}
	switch *payload {
	case "binary", "bin":
	case "json":
		opts = append(opts, stream.WithFormat(stream.FormatJSON))
	default:
		return fmt.Errorf("unknown payload codec %q", *payload)
	}
	c, ok := stream.ParseCompression(*zip)
	if !ok {
		return fmt.Errorf("unknown compression %q", *zip)
	}
	opts = append(opts, stream.WithCompression(c))
	if *withCRC {
		opts = append(opts, stream.WithCRC())
	}
	if *withDigest {
		opts = append(opts, stream.WithDigest())
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	bw := bufio.NewWriter(a.stdout)
	w := stream.NewWriter(bw, opts...)
	for i, path := range inputs {
		v, _, _, err := a.load(path, "")
		if err != nil {
			return err
		}
		n := *seq + uint64(i)
		if i == len(inputs)-1 {
			err = w.WriteFinal(*sid, n, v)
		} else {
			err = w.WriteVar(*sid, n, v)
		}
		if err != nil {
			return err
		}
		a.loader.Logger.Debug("frame written", "sid", *sid, "seq", n, "path", path)
	}
	return bw.Flush()
}

func (a *app) streamDecode(args []string) error {
	fs, setup := a.newFlags("stream decode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setup()

	input := a.stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	reader := stream.NewReader(input)
	cursor := stream.NewCursor()
	count := 0
	for {
		frame, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", count+1, err)
		}
		if err := cursor.Process(frame); err != nil {
			return fmt.Errorf("frame %d: %w", count+1, err)
		}
		count++
		if err := a.printFrame(count, frame); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stderr, "--- %d frames decoded ---\n", count)
	return nil
}

func (a *app) printFrame(n int, f *stream.Frame) error {
	fmt.Fprintf(a.stdout, "#%d sid=%d seq=%d kind=%s fmt=%s", n, f.SID, f.Seq, f.Kind, f.Format)
	if f.Zip != stream.ZipNone {
		fmt.Fprintf(a.stdout, " zip=%s", f.Zip)
	}
	fmt.Fprintf(a.stdout, " len=%s", humanize.Bytes(uint64(len(f.Payload))))
	if f.Final {
		fmt.Fprint(a.stdout, " final")
	}
	fmt.Fprintln(a.stdout)

	v, err := f.Var()
	if err != nil {
		return fmt.Errorf("frame %d: %w", n, err)
	}
	if !v.IsUndefined() {
		fmt.Fprintln(a.stdout, parser.Dumps(v))
	}
	return nil
}
