// Command jsonrepair repairs malformed JSON read from a file or stdin and
// writes the recovered, well-formed JSON to stdout, a file, or back onto
// the input file itself.
package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/charmbracelet/jsonrepair"
	"github.com/charmbracelet/jsonrepair/internal/clierrors"
)

// cli defines the command-line interface.
var cli struct {
	File        string `arg:"" optional:"" help:"File to repair. Reads standard input if omitted." type:"existingfile"`
	Inline      bool   `help:"Rewrite the input file in place instead of printing to stdout." name:"inline"`
	Output      string `help:"Write the repaired JSON to this path instead of stdout." name:"output" type:"path"`
	EnsureASCII bool   `help:"Escape non-ASCII characters in the output." name:"ensure-ascii"`
	Indent      int    `help:"Indent the output by this many spaces per level." name:"indent" default:"0"`
	Strict      bool   `help:"Fail instead of repairing; report the first anomaly found." name:"strict"`
	Debug       bool   `help:"Enable debug-level logging." name:"debug"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("jsonrepair"),
		kong.Description("Repair malformed JSON and print well-formed JSON."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		log.SetLevel(log.DebugLevel)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := run(); err != nil {
		log.Error(err.Error())
		os.Exit(clierrors.ExitCode(err))
	}
}

func run() error {
	input, err := readInput()
	if err != nil {
		return err
	}

	opts := buildOptions()
	output, err := jsonrepair.Repair(input, opts...)
	if err != nil {
		var strictErr *jsonrepair.StrictModeError
		if errors.As(err, &strictErr) {
			return clierrors.NewStrictError("refusing to repair in strict mode", strictErr)
		}
		return clierrors.NewInputError("failed to repair input", err)
	}

	return writeOutput(output)
}

func buildOptions() []jsonrepair.Option {
	var opts []jsonrepair.Option
	if cli.Strict {
		opts = append(opts, jsonrepair.WithStrict())
	}
	if cli.EnsureASCII {
		opts = append(opts, jsonrepair.WithEnsureASCII())
	}
	if cli.Indent > 0 {
		opts = append(opts, jsonrepair.WithIndent(cli.Indent))
	}
	return opts
}

func readInput() (string, error) {
	if cli.File == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", clierrors.NewInputError("failed to read standard input", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(cli.File)
	if err != nil {
		return "", clierrors.NewInputError("failed to read "+cli.File, err)
	}
	return string(data), nil
}

// writeOutput honors --inline (atomic rewrite of the input file),
// --output (write to a named path), or falls back to stdout.
func writeOutput(output string) error {
	switch {
	case cli.Inline:
		if cli.File == "" {
			return clierrors.NewOutputError("--inline requires a file argument", nil)
		}
		return writeInline(cli.File, output)
	case cli.Output != "":
		if err := os.WriteFile(cli.Output, []byte(output), 0o644); err != nil {
			return clierrors.NewOutputError("failed to write "+cli.Output, err)
		}
		return nil
	default:
		if _, err := os.Stdout.WriteString(output + "\n"); err != nil {
			return clierrors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}
}

// writeInline rewrites path atomically: the new content lands in a temp
// file in the same directory, then renames over the original, so a crash
// midway never leaves a half-written file in its place.
func writeInline(path, output string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonrepair-*")
	if err != nil {
		return clierrors.NewOutputError("failed to create temp file for "+path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(output); err != nil {
		tmp.Close()
		return clierrors.NewOutputError("failed to write temp file for "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return clierrors.NewOutputError("failed to close temp file for "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return clierrors.NewOutputError("failed to rewrite "+path, err)
	}
	return nil
}
