// Package jsonrepair decodes JSON that large language models frequently
// get slightly wrong: unbalanced brackets, unterminated strings, single
// quotes where JSON wants double quotes, stray prose wrapped around the
// payload, trailing commas, comments, concatenated top-level values, and
// truncated numbers. Valid JSON passes through unchanged.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/jsonrepair/internal/jsonext"
	"github.com/charmbracelet/jsonrepair/internal/repair"
)

// Value is the recovered value tree: null, bool, number, string, array, or
// object (insertion-order preserved). See Kind for the variant tag.
type Value = repair.Value

// Kind tags the variant held by a Value.
type Kind = repair.Kind

// Object is an ordered string-keyed map, as produced inside a Value tree.
type Object = repair.Object

// Number preserves a JSON number's original lexical form.
type Number = repair.Number

// LogEntry records one repair the engine performed.
type LogEntry = repair.LogEntry

// StrictModeError is returned when WithStrict is set and the input
// requires a repair; it carries the rune offset where the problem was
// detected.
type StrictModeError = repair.StrictModeError

const (
	KindNull   = repair.KindNull
	KindBool   = repair.KindBool
	KindNumber = repair.KindNumber
	KindString = repair.KindString
	KindArray  = repair.KindArray
	KindObject = repair.KindObject
)

// options collects what the functional Option values configure.
type options struct {
	skipInitialValidation bool
	strict                bool
	streamStable          bool
	ensureASCII           bool
	indent                int
	logging               bool
	maxDepth              int
	chunkRunes            int
}

// Option configures a single call to Repair, RepairToValue, or LoadFile.
type Option func(*options)

// WithSkipInitialValidation disables the fast path that first attempts a
// conformant JSON decode of the whole input.
func WithSkipInitialValidation() Option {
	return func(o *options) { o.skipInitialValidation = true }
}

// WithStrict turns every repair the engine would otherwise log into a
// fatal *StrictModeError.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// WithStreamStable returns only the first complete top-level value when
// more than one is present, so repeated parses of a growing stream
// converge instead of oscillating between a bare value and an array.
func WithStreamStable() Option {
	return func(o *options) { o.streamStable = true }
}

// WithEnsureASCII escapes every rune above U+007F in serialized output.
func WithEnsureASCII() Option {
	return func(o *options) { o.ensureASCII = true }
}

// WithIndent pretty-prints serialized output using n spaces per nesting
// level. n <= 0 produces the compact form.
func WithIndent(n int) Option {
	return func(o *options) { o.indent = n }
}

// WithLogging records every repair performed; retrieve the log with
// RepairWithLog or ValueWithLog.
func WithLogging() Option {
	return func(o *options) { o.logging = true }
}

// WithMaxDepth bounds container nesting depth. Zero (the default) leaves
// the depth unbounded.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithChunkRunes sets the paging window used when reading from a file via
// LoadFile. Zero selects the engine's default.
func WithChunkRunes(n int) Option {
	return func(o *options) { o.chunkRunes = n }
}

func resolve(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) engineOptions() repair.Options {
	return repair.Options{
		Strict:       o.strict,
		StreamStable: o.streamStable,
		Logging:      o.logging,
		ChunkRunes:   o.chunkRunes,
		MaxDepth:     o.maxDepth,
	}
}

func (o options) serializeOptions() repair.SerializeOptions {
	indent := ""
	if o.indent > 0 {
		indent = fmtRepeat(' ', o.indent)
	}
	return repair.SerializeOptions{EnsureASCII: o.ensureASCII, Indent: indent}
}

func fmtRepeat(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

// Repair returns input re-serialized as well-formed JSON text, recovering
// from whatever malformations it can. Valid input is returned unchanged
// (modulo the requested serialization options) without invoking the
// repair engine, unless WithSkipInitialValidation is set.
func Repair(input string, opts ...Option) (string, error) {
	o := resolve(opts)
	if !o.skipInitialValidation && jsonext.IsValidJSON(input) {
		return reserializeConformant(input, o)
	}
	value, _, err := parse(input, o)
	if err != nil {
		return "", err
	}
	return repair.Serialize(value, o.serializeOptions()), nil
}

// RepairWithLog is Repair, additionally returning the list of repairs
// performed. The log is empty whenever the fast path was taken.
func RepairWithLog(input string, opts ...Option) (string, []LogEntry, error) {
	o := resolve(opts)
	o.logging = true
	if !o.skipInitialValidation && jsonext.IsValidJSON(input) {
		text, err := reserializeConformant(input, o)
		return text, nil, err
	}
	value, log, err := parse(input, o)
	if err != nil {
		return "", nil, err
	}
	return repair.Serialize(value, o.serializeOptions()), log, nil
}

// RepairToValue is Repair, returning the recovered value tree directly
// instead of serializing it back to text.
func RepairToValue(input string, opts ...Option) (Value, error) {
	o := resolve(opts)
	if !o.skipInitialValidation && jsonext.IsValidJSON(input) {
		return decodeConformant(input)
	}
	value, _, err := parse(input, o)
	return value, err
}

// ValueWithLog is RepairToValue, additionally returning the repair log.
func ValueWithLog(input string, opts ...Option) (Value, []LogEntry, error) {
	o := resolve(opts)
	o.logging = true
	if !o.skipInitialValidation && jsonext.IsValidJSON(input) {
		v, err := decodeConformant(input)
		return v, nil, err
	}
	return parse(input, o)
}

// LoadFile repairs and decodes the file at path, paging it in chunks
// rather than reading it fully into memory. I/O errors propagate
// uncaught, as specified.
func LoadFile(path string, opts ...Option) (Value, error) {
	o := resolve(opts)
	f, err := os.Open(path)
	if err != nil {
		return Value{}, fmt.Errorf("jsonrepair: open %s: %w", path, err)
	}
	defer f.Close()

	result, err := repair.ParseReader(f, o.engineOptions())
	if err != nil {
		return Value{}, err
	}
	return result.Value, nil
}

func parse(input string, o options) (Value, []LogEntry, error) {
	result, err := repair.Parse(input, o.engineOptions())
	if err != nil {
		return Value{}, nil, err
	}
	return result.Value, result.Log, nil
}

// reserializeConformant decodes input with the standard library and
// serializes it back out under the requested options, so Repair's output
// honors WithIndent/WithEnsureASCII even on the fast path.
func reserializeConformant(input string, o options) (string, error) {
	if o.indent == 0 && !o.ensureASCII {
		return input, nil
	}
	value, err := decodeConformant(input)
	if err != nil {
		return "", err
	}
	return repair.Serialize(value, o.serializeOptions()), nil
}

// decodeConformant decodes input token-by-token rather than into
// map[string]any, since the standard decoder's map does not preserve key
// order and the Value tree's Object invariant requires it.
func decodeConformant(input string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	value, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("jsonrepair: decode conformant input: %w", err)
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return repair.Null(), nil
	case bool:
		return repair.Bool(t), nil
	case json.Number:
		return repair.NumberValue(repair.NewNumber(t.String())), nil
	case string:
		return repair.String(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			if items == nil {
				items = []Value{}
			}
			return repair.Array(items), nil
		case '{':
			obj := repair.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := keyTok.(string)
				value, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, value)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return repair.ObjectValue(obj), nil
		}
	}
	return Value{}, fmt.Errorf("jsonrepair: unexpected token %v", tok)
}
