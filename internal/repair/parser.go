package repair

import (
	"io"
	"unicode"
)

// Options configures a single parse. It is the engine-level counterpart of
// the public jsonrepair.Option: the facade package translates its options
// into this struct before calling Parse.
type Options struct {
	Strict       bool
	StreamStable bool
	Logging      bool
	// ChunkRunes sizes the paging window used when the input comes from
	// a file-like reader; 0 selects the default.
	ChunkRunes int
	// MaxDepth bounds container nesting depth; 0 disables the check.
	// The engine is recursive-descent, so pathological nesting could
	// otherwise exhaust the goroutine stack; this is the explicit depth
	// check the design notes call for as an alternative to an iterative
	// work-stack driver.
	MaxDepth int
}

// Result is everything a parse produced.
type Result struct {
	Value Value
	Log   []LogEntry
}

// engine drives a single parse: an explicit struct passed by reference
// through the call chain, rather than a class with mutable fields shared
// implicitly by many methods.
type engine struct {
	cur          *cursor
	ctx          *contextStack
	log          *logSink
	strict       bool
	streamStable bool
	maxDepth     int
	depth        int
}

func newEngine(buf *runeBuffer, opts Options) *engine {
	return &engine{
		cur:          newCursor(buf),
		ctx:          newContextStack(),
		log:          newLogSink(opts.Logging),
		strict:       opts.Strict,
		streamStable: opts.StreamStable,
		maxDepth:     opts.MaxDepth,
	}
}

// Parse repairs and parses s, returning the recovered value tree.
func Parse(s string, opts Options) (Result, error) {
	e := newEngine(newMemoryBuffer(s), opts)
	return e.run()
}

// ParseReader is Parse for a streaming/file-backed source: r is paged in
// chunks rather than read fully into memory up front.
func ParseReader(r io.Reader, opts Options) (Result, error) {
	e := newEngine(newFileBuffer(r, opts.ChunkRunes), opts)
	return e.run()
}

// run is the top-level driver: it produces the first value, and if input
// remains afterward, keeps parsing until EOF, assembling either a single
// value, an array of top-level values, or (with StreamStable) discarding
// everything after the first complete value.
func (e *engine) run() (Result, error) {
	first, err := e.parseValue()
	if err != nil {
		return Result{}, err
	}

	if e.cur.exhausted() {
		return Result{Value: first, Log: e.log.Entries()}, nil
	}

	e.log.record(e.cur, "The parser returned early, checking if there's more JSON elements")
	if e.streamStable {
		return Result{Value: first, Log: e.log.Entries()}, nil
	}

	values := []Value{first}
	for !e.cur.exhausted() {
		e.ctx = newContextStack()
		next, err := e.parseValue()
		if err != nil {
			return Result{}, err
		}
		if isTruthy(next) {
			if len(values) > 0 && isSameValue(values[len(values)-1], next) {
				values = values[:len(values)-1]
			} else if len(values) > 0 && !isTruthy(values[len(values)-1]) {
				values = values[:len(values)-1]
			}
			values = append(values, next)
		} else {
			if len(values) > 1 {
				if e.cur.exhausted() {
					break
				}
				values = values[:len(values)-1]
				e.cur.index = e.cur.buf.length()
				break
			}
			e.cur.advance()
		}
	}

	if len(values) == 1 {
		e.log.record(e.cur, "There were no more elements, returning the single value without wrapping it in an array")
		return Result{Value: values[0], Log: e.log.Entries()}, nil
	}
	if e.strict {
		return Result{}, strictErr(e.cur, "multiple top-level JSON values found")
	}
	return Result{Value: Array(values), Log: e.log.Entries()}, nil
}

// parseValue is the top-level dispatcher: it skips whitespace/comments,
// peeks the next rune, and routes to whichever sub-parser owns that lead
// character, per the table in the component design.
func (e *engine) parseValue() (Value, error) {
	if e.maxDepth > 0 && e.ctx.depth() > e.maxDepth {
		return Value{}, strictErr(e.cur, "maximum nesting depth exceeded")
	}
	for {
		ch, ok := e.cur.peek()
		if !ok {
			return String(""), nil
		}

		switch {
		case ch == '{':
			e.cur.advance()
			return e.parseObject()
		case ch == '[':
			e.cur.advance()
			return e.parseArray()
		case !e.ctx.Empty() && (isQuote(ch) || unicode.IsLetter(ch)):
			return e.parseString()
		case !e.ctx.Empty() && (unicode.IsDigit(ch) || ch == '-' || ch == '.'):
			return e.parseNumber()
		case e.ctx.Empty() && (unicode.IsDigit(ch) || ch == '-' || ch == '.'):
			if e.cur.onlyWhitespaceBefore() {
				return e.parseNumber()
			}
		case ch == '#' || ch == '/':
			return e.skipComment()
		case !e.ctx.Empty() && (ch == 't' || ch == 'f' || ch == 'n'):
			if value, ok := e.parseBooleanOrNull(); ok {
				return value, nil
			}
			return e.parseString()
		case e.ctx.Empty() && (ch == 't' || ch == 'f' || ch == 'n'):
			if e.cur.onlyWhitespaceBefore() {
				if value, ok := e.parseBooleanOrNull(); ok {
					return value, nil
				}
			}
		case e.ctx.Empty() && ch == ':':
			return String(""), nil
		}

		// Anything else at this position is prose that doesn't look like
		// JSON at all (stray punctuation, a leading sentence before the
		// first '{'/'['); skip one rune and keep looking.
		e.cur.advance()
	}
}

func isTruthy(v Value) bool {
	switch v.Kind() {
	case KindString:
		return v.Str() != ""
	case KindArray:
		return len(v.Items()) > 0
	case KindObject:
		return v.Obj().Len() > 0
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Number().String() != ""
	case KindNull:
		return false
	default:
		return true
	}
}

func isSameValue(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindObject:
		oa, ob := a.Obj(), b.Obj()
		if oa.Len() != ob.Len() {
			return false
		}
		same := true
		oa.Range(func(key string, v Value) bool {
			ov, ok := ob.Get(key)
			if !ok || !isSameValue(v, ov) {
				same = false
				return false
			}
			return true
		})
		return same
	case KindArray:
		ia, ib := a.Items(), b.Items()
		if len(ia) != len(ib) {
			return false
		}
		for i := range ia {
			if !isSameValue(ia[i], ib[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
