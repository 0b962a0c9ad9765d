package repair

import (
	"strings"
	"unicode"
)

// booleanOrNullToken pairs the lowercase spelling of a literal with the
// Value it resolves to.
type booleanOrNullToken struct {
	spelling string
	value    Value
}

var booleanOrNullTokens = map[rune]booleanOrNullToken{
	't': {"true", Bool(true)},
	'f': {"false", Bool(false)},
	'n': {"null", Null()},
}

// parseBooleanOrNull matches a case-insensitive true/false/null bareword,
// also accepting common casing variants (True, TRUE, NULL) and a None/none
// bareword as null. It returns ok=false and leaves the cursor untouched if
// the bareword at the cursor isn't a boolean/null literal, so the caller
// can fall back to treating it as a plain string.
//
// A prefix match (e.g. "tr" at end-of-input) only resolves to the literal
// outside strict mode, and only when nothing else could explain the
// dangling bareword: matched here by requiring end-of-input to come right
// after the matched prefix.
func (e *engine) parseBooleanOrNull() (Value, bool) {
	ch, ok := e.cur.peek()
	if !ok {
		return Value{}, false
	}
	token, known := booleanOrNullTokens[unicode.ToLower(ch)]
	if !known {
		return Value{}, false
	}
	if word := e.cur.sliceString(e.cur.index, e.cur.index+4); strings.EqualFold(word, "none") && (word == "none" || !e.ctx.Empty()) {
		if after, ok := e.cur.at(4); !ok || !isAlphaNumeric(after) {
			e.cur.index += 4
			return Null(), true
		}
	}

	start := e.cur.index
	sawUpper := unicode.IsUpper(ch)
	matched := 0
	cur := unicode.ToLower(ch)
	for ok && matched < len(token.spelling) && cur == rune(token.spelling[matched]) {
		matched++
		e.cur.advance()
		ch, ok = e.cur.peek()
		if ok {
			if unicode.IsUpper(ch) {
				sawUpper = true
			}
			cur = unicode.ToLower(ch)
		}
	}

	if matched != len(token.spelling) {
		// Truncated input: a bareword that is a genuine prefix of true/
		// false/null (e.g. "tr" right before EOF) still resolves to the
		// literal outside strict mode, since nothing else explains it.
		if !ok && matched > 0 && !e.strict {
			return token.value, true
		}
		e.cur.index = start
		return Value{}, false
	}
	// A fully-uppercase/mixed-case spelling at the top level (e.g. a
	// stray "TRUE" outside any container) is ambiguous with prose; let
	// the string parser decide instead of committing to the literal.
	if sawUpper && e.ctx.Empty() {
		e.cur.index = start
		return Value{}, false
	}
	return token.value, true
}
