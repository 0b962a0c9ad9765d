package repair

import (
	"strconv"
	"strings"
	"unicode"
)

// numberChars is the set of runes the number parser will greedily consume,
// including characters that only make sense as a repair target: ',' (a
// thousands separator), '/' (seen in malformed fraction-like output) and
// '_' (a digit-group separator some LLMs emit, silently dropped).
const numberChars = "0123456789-.eE/,_"

// parseNumber accepts an optional sign, a run of digits, an optional
// fractional part, and an optional exponent, tolerating a handful of
// LLM-shaped corruptions: thousands-separator commas and a trailing bare
// decimal point. A leading '+' never reaches it: the dispatcher skips the
// '+' and enters here at the digits.
func (e *engine) parseNumber() (Value, error) {
	var raw strings.Builder
	ch, ok := e.cur.peek()
	isArray := e.ctx.is(InArray)

	for ok && strings.ContainsRune(numberChars, ch) &&
		(!isArray || ch != ',' || strings.Contains(raw.String(), "/")) {
		if ch != '_' {
			raw.WriteRune(ch)
		}
		e.cur.advance()
		ch, ok = e.cur.peek()
	}

	numberStr := raw.String()

	// A number immediately followed by a letter is backed off: the
	// digits themselves are handed to the string parser as part of a
	// larger bareword (e.g. "123abc" or a truncated unit suffix).
	if next, ok := e.cur.peek(); ok && unicode.IsLetter(next) {
		e.cur.index -= len([]rune(numberStr))
		return e.parseString()
	}

	if len(numberStr) > 0 {
		switch numberStr[len(numberStr)-1] {
		case '-', 'e', 'E', '/', ',':
			numberStr = numberStr[:len(numberStr)-1]
			e.cur.index--
		}
	}

	if strings.Contains(numberStr, "/") {
		// A slash never belongs in a numeral ("3/4", "2023/01/01"); unlike
		// a thousands-separator comma it isn't something to strip and
		// reassemble into digits, so the run is kept verbatim as a string.
		return String(numberStr), nil
	}

	if strings.Contains(numberStr, ",") {
		if numberStr == "-" {
			return String(""), nil
		}
		e.log.record(e.cur, "While parsing a number we found a thousands separator, stripping it")
		return e.finalizeNumber(strings.ReplaceAll(numberStr, ",", ""))
	}

	if numberStr == "" {
		return String(""), nil
	}

	return e.finalizeNumber(numberStr)
}

// finalizeNumber converts a cleaned-up numeral string into a Value,
// normalizing a trailing bare decimal point ("12." -> "12") and floats
// that carry a fraction or exponent.
func (e *engine) finalizeNumber(numberStr string) (Value, error) {
	numberStr = strings.TrimSuffix(numberStr, ".")
	if numberStr == "" || numberStr == "-" {
		return String(""), nil
	}
	// A bare leading decimal point ("." / "-.") is valid as far as
	// strconv.ParseFloat is concerned but isn't valid JSON; prepend the
	// implicit zero so the numeral round-trips as conformant output.
	switch {
	case strings.HasPrefix(numberStr, "."):
		numberStr = "0" + numberStr
	case strings.HasPrefix(numberStr, "-."):
		numberStr = "-0" + numberStr[1:]
	}
	if strings.ContainsAny(numberStr, ".eE") {
		if _, err := strconv.ParseFloat(numberStr, 64); err != nil {
			return String(numberStr), nil
		}
	} else if _, err := strconv.ParseInt(numberStr, 10, 64); err != nil {
		// Overflows native 64-bit range: keep the literal verbatim so
		// round-tripping doesn't lose digits.
		if _, ferr := strconv.ParseFloat(numberStr, 64); ferr != nil {
			return String(numberStr), nil
		}
	}
	return NumberValue(NewNumber(numberStr)), nil
}
