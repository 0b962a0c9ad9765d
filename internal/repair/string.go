package repair

import (
	"strconv"
	"strings"
	"unicode"
)

// parseString is the densest part of the engine: it chooses an opening
// quote (or decides there isn't one and the run is a bareword), reads
// until a matching closer or an implicit structural boundary, decodes
// backslash escapes, and applies a long tail of LLM-shaped recoveries for
// misplaced, missing, or doubled quotes. See the component design for the
// rationale behind each one; the heuristics are ordered exactly as
// observed in the reference implementation, since their relative priority
// is not fully specified in prose.
func (e *engine) parseString() (Value, error) {
	missingQuotes := false
	doubledQuotes := false
	ldelim := rune('"')
	rdelim := rune('"')

	ch, ok := e.cur.peek()
	if ok && (ch == '#' || ch == '/') {
		return e.skipComment()
	}
	for ok && !isQuote(ch) && !isAlphaNumeric(ch) {
		e.cur.advance()
		ch, ok = e.cur.peek()
	}
	if !ok {
		return String(""), nil
	}

	switch {
	case isQuote(ch):
		if ch != '"' && e.strict {
			return Value{}, strictErr(e.cur, "string opened with a non-standard quote")
		}
		ldelim, rdelim = ch, closingFor(ch)
	case isAlphaNumeric(ch):
		curPos, hasCur := e.ctx.current()
		notKeyPos := !hasCur || curPos != ObjectKey
		lower := unicode.ToLower(ch)
		if (lower == 't' || lower == 'f' || lower == 'n') && notKeyPos {
			if value, ok := e.parseBooleanOrNull(); ok {
				return value, nil
			}
		}
		e.log.record(e.cur, "While parsing a string, we found a literal instead of a quote")
		if e.strict {
			return Value{}, strictErr(e.cur, "expected a quote but found a bare literal")
		}
		missingQuotes = true
	}

	if !missingQuotes {
		e.cur.advance()
	}

	if next, ok := e.cur.peek(); ok && next == '`' {
		if value, handled := e.parseFencedBlock(); handled {
			return value, nil
		}
		if e.ctx.Empty() {
			return String(""), nil
		}
		e.log.record(e.cur, "While parsing a string, we found code fences that didn't enclose valid JSON; continuing as a string")
	}

	if next, ok := e.cur.peek(); ok && next == ldelim {
		if e.leadingDelimiterIsStructural(ldelim) {
			e.cur.advance()
			return String(""), nil
		}
		if cur, hasCur := e.ctx.current(); hasCur && cur == ObjectKey {
			i := e.cur.scrollWhitespace(1)
			if c, ok := e.cur.at(i); ok && c == ':' {
				e.cur.advance()
				return String(""), nil
			}
		}
		if next2, ok := e.cur.at(1); ok && next2 == ldelim {
			e.log.record(e.cur, "While parsing a string, we found a doubled quote followed by another quote; ignoring it")
			if e.strict {
				return Value{}, strictErr(e.cur, "doubled quote followed by another quote")
			}
			return String(""), nil
		}
		i := e.cur.skipToCharacter(rdelim, 1)
		if next, ok := e.cur.at(i + 1); ok && next == rdelim {
			e.log.record(e.cur, "While parsing a string, we found a valid starting doubled quote")
			doubledQuotes = true
			e.cur.advance()
		} else {
			i = e.cur.scrollWhitespace(1)
			next, ok := e.cur.at(i)
			if ok && (isQuote(next) || next == '{' || next == '[') {
				e.log.record(e.cur, "While parsing a string, we found a doubled quote but also another quote afterward; ignoring it")
				if e.strict {
					return Value{}, strictErr(e.cur, "doubled quote followed by another quote")
				}
				e.cur.advance()
				return String(""), nil
			}
			if !ok || (next != ',' && next != ']' && next != '}') {
				e.log.record(e.cur, "While parsing a string, we found a doubled quote that was a mistake; removing one")
				e.cur.advance()
			}
		}
	}

	acc := make([]rune, 0, 16)
	ch, ok = e.cur.peek()
	unmatchedDelimiter := false

	for ok && ch != rdelim {
		if stop := e.stringShouldStopForMissingQuotes(missingQuotes, ch); stop {
			break
		}
		if !e.streamStable && e.ctx.is(InObjectValue) {
			if done, brk := e.checkMissingValueCloser(&acc, ch, ldelim, rdelim); done {
				if brk {
					break
				}
			}
		}
		if !e.streamStable && e.ctx.contains(InArray) && ch == ']' {
			i := e.cur.skipToCharacter(rdelim, 0)
			if _, ok := e.cur.at(i); !ok {
				break
			}
		}
		if e.ctx.is(InObjectValue) && ch == '}' {
			if e.closesBeforeFence() {
				break
			}
			if _, ok := e.cur.at(e.cur.scrollWhitespace(1)); !ok {
				e.log.record(e.cur, "While parsing a string in object-value context, we found a } that closes the object; stopping here")
				break
			}
		}

		acc = append(acc, ch)
		e.cur.advance()
		ch, ok = e.cur.peek()
		if !ok {
			if e.streamStable && len(acc) > 0 && acc[len(acc)-1] == '\\' {
				acc = acc[:len(acc)-1]
			}
			break
		}

		if len(acc) > 0 && acc[len(acc)-1] == '\\' {
			if handled, cont := e.normalizeEscape(&acc, &ch, &ok, rdelim); handled {
				if cont {
					continue
				}
			}
		}

		if ch == ':' && !missingQuotes && e.ctx.is(ObjectKey) {
			if stop := e.keyMissingRightDelimiter(ldelim, rdelim); stop {
				break
			}
		}

		if ch == rdelim && (len(acc) == 0 || acc[len(acc)-1] != '\\') {
			brk, cont := e.handleClosingDelimiter(&acc, &ch, &ok, &doubledQuotes, &missingQuotes, &unmatchedDelimiter, ldelim, rdelim)
			if brk {
				break
			}
			if cont {
				continue
			}
		}
	}

	if ok && missingQuotes && e.ctx.is(ObjectKey) && unicode.IsSpace(ch) {
		e.log.record(e.cur, "While parsing a string, handling a corner case where a comment stands in for a value; invalidating the string")
		e.cur.skipWhitespace()
		if next, ok := e.cur.peek(); ok {
			if next != ':' && next != ',' {
				e.cur.index--
				return String(""), nil
			}
			if next == ',' {
				e.cur.index--
				return String(""), nil
			}
		}
	}

	if missingQuotes && e.ctx.is(ObjectKey) {
		if !e.cur.onlyWhitespaceUntil(e.cur.scrollWhitespace(0)) {
			acc = trimTrailingSpace(acc)
			if len(acc) == 0 {
				return String(""), nil
			}
		}
	}

	if !ok || ch != rdelim {
		if !e.streamStable {
			e.log.record(e.cur, "While parsing a string, we missed the closing quote; ignoring it")
			acc = trimTrailingSpace(acc)
		}
	} else {
		e.cur.advance()
	}

	if !e.streamStable && (missingQuotes || (len(acc) > 0 && acc[len(acc)-1] == '\n')) {
		acc = trimTrailingSpace(acc)
	}

	if missingQuotes && e.ctx.Empty() {
		next := e.cur.scrollWhitespace(0)
		if c, ok := e.cur.at(next); ok && (c == '{' || c == '[' || c == '`') {
			return String(""), nil
		}
		if !e.streamStable {
			acc = trimTrailingSpace(acc)
		}
		if len(acc) == 0 {
			return String(""), nil
		}
	}

	if e.ctx.Empty() {
		next := e.cur.scrollWhitespace(0)
		if c, ok := e.cur.at(next); ok && (c == '{' || c == '[' || c == '`') {
			return String(""), nil
		}
	}

	if len(acc) == 1 && acc[0] == rdelim {
		return String(""), nil
	}
	if e.ctx.Empty() && missingQuotes && len(acc) == 1 && acc[0] == '"' {
		return String(""), nil
	}

	return numberBarewordOrString(acc, missingQuotes), nil
}

// numberBarewordOrString classifies a bareword run that wasn't explicitly
// quoted: an all-digit run (optional sign/decimal/exponent) becomes a
// number, not a string, per the "numbers in strings" rule; anything else
// stays a string.
func numberBarewordOrString(acc []rune, missingQuotes bool) Value {
	s := string(acc)
	if missingQuotes && looksLikeBareNumber(s) {
		return NumberValue(NewNumber(s))
	}
	return String(s)
}

func looksLikeBareNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return false
		}
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

// leadingDelimiterIsStructural reports whether the quote sitting right at
// the cursor is actually closing the *current* container rather than
// opening a new (empty) string: an object key position immediately
// followed by ':', an object value immediately followed by ',' or '}', or
// an array element immediately followed by ',' or ']'.
func (e *engine) leadingDelimiterIsStructural(ldelim rune) bool {
	cur, ok := e.ctx.current()
	if !ok {
		return false
	}
	switch cur {
	case ObjectKey:
		if next, ok := e.cur.at(1); ok && next == ':' {
			return true
		}
	case InObjectValue:
		if next, ok := e.cur.at(1); ok && (next == ',' || next == '}') {
			return true
		}
	case InArray:
		if next, ok := e.cur.at(1); ok && (next == ',' || next == ']') {
			return true
		}
	}
	return false
}

// stringShouldStopForMissingQuotes implements the two boundary rules for a
// bareword string (one with no opening quote at all): a colon or
// whitespace ends an object key, and ']'/',' ends an array element.
func (e *engine) stringShouldStopForMissingQuotes(missingQuotes bool, ch rune) bool {
	if !missingQuotes {
		return false
	}
	if e.ctx.is(ObjectKey) && (ch == ':' || unicode.IsSpace(ch)) {
		e.log.record(e.cur, "While parsing a string missing its left delimiter in key position, we found a : or space; stopping here")
		return true
	}
	if e.ctx.is(InArray) && (ch == ']' || ch == ',') {
		e.log.record(e.cur, "While parsing a string missing its left delimiter in array position, we found a ] or ,; stopping here")
		return true
	}
	return false
}

// checkMissingValueCloser implements the "does this comma/brace actually
// close the surrounding object, or is the closing quote just missing"
// lookahead used when the parser sits in ObjectValue context.
func (e *engine) checkMissingValueCloser(acc *[]rune, ch rune, ldelim, rdelim rune) (handled, shouldBreak bool) {
	if (ch != ',' && ch != '}') || (len(*acc) > 0 && (*acc)[len(*acc)-1] == rdelim) {
		return false, false
	}
	missing := true
	e.cur.skipWhitespace()
	if next, ok := e.cur.at(1); ok && next == '\\' {
		missing = false
	}
	i := e.cur.skipToCharacter(rdelim, 1)
	if _, ok := e.cur.at(i); ok {
		i++
		i = e.cur.scrollWhitespace(i)
		next, _ := e.cur.at(i)
		if next == ',' || next == '}' {
			missing = false
		} else {
			i = e.cur.skipToCharacter(ldelim, i)
			if _, ok := e.cur.at(i); !ok {
				missing = false
			} else {
				i = e.cur.scrollWhitespace(i + 1)
				next, _ = e.cur.at(i)
				if next != ':' {
					missing = false
				}
			}
		}
	} else {
		i = e.cur.skipToCharacter(':', 1)
		if _, ok := e.cur.at(i); ok {
			return true, true
		}
		i = e.cur.scrollWhitespace(1)
		j := e.cur.skipToCharacter('}', i)
		if j-i > 1 {
			missing = false
		} else if _, ok := e.cur.at(j); ok {
			for k := len(*acc) - 1; k >= 0; k-- {
				if (*acc)[k] == '{' {
					missing = false
					break
				}
			}
		}
	}
	if missing {
		e.log.record(e.cur, "While parsing a string missing its left delimiter in value position, we found a , or } with no right delimiter in sight; stopping here")
		return true, true
	}
	return true, false
}

// closesBeforeFence reports whether a '}' the string parser is looking at
// actually closes the surrounding object right before a code fence, in
// which case the string itself should end here too.
func (e *engine) closesBeforeFence() bool {
	i := e.cur.scrollWhitespace(1)
	next, ok := e.cur.at(i)
	if !ok || next != '`' {
		return false
	}
	c1, ok := e.cur.at(i + 1)
	if !ok || c1 != '`' {
		return false
	}
	c2, ok := e.cur.at(i + 2)
	if !ok || c2 != '`' {
		return false
	}
	e.log.record(e.cur, "While parsing a string in object-value context, we found a } that closes the object before code fences; stopping here")
	return true
}

// normalizeEscape handles a stray backslash the accumulator just consumed:
// a recognized single-character escape is decoded in place, and a \u/\x
// escape is decoded if it's followed by enough valid hex digits.
func (e *engine) normalizeEscape(acc *[]rune, ch *rune, ok *bool, rdelim rune) (handled, shouldContinue bool) {
	escapeSeqs := map[rune]rune{'t': '\t', 'n': '\n', 'r': '\r', 'b': '\b'}
	if *ch == rdelim || *ch == 't' || *ch == 'n' || *ch == 'r' || *ch == 'b' || *ch == '\\' {
		e.log.record(e.cur, "Found a stray escape sequence, normalizing it")
		*acc = (*acc)[:len(*acc)-1]
		if replacement, known := escapeSeqs[*ch]; known {
			*acc = append(*acc, replacement)
		} else {
			*acc = append(*acc, *ch)
		}
		e.cur.advance()
		*ch, *ok = e.cur.peek()
		for *ok && len(*acc) > 0 && (*acc)[len(*acc)-1] == '\\' && (*ch == rdelim || *ch == '\\') {
			*acc = append((*acc)[:len(*acc)-1], *ch)
			e.cur.advance()
			*ch, *ok = e.cur.peek()
		}
		return true, true
	}
	if *ch == 'u' || *ch == 'x' {
		numChars := 4
		if *ch == 'x' {
			numChars = 2
		}
		nextChars := e.cur.sliceRunes(e.cur.index+1, e.cur.index+1+numChars)
		if len(nextChars) == numChars && isHexRunes(nextChars) {
			e.log.record(e.cur, "Found a unicode escape sequence, normalizing it")
			parsed, _ := strconv.ParseInt(string(nextChars), 16, 32)
			*acc = append((*acc)[:len(*acc)-1], rune(parsed))
			e.cur.index += 1 + numChars
			*ch, *ok = e.cur.peek()
			return true, true
		}
	} else if isQuote(*ch) && *ch != rdelim {
		e.log.record(e.cur, "Found a delimiter that was escaped but shouldn't have been; removing the escape")
		*acc = append((*acc)[:len(*acc)-1], *ch)
		e.cur.advance()
		*ch, *ok = e.cur.peek()
		return true, true
	}
	return false, false
}

// keyMissingRightDelimiter checks, upon encountering a ':' mid-key without
// having seen the closing quote yet, whether the true key/value structure
// actually lies further ahead (meaning the ':' we're looking at belongs to
// a nested value, not our own closing boundary).
func (e *engine) keyMissingRightDelimiter(ldelim, rdelim rune) bool {
	i := e.cur.skipToCharacter(ldelim, 1)
	if _, ok := e.cur.at(i); ok {
		i++
		i = e.cur.skipToCharacter(rdelim, i)
		if _, ok := e.cur.at(i); ok {
			i++
			i = e.cur.scrollWhitespace(i)
			if ch, ok := e.cur.at(i); ok && (ch == ',' || ch == '}') {
				e.log.record(e.cur, "While parsing a string missing its right delimiter in key position, we found a "+string(ch)+"; stopping here")
				return true
			}
		}
	} else {
		e.log.record(e.cur, "While parsing a string missing its right delimiter in key position, we found a :; stopping here")
		return true
	}
	return false
}

// handleClosingDelimiter is reached once the loop has found a rune equal
// to rdelim that isn't escaped; it decides whether that rune truly closes
// the string, or is itself a misplaced quote that should be absorbed into
// the string content (the densest of the disambiguation heuristics).
func (e *engine) handleClosingDelimiter(
	acc *[]rune, ch *rune, ok *bool,
	doubledQuotes, missingQuotes, unmatchedDelimiter *bool,
	ldelim, rdelim rune,
) (shouldBreak, shouldContinue bool) {
	switch {
	case *doubledQuotes:
		if next, ok := e.cur.at(1); ok && next == rdelim {
			e.log.record(e.cur, "While parsing a string, we found a doubled quote; ignoring it")
			e.cur.advance()
		}
		return false, false

	case *missingQuotes && e.ctx.is(InObjectValue):
		i := 1
		next, ok := e.cur.at(i)
		for ok && next != rdelim && next != ldelim {
			i++
			next, ok = e.cur.at(i)
		}
		if ok {
			i++
			i = e.cur.scrollWhitespace(i)
			if c, ok := e.cur.at(i); ok && c == ':' {
				e.cur.index--
				*ch, _ = e.cur.peek()
				e.log.record(e.cur, "In a string with missing quotes in value position, we found the start of the next key; stopping here")
				return true, false
			}
		}
		return false, false

	case *unmatchedDelimiter:
		*unmatchedDelimiter = false
		*acc = append(*acc, *ch)
		e.cur.advance()
		*ch, *ok = e.cur.peek()
		return !*ok, *ok

	default:
		return e.disambiguateClosingQuote(acc, ch, ok, unmatchedDelimiter, ldelim, rdelim)
	}
}

// disambiguateClosingQuote is the default case of handleClosingDelimiter:
// the rune at the cursor matches rdelim, and we don't yet know whether
// it's our closer or a quote that belongs inside the string (e.g. an
// apostrophe, or a quoted phrase embedded in unquoted prose).
func (e *engine) disambiguateClosingQuote(
	acc *[]rune, ch *rune, ok *bool, unmatchedDelimiter *bool, ldelim, rdelim rune,
) (shouldBreak, shouldContinue bool) {
	i := 1
	next, nok := e.cur.at(i)
	checkComma := true
	for nok && next != rdelim && next != ldelim {
		if checkComma && unicode.IsLetter(next) {
			checkComma = false
		}
		if (e.ctx.contains(ObjectKey) && (next == ':' || next == '}')) ||
			(e.ctx.contains(InObjectValue) && next == '}') ||
			(e.ctx.contains(InArray) && (next == ']' || next == ',')) ||
			(checkComma && e.ctx.is(InObjectValue) && next == ',') {
			break
		}
		i++
		next, nok = e.cur.at(i)
	}

	if next == ',' && e.ctx.is(InObjectValue) {
		i++
		i = e.cur.skipToCharacter(rdelim, i)
		i++
		i = e.cur.scrollWhitespace(i)
		next, _ = e.cur.at(i)
		if next == '}' || next == ',' {
			e.log.record(e.cur, "While parsing a string, we found a misplaced quote with a different meaning here; ignoring it")
			*acc = append(*acc, *ch)
			e.cur.advance()
			*ch, *ok = e.cur.peek()
			return !*ok, *ok
		}
		return false, false
	}

	if next != rdelim {
		return false, false
	}
	prev, pok := e.cur.at(i - 1)
	if !pok || prev == '\\' {
		return false, false
	}
	if e.cur.onlyWhitespaceUntil(i) {
		return true, false
	}

	switch {
	case e.ctx.is(InObjectValue):
		return e.disambiguateInObjectValue(acc, ch, ok, unmatchedDelimiter, i, ldelim, rdelim)
	case e.ctx.is(InArray):
		return e.disambiguateInArray(acc, ch, ok, unmatchedDelimiter, next, i)
	case e.ctx.is(ObjectKey):
		e.log.record(e.cur, "While parsing a string in key position, we found a quoted section with a different meaning here; ignoring it")
		*acc = append(*acc, *ch)
		e.cur.advance()
		*ch, *ok = e.cur.peek()
		return !*ok, *ok
	default:
		return false, false
	}
}

func (e *engine) disambiguateInObjectValue(
	acc *[]rune, ch *rune, ok *bool, unmatchedDelimiter *bool, i int, ldelim, rdelim rune,
) (shouldBreak, shouldContinue bool) {
	i = e.cur.scrollWhitespace(i + 1)
	if c, cok := e.cur.at(i); cok && c == ',' {
		i = e.cur.skipToCharacter(ldelim, i+1)
		i++
		i = e.cur.skipToCharacter(rdelim, i+1)
		i++
		i = e.cur.scrollWhitespace(i)
		if c, cok := e.cur.at(i); cok && c == ':' {
			e.log.record(e.cur, "While parsing a string, we found a misplaced quote with a different meaning here; ignoring it")
			*acc = append(*acc, *ch)
			e.cur.advance()
			*ch, *ok = e.cur.peek()
			return !*ok, *ok
		}
	}
	i = e.cur.skipToCharacter(rdelim, i+1)
	i++
	next, nok := e.cur.at(i)
	for nok && next != ':' {
		if next == ',' || next == ']' || next == '}' {
			break
		}
		if next == rdelim {
			if prev, pok := e.cur.at(i - 1); pok && prev != '\\' {
				break
			}
		}
		i++
		next, nok = e.cur.at(i)
	}
	if next != ':' {
		e.log.record(e.cur, "While parsing a string, we found a misplaced quote with a different meaning here; ignoring it")
		*unmatchedDelimiter = !*unmatchedDelimiter
		*acc = append(*acc, *ch)
		e.cur.advance()
		*ch, *ok = e.cur.peek()
		return !*ok, *ok
	}
	return false, false
}

func (e *engine) disambiguateInArray(
	acc *[]rune, ch *rune, ok *bool, unmatchedDelimiter *bool, next rune, i int,
) (shouldBreak, shouldContinue bool) {
	rdelim := *ch
	targets := map[rune]struct{}{rdelim: {}, ']': {}}
	even := next == rdelim
	for next == rdelim {
		i = e.cur.skipToCharacters(targets, i+1)
		next, *ok = e.cur.at(i)
		if !*ok || next != rdelim {
			even = false
			break
		}
		i = e.cur.skipToCharacters(targets, i+1)
		next, _ = e.cur.at(i)
	}
	if !even {
		return true, false
	}
	e.log.record(e.cur, "While parsing a string in array position, we found a quoted section with a different meaning here; ignoring it")
	*unmatchedDelimiter = !*unmatchedDelimiter
	*acc = append(*acc, *ch)
	e.cur.advance()
	*ch, *ok = e.cur.peek()
	return !*ok, *ok
}

func isAlphaNumeric(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isHexRunes(rs []rune) bool {
	if len(rs) == 0 {
		return false
	}
	for _, c := range rs {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func trimTrailingSpace(values []rune) []rune {
	for len(values) > 0 && unicode.IsSpace(values[len(values)-1]) {
		values = values[:len(values)-1]
	}
	return values
}

// parseFencedBlock recognizes a ```json ... ``` fence opening at the
// cursor; a bare ``` opener without the json tag is not recognized here.
// If it encloses a parseable value, that value is returned directly and
// the closing fence is consumed as part of it; otherwise the caller falls
// back to treating the backtick as ordinary string content.
func (e *engine) parseFencedBlock() (Value, bool) {
	if e.cur.sliceString(e.cur.index, e.cur.index+7) != "```json" {
		return Value{}, false
	}
	i := e.cur.skipToCharacter('`', 7)
	if e.cur.sliceString(e.cur.index+i, e.cur.index+i+3) != "```" {
		return Value{}, false
	}
	e.cur.index += 7
	value, err := e.parseValue()
	if err != nil {
		return Value{}, false
	}
	e.cur.skipWhitespace()
	if e.cur.sliceString(e.cur.index, e.cur.index+3) == "```" {
		e.cur.index += 3
	}
	return value, true
}
