package repair

import "unicode"

// cursor is a windowed view over the input: it exposes peek, advance, and
// bounded look-ahead by rune offset, and owns the only mutable shared state
// in a parse. The dispatcher holds the cursor and lends it by reference to
// sub-parsers, which run to completion before returning control.
//
// The cursor offset is monotonically non-decreasing except for the narrow,
// explicit rollbacks the object parser performs when it detects a
// duplicate key; those rollbacks never move the offset earlier than a
// checkpoint the object parser itself just recorded.
type cursor struct {
	buf   *runeBuffer
	index int
}

func newCursor(buf *runeBuffer) *cursor {
	return &cursor{buf: buf}
}

// at returns the rune offset runes away from the current position.
func (c *cursor) at(offset int) (rune, bool) {
	return c.buf.at(c.index + offset)
}

// peek is at(0): the rune the cursor is currently positioned on.
func (c *cursor) peek() (rune, bool) {
	return c.at(0)
}

// advance moves the cursor forward one rune.
func (c *cursor) advance() {
	c.index++
}

// skipWhitespace advances past any run of whitespace at the cursor.
func (c *cursor) skipWhitespace() {
	for {
		ch, ok := c.peek()
		if !ok || !unicode.IsSpace(ch) {
			return
		}
		c.advance()
	}
}

// scrollWhitespace returns the first offset at or after idx (relative to
// the cursor) that is not whitespace, without moving the cursor.
func (c *cursor) scrollWhitespace(idx int) int {
	for {
		ch, ok := c.at(idx)
		if !ok || !unicode.IsSpace(ch) {
			return idx
		}
		idx++
	}
}

// skipToCharacter returns the offset (relative to the cursor) of the next
// unescaped occurrence of target starting at idx, or the distance to
// end-of-input if none is found.
func (c *cursor) skipToCharacter(target rune, idx int) int {
	return c.skipToCharacters(map[rune]struct{}{target: {}}, idx)
}

// skipToCharacters is skipToCharacter generalized to a set of targets. A
// target is only recognized when it is preceded by an even number of
// backslashes, so escaped delimiters aren't mistaken for boundaries.
func (c *cursor) skipToCharacters(targets map[rune]struct{}, idx int) int {
	i := c.index + idx
	backslashes := 0
	for {
		ch, ok := c.buf.at(i)
		if !ok {
			return i - c.index
		}
		if ch == '\\' {
			backslashes++
			i++
			continue
		}
		if _, hit := targets[ch]; hit && backslashes%2 == 0 {
			return i - c.index
		}
		backslashes = 0
		i++
	}
}

// onlyWhitespaceBefore reports whether everything from the start of input
// up to (but not including) the cursor is whitespace. The dispatcher uses
// this to decide whether a leading digit/letter at the top level should be
// treated as a value versus as prose to be skipped over.
func (c *cursor) onlyWhitespaceBefore() bool {
	for i := c.index - 1; i >= 0; i-- {
		ch, ok := c.buf.at(i)
		if !ok || !unicode.IsSpace(ch) {
			return false
		}
	}
	return true
}

// onlyWhitespaceUntil reports whether offsets [1, end) relative to the
// cursor are all whitespace.
func (c *cursor) onlyWhitespaceUntil(end int) bool {
	for j := 1; j < end; j++ {
		ch, ok := c.at(j)
		if ok && !unicode.IsSpace(ch) {
			return false
		}
	}
	return true
}

// insertRune splices r into the input at the absolute position pos.
func (c *cursor) insertRune(pos int, r rune) {
	c.buf.insert(pos, r)
}

// sliceRunes returns a copy of the runes in [start, end), clamped to the
// available input.
func (c *cursor) sliceRunes(start, end int) []rune {
	return c.buf.slice(start, end)
}

// sliceString is sliceRunes rendered as a string.
func (c *cursor) sliceString(start, end int) string {
	return string(c.sliceRunes(start, end))
}

// exhausted reports whether the cursor has reached the end of input.
func (c *cursor) exhausted() bool {
	_, ok := c.peek()
	return !ok
}
