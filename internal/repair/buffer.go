package repair

import (
	"bufio"
	"io"
	"log/slog"
)

// defaultChunkRunes mirrors the original implementation's default chunk
// size for file-backed input (original_source calls this chunk_length and
// defaults it to 1,000,000 characters when unset).
const defaultChunkRunes = 1_000_000

// runeBuffer is the cursor's backing store: a slice of runes that can grow
// lazily as a file-backed source is paged in. An in-memory parse loads the
// whole input up front (buffer.eof is true immediately); a file-backed
// parse appends chunkRunes runes at a time as the cursor advances past
// what's currently loaded, so peak memory stays proportional to how much
// of the file the parser has actually visited plus whatever the driver
// still needs for backtracking within the current container.
type runeBuffer struct {
	data   []rune
	reader *chunkReader // nil once everything is loaded (pure in-memory input)
	eof    bool
}

// newMemoryBuffer wraps a fully materialized string.
func newMemoryBuffer(s string) *runeBuffer {
	return &runeBuffer{data: []rune(s), eof: true}
}

// newFileBuffer wraps r, paging it in chunkRunes-rune chunks as needed. A
// chunkRunes of 0 selects defaultChunkRunes, matching the original's
// "chunk_length < 2 means use the 1MB default" guard.
func newFileBuffer(r io.Reader, chunkRunes int) *runeBuffer {
	if chunkRunes < 2 {
		chunkRunes = defaultChunkRunes
	}
	return &runeBuffer{
		reader: &chunkReader{br: bufio.NewReaderSize(r, chunkRunes), chunkRunes: chunkRunes},
	}
}

// ensure makes sure at least n runes are loaded (or EOF is reached).
func (b *runeBuffer) ensure(n int) {
	for len(b.data) < n && !b.eof {
		b.loadChunk()
	}
}

func (b *runeBuffer) loadChunk() {
	chunk, eof := b.reader.next()
	b.data = append(b.data, chunk...)
	slog.Debug("loaded input chunk", "runes", len(chunk), "loaded", len(b.data), "eof", eof)
	if eof {
		b.eof = true
		b.reader = nil
	}
}

// at returns the rune at index i, loading more of the source if necessary.
func (b *runeBuffer) at(i int) (rune, bool) {
	if i < 0 {
		return 0, false
	}
	b.ensure(i + 1)
	if i >= len(b.data) {
		return 0, false
	}
	return b.data[i], true
}

// insert splices r into the buffer at pos, shifting everything after it.
// Used by the object parser to synthesize a missing opening brace when it
// rolls back after detecting a duplicate key.
func (b *runeBuffer) insert(pos int, r rune) {
	b.ensure(pos)
	if pos > len(b.data) {
		pos = len(b.data)
	}
	b.data = append(b.data[:pos], append([]rune{r}, b.data[pos:]...)...)
}

// slice returns a copy of data[start:end], clamped to the loaded range.
func (b *runeBuffer) slice(start, end int) []rune {
	if end > 0 {
		b.ensure(end)
	}
	if start < 0 {
		start = 0
	}
	if end > len(b.data) {
		end = len(b.data)
	}
	if start >= end {
		return nil
	}
	return b.data[start:end]
}

// length forces the whole source to load and returns its length. Used only
// by callers that need to know total input size (the driver's end-of-input
// check already avoids this by probing with at() instead).
func (b *runeBuffer) length() int {
	for !b.eof {
		b.loadChunk()
	}
	return len(b.data)
}

// chunkReader decodes a byte stream into fixed-size rune chunks, carrying
// any trailing incomplete UTF-8 sequence over to the next read so runes are
// never split across a chunk boundary.
type chunkReader struct {
	br         *bufio.Reader
	chunkRunes int
	leftover   []byte
}

func (c *chunkReader) next() (runes []rune, eof bool) {
	buf := make([]byte, c.chunkRunes*4)
	n := copy(buf, c.leftover)
	read, err := io.ReadFull(c.br, buf[n:])
	total := n + read
	data := buf[:total]

	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		// Surface nothing further; treat unexpected I/O errors as EOF for
		// the rune stream. The caller (LoadFile) already has its own
		// read that would have failed first in the common case.
		return []rune(string(data)), true
	}

	complete := data
	var carry []byte
	if err == nil {
		// Might have split a multibyte rune at the boundary; find the
		// last full rune boundary and carry the remainder forward.
		complete, carry = splitTrailingPartialRune(data)
	}
	c.leftover = carry

	runes = []rune(string(complete))
	if len(runes) > c.chunkRunes {
		carryRunes := runes[c.chunkRunes:]
		runes = runes[:c.chunkRunes]
		c.leftover = append([]byte(string(carryRunes)), c.leftover...)
	}

	isEOF := err == io.EOF || err == io.ErrUnexpectedEOF
	if isEOF && len(c.leftover) > 0 {
		runes = append(runes, []rune(string(c.leftover))...)
		c.leftover = nil
	}
	return runes, isEOF
}

// splitTrailingPartialRune returns data with any incomplete trailing UTF-8
// sequence removed, plus that incomplete tail separately.
func splitTrailingPartialRune(data []byte) (complete, tail []byte) {
	if len(data) == 0 {
		return data, nil
	}
	// Look back up to 3 bytes for the start of a multibyte sequence that
	// doesn't yet have all of its continuation bytes.
	for back := 1; back <= 3 && back <= len(data); back++ {
		b := data[len(data)-back]
		if b < 0x80 {
			// ASCII byte; nothing multibyte is in progress at this offset.
			break
		}
		if b >= 0xC0 {
			// Lead byte of a multibyte sequence of expected length.
			expected := utf8SeqLen(b)
			if expected > back {
				return data[:len(data)-back], data[len(data)-back:]
			}
			break
		}
	}
	return data, nil
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}
