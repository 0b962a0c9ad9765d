package repair

// QuotePairs maps an opening quote rune to the closing rune that matches
// it. The set of "fancy quote" characters treated as equivalent to '"' is
// not closed (see spec's open questions), so this table is a package
// variable rather than a hard-coded switch: callers that need to recognize
// additional quote styles can extend it before parsing.
var QuotePairs = map[rune]rune{
	'"': '"',
	'\'': '\'',
	'`':  '`',
	'“':  '”',
	'”':  '“',
	'‘':  '’',
	'’':  '‘',
}

// isQuote reports whether ch opens (or closes) a recognized quoted string.
func isQuote(ch rune) bool {
	_, ok := QuotePairs[ch]
	return ok
}

// closingFor returns the delimiter that should close a string opened with
// ch. Straight quotes and backticks close with themselves; curly quotes
// pair left-to-right.
func closingFor(ch rune) rune {
	if close, ok := QuotePairs[ch]; ok {
		return close
	}
	return ch
}
