package repair

// skipComment recognizes `// ...`, `# ...`, and `/* ... */` comments and
// consumes them as if they were whitespace. It never appears in the output;
// if the driver is sitting at top level once the comment is consumed, it
// recurses into the dispatcher to find the next real value.
func (e *engine) skipComment() (Value, error) {
	ch, ok := e.cur.peek()
	if !ok {
		return String(""), nil
	}

	termination := map[rune]struct{}{'\n': {}, '\r': {}}
	if e.ctx.contains(InArray) {
		termination[']'] = struct{}{}
	}
	if e.ctx.contains(InObjectValue) {
		termination['}'] = struct{}{}
	}
	if e.ctx.contains(ObjectKey) {
		termination[':'] = struct{}{}
	}

	switch {
	case ch == '#':
		e.consumeLineComment(termination, "#")
	case ch == '/':
		next, ok := e.cur.at(1)
		switch {
		case ok && next == '/':
			e.cur.index += 2
			e.consumeLineComment(termination, "//")
		case ok && next == '*':
			e.consumeBlockComment()
		default:
			e.cur.advance()
		}
	}

	if e.ctx.Empty() {
		return e.parseValue()
	}
	return String(""), nil
}

func (e *engine) consumeLineComment(termination map[rune]struct{}, prefix string) {
	comment := []rune(prefix)
	ch, ok := e.cur.peek()
	for ok {
		if _, hit := termination[ch]; hit {
			break
		}
		comment = append(comment, ch)
		e.cur.advance()
		ch, ok = e.cur.peek()
	}
	e.log.record(e.cur, "Found line comment: "+string(comment)+", ignoring")
}

func (e *engine) consumeBlockComment() {
	comment := []rune{'/', '*'}
	e.cur.index += 2
	for {
		ch, ok := e.cur.peek()
		if !ok {
			e.log.record(e.cur, "Reached end-of-input while parsing a block comment; left it unclosed")
			break
		}
		comment = append(comment, ch)
		e.cur.advance()
		if len(comment) >= 2 && comment[len(comment)-2] == '*' && comment[len(comment)-1] == '/' {
			break
		}
	}
	e.log.record(e.cur, "Found block comment: "+string(comment)+", ignoring")
}
