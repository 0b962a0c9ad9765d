package repair

// parseObject is entered with the cursor just past the opening '{'. It
// walks key/value pairs until '}', synthesizing missing ':' and ','
// tokens, substituting "" for omitted values, collapsing duplicate keys
// (last-writer-wins outside strict mode), and recovering from a handful of
// LLM-shaped structural mistakes documented inline below.
func (e *engine) parseObject() (Value, error) {
	obj := NewObject()
	startIndex := e.cur.index
	e.depth++
	defer func() { e.depth-- }()

	for {
		e.cur.skipWhitespace()
		ch, ok := e.cur.peek()
		if !ok {
			if e.strict {
				return Value{}, strictErr(e.cur, "unexpected end of input while parsing an object")
			}
			e.log.record(e.cur, "While parsing an object we missed the closing }, adding it")
			break
		}
		if ch == '}' {
			break
		}

		if ch == ':' {
			e.log.record(e.cur, "While parsing an object we found a : before a key, ignoring it")
			if e.strict {
				return Value{}, strictErr(e.cur, "unexpected ':' before a key")
			}
			e.cur.advance()
		}

		e.ctx.push(ObjectKey)
		rollbackIndex := e.cur.index
		key, err := e.readKey(obj, &rollbackIndex)
		if err != nil {
			e.ctx.pop()
			return Value{}, err
		}
		if key.skipMember {
			e.ctx.pop()
			continue
		}

		if obj.Has(key.text) && e.strict {
			e.ctx.pop()
			return Value{}, strictErr(e.cur, "duplicate key found while parsing an object")
		}
		if e.ctx.contains(InArray) && obj.Has(key.text) {
			e.log.record(e.cur, "While parsing an object we found a duplicate key; closing the object here and rolling back")
			e.cur.index = rollbackIndex - 1
			e.cur.insertRune(e.cur.index+1, '{')
			e.ctx.pop()
			break
		}
		e.ctx.pop()

		e.cur.skipWhitespace()
		if ch, ok := e.cur.peek(); !ok || ch == '}' {
			continue
		}

		e.cur.skipWhitespace()
		if ch, ok := e.cur.peek(); ok && ch != ':' {
			if e.strict {
				return Value{}, strictErr(e.cur, "missing ':' after key while parsing an object")
			}
			e.log.record(e.cur, "While parsing an object we missed a : after a key")
		} else {
			e.cur.advance()
		}

		e.ctx.push(InObjectValue)
		value, err := e.readValue()
		e.ctx.pop()
		if err != nil {
			return Value{}, err
		}

		if value.Kind() == KindString && value.Str() == "" && e.strict {
			if prev, ok := e.cur.at(-1); !ok || !isQuote(prev) {
				return Value{}, strictErr(e.cur, "parsed value is empty while parsing an object")
			}
		}

		obj.Set(key.text, value)

		if ch, ok := e.cur.peek(); ok && (ch == ',' || ch == '\'' || ch == '"') {
			e.cur.advance()
			if ch == ',' && e.strict {
				if next, ok := e.cur.at(e.cur.scrollWhitespace(0)); ok && next == '}' {
					return Value{}, strictErr(e.cur, "trailing comma before object closing }")
				}
			}
		}
		if ch, ok := e.cur.peek(); ok && ch == ']' && e.ctx.contains(InArray) {
			e.log.record(e.cur, "While parsing an object we found a closing array bracket; closing the object here and rolling back")
			e.cur.index--
			break
		}
		e.cur.skipWhitespace()
	}

	e.cur.advance()
	return e.finishObject(obj, startIndex)
}

type objectKeyResult struct {
	text       string
	skipMember bool
}

// readKey parses the next key, including the LLM-shaped "row values
// without an inner array" recovery: when a bareword key position is
// immediately followed by '[' with no key text at all, and the previous
// key's value was itself an array, the bracket is treated as another row
// of that array rather than as a malformed key.
func (e *engine) readKey(obj *Object, rollbackIndex *int) (objectKeyResult, error) {
	key := ""
	for {
		ch, ok := e.cur.peek()
		if !ok {
			break
		}
		*rollbackIndex = e.cur.index

		if ch == '[' && key == "" {
			if handled, err := e.absorbRowValues(obj); err != nil {
				return objectKeyResult{}, err
			} else if handled {
				continue
			}
		}

		rawKey, err := e.parseString()
		if err != nil {
			return objectKeyResult{}, err
		}
		if rawKey.Kind() == KindString {
			key = rawKey.Str()
		}

		if key != "" {
			break
		}
		if ch2, ok := e.cur.peek(); ok && (ch2 == ':' || ch2 == '}') {
			if key == "" && e.strict {
				return objectKeyResult{}, strictErr(e.cur, "empty key found while parsing an object")
			}
			break
		}
		e.cur.skipWhitespace()
	}
	return objectKeyResult{text: key}, nil
}

// absorbRowValues implements the "row values without an inner array"
// repair: an object key like "rows" holds an array of same-length arrays,
// and the LLM continues emitting more bracketed rows as if they were
// additional keys instead of additional array elements. Returns handled =
// true if it consumed input for this case (the caller should loop again to
// read the next real key).
func (e *engine) absorbRowValues(obj *Object) (handled bool, err error) {
	prevKey, ok := obj.LastKey()
	if !ok {
		return false, nil
	}
	prevValue, ok := obj.Get(prevKey)
	if !ok || prevValue.Kind() != KindArray || e.strict {
		return false, nil
	}
	prevArray := prevValue.Items()

	e.cur.advance()
	newArrayValue, err := e.parseArray()
	if err != nil {
		return false, err
	}
	newArray := newArrayValue.Items()

	var rowLengths []int
	for _, item := range prevArray {
		if item.Kind() == KindArray {
			rowLengths = append(rowLengths, len(item.Items()))
		}
	}
	expectedLen := 0
	if len(rowLengths) > 0 {
		same := true
		for _, l := range rowLengths {
			if l != rowLengths[0] {
				same = false
				break
			}
		}
		if same {
			expectedLen = rowLengths[0]
		}
	}

	if expectedLen > 0 {
		var tail []Value
		for len(prevArray) > 0 && prevArray[len(prevArray)-1].Kind() != KindArray {
			tail = append(tail, prevArray[len(prevArray)-1])
			prevArray = prevArray[:len(prevArray)-1]
		}
		if len(tail) > 0 {
			reverseValues(tail)
			if len(tail)%expectedLen == 0 {
				e.log.record(e.cur, "While parsing an object we found row values without an inner array; grouping them into rows")
				for i := 0; i < len(tail); i += expectedLen {
					prevArray = append(prevArray, Array(append([]Value{}, tail[i:i+expectedLen]...)))
				}
			} else {
				prevArray = append(prevArray, tail...)
			}
		}
		if len(newArray) > 0 {
			allArrays := true
			for _, item := range newArray {
				if item.Kind() != KindArray {
					allArrays = false
					break
				}
			}
			if allArrays {
				e.log.record(e.cur, "While parsing an object we found additional rows; appending them without flattening")
				prevArray = append(prevArray, newArray...)
			} else {
				prevArray = append(prevArray, Array(newArray))
			}
		}
	} else if len(newArray) == 1 && newArray[0].Kind() == KindArray {
		prevArray = append(prevArray, newArray[0].Items()...)
	} else {
		prevArray = append(prevArray, newArray...)
	}
	obj.Set(prevKey, Array(prevArray))

	e.cur.skipWhitespace()
	if ch, ok := e.cur.peek(); ok && ch == ',' {
		e.cur.advance()
	}
	e.cur.skipWhitespace()
	return true, nil
}

// readValue parses the value half of a key/value pair, tolerating a stray
// ',' or '}' where a value was expected by substituting the empty string.
func (e *engine) readValue() (Value, error) {
	e.cur.skipWhitespace()
	if ch, ok := e.cur.peek(); ok && (ch == ',' || ch == '}') {
		e.log.record(e.cur, "While parsing an object value we found a stray "+string(ch)+"; ignoring it")
		return String(""), nil
	}
	return e.parseValue()
}

// finishObject applies the closing-brace recovery rules: an empty object
// that consumed more than a bare "{}" is probably a misparsed array: an
// unexpected extra '}' right after closing is swallowed; and a comma
// followed by another quoted key means the LLM emitted "}, "key": ..."
// instead of nesting it, so the continuation is merged in.
func (e *engine) finishObject(obj *Object, startIndex int) (Value, error) {
	if obj.Len() == 0 && e.cur.index-startIndex > 2 {
		if e.strict {
			return Value{}, strictErr(e.cur, "parsed object is empty but contains extra characters")
		}
		if e.ctx.Empty() && e.cur.index-startIndex <= 3 {
			return ObjectValue(obj), nil
		}
		if e.ctx.Empty() {
			prefix := e.cur.sliceString(0, startIndex-1)
			if isBlank(prefix) {
				return ObjectValue(obj), nil
			}
		}
		e.log.record(e.cur, "Parsed object is empty; trying to parse this as an array instead")
		e.cur.index = startIndex
		return e.parseArray()
	}
	if obj.Len() == 0 && e.cur.index-startIndex <= 2 {
		return ObjectValue(obj), nil
	}

	if !e.ctx.Empty() {
		if ch, ok := e.cur.peek(); ok && ch == '}' {
			cur, hasCur := e.ctx.current()
			if !hasCur || (cur != ObjectKey && cur != InObjectValue) {
				e.log.record(e.cur, "Found an extra closing brace that shouldn't be there, skipping it")
				e.cur.advance()
			}
		}
		return ObjectValue(obj), nil
	}

	e.cur.skipWhitespace()
	if ch, ok := e.cur.peek(); !ok || ch != ',' {
		return ObjectValue(obj), nil
	}
	e.cur.advance()
	e.cur.skipWhitespace()
	if ch, ok := e.cur.peek(); !ok || !isQuote(ch) {
		return ObjectValue(obj), nil
	}
	if e.strict {
		return ObjectValue(obj), nil
	}
	e.log.record(e.cur, "Found a comma and a quote after the closing brace; checking for more key-value pairs")
	more, err := e.parseObject()
	if err != nil {
		return Value{}, err
	}
	if more.Kind() == KindObject {
		obj.Merge(more.Obj())
	}
	return ObjectValue(obj), nil
}

func reverseValues(values []Value) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
