// Package repair implements the repairing JSON engine: a hand-written
// recursive-descent parser that tolerates the malformations typical of
// large-language-model output (unbalanced brackets, stray quotes, missing
// separators, trailing commas, comments, and so on) and produces a Value
// tree from whatever structure it can recover.
package repair

import (
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value. Value is a tagged sum rather than
// a polymorphic hierarchy so that callers can switch on Kind exhaustively
// instead of doing type assertions against an open set of implementers.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns a short name for k, mostly useful in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is the tree node produced by the parser: null, boolean, number,
// string, array, or object. Only the fields matching Kind are meaningful.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  string
	arr  []Value
	obj  *Object
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a Number, preserving its original lexical form.
func NumberValue(n Number) Value { return Value{kind: KindNumber, num: n} }

// Array wraps an ordered slice of Values.
func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

// ObjectValue wraps an Object.
func ObjectValue(obj *Object) Value { return Value{kind: KindObject, obj: obj} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload; only meaningful when Kind() == KindNumber.
func (v Value) Number() Number { return v.num }

// Str returns the string payload; only meaningful when Kind() == KindString.
func (v Value) Str() string { return v.str }

// Items returns the array payload; only meaningful when Kind() == KindArray.
func (v Value) Items() []Value { return v.arr }

// Obj returns the object payload; only meaningful when Kind() == KindObject.
func (v Value) Obj() *Object { return v.obj }

// IsEmptyString reports whether v is the empty string, the sentinel the
// parser uses internally for "nothing usable was found here".
func (v Value) IsEmptyString() bool {
	return v.kind == KindString && v.str == ""
}

// Number preserves a JSON number's original lexical form so that values
// which don't fit a native 64-bit type (very large integers, arbitrary
// precision decimals) round-trip without losing digits.
type Number struct {
	lit string
}

// NewNumber wraps the given literal exactly as parsed.
func NewNumber(lit string) Number { return Number{lit: lit} }

// String returns the original literal text.
func (n Number) String() string { return n.lit }

// Int64 attempts to interpret the literal as a base-10 integer.
func (n Number) Int64() (int64, bool) {
	v, err := strconv.ParseInt(n.lit, 10, 64)
	return v, err == nil
}

// Float64 attempts to interpret the literal as a float.
func (n Number) Float64() (float64, bool) {
	v, err := strconv.ParseFloat(n.lit, 64)
	return v, err == nil
}

// IsFloat reports whether the literal carries a fractional part or exponent.
func (n Number) IsFloat() bool {
	return strings.ContainsAny(n.lit, ".eE")
}

// entry is one key/value pair inside an Object, kept in insertion order.
type entry struct {
	key   string
	value Value
}

// Object is an ordered mapping from string keys to Values. First-insertion
// order is preserved; re-setting an existing key overwrites its value in
// place without moving it to the end (last-writer-wins, position retained).
type Object struct {
	entries []entry
	index   map[string]int
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{index: map[string]int{}}
}

// Set inserts or overwrites key with value.
func (o *Object) Set(key string, value Value) {
	if idx, ok := o.index[key]; ok {
		o.entries[idx].value = value
		return
	}
	o.index[key] = len(o.entries)
	o.entries = append(o.entries, entry{key: key, value: value})
}

// Get returns the value stored under key, if any.
func (o *Object) Get(key string) (Value, bool) {
	idx, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.entries[idx].value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.entries) }

// LastKey returns the most recently inserted key, if any.
func (o *Object) LastKey() (string, bool) {
	if len(o.entries) == 0 {
		return "", false
	}
	return o.entries[len(o.entries)-1].key, true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.key
	}
	return keys
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (o *Object) Range(fn func(key string, value Value) bool) {
	for _, e := range o.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Merge copies every entry of other into o, in other's order, overwriting
// duplicates (last-writer-wins).
func (o *Object) Merge(other *Object) {
	other.Range(func(key string, value Value) bool {
		o.Set(key, value)
		return true
	})
}
