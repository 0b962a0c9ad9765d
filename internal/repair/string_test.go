package repair

import "testing"

func TestStringRepairs(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"apostrophe_in_double_quoted", `{"text": "The quick brown fox won't jump"}`, `{"text": "The quick brown fox won't jump"}`},
		{"trailing_comma_in_string", `{"text": "The quick brown fox,"}`, `{"text": "The quick brown fox,"}`},
		{"single_quoted_string", `{'key': 'value'}`, `{"key": "value"}`},
		{"fancy_quotes", "{“key”: “value”}", `{"key": "value"}`},
		{"curly_single_quotes", "{\"a\": ‘b’}", `{"a": "b"}`},
		{"backtick_quoted_string", "{\"a\": `b`}", `{"a": "b"}`},
		{"missing_quotes_value", `{key: value}`, `{"key": "value"}`},
		{"missing_quotes_key_and_value", `{key: "value", other: 1}`, `{"key": "value", "other": 1}`},
		{"unicode_escape", `{"key": "value\u263a"}`, `{"key": "value☺"}`},
		{"escaped_newline", `{"key": "value\nvalue"}`, `{"key": "value\nvalue"}`},
		{"doubled_escaped_quote", `{"key": "a \\" b"}`, `{"key": "a \" b"}`},
		{"unterminated_string", `{"key": "value`, `{"key": "value"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value := parseString(t, tc.input, Options{})
			got := Serialize(value, SerializeOptions{})
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNonNumericBarewordStaysString(t *testing.T) {
	value := parseString(t, `[1, 2, three]`, Options{})
	items := value.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %#v", len(items), items)
	}
	if items[2].Kind() != KindString || items[2].Str() != "three" {
		t.Fatalf("expected bareword 'three' to stay a string, got %#v", items[2])
	}
}
