package repair

import "testing"

func parseString(t *testing.T, input string, opts Options) Value {
	t.Helper()
	result, err := Parse(input, opts)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", input, err)
	}
	return result.Value
}

func TestParseValidInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"valid_object", `{"name": "John", "age": 30, "city": "New York"}`, `{"name": "John", "age": 30, "city": "New York"}`},
		{"array_spacing", `{"employees":["John", "Anna", "Peter"]} `, `{"employees": ["John", "Anna", "Peter"]}`},
		{"colon_in_string", `{"key": "value:value"}`, `{"key": "value:value"}`},
		{"nested_object", `{"key1": {"key2": [1, 2, 3]}}`, `{"key1": {"key2": [1, 2, 3]}}`},
		{"large_integer", `{"key": 12345678901234567890}`, `{"key": 12345678901234567890}`},
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

func TestParseRepairsStructure(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"missing_brace", `{"key": "value"`, `{"key": "value"}`},
		{"single_quotes", `{'a': "x", "b": 'y',}`, `{"a": "x", "b": "y"}`},
		{"surrounding_prose", `Here is your json: {"k": "v"} thanks!`, `{"k": "v"}`},
		{"missing_colon", `{"key" "value"}`, `{"key": "value"}`},
		{"trailing_comma_array", `[1, 2, 3,]`, `[1, 2, 3]`},
		{"unterminated_array", `[1, 2, 3`, `[1, 2, 3]`},
		{"boolean_casing", `[True, False, Null]`, `[true, false, null]`},
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

func TestParseCodeFence(t *testing.T) {
	input := "```json\n[1, 2, 3,]\n```"
	value := parseString(t, input, Options{})
	got := Serialize(value, SerializeOptions{})
	if want := `[1, 2, 3]`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestParseMultipleTopLevelValues(t *testing.T) {
	cases := []struct {
		name         string
		input        string
		streamStable bool
		want         string
	}{
		{"array_then_object_dropped", "[]{}", false, `[]`},
		{"array_then_object_kept", `[]{"key":"value"}`, false, `{"key": "value"}`},
		{"object_then_array", `{"key":"value"}[1,2,3,True]`, false, `[{"key": "value"}, [1, 2, 3, true]]`},
		{"stream_stable_keeps_first", `{"a": 1}{"b": 2}`, true, `{"a": 1}`},
		{"without_stream_stable", `{"a": 1}{"b": 2}`, false, `[{"a": 1}, {"b": 2}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value := parseString(t, tc.input, Options{StreamStable: tc.streamStable})
			got := Serialize(value, SerializeOptions{})
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	value := parseString(t, "", Options{})
	if value.Kind() != KindString || value.Str() != "" {
		t.Fatalf("expected empty string sentinel, got %#v", value)
	}
}

func TestStrictModeRaisesOnRepair(t *testing.T) {
	cases := []string{
		`{"key": "value"`,
		`{'a': 1}`,
		`[1, 2,]`,
	}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, Options{Strict: true})
			if err == nil {
				t.Fatalf("expected a strict-mode error for %q, got none", input)
			}
			var strictErr *StrictModeError
			if !isStrictModeError(err, &strictErr) {
				t.Fatalf("expected *StrictModeError, got %T: %v", err, err)
			}
		})
	}
}

func TestStrictModeAcceptsValidInput(t *testing.T) {
	value := parseString(t, `{"a": 1, "b": [2, 3]}`, Options{Strict: true})
	got := Serialize(value, SerializeOptions{})
	if want := `{"a": 1, "b": [2, 3]}`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestLoggingRecordsRepairs(t *testing.T) {
	result, err := Parse(`{"key": "value"`, Options{Logging: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Log) == 0 {
		t.Fatalf("expected at least one log entry for a missing closing brace")
	}
}

func TestLoggingDisabledByDefault(t *testing.T) {
	result, err := Parse(`{"key": "value"`, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Log) != 0 {
		t.Fatalf("expected no log entries when logging is disabled, got %v", result.Log)
	}
}

func isStrictModeError(err error, target **StrictModeError) bool {
	se, ok := err.(*StrictModeError)
	if !ok {
		return false
	}
	*target = se
	return true
}
