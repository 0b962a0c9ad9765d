package repair

import "testing"

func TestArrayRepairs(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"trailing_comma", `[1, 2, 3,]`, `[1, 2, 3]`},
		{"missing_closing_bracket", `[1, 2, 3`, `[1, 2, 3]`},
		{"extra_commas", `[1,, 2]`, `[1, 2]`},
		{"leading_comma", `[, 1, 2]`, `[1, 2]`},
		{"nested_arrays", `[[1, 2], [3, 4]]`, `[[1, 2], [3, 4]]`},
		{"mixed_values", `[1, "two", true, null]`, `[1, "two", true, null]`},
		{"empty_array", `[]`, `[]`},
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

func TestArraySmuggledObject(t *testing.T) {
	value := parseString(t, `["a": 1, "b": 2]`, Options{})
	got := Serialize(value, SerializeOptions{})
	if want := `[{"a": 1, "b": 2}]`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
