package repair

import "testing"

func TestBooleanAndNullRepairs(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", `[true, false, null]`, `[true, false, null]`},
		{"titlecase", `[True, False, Null]`, `[true, false, null]`},
		{"uppercase_NULL", `[NULL]`, `[null]`},
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

func TestBooleanPrefixAtEndOfInput(t *testing.T) {
	value := parseString(t, `[tr`, Options{})
	items := value.Items()
	if len(items) != 1 || items[0].Kind() != KindBool || !items[0].Bool() {
		t.Fatalf("expected a truncated 'tr' to resolve to true, got %#v", items)
	}
}

func TestBooleanPrefixFailsInStrictMode(t *testing.T) {
	_, err := Parse(`[tr`, Options{Strict: true})
	if err == nil {
		t.Fatalf("expected strict mode to reject a truncated boolean literal")
	}
}
