package repair

import "testing"

func TestObjectRepairs(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"missing_closing_brace", `{"key": "value"`, `{"key": "value"}`},
		{"colon_before_key", `{: "key": "value"}`, `{"key": "value"}`},
		{"missing_colon", `{"key" "value"}`, `{"key": "value"}`},
		{"trailing_comma", `{"a": 1, "b": 2,}`, `{"a": 1, "b": 2}`},
		{"nested_objects", `{"outer": {"inner": 1}}`, `{"outer": {"inner": 1}}`},
		{"empty_object", `{}`, `{}`},
		{"stray_value_after_comma_quote", `{"a": 1}, "b": 2}`, `{"a": 1, "b": 2}`},
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

func TestObjectDuplicateKeyLastWriterWins(t *testing.T) {
	value := parseString(t, `{"a": 1, "a": 2}`, Options{})
	obj := value.Obj()
	if obj.Len() != 1 {
		t.Fatalf("expected duplicate key to collapse to one entry, got %d", obj.Len())
	}
	got, ok := obj.Get("a")
	if !ok || got.Kind() != KindNumber || got.Number().String() != "2" {
		t.Fatalf("expected last-writer-wins value 2, got %#v", got)
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	value := parseString(t, `{"z": 1, "a": 2, "m": 3}`, Options{})
	keys := value.Obj().Keys()
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got key order %v, want %v", keys, want)
		}
	}
}
