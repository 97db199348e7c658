package pattern

import "testing"

func TestBuiltinValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Pattern
		text string
		want Flag
	}{
		{"int-valid", Int, "42", Valid},
		{"int-invalid", Int, "nope", Error},
		{"float-valid", Float, "3.14", Valid},
		{"bool-true", Bool, "TRUE", Valid},
		{"bool-invalid", Bool, "maybe", Error},
		{"number-int", Number, "7", Valid},
		{"number-float", Number, "7.5", Valid},
		{"string-empty", String, "", Error},
		{"any-empty", Any, "", Valid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.p.Validate(tc.text, nil)
			if res.Flag != tc.want {
				t.Fatalf("Validate(%q) flag = %v, want %v (err=%v)", tc.text, res.Flag, tc.want, res.Err)
			}
		})
	}
}

func TestValidateDefault(t *testing.T) {
	res := Int.Validate("nope", 99)
	if res.Flag != Default || res.Value != 99 {
		t.Fatalf("got %+v, want Default(99)", res)
	}
}

func TestKWBoolTruthy(t *testing.T) {
	if res := KWBool.Validate("verbose", nil); res.Flag != Valid || res.Value != true {
		t.Fatalf("bare key should be truthy, got %+v", res)
	}
	if res := KWBool.Validate("false", nil); res.Flag != Valid || res.Value != false {
		t.Fatalf("explicit false should be falsy, got %+v", res)
	}
}

func TestSchemaValidate(t *testing.T) {
	s := NewSchema("cfg", map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	})
	if res := s.Validate(`{"name":"x"}`, nil); res.Flag != Valid {
		t.Fatalf("expected valid, got %+v", res)
	}
	if res := s.Validate(`{}`, nil); res.Flag != Error {
		t.Fatalf("expected error for missing required field, got %+v", res)
	}
}

func TestRegexPattern(t *testing.T) {
	re, err := NewRegex("digits", `\d+`)
	if err != nil {
		t.Fatal(err)
	}
	if res := re.Validate("123", nil); res.Flag != Valid {
		t.Fatalf("expected valid, got %+v", res)
	}
	if res := re.Validate("12a", nil); res.Flag != Error {
		t.Fatalf("expected error for partial match, got %+v", res)
	}
}

func TestSemVer(t *testing.T) {
	if res := SemVer.Validate("1.2.3", nil); res.Flag != Valid {
		t.Fatalf("expected valid, got %+v", res)
	}
	if res := SemVer.Validate("not-a-version", nil); res.Flag != Error {
		t.Fatalf("expected error, got %+v", res)
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("int"); !ok {
		t.Fatal("expected int to be registered")
	}
	if _, ok := Lookup("nonexistent"); ok {
		t.Fatal("expected nonexistent to be absent")
	}
}
