package args

import (
	"testing"

	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/pattern"
)

func build(t *testing.T, input string) *argv.Argv {
	t.Helper()
	a := argv.New(' ')
	a.Build([]any{input})
	return a
}

func TestAnalyseNormalArgs(t *testing.T) {
	as := New().AddNormal(NewArg("msg", pattern.String)).AddNormal(NewArg("count", pattern.Int))
	a := build(t, "hello 5")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	if res["msg"] != "hello" || res["count"] != int64(5) {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyseMissingRequired(t *testing.T) {
	as := New().AddNormal(NewArg("msg", pattern.String))
	a := build(t, "")
	_, err := Analyse(a, as)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*errs.ArgumentMissing); !ok {
		t.Fatalf("expected ArgumentMissing, got %T: %v", err, err)
	}
}

func TestAnalyseOptionalWithDefault(t *testing.T) {
	as := New().AddNormal(NewArg("msg", pattern.String, WithDefault("fallback")))
	a := build(t, "")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	if res["msg"] != "fallback" {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyseWildcardAbsorbsRemainder(t *testing.T) {
	as := New().AddNormal(NewArg("rest", pattern.Wildcard))
	a := build(t, "one two three")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res["rest"]; !ok {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyseWildcardJoinsRemainderIntoOneString(t *testing.T) {
	as := New().AddNormal(NewArg("rest", pattern.Wildcard))
	a := build(t, "one two three")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	if res["rest"] != "one two three" {
		t.Fatalf("got %+v, want a single joined string", res)
	}
}

func TestAnalyseClaimedStopsVarPositionalBeforeClaimedToken(t *testing.T) {
	as := New().AddVarPositional(&VarPositional{Arg: NewArg("packages", pattern.String), Flag: FlagAllowEmpty})
	a := build(t, "a b -UUU")
	claims := func(s string) bool { return s == "-UUU" }
	res, err := AnalyseClaimed(a, as, claims)
	if err != nil {
		t.Fatal(err)
	}
	pkgs, ok := res["packages"].([]any)
	if !ok || len(pkgs) != 2 || pkgs[0] != "a" || pkgs[1] != "b" {
		t.Fatalf("got %+v, want packages=[a b] stopping before the claimed token", res)
	}
	if a.Done() {
		t.Fatal("expected the claimed token to remain unconsumed on the stream")
	}
}

func TestAnalyseVarPositional(t *testing.T) {
	as := New().AddVarPositional(&VarPositional{Arg: NewArg("nums", pattern.Int), Flag: FlagAllowEmpty})
	a := build(t, "1 2 3")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	nums, ok := res["nums"].([]any)
	if !ok || len(nums) != 3 {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyseKeywordOnly(t *testing.T) {
	nameArg := NewArg("name", pattern.String)
	as := New().AddKeywordOnly(nameArg)
	a := build(t, "name=bob")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	if res["name"] != "bob" {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyseKeywordOnlyFlagBareTruthy(t *testing.T) {
	kw := NewArg("verbose", pattern.KWBool)
	kw.Separators = []rune{'='}
	as := New().AddKeywordOnly(kw)
	a := build(t, "verbose")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	if res["verbose"] != true {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyseVarKeyword(t *testing.T) {
	as := New().AddVarKeyword(&VarKeyword{Arg: NewArg("opts", pattern.String), Sep: '=', Flag: FlagAllowEmpty})
	a := build(t, "a=1 b=2")
	res, err := Analyse(a, as)
	if err != nil {
		t.Fatal(err)
	}
	opts, ok := res["opts"].(map[string]any)
	if !ok || opts["a"] != "1" || opts["b"] != "2" {
		t.Fatalf("got %+v", res)
	}
}
