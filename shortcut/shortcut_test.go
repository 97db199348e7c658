package shortcut

import "testing"

func TestAddAndFindLiteral(t *testing.T) {
	tbl := New()
	tbl.Add("hello", Args{Command: "echo hi"}, nil)

	m, ok := tbl.Find("hello")
	if !ok || m.Args.Command != "echo hi" {
		t.Fatalf("got %+v, %v", m, ok)
	}
}

func TestAddPrefixVariant(t *testing.T) {
	tbl := New()
	tbl.Add("hi", Args{Command: "echo hi", Prefix: true}, []string{"!", "/"})

	if _, ok := tbl.Find("!hi"); !ok {
		t.Fatal("expected prefix variant to match")
	}
	if _, ok := tbl.Find("/hi"); !ok {
		t.Fatal("expected prefix variant to match")
	}
}

func TestFindFirstMatchWinsOrder(t *testing.T) {
	tbl := New()
	tbl.Add("a", Args{Command: "first"}, nil)
	if err := tbl.AddRegex("a.*", Args{Command: "second", Fuzzy: true}); err != nil {
		t.Fatal(err)
	}
	m, ok := tbl.Find("a")
	if !ok || m.Args.Command != "first" {
		t.Fatalf("exact literal should win over fuzzy regex, got %+v", m)
	}
}

func TestFindFuzzyRegexPrefix(t *testing.T) {
	tbl := New()
	if err := tbl.AddRegex(`go (\w+)`, Args{Command: "run", Fuzzy: true}); err != nil {
		t.Fatal(err)
	}
	m, ok := tbl.Find("go build extra")
	if !ok {
		t.Fatal("expected fuzzy regex match")
	}
	if m.Rest == "" {
		t.Fatalf("expected leftover tail, got %+v", m)
	}
}

func TestDelete(t *testing.T) {
	tbl := New()
	tbl.Add("x", Args{Command: "y"}, nil)
	if !tbl.Delete("x") {
		t.Fatal("expected delete to report found")
	}
	if _, ok := tbl.Find("x"); ok {
		t.Fatal("expected no match after delete")
	}
}

func TestRewriteIndexedSingleSlot(t *testing.T) {
	raw := []any{"greet", "{%0}"}
	out, rest := RewriteIndexed(raw, []any{"world"})
	if len(out) != 2 || out[1] != "world" {
		t.Fatalf("got %+v", out)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no leftover, got %+v", rest)
	}
}

func TestRewriteIndexedWildcard(t *testing.T) {
	raw := []any{"echo", "{*}"}
	out, _ := RewriteIndexed(raw, []any{"a", "b", "c"})
	if len(out) != 2 || out[1] != "a b c" {
		t.Fatalf("got %+v", out)
	}
}

func TestRewriteIndexedLeavesUnusedData(t *testing.T) {
	raw := []any{"cmd", "{%0}"}
	out, rest := RewriteIndexed(raw, []any{"first", "second"})
	if out[1] != "first" {
		t.Fatalf("got %+v", out)
	}
	if len(rest) != 1 || rest[0] != "second" {
		t.Fatalf("expected leftover second, got %+v", rest)
	}
}

func TestRewriteRegexNumberedGroups(t *testing.T) {
	raw := []any{"run", "{0}"}
	out := RewriteRegex(raw, []string{"build"}, nil, nil)
	if len(out) != 2 || out[1] != "build" {
		t.Fatalf("got %+v", out)
	}
}

func TestRewriteRegexNamedGroupsWithWrapper(t *testing.T) {
	raw := []any{"run", "{target}"}
	names := map[string]string{"target": "api"}
	wrapper := func(key any, captured string) string { return captured + "!" }
	out := RewriteRegex(raw, nil, names, wrapper)
	if len(out) != 2 || out[1] != "api!" {
		t.Fatalf("got %+v", out)
	}
}

func TestRewriteRegexMissingGroupDrops(t *testing.T) {
	raw := []any{"run", "{missing}"}
	out := RewriteRegex(raw, nil, map[string]string{}, nil)
	if len(out) != 1 {
		t.Fatalf("expected missing-group token dropped, got %+v", out)
	}
}
