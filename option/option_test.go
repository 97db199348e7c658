package option

import (
	"testing"

	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/pattern"
)

func TestMatchBareFlag(t *testing.T) {
	opt := New("--verbose|-v", nil, StoreAction())
	a := argv.New(' ')
	a.Build([]any{"-v"})
	dest, res, err := Match(a, opt, "")
	if err != nil {
		t.Fatal(err)
	}
	if dest != "verbose" || res.Value != true {
		t.Fatalf("got dest=%q res=%+v", dest, res)
	}
}

func TestMatchWithArgs(t *testing.T) {
	a1 := args.New().AddNormal(args.NewArg("target", pattern.String))
	opt := New("--output|-o", a1, StoreAction())
	a := argv.New(' ')
	a.Build([]any{"-o file.txt"})
	dest, res, err := Match(a, opt, "")
	if err != nil {
		t.Fatal(err)
	}
	if dest != "output" || res.Args["target"] != "file.txt" {
		t.Fatalf("got dest=%q res=%+v", dest, res)
	}
}

func TestMatchCompactCount(t *testing.T) {
	opt := New("-v", nil, CountAction())
	a := argv.New(' ')
	a.Build([]any{"-vvv"})
	dest, res, err := Match(a, opt, "")
	if err != nil {
		t.Fatal(err)
	}
	if dest != "v" || res.Value != 3 {
		t.Fatalf("got dest=%q res=%+v", dest, res)
	}
}

func TestMergeAppend(t *testing.T) {
	opt := New("--tag|-t", nil, AppendAction())
	source := &Result{Value: []any{"a"}}
	target := &Result{Value: "b"}
	merged := Merge(opt, source, target)
	vals, ok := merged.Value.([]any)
	if !ok || len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Fatalf("got %+v", merged)
	}
}

func TestMergeCountEquivalence(t *testing.T) {
	opt := New("-v", nil, CountAction())
	a := argv.New(' ')
	a.Build([]any{"-v -v -v"})
	var res *Result
	for i := 0; i < 3; i++ {
		_, r, err := Match(a, opt, "")
		if err != nil {
			t.Fatal(err)
		}
		if res == nil {
			res = r
		} else {
			res = Merge(opt, res, r)
		}
	}
	if res.Value != 3 {
		t.Fatalf("got %+v, want count 3", res)
	}
}

func TestSubcommandProcess(t *testing.T) {
	installArgs := args.New().AddVarPositional(&args.VarPositional{
		Arg:  args.NewArg("pkgs", pattern.String),
		Flag: args.FlagAllowEmpty,
	})
	countOpt := New("-v", nil, CountAction())
	sub := NewSubcommand("install", installArgs)
	sub.Options = append(sub.Options, countOpt)

	a := argv.New(' ')
	a.Build([]any{"install -vv requests flask"})
	res, err := sub.Process(a, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Options["v"] == nil || res.Options["v"].Value != 2 {
		t.Fatalf("got options=%+v", res.Options)
	}
	pkgs, ok := res.Args["pkgs"].([]any)
	if !ok || len(pkgs) != 2 {
		t.Fatalf("got args=%+v", res.Args)
	}
}

func TestDispatchRejectsDuplicateStoreOption(t *testing.T) {
	opt := New("--output|-o", nil, StoreAction())
	table := CompileParams([]*Option{opt}, nil)
	compact := CompactParams([]*Option{opt})
	a := argv.New(' ')
	a.Build([]any{"--output --output"})
	res := NewSubResult()

	ok, err := DispatchOnce(a, table, compact, res)
	if !ok || err != nil {
		t.Fatalf("first dispatch: ok=%v err=%v", ok, err)
	}
	_, err = DispatchOnce(a, table, compact, res)
	if err == nil {
		t.Fatal("expected duplicate store option to raise")
	}
}

func TestDispatchAllowsDuplicateWhenFlagged(t *testing.T) {
	tagArgs := args.New().AddNormal(args.NewArg("value", pattern.String))
	opt := New("--tag|-t", tagArgs, StoreAction())
	opt.AllowDuplicate = true
	table := CompileParams([]*Option{opt}, nil)
	compact := CompactParams([]*Option{opt})
	a := argv.New(' ')
	a.Build([]any{"--tag a --tag b"})
	res := NewSubResult()

	for i := 0; i < 2; i++ {
		ok, err := DispatchOnce(a, table, compact, res)
		if !ok || err != nil {
			t.Fatalf("dispatch %d: ok=%v err=%v", i, ok, err)
		}
	}
	if res.Options["tag"].Args["value"] != "b" {
		t.Fatalf("got %+v", res.Options["tag"])
	}
}

func TestSubcommandProcessInterleavesOptionAfterPositionals(t *testing.T) {
	installArgs := args.New().AddVarPositional(&args.VarPositional{
		Arg:  args.NewArg("packages", pattern.String),
		Flag: args.FlagAllowEmpty,
	})
	countOpt := New("-U", nil, CountAction())
	sub := NewSubcommand("install", installArgs)
	sub.Options = append(sub.Options, countOpt)

	a := argv.New(' ')
	a.Build([]any{"install a b -UUU"})
	res, err := sub.Process(a, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Options["U"] == nil || res.Options["U"].Value != 3 {
		t.Fatalf("got options=%+v, want -U count 3", res.Options)
	}
	pkgs, ok := res.Args["packages"].([]any)
	if !ok || len(pkgs) != 2 || pkgs[0] != "a" || pkgs[1] != "b" {
		t.Fatalf("got args=%+v, want packages=[a b]", res.Args)
	}
}

func TestClaimsRecognizesCompactAndCountTokens(t *testing.T) {
	compactOpt := New("-v", nil, CountAction())
	table := CompileParams([]*Option{compactOpt}, nil)
	compact := CompactParams([]*Option{compactOpt})
	claims := Claims(table, compact)

	if !claims("-v") {
		t.Fatal("expected exact alias to be claimed")
	}
	if !claims("-vvv") {
		t.Fatal("expected compact count form to be claimed")
	}
	if claims("requests") {
		t.Fatal("expected an ordinary positional token to not be claimed")
	}
}

func TestCollectParamIDsReachesNestedSubcommands(t *testing.T) {
	verbose := New("--verbose|-v", nil, CountAction())
	nested := NewSubcommand("list", args.New())
	nested.Options = append(nested.Options, verbose)
	root := NewSubcommand("pkg", args.New())
	root.Subcommands = append(root.Subcommands, nested)

	ids := CollectParamIDs(nil, []*Subcommand{root})
	for _, want := range []string{"pkg", "list", "--verbose", "-v"} {
		if !ids[want] {
			t.Fatalf("expected %q in collected param IDs, got %+v", want, ids)
		}
	}
}

func TestSubcommandRejectsDuplicateEntry(t *testing.T) {
	sub := NewSubcommand("install", args.New())
	table := CompileParams(nil, []*Subcommand{sub})
	a := argv.New(' ')
	a.Build([]any{"install install"})
	res := NewSubResult()

	ok, err := DispatchOnce(a, table, nil, res)
	if !ok || err != nil {
		t.Fatalf("first dispatch: ok=%v err=%v", ok, err)
	}
	_, err = DispatchOnce(a, table, nil, res)
	if err == nil {
		t.Fatal("expected duplicate subcommand entry to raise")
	}
}
