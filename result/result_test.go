package result

import (
	"testing"

	"github.com/alconna-go/alconna/analyser"
	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/header"
	"github.com/alconna-go/alconna/manager"
	"github.com/alconna-go/alconna/option"
	"github.com/alconna-go/alconna/pattern"
	"github.com/alconna-go/alconna/shortcut"
)

func buildEchoAnalyser(t *testing.T) *analyser.Analyser {
	t.Helper()
	h, err := header.Compile("echo", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a := analyser.New(h)
	a.Args.AddNormal(args.NewArg("message", pattern.Wildcard))
	return a
}

func TestParseMatchedAllowsQueryOfMainArg(t *testing.T) {
	a := buildEchoAnalyser(t)
	av := argv.New(' ')
	av.Build([]any{"echo hello"})

	arp, err := Parse(a, av, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !arp.Matched {
		t.Fatalf("expected matched, got %+v", arp)
	}
	v, ok := arp.Query("message")
	if !ok || v != "hello" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestParseHeaderMismatchReturnsUnmatched(t *testing.T) {
	a := buildEchoAnalyser(t)
	av := argv.New(' ')
	av.Build([]any{"ping hello"})

	arp, err := Parse(a, av, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if arp.Matched {
		t.Fatal("expected unmatched")
	}
	if arp.ErrorInfo == nil {
		t.Fatal("expected ErrorInfo to be set")
	}
}

func TestParseRaiseExceptionPropagatesError(t *testing.T) {
	a := buildEchoAnalyser(t)
	av := argv.New(' ')
	av.Build([]any{"ping hello"})

	arp, err := Parse(a, av, true, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if arp != nil {
		t.Fatalf("expected nil Arparma, got %+v", arp)
	}
}

func TestQueryIntoOptionArgs(t *testing.T) {
	opt := option.New("--at|-a", args.New().AddNormal(args.NewArg("value", pattern.Int)), option.StoreAction())
	av := argv.New(' ')
	av.Build([]any{"-a 42"})
	_, optRes, err := option.Match(av, opt, "")
	if err != nil {
		t.Fatal(err)
	}

	arp := &Arparma{
		Matched: true,
		Options: map[string]*option.Result{"at": optRes},
	}
	v, ok := arp.Query("at.value")
	if !ok || v != int64(42) {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestQueryIntoNestedSubcommand(t *testing.T) {
	sub := option.NewSubcommand("install", args.New().AddNormal(args.NewArg("package", pattern.String)))
	av := argv.New(' ')
	av.Build([]any{"install requests"})
	subRes, err := sub.Process(av, "")
	if err != nil {
		t.Fatal(err)
	}

	arp := &Arparma{
		Matched:     true,
		Subcommands: map[string]*option.SubResult{"install": subRes},
	}
	v, ok := arp.Query("install.package")
	if !ok || v != "requests" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestQueryUnmatchedArparmaAlwaysFails(t *testing.T) {
	arp := Failed(errs.NewInvalidParam("bad", "invalid parameter"), nil)
	if _, ok := arp.Query("anything"); ok {
		t.Fatal("expected query on unmatched Arparma to fail")
	}
}

func TestQuery2TypeMismatchFails(t *testing.T) {
	arp := &Arparma{Matched: true, MainArgs: map[string]any{"count": 3}}
	if _, ok := Query2[string](arp, "count"); ok {
		t.Fatal("expected type mismatch to fail")
	}
	v, ok := Query2[int](arp, "count")
	if !ok || v != 3 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestRunBehaviorsCancelDowngradesMatch(t *testing.T) {
	arp := &Arparma{Matched: true, MainArgs: map[string]any{"message": "hi"}}
	cancel := func(a *Arparma) error { return errs.NewBehaveCancelled("rejected by policy") }
	RunBehaviors(arp, []Behavior{cancel})
	if arp.Matched {
		t.Fatal("expected Matched to be downgraded to false")
	}
	if arp.ErrorInfo == nil {
		t.Fatal("expected ErrorInfo to be set")
	}
}

func buildPipInstallAnalyser(t *testing.T) *analyser.Analyser {
	t.Helper()
	h, err := header.Compile("pip", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a := analyser.New(h)
	install := option.NewSubcommand("install", args.New().AddVarPositional(&args.VarPositional{
		Arg:  args.NewArg("packages", pattern.String),
		Flag: args.FlagAllowEmpty,
	}))
	a.Subcommands = append(a.Subcommands, install)
	return a
}

func TestParseWithShortcutsRewritesAndReparses(t *testing.T) {
	a := buildPipInstallAnalyser(t)
	m, err := manager.New(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	cmd := &manager.Command{Hash: "pip", Namespace: "default", Name: "pip", Analyser: a}
	if err := m.Register(cmd); err != nil {
		t.Fatal(err)
	}
	if err := m.Shortcut(cmd.Hash, "i", shortcut.Args{Command: "pip install"}, nil, false); err != nil {
		t.Fatal(err)
	}

	arp, err := ParseWithShortcuts(m, cmd.Hash, a, []any{"i a b"}, nil, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !arp.Matched {
		t.Fatalf("expected shortcut rewrite to match, got %+v (err=%v)", arp, arp.ErrorInfo)
	}
	sub, ok := arp.Subcommands["install"]
	if !ok {
		t.Fatalf("expected install subcommand, got %+v", arp.Subcommands)
	}
	pkgs, ok := sub.Args["packages"].([]any)
	if !ok || len(pkgs) != 2 || pkgs[0] != "a" || pkgs[1] != "b" {
		t.Fatalf("got packages=%+v", sub.Args)
	}
}

func TestParseWithShortcutsFallsThroughWithoutMatch(t *testing.T) {
	a := buildPipInstallAnalyser(t)
	m, err := manager.New(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	cmd := &manager.Command{Hash: "pip", Namespace: "default", Name: "pip", Analyser: a}
	if err := m.Register(cmd); err != nil {
		t.Fatal(err)
	}

	arp, err := ParseWithShortcuts(m, cmd.Hash, a, []any{"pip install a b"}, nil, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !arp.Matched {
		t.Fatalf("expected direct command to match without any shortcut, got %+v", arp)
	}
}

func TestRunBehaviorsMutatesMainArgs(t *testing.T) {
	arp := &Arparma{Matched: true, MainArgs: map[string]any{}}
	fillDefault := func(a *Arparma) error {
		a.MainArgs["verbose"] = false
		return nil
	}
	RunBehaviors(arp, []Behavior{fillDefault})
	if !arp.Matched {
		t.Fatal("expected still matched")
	}
	if arp.MainArgs["verbose"] != false {
		t.Fatalf("got %+v", arp.MainArgs)
	}
}
