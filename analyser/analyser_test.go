package analyser

import (
	"testing"

	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/header"
	"github.com/alconna-go/alconna/option"
	"github.com/alconna-go/alconna/pattern"
)

func TestAnalyseEchoWildcardMessage(t *testing.T) {
	h, err := header.Compile("echo", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a := New(h)
	a.Args.AddNormal(args.NewArg("message", pattern.Wildcard))

	av := argv.New(' ')
	av.Build([]any{"echo hello world"})

	out, err := a.Analyse(av)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Head.Matched || out.Head.Origin != "echo" {
		t.Fatalf("got head %+v", out.Head)
	}
	if out.MainArgs["message"] != "hello world" {
		t.Fatalf("got mainArgs %+v", out.MainArgs)
	}
}

func TestAnalysePipInstallWithCountOption(t *testing.T) {
	h, err := header.Compile("pip", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a := New(h)

	installArgs := args.New().AddVarPositional(&args.VarPositional{
		Arg:  args.NewArg("pkgs", pattern.String),
		Flag: args.FlagAllowEmpty,
	})
	verbose := option.New("-v", nil, option.CountAction())
	install := option.NewSubcommand("install", installArgs)
	install.Options = append(install.Options, verbose)
	a.Subcommands = append(a.Subcommands, install)

	av := argv.New(' ')
	av.Build([]any{"pip install -vv requests flask"})

	out, err := a.Analyse(av)
	if err != nil {
		t.Fatal(err)
	}
	sub, ok := out.Subcommands["install"]
	if !ok {
		t.Fatalf("missing install subcommand result: %+v", out)
	}
	if sub.Options["v"] == nil || sub.Options["v"].Value != 2 {
		t.Fatalf("got options %+v", sub.Options)
	}
	pkgs, ok := sub.Args["pkgs"].([]any)
	if !ok || len(pkgs) != 2 {
		t.Fatalf("got args %+v", sub.Args)
	}
}

func TestAnalysePausedCompletionOnPartialToken(t *testing.T) {
	h, err := header.Compile("pip", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a := New(h)
	a.Subcommands = append(a.Subcommands, option.NewSubcommand("install", args.New()))

	av := argv.New(' ')
	av.Build([]any{"pip ins"})
	av.CompletionPaused = true

	_, err = a.Analyse(av)
	if err == nil {
		t.Fatal("expected a pause-triggered completion error")
	}
	paused, ok := err.(*errs.PauseTriggered)
	if !ok {
		t.Fatalf("got %T: %v, want *errs.PauseTriggered", err, err)
	}
	if len(paused.Prompts) != 1 || paused.Prompts[0] != "install" {
		t.Fatalf("got prompts %+v, want [install]", paused.Prompts)
	}
}

func TestAnalyseHeaderMismatchPropagates(t *testing.T) {
	h, err := header.Compile("echo", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a := New(h)
	av := argv.New(' ')
	av.Build([]any{"say hi"})

	if _, err := a.Analyse(av); err == nil {
		t.Fatal("expected header mismatch error")
	}
}
