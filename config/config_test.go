package config

import (
	"testing"

	"github.com/alconna-go/alconna/argv"
)

func TestDefaultSeedsSpecialsAndSeparators(t *testing.T) {
	ns := Default()
	av := argv.New()
	ns.Seed(av)

	if !av.Separators[' '] {
		t.Fatalf("expected space separator, got %+v", av.Separators)
	}
	if av.Specials["--help"] != argv.SpecialHelp {
		t.Fatalf("expected --help wired to SpecialHelp, got %+v", av.Specials)
	}
	if av.Specials["?"] != argv.SpecialCompletion {
		t.Fatalf("expected ? wired to SpecialCompletion, got %+v", av.Specials)
	}
	if !av.Remainders["--"] {
		t.Fatal("expected -- registered as a remainder")
	}
	if !av.FuzzyMatch || av.FuzzyThreshold != 0.6 {
		t.Fatalf("got fuzzy=%v threshold=%v", av.FuzzyMatch, av.FuzzyThreshold)
	}
}

func TestDisableRemovesBuiltin(t *testing.T) {
	ns := Default()
	ns.Disable(argv.SpecialCompletion)
	av := argv.New()
	ns.Seed(av)

	if _, ok := av.Specials["?"]; ok {
		t.Fatal("expected ? to be unregistered after Disable")
	}
	if av.Specials["--help"] != argv.SpecialHelp {
		t.Fatal("expected help to remain enabled")
	}
}

func TestWithBuiltinOverridesAliases(t *testing.T) {
	ns := Default()
	ns.WithBuiltin(argv.SpecialHelp, "--ayuda")
	av := argv.New()
	ns.Seed(av)

	if av.Specials["--ayuda"] != argv.SpecialHelp {
		t.Fatalf("got %+v", av.Specials)
	}
	if _, ok := av.Specials["--help"]; ok {
		t.Fatal("expected original alias replaced, not appended")
	}
}

func TestRequireFallsBackToDefault(t *testing.T) {
	ns := Require("nonexistent-namespace")
	if ns.Name != "default" {
		t.Fatalf("got %+v", ns)
	}
}

func TestRegisterAndGetCustomNamespace(t *testing.T) {
	custom := &Namespace{Name: "myapp", Separators: []rune{' '}, FuzzyThreshold: 0.8}
	Register(custom)
	got, ok := Get("myapp")
	if !ok || got.FuzzyThreshold != 0.8 {
		t.Fatalf("got %+v, %v", got, ok)
	}
}
