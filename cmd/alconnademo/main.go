// Command alconnademo is a thin cobra entry point exercising the
// alconna library end to end: it compiles one demo command (a "pip"
// header with an "install" subcommand, mirroring spec.md §8's
// end-to-end scenarios), registers it with a manager.Manager, parses
// os.Args against it, and prints the resulting Arparma or diagnostic.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alconna-go/alconna/analyser"
	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/config"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/header"
	"github.com/alconna-go/alconna/manager"
	"github.com/alconna-go/alconna/option"
	"github.com/alconna-go/alconna/output"
	"github.com/alconna-go/alconna/pattern"
	"github.com/alconna-go/alconna/result"
	"github.com/alconna-go/alconna/shortcut"
)

var (
	_ output.Sink      = stdoutSink{}
	_ output.Formatter = plainFormatter{}
)

// plainFormatter is a bare-bones output.Formatter: one prompt per line,
// an Arg rendered as its name plus its pattern's display name.
type plainFormatter struct{}

func (plainFormatter) FormatNode(prompts []string) string {
	return strings.Join(prompts, "\n")
}

func (plainFormatter) Param(a *args.Arg) string {
	return fmt.Sprintf("%s<%s>", a.Name, a.Value.Name())
}

// stdoutSink writes rendered completion/help output to stdout.
type stdoutSink struct{}

func (stdoutSink) Send(_ string, render func() string) {
	fmt.Println(render())
}

func buildPipCommand() *manager.Command {
	h, err := header.Compile("pip", nil, false)
	if err != nil {
		panic(err)
	}
	a := analyser.New(h)

	install := option.NewSubcommand("install", args.New().AddVarPositional(&args.VarPositional{
		Arg:  args.NewArg("packages", pattern.String),
		Flag: args.FlagRequireOne,
	}))
	install.Options = append(install.Options, option.New("--verbose|-v", nil, option.CountAction()))
	a.Subcommands = append(a.Subcommands, install)

	return &manager.Command{Hash: "pip", Namespace: "default", Name: "pip", Analyser: a}
}

func main() {
	ns := config.Default()

	m, err := manager.New(0, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	cmd := buildPipCommand()
	if err := m.Register(cmd); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if err := m.Shortcut(cmd.Hash, "i", shortcut.Args{Command: "pip install"}, nil, false); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "alconnademo [args...]",
		Short:         "Demonstrates the alconna command parser against a sample pip-like grammar",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, rawArgs []string) error {
			a, ok := m.Require(cmd.Hash)
			if !ok {
				return fmt.Errorf("command %q not registered", cmd.Hash)
			}

			arp, err := result.ParseWithShortcuts(m, cmd.Hash, a, []any{strings.Join(rawArgs, " ")}, ns.Seed, false, nil)
			if err != nil {
				return reportControlFlow(err)
			}
			if !arp.Matched {
				fmt.Fprintln(os.Stderr, "no match:", arp.ErrorInfo)
				return nil
			}
			printOutcome(arp)
			return nil
		},
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func reportControlFlow(err error) error {
	switch e := err.(type) {
	case *errs.SpecialOptionTriggered:
		stdoutSink{}.Send("pip", func() string { return "special option triggered: " + e.Kind })
		return nil
	case *errs.PauseTriggered:
		fmt.Println(plainFormatter{}.FormatNode(e.Prompts))
		return nil
	case *errs.FuzzyMatchSuccess:
		fmt.Println(e.Error())
		return nil
	default:
		return err
	}
}

func printOutcome(arp *result.Arparma) {
	sub, ok := arp.Subcommands["install"]
	if !ok {
		fmt.Println("pip: no subcommand matched")
		return
	}
	verbosity := 0
	if v, ok := sub.Options["verbose"]; ok {
		if n, ok := v.Value.(int); ok {
			verbosity = n
		}
	}
	packages, _ := sub.Args["packages"].([]any)
	fmt.Printf("install: %v (verbosity=%d)\n", packages, verbosity)
}
