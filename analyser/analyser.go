// Package analyser implements the top-level recursive-descent dispatch
// loop (analyse_param): it matches a command's Header, then drives
// Option/Subcommand dispatch and main-Args filling over an argv.Argv
// until the scope is exhausted, producing an Outcome the result package
// assembles into an Arparma.
package analyser

import (
	"log/slog"

	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/completion"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/header"
	"github.com/alconna-go/alconna/internal/alog"
	"github.com/alconna-go/alconna/option"
)

// Analyser is one compiled command's grammar: its Header plus root Args,
// Options, and Subcommands. Built once and shared across concurrent
// Analyse calls, each of which owns its own *argv.Argv.
type Analyser struct {
	Header      *header.Header
	Args        *args.Args
	Options     []*option.Option
	Subcommands []*option.Subcommand
	Separators  []rune
	ExtraAllow  bool
	Logger      *slog.Logger
}

// New builds an Analyser for the given Header; Args/Options/Subcommands
// default empty and are populated via the returned pointer's fields.
func New(h *header.Header) *Analyser {
	return &Analyser{Header: h, Args: args.New(), Logger: alog.Default}
}

// Outcome is the raw dispatch result of one Analyse call, before the
// result package wraps it into an Arparma.
type Outcome struct {
	Head        *header.Result
	MainArgs    map[string]any
	Options     map[string]*option.Result
	Subcommands map[string]*option.SubResult
	Extra       []any
}

// Analyse matches a.Header against av, then runs the dispatch loop:
// on every iteration it gives the lookup-table/compact-candidate probe
// a turn, and failing that advances a.Args by exactly one step, looping
// until neither makes progress. That interleaving (rather than draining
// dispatch to exhaustion before Args ever gets a turn) is what lets an
// option appearing after a run of positionals still be recognized
// instead of being swallowed by a var-positional slot. Ground: spec.md
// §4.5's `analyse_param` state machine, reusing option.DispatchOnce for
// the per-iteration probe and args.Progress for the resumable Args fill.
func (a *Analyser) Analyse(av *argv.Argv) (*Outcome, error) {
	head, err := a.Header.Match(av)
	if err != nil {
		a.Logger.Debug("header match failed", "err", err)
		return nil, err
	}
	a.Logger.Debug("header matched", "origin", head.Origin)

	for id := range option.CollectParamIDs(a.Options, a.Subcommands) {
		av.ParamIDs[id] = true
	}

	res := option.NewSubResult()
	table := option.CompileParams(a.Options, a.Subcommands)
	compact := option.CompactParams(a.Options)

	var progress *args.Progress
	if a.Args.HasSlots() {
		progress = args.NewProgress(a.Args, option.Claims(table, compact))
	}

	for {
		ok, derr := option.DispatchOnce(av, table, compact, res)
		if derr != nil {
			if isCompletionTrigger(derr) {
				return nil, a.handleCompletion(av, table, res, nil)
			}
			return nil, derr
		}
		if ok {
			continue
		}
		if progress == nil {
			break
		}
		stepped, serr := progress.Step(av)
		if serr != nil {
			if isCompletionTrigger(serr) {
				return nil, a.handleCompletion(av, table, res, nil)
			}
			return nil, serr
		}
		if !stepped {
			break
		}
	}

	var mainArgs map[string]any
	if progress != nil {
		mainArgs = progress.Finish()
	}

	if av.CompletionPaused && !av.Done() {
		partial, isStr := av.Next()
		var ctx any
		if isStr {
			ctx = partial
		} else {
			av.Rollback(partial, false)
		}
		return nil, a.handleCompletion(av, table, res, ctx)
	}

	var extra []any
	if a.ExtraAllow {
		for !av.Done() {
			tok, _ := av.Next(a.Separators...)
			extra = append(extra, tok)
		}
	}

	return &Outcome{
		Head:        head,
		MainArgs:    mainArgs,
		Options:     res.Options,
		Subcommands: res.Subcommands,
		Extra:       extra,
	}, nil
}

func isCompletionTrigger(err error) bool {
	sot, ok := err.(*errs.SpecialOptionTriggered)
	return ok && sot.Kind == string(argv.SpecialCompletion)
}

// handleCompletion turns a completion trigger (a special "?"-style token
// hit anywhere in the dispatch tree, or a leftover partial token once
// dispatch and Args both run dry) into a real prompt list via the
// completion package, rather than leaving C7 reachable only from its own
// unit tests. context, when nil, falls back to whatever av.Context held
// at the trigger point (set by option.Match/args.Progress as they go).
func (a *Analyser) handleCompletion(av *argv.Argv, table map[string]any, res *option.SubResult, context any) error {
	if context == nil {
		context = av.Context
	}
	scope := completion.Scope{Params: table, Args: a.Args, Seen: seenFrom(res)}
	subScopes := buildSubScopes(a.Subcommands)
	prompts := completion.Build(av, scope, context, subScopes)
	return completion.Dispatch(av.CompletionSink, a.Header.Command, prompts, av.CompletionPaused)
}

func seenFrom(res *option.SubResult) map[string]bool {
	seen := make(map[string]bool, len(res.Options)+len(res.Subcommands))
	for k := range res.Options {
		seen[k] = true
	}
	for k := range res.Subcommands {
		seen[k] = true
	}
	return seen
}

// buildSubScopes recurses the full Subcommand tree so a completion
// trigger fired at any nesting depth can resolve its own scope by
// *option.Subcommand identity, per completion.Build's Scope lookup.
func buildSubScopes(subs []*option.Subcommand) map[*option.Subcommand]completion.Scope {
	out := map[*option.Subcommand]completion.Scope{}
	for _, s := range subs {
		out[s] = completion.Scope{Params: option.CompileParams(s.Options, s.Subcommands), Args: s.Args}
		for k, v := range buildSubScopes(s.Subcommands) {
			out[k] = v
		}
	}
	return out
}
