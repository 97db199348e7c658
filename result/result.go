// Package result implements the final result tree (Arparma): the
// outcome of one Parse call, dotted-path Query lookup across main args,
// option args, and nested subcommands, and the post-match Behaviors
// pipeline that can inject defaults or cancel a match.
package result

import (
	"strings"

	"github.com/alconna-go/alconna/analyser"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/header"
	"github.com/alconna-go/alconna/manager"
	"github.com/alconna-go/alconna/option"
	"github.com/alconna-go/alconna/shortcut"
)

// Arparma is the final, user-facing parse result. Ground: spec.md §6's
// Result API and §3's data model entry for Arparma.
type Arparma struct {
	Matched     bool
	HeaderMatch *header.Result
	MainArgs    map[string]any
	Options     map[string]*option.Result
	Subcommands map[string]*option.SubResult
	ErrorInfo   error
	ErrorData   []any
	SourceRef   *argv.Argv
}

// FromOutcome wraps a successful analyser.Outcome into a matched Arparma.
func FromOutcome(out *analyser.Outcome, av *argv.Argv) *Arparma {
	return &Arparma{
		Matched:     true,
		HeaderMatch: out.Head,
		MainArgs:    out.MainArgs,
		Options:     out.Options,
		Subcommands: out.Subcommands,
		SourceRef:   av,
	}
}

// Failed wraps a parse error into a matched=false Arparma carrying the
// diagnostic and whatever tokens were left unconsumed. Ground: spec.md
// §7 "yield Arparma{matched=false, error_info, error_data=remaining
// tokens}".
func Failed(err error, av *argv.Argv) *Arparma {
	var data []any
	if av != nil {
		data = av.Release(true)
	}
	return &Arparma{Matched: false, ErrorInfo: err, ErrorData: data, SourceRef: av}
}

// Query performs the dotted-path lookup spec.md §6 names: the first
// segment resolves against main args, then option dests (descending
// into the option's own args map), then subcommand dests (recursing
// into its args/options/subcommands), in that order. Ground:
// SPEC_FULL.md §4.9.
func (a *Arparma) Query(path string) (any, bool) {
	if !a.Matched {
		return nil, false
	}
	return queryScope(a.MainArgs, a.Options, a.Subcommands, strings.Split(path, "."))
}

// Query2 is a generic typed wrapper: it performs Query(path) and type
// asserts the result to T, reporting false on either a missing path or
// a type mismatch.
func Query2[T any](a *Arparma, path string) (T, bool) {
	var zero T
	v, ok := a.Query(path)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func queryScope(mainArgs map[string]any, options map[string]*option.Result, subs map[string]*option.SubResult, parts []string) (any, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	head, rest := parts[0], parts[1:]

	if v, ok := mainArgs[head]; ok {
		if len(rest) == 0 {
			return v, true
		}
		if nested, ok := v.(map[string]any); ok {
			return queryMap(nested, rest)
		}
		return nil, false
	}
	if opt, ok := options[head]; ok {
		if len(rest) == 0 {
			if opt.Args != nil {
				return opt.Args, true
			}
			return opt.Value, true
		}
		if opt.Args != nil {
			return queryMap(opt.Args, rest)
		}
		return nil, false
	}
	if sub, ok := subs[head]; ok {
		if len(rest) == 0 {
			return sub, true
		}
		return queryScope(sub.Args, sub.Options, sub.Subcommands, rest)
	}
	return nil, false
}

func queryMap(m map[string]any, parts []string) (any, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	v, ok := m[parts[0]]
	if !ok {
		return nil, false
	}
	if len(parts) == 1 {
		return v, true
	}
	nested, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return queryMap(nested, parts[1:])
}

// Behavior runs after a successful match to inject defaults or
// cross-validate; returning a *errs.BehaveCancelled downgrades the
// Arparma to matched=false and stops the remaining chain. Ground:
// SPEC_FULL.md §4.9 / upstream `Alconna.__init__`'s `behaviors`
// parameter and `arp.execute(self.behaviors)`.
type Behavior func(*Arparma) error

// RunBehaviors executes behaviors in order against a. Any error
// (BehaveCancelled or otherwise) downgrades a.Matched and stops the
// remaining chain, per spec.md §7's "a behavior may raise
// BehaveCancelled to retract a match".
func RunBehaviors(a *Arparma, behaviors []Behavior) {
	for _, b := range behaviors {
		if err := b(a); err != nil {
			a.Matched = false
			a.ErrorInfo = err
			return
		}
	}
}

// Parse runs a's dispatch loop against av and assembles the Arparma,
// converting control-flow signals and parse-failure errors into a
// matched=false result unless raiseException is set (per spec.md §7's
// `raise_exception` flag), in which case they propagate as a Go error.
func Parse(a *analyser.Analyser, av *argv.Argv, raiseException bool, behaviors []Behavior) (*Arparma, error) {
	out, err := a.Analyse(av)
	if err != nil {
		if raiseException {
			return nil, err
		}
		return Failed(err, av), nil
	}
	arp := FromOutcome(out, av)
	RunBehaviors(arp, behaviors)
	return arp, nil
}

// ParseWithShortcuts is Parse plus the shortcut retry spec.md §4.6
// names: when the header fails to match raw outright, it looks up cmd's
// registered shortcuts against the longest leading run of raw's text
// tokens, rewrites the match into a fresh token stream via
// shortcut.RewriteIndexed/RewriteRegex, and re-runs a's dispatch loop
// against that rewritten stream exactly once. seed configures each
// freshly-built Argv (e.g. a *config.Namespace's Seed method) before
// Build runs; pass nil to use argv.New's defaults. Ground:
// `CommandManager.find_shortcut`'s "rewrite then re-parse" behavior,
// otherwise unreachable from any real entry point.
func ParseWithShortcuts(m *manager.Manager, cmdHash string, a *analyser.Analyser, raw []any, seed func(*argv.Argv), raiseException bool, behaviors []Behavior) (*Arparma, error) {
	av := newSeededArgv(seed)
	av.Build(raw)
	out, err := a.Analyse(av)
	if err == nil {
		arp := FromOutcome(out, av)
		RunBehaviors(arp, behaviors)
		return arp, nil
	}

	if _, isInvalid := err.(*errs.InvalidParam); !isInvalid || m == nil {
		return finishFailed(err, av, raiseException)
	}

	rewritten, ok := expandShortcut(m, cmdHash, raw)
	if !ok {
		return finishFailed(err, av, raiseException)
	}

	av2 := newSeededArgv(seed)
	av2.Build(rewritten)
	out2, err2 := a.Analyse(av2)
	if err2 != nil {
		return finishFailed(err2, av2, raiseException)
	}
	arp := FromOutcome(out2, av2)
	RunBehaviors(arp, behaviors)
	return arp, nil
}

func newSeededArgv(seed func(*argv.Argv)) *argv.Argv {
	av := argv.New()
	if seed != nil {
		seed(av)
	}
	return av
}

func finishFailed(err error, av *argv.Argv, raiseException bool) (*Arparma, error) {
	if raiseException {
		return nil, err
	}
	return Failed(err, av), nil
}

// expandShortcut tries progressively shorter leading runs of raw's text
// tokens (longest first) against cmd's shortcut table, so both a
// multi-token fuzzy-regex key and a single-token literal key (with
// trailing payload the shortcut itself never claims) can resolve.
// Ground: `CommandManager.find_shortcut`'s query loop plus
// `_handle_shortcut_data`/`_handle_shortcut_reg`.
func expandShortcut(m *manager.Manager, cmdHash string, raw []any) ([]any, bool) {
	tokens := stringTokens(raw)
	if len(tokens) == 0 {
		return nil, false
	}
	for i := len(tokens); i > 0; i-- {
		query := strings.Join(tokens[:i], " ")
		match, ok := m.FindShortcut(cmdHash, query)
		if !ok {
			continue
		}
		leftover := append(toAny(strings.Fields(match.Rest)), toAny(tokens[i:])...)
		if len(leftover) == 0 {
			leftover = match.Args.Arguments
		}
		cmdTokens := toAny(strings.Fields(match.Args.Command))

		var out []any
		if match.Groups != nil || match.GroupNames != nil {
			out = shortcut.RewriteRegex(cmdTokens, match.Groups, match.GroupNames, match.Args.Wrapper)
			out = append(out, leftover...)
		} else {
			rewritten, rest := shortcut.RewriteIndexed(cmdTokens, leftover)
			out = append(rewritten, rest...)
		}
		return out, true
	}
	return nil, false
}

func stringTokens(raw []any) []string {
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, strings.Fields(s)...)
		}
	}
	return out
}

func toAny(ss []string) []any {
	if len(ss) == 0 {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
