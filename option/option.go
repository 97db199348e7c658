// Package option implements the Option/Subcommand grammar model and
// matcher (C5): alias matching including compact forms (`-vvv`), the
// store/append/count action kinds and their duplicate-merge semantics,
// and the Subcommand tree shape that lets a command nest arbitrarily.
package option

import (
	"regexp"
	"strings"

	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/internal/fuzzy"
)

// ActionKind selects how repeated appearances of an Option merge.
type ActionKind int

const (
	// ActionStore keeps only the most recent value (or the fixed Action.Value
	// for a bare flag).
	ActionStore ActionKind = iota
	// ActionAppend collects every appearance's value(s) into a list, in
	// arrival order.
	ActionAppend
	// ActionCount totals repeated bare-flag appearances, including the
	// glued `-vvv` compact form.
	ActionCount
)

// Action is an Option's merge behavior plus the value a bare (no-Args)
// appearance contributes.
type Action struct {
	Kind  ActionKind
	Value any
}

// StoreAction is the default: last value wins.
func StoreAction() Action { return Action{Kind: ActionStore, Value: true} }

// AppendAction collects every appearance.
func AppendAction() Action { return Action{Kind: ActionAppend} }

// CountAction totals bare-flag appearances (`-v`, `-vv`, `-vvv`...).
func CountAction() Action { return Action{Kind: ActionCount, Value: 1} }

// Option is one named flag/parameter, optionally carrying its own Args.
type Option struct {
	Name           string
	Aliases        []string // includes Name; delimited by '|' at the user-facing constructor
	Dest           string
	Args           *args.Args
	Separators     []rune
	Action         Action
	Compact        bool
	SoftKeyword    bool
	AllowDuplicate bool
}

// New builds an Option. aliasSpec is a "|"-delimited alias list (e.g.
// "--verbose|-v"); dest defaults to the first alias with leading dashes
// stripped when empty.
func New(aliasSpec string, a *args.Args, action Action) *Option {
	aliases := strings.Split(aliasSpec, "|")
	name := aliases[0]
	dest := strings.TrimLeft(name, "-")
	return &Option{Name: name, Aliases: aliases, Dest: dest, Args: a, Action: action}
}

// Result is the outcome of one Option match: Value for a bare flag/count,
// or Args for an Option carrying its own argument slots.
type Result struct {
	Value any
	Args  map[string]any
}

// compactCache caches compiled "^alias(.*?)$" patterns per alias text
// for repeated Option.Compact matches; group 1 is the glued tail.
var compactCache = map[string]*regexp.Regexp{}

func compactPattern(alias string) *regexp.Regexp {
	if re, ok := compactCache[alias]; ok {
		return re
	}
	re := regexp.MustCompile("^" + regexp.QuoteMeta(alias) + `(.*?)$`)
	compactCache[alias] = re
	return re
}

// Match consumes the leading token of av against opt (or, when trigger
// is non-empty, treats trigger as the already-consumed alias token — the
// dispatch loop's fast path when it recognized the token via a lookup
// table before calling Match) and returns the Option's dest key and
// Result. Ground: _internal/_handlers.py's `handle_option`.
func Match(av *argv.Argv, opt *Option, trigger string) (string, *Result, error) {
	av.Context = opt
	count := 0
	if trigger == "" {
		name, _ := av.Next(opt.Separators...)
		nameStr, _ := name.(string)
		matched := false
		switch {
		case opt.Compact:
			for _, al := range opt.Aliases {
				if m := compactPattern(al).FindStringSubmatch(nameStr); m != nil {
					av.Rollback(m[1], true)
					matched = true
					break
				}
			}
		case opt.Action.Kind == ActionCount:
			for _, al := range opt.Aliases {
				if strings.HasPrefix(nameStr, al) {
					stripped := strings.TrimLeft(nameStr, "-")
					aliasStripped := strings.TrimLeft(al, "-")
					if aliasStripped != "" && len(stripped)%len(aliasStripped) == 0 &&
						strings.Repeat(aliasStripped, len(stripped)/len(aliasStripped)) == stripped {
						count = len(stripped) / len(aliasStripped)
						matched = true
						break
					}
				}
			}
		default:
			for _, al := range opt.Aliases {
				if nameStr == al {
					matched = true
					break
				}
			}
		}
		if !matched {
			if av.FuzzyMatch {
				if _, score, ok := fuzzy.BestMatch(nameStr, []string{opt.Name}); ok && score >= av.FuzzyThreshold {
					return "", nil, &errs.FuzzyMatchSuccess{Source: nameStr, Target: opt.Name}
				}
			}
			return "", nil, errs.NewInvalidParam(nameStr, "option name mismatch: expected %s, got %q", opt.Name, nameStr)
		}
	}

	if opt.Args.HasSlots() {
		vals, err := args.Analyse(av, opt.Args)
		if err != nil {
			return "", nil, err
		}
		return opt.Dest, &Result{Args: vals}, nil
	}
	if count > 0 {
		return opt.Dest, &Result{Value: count}, nil
	}
	return opt.Dest, &Result{Value: opt.Action.Value}, nil
}

// Merge combines a newly-matched Result into the one already recorded
// for repeated appearances of the same Option, per opt.Action.Kind.
// Ground: _internal/_handlers.py's `handle_action`.
func Merge(opt *Option, source, target *Result) *Result {
	switch opt.Action.Kind {
	case ActionStore:
		return target
	case ActionCount:
		if !opt.Args.HasSlots() {
			sv, _ := source.Value.(int)
			tv, _ := target.Value.(int)
			if sv == 0 {
				sv = 1
			}
			if tv == 0 {
				tv = 1
			}
			source.Value = sv + tv
			return source
		}
		return target
	default: // ActionAppend
		if !opt.Args.HasSlots() {
			source.Value = appendAny(source.Value, target.Value)
			return source
		}
		for k, v := range target.Args {
			if existing, ok := source.Args[k]; ok {
				source.Args[k] = append(toSlice(existing), v)
			} else {
				source.Args[k] = []any{v}
			}
		}
		return source
	}
}

func appendAny(existing, v any) []any {
	s := toSlice(existing)
	return append(s, v)
}

func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{v}
}

// Subcommand is a nested command tree node: it owns its own Args,
// Options, and further Subcommands, matched against a leading alias
// token the same way a top-level command matches its header.
type Subcommand struct {
	Name            string
	Aliases         []string
	Dest            string
	Args            *args.Args
	Options         []*Option
	Subcommands     []*Subcommand
	Separators      []rune
	SoftKeyword     bool
	SatisfyPrevious bool
	AllowDuplicate  bool
}

// NewSubcommand builds a Subcommand; dest defaults to name.
func NewSubcommand(name string, a *args.Args) *Subcommand {
	return &Subcommand{Name: name, Aliases: []string{name}, Dest: name, Args: a}
}

func (sc *Subcommand) matchesAlias(name string) bool {
	for _, al := range sc.Aliases {
		if al == name {
			return true
		}
	}
	return false
}

// SubResult is the parsed outcome of one Subcommand: its own Args
// values plus nested Option/Subcommand results.
type SubResult struct {
	Value       any
	Args        map[string]any
	Options     map[string]*Result
	Subcommands map[string]*SubResult
}

// NewSubResult builds an empty SubResult with initialized maps.
func NewSubResult() *SubResult {
	return &SubResult{Options: map[string]*Result{}, Subcommands: map[string]*SubResult{}}
}

// CompileParams indexes a set of Options and Subcommands by every alias,
// the lookup table the dispatch loop probes before falling back to
// compact/args matching. Shared by Subcommand.Process and the top-level
// analyser so both scopes build their tables identically.
func CompileParams(opts []*Option, subs []*Subcommand) map[string]any {
	table := map[string]any{}
	for _, o := range opts {
		for _, al := range o.Aliases {
			table[al] = o
		}
	}
	for _, s := range subs {
		for _, al := range s.Aliases {
			table[al] = s
		}
	}
	return table
}

// CompactParams returns the Options eligible for speculative compact/count
// matching when the lookup table misses.
func CompactParams(opts []*Option) []any {
	var out []any
	for _, o := range opts {
		if o.Compact || o.Action.Kind == ActionCount {
			out = append(out, o)
		}
	}
	return out
}

// Claims builds a predicate recognizing any token that belongs to
// table/compact at the current dispatch scope, including glued
// compact/count forms like "-vvv" that don't appear in table verbatim.
// A variadic Args slot uses this (alongside av.ParamIDs) to stop
// collecting before it swallows a token meant for dispatch. Ground:
// spec.md §8 scenario 3, where a var-positional "packages" slot must
// yield to "-UUU" rather than absorb it as a string value.
func Claims(table map[string]any, compact []any) func(string) bool {
	return func(s string) bool {
		if _, ok := table[s]; ok {
			return true
		}
		for _, c := range compact {
			opt, ok := c.(*Option)
			if !ok {
				continue
			}
			if opt.Compact {
				for _, al := range opt.Aliases {
					if compactPattern(al).MatchString(s) && strings.HasPrefix(s, al) {
						return true
					}
				}
			}
			if opt.Action.Kind == ActionCount {
				for _, al := range opt.Aliases {
					if strings.HasPrefix(s, al) {
						stripped := strings.TrimLeft(s, "-")
						aliasStripped := strings.TrimLeft(al, "-")
						if aliasStripped != "" && len(stripped)%len(aliasStripped) == 0 &&
							strings.Repeat(aliasStripped, len(stripped)/len(aliasStripped)) == stripped {
							return true
						}
					}
				}
			}
		}
		return false
	}
}

// CollectParamIDs gathers every alias of every Option and Subcommand
// reachable from opts/subs, recursing into nested Subcommands at every
// depth. Invariant §3(e): param_ids must contain every alias at every
// depth so an Args slot anywhere in the tree can recognize a reserved
// token regardless of how deeply it's nested.
func CollectParamIDs(opts []*Option, subs []*Subcommand) map[string]bool {
	ids := map[string]bool{}
	collectParamIDs(opts, subs, ids)
	return ids
}

func collectParamIDs(opts []*Option, subs []*Subcommand, ids map[string]bool) {
	for _, o := range opts {
		for _, al := range o.Aliases {
			ids[al] = true
		}
	}
	for _, s := range subs {
		for _, al := range s.Aliases {
			ids[al] = true
		}
		collectParamIDs(s.Options, s.Subcommands, ids)
	}
}

// Process matches sc against av: trigger is the already-consumed alias
// token if the dispatch loop found it via a lookup table, or empty to
// have Process consume it itself. It then runs the same dispatch loop
// Options/nested Subcommands of sc use (analyse_param) until the stream
// is exhausted or a sibling-level token is seen.
func (sc *Subcommand) Process(av *argv.Argv, trigger string) (*SubResult, error) {
	if trigger == "" {
		name, _ := av.Next(sc.Separators...)
		nameStr, _ := name.(string)
		if !sc.matchesAlias(nameStr) {
			return nil, errs.NewInvalidParam(nameStr, "subcommand name mismatch: expected %s, got %q", sc.Name, nameStr)
		}
	}
	res := NewSubResult()
	table := CompileParams(sc.Options, sc.Subcommands)
	compact := CompactParams(sc.Options)

	var progress *args.Progress
	if sc.Args.HasSlots() {
		progress = args.NewProgress(sc.Args, Claims(table, compact))
	}

	for {
		ok, err := DispatchOnce(av, table, compact, res)
		if err != nil {
			return res, err
		}
		if ok {
			continue
		}
		if progress == nil {
			break
		}
		stepped, err := progress.Step(av)
		if err != nil {
			return res, err
		}
		if !stepped {
			break
		}
	}
	if progress != nil {
		res.Args = progress.Finish()
	}
	return res, nil
}

// DispatchOnce performs a single analyse_param step against table/compact,
// recording matches into res. Shared between Subcommand.Process and the
// top-level analyser so subcommand recursion uses the identical loop.
func DispatchOnce(av *argv.Argv, table map[string]any, compact []any, res *SubResult) (bool, error) {
	if av.Done() {
		return false, nil
	}
	checkpoint := av.Checkpoint()
	text, isStr := av.Next()
	if isStr {
		s, _ := text.(string)
		if kind, ok := av.Specials[s]; ok {
			return false, &errs.SpecialOptionTriggered{Kind: string(kind)}
		}
		if param, ok := table[s]; ok {
			switch p := param.(type) {
			case *Option:
				dest, r, err := Match(av, p, s)
				if err != nil {
					return false, err
				}
				if err := mergeInto(res, p, dest, r); err != nil {
					return false, err
				}
			case *Subcommand:
				if _, dup := res.Subcommands[p.Dest]; dup && !p.AllowDuplicate {
					return false, errs.NewInvalidParam(p.Name, "subcommand %q does not allow duplicate entry", p.Name)
				}
				sub, err := p.Process(av, s)
				if err != nil {
					return false, err
				}
				res.Subcommands[p.Dest] = sub
			}
			return true, nil
		}
	}
	av.Restore(checkpoint)
	for _, c := range compact {
		cp := av.Checkpoint()
		if opt, ok := c.(*Option); ok {
			dest, r, err := Match(av, opt, "")
			if err == nil {
				if err := mergeInto(res, opt, dest, r); err != nil {
					return false, err
				}
				return true, nil
			}
			if _, isInvalid := err.(*errs.InvalidParam); !isInvalid {
				return false, err
			}
			av.Restore(cp)
		}
	}
	return false, nil
}

// mergeInto records a matched option occurrence into res, merging with
// any prior occurrence per opt.Action.Kind. A store-kind option that
// has already occurred raises InvalidParam unless opt.AllowDuplicate.
func mergeInto(res *SubResult, opt *Option, dest string, r *Result) error {
	existing, ok := res.Options[dest]
	if !ok {
		res.Options[dest] = r
		return nil
	}
	if opt.Action.Kind == ActionStore && !opt.AllowDuplicate {
		return errs.NewInvalidParam(opt.Name, "option %q does not allow duplicate entry", opt.Name)
	}
	res.Options[dest] = Merge(opt, existing, r)
	return nil
}
