// Package completion implements the completion/help dispatch (C7): it
// builds a prompt list from the analyzer's current context and either
// pauses the parse (PauseTriggered, for an interactive caller) or emits
// the prompts through an output.Sink and returns a SpecialOptionTriggered.
package completion

import (
	"strings"

	"github.com/alconna-go/alconna/args"
	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/option"
	"github.com/alconna-go/alconna/output"
)

// Prompt is one completion suggestion: Text is the literal candidate
// (an alias, a field hint, a display form), IsParam marks a suggestion
// that came from filtering compile_params by a partial token, and
// Target is the partial text the suggestion was built for (set on
// field-hint prompts too, where IsParam is false).
type Prompt struct {
	Text    string
	IsParam bool
	Target  string
}

// Scope is the subset of analyser state completion needs: the compiled
// lookup table of the current dispatch scope (aliases -> Option/
// Subcommand), its root Args (for the next-expected-positional
// fallback), and what's already been matched (so seen options/
// subcommands are not re-suggested).
type Scope struct {
	Params map[string]any // alias -> *option.Option | *option.Subcommand
	Args   *args.Args
	Seen   map[string]bool // dest/name already present in the result
}

// Build generates the prompt list for the current parse context.
// context is whatever argv.Context held when the completion trigger
// fired: *args.Arg, *option.Subcommand, a partial string, or nil.
// Ground: _internal/_handlers.py's `prompt`/`_prompt_unit`/`_prompt_none`.
func Build(av *argv.Argv, scope Scope, context any, subScopes map[*option.Subcommand]Scope) []Prompt {
	switch c := context.(type) {
	case *args.Arg:
		return promptUnit(av, c)
	case *option.Subcommand:
		sub, ok := subScopes[c]
		if !ok {
			return nil
		}
		var out []Prompt
		for alias := range sub.Params {
			out = append(out, Prompt{Text: alias})
		}
		return out
	case string:
		return promptPartial(scope, c)
	default:
		releases := av.Release(true)
		if len(releases) > 0 {
			if target, ok := lastNonEmptyString(releases); ok {
				if res := promptPartial(scope, target); len(res) > 0 {
					return res
				}
			}
		}
		return promptNone(scope)
	}
}

func lastNonEmptyString(vals []any) (string, bool) {
	for i := len(vals) - 1; i >= 0; i-- {
		if s, ok := vals[i].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func promptUnit(av *argv.Argv, arg *args.Arg) []Prompt {
	if arg.Field.Completion == nil {
		return []Prompt{{Text: displayArg(arg)}}
	}
	hints := arg.Field.Completion()
	if len(hints) == 0 {
		return []Prompt{{Text: displayArg(arg)}}
	}
	releases := av.Release(true)
	target, _ := lastNonEmptyString(releases)
	var filtered []string
	for _, h := range hints {
		if target != "" && strings.Contains(h, target) {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) == 0 {
		filtered = hints
	}
	out := make([]Prompt, 0, len(filtered))
	for _, h := range filtered {
		out = append(out, Prompt{Text: arg.Name + ": " + h, Target: target})
	}
	return out
}

func displayArg(arg *args.Arg) string {
	return arg.Name
}

func promptPartial(scope Scope, target string) []Prompt {
	var matched []string
	for alias := range scope.Params {
		if strings.Contains(alias, target) {
			matched = append(matched, alias)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	var unseen []string
	for _, m := range matched {
		if !scope.Seen[destOf(scope.Params[m])] {
			unseen = append(unseen, m)
		}
	}
	pick := matched
	if len(unseen) > 0 {
		pick = unseen
	}
	out := make([]Prompt, 0, len(pick))
	for _, p := range pick {
		out = append(out, Prompt{Text: p, IsParam: true, Target: target})
	}
	return out
}

func promptNone(scope Scope) []Prompt {
	var out []Prompt
	if len(scope.Args.Normal) > 0 {
		if _, done := scope.Seen[scope.Args.Normal[0].Name]; !done {
			out = append(out, promptUnit(argv.New(), scope.Args.Normal[0])...)
		}
	}
	for alias, param := range scope.Params {
		if !scope.Seen[destOf(param)] {
			out = append(out, Prompt{Text: alias})
		}
	}
	return out
}

func destOf(param any) string {
	switch p := param.(type) {
	case *option.Option:
		return p.Dest
	case *option.Subcommand:
		return p.Dest
	default:
		return ""
	}
}

// Dispatch takes an already-built prompt list. An empty list returns a
// *errs.SpecialOptionTriggered without pausing or emitting; otherwise it
// either returns a *errs.PauseTriggered (when paused is true, e.g. an
// interactive caller has set up a completion context) or emits the
// prompts through sink and returns a
// *errs.SpecialOptionTriggered. Ground: `handle_completion`.
func Dispatch(sink output.Sink, commandName string, prompts []Prompt, paused bool) error {
	if len(prompts) == 0 {
		return &errs.SpecialOptionTriggered{Kind: "completion"}
	}
	if paused {
		texts := make([]string, len(prompts))
		for i, p := range prompts {
			texts[i] = p.Text
		}
		return &errs.PauseTriggered{Prompts: texts}
	}
	if sink != nil {
		sink.Send(commandName, func() string {
			texts := make([]string, len(prompts))
			for i, p := range prompts {
				texts[i] = p.Text
			}
			return strings.Join(texts, "\n")
		})
	}
	return &errs.SpecialOptionTriggered{Kind: "completion"}
}
