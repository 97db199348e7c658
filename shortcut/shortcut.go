// Package shortcut implements the shortcut engine (C6): named or
// regex-keyed rewrites of a command's raw token stream, registered per
// command and looked up before the normal analyzer runs.
package shortcut

import (
	"regexp"
	"strings"
)

// VarFlag mirrors args.VarFlag's empty/require-one/use-default trio but
// for a shortcut's own argument-fill behavior when invoked bare.
type VarFlag int

const (
	FlagUseDefault VarFlag = iota
	FlagRequireOne
	FlagAllowEmpty
)

// Wrapper transforms a captured regex-shortcut value before substitution.
// An empty return leaves the captured text unchanged. Ground: upstream's
// ShortcutRegWrapper callback in `_handle_shortcut_reg`.
type Wrapper func(key any, captured string) string

// Args is the payload a registered shortcut rewrites into: either a
// literal replacement command (Command) plus an indexed Arguments list
// for `{%N}`/`{*sep}` substitution, or (when Key is a compiled regex)
// numbered/named group substitution driven directly off the match.
type Args struct {
	Command   string
	Arguments []any
	Fuzzy     bool
	Prefix    bool
	Wrapper   Wrapper
	Humanized string
}

// entry is one registered shortcut: Key is the literal text (display and
// match table key) or, when Regex is non-nil, the compiled pattern the
// match table key was built from.
type entry struct {
	Key   string
	Regex *regexp.Regexp
	Args  Args
}

// Table holds one command's registered shortcuts: a display map
// (humanized keys, exact key text) and a match map (including
// prefix-prepended variants), mirroring the upstream's two-shadow-table
// layout in `CommandManager.add_shortcut`.
type Table struct {
	display map[string]*entry
	match   []*entry // preserves registration order for first-match-wins
}

// New builds an empty shortcut Table.
func New() *Table {
	return &Table{display: map[string]*entry{}}
}

// Add registers a literal-text shortcut under key, optionally emitting
// one extra prefix-prepended match variant per prefix when a.Prefix is
// set. Ground: `CommandManager.add_shortcut`.
func (t *Table) Add(key string, a Args, prefixes []string) {
	e := &entry{Key: key, Args: a}
	display := a.Humanized
	if display == "" {
		display = key
	}
	t.display[display] = e
	t.match = append(t.match, e)
	if a.Prefix {
		for _, p := range prefixes {
			pe := &entry{Key: p + key, Args: a}
			pe.Args.Command = p + a.Command
			t.match = append(t.match, pe)
		}
	}
}

// AddRegex registers a regex-keyed shortcut: key is compiled once and
// matched against the query at lookup time. Ground: `add_shortcut`'s
// `key.pattern`/`key.flags` branch for a non-string key.
func (t *Table) AddRegex(pattern string, a Args) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e := &entry{Key: pattern, Regex: re, Args: a}
	display := a.Humanized
	if display == "" {
		display = pattern
	}
	t.display[display] = e
	t.match = append(t.match, e)
	return nil
}

// Delete removes a shortcut by its registration key (literal text or
// regex source). Reports whether anything was removed.
func (t *Table) Delete(key string) bool {
	found := false
	for dk, e := range t.display {
		if e.Key == key {
			delete(t.display, dk)
		}
	}
	kept := t.match[:0]
	for _, e := range t.match {
		if e.Key == key {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	t.match = kept
	return found
}

// List returns the display table: humanized key to its registered Args.
func (t *Table) List() map[string]Args {
	out := make(map[string]Args, len(t.display))
	for k, e := range t.display {
		out[k] = e.Args
	}
	return out
}

// Match is the outcome of a successful lookup: Rest is the tail of the
// query not consumed by the match (fed back as the rewritten command's
// own leading data when Fuzzy), Args is the matched shortcut's payload,
// and Groups/GroupNames hold a regex shortcut's captures for
// `{N}`/`{name}` substitution (nil for a literal match).
type Match struct {
	Args       Args
	Rest       string
	Groups     []string
	GroupNames map[string]string
}

// Find looks up query against t: exact literal match first, then (in
// registration order, first match wins) each fuzzy-regex shortcut tried
// as a prefix match, then each shortcut's key tried as a full match.
// Ground: `CommandManager.find_shortcut`'s `while True` query loop,
// collapsed here to a single query string since `Argv.release` has
// already flattened the remaining tokens upstream.
func (t *Table) Find(query string) (*Match, bool) {
	for _, e := range t.match {
		if e.Regex == nil && e.Key == query {
			return &Match{Args: e.Args}, true
		}
	}
	for _, e := range t.match {
		if e.Regex == nil {
			continue
		}
		if !e.Args.Fuzzy {
			continue
		}
		loc := e.Regex.FindStringIndex(query)
		if loc == nil || loc[0] != 0 {
			continue
		}
		m := &Match{Args: e.Args}
		if loc[1] < len(query) {
			m.Rest = query[loc[1]:]
		}
		m.Groups, m.GroupNames = groups(e.Regex, query[:loc[1]])
		return m, true
	}
	for _, e := range t.match {
		if e.Regex == nil {
			continue
		}
		sub := e.Regex.FindStringSubmatch(query)
		if sub == nil || sub[0] != query {
			continue
		}
		m := &Match{Args: e.Args}
		m.Groups, m.GroupNames = groups(e.Regex, query)
		return m, true
	}
	return nil, false
}

func groups(re *regexp.Regexp, s string) ([]string, map[string]string) {
	sub := re.FindStringSubmatch(s)
	if sub == nil {
		return nil, nil
	}
	names := map[string]string{}
	for i, n := range re.SubexpNames() {
		if n != "" && i < len(sub) {
			names[n] = sub[i]
		}
	}
	return sub, names
}

var (
	indexSlot    = regexp.MustCompile(`\{%(\d+)\}`)
	wildcardSlot = regexp.MustCompile(`(?s)\{\*(.*)\}`)
	indexRegSlot = regexp.MustCompile(`\{(\d+)\}`)
	keyRegSlot   = regexp.MustCompile(`\{(\w+)\}`)
)

// RewriteIndexed builds a rewritten copy of raw (an Argv's raw token list) for an
// indexed-argument shortcut, substituting `{%N}` with data[N] (splitting
// the owning unit into left/opaque/right pieces when data[N] is
// non-string) and `{*sep}` with the remaining data flattened and joined
// by sep. Returns the rewritten slice and the leftover data tokens the
// caller should still prepend/append to the stream. Ground:
// `_handle_shortcut_data`/`_handle_multi_slot`/`_gen_extend`.
func RewriteIndexed(raw []any, data []any) ([]any, []any) {
	if len(data) == 0 {
		return raw, nil
	}
	out := make([]any, 0, len(raw))
	used := make(map[int]bool)
	consumedAll := false

	for _, unit := range raw {
		s, isStr := unit.(string)
		if !isStr {
			out = append(out, unit)
			continue
		}
		if m := indexSlot.FindStringSubmatch(s); m != nil && indexFull(s, m[0]) {
			idx := atoiSafe(m[1])
			if idx >= len(data) {
				out = append(out, unit)
				continue
			}
			out = append(out, data[idx])
			used[idx] = true
			continue
		}
		if matches := indexSlot.FindAllStringSubmatch(s, -1); len(matches) > 0 {
			out = append(out, rewriteMultiSlot(s, data, used)...)
			continue
		}
		if m := wildcardSlot.FindStringSubmatch(s); m != nil {
			sep := m[1]
			if sep == "" {
				sep = " "
			}
			extend := genExtend(data, sep)
			if s == "{*"+m[1]+"}" {
				out = append(out, extend...)
			} else {
				out = append(out, strings.Replace(s, "{*"+m[1]+"}", joinStrings(extend, ""), 1))
			}
			consumedAll = true
			break
		}
		out = append(out, unit)
	}

	if consumedAll {
		return out, nil
	}
	var rest []any
	for i, d := range data {
		if !used[i] {
			rest = append(rest, d)
		}
	}
	return out, rest
}

func indexFull(s, matched string) bool { return s == matched }

func rewriteMultiSlot(unit string, data []any, used map[int]bool) (rewritten []any) {
	matches := indexSlot.FindAllStringSubmatch(unit, -1)
	text := unit
	for _, m := range matches {
		idx := atoiSafe(m[1])
		if idx >= len(data) {
			continue
		}
		used[idx] = true
		if sv, ok := data[idx].(string); ok {
			text = strings.Replace(text, m[0], sv, 1)
		} else {
			// non-string slot inside a composite unit: emit as its own
			// token, splitting the remaining text around it.
			parts := strings.SplitN(text, m[0], 2)
			if strings.TrimSpace(parts[0]) != "" {
				rewritten = append(rewritten, strings.TrimSpace(parts[0]))
			}
			rewritten = append(rewritten, data[idx])
			text = ""
			if len(parts) > 1 {
				text = parts[1]
			}
		}
	}
	if strings.TrimSpace(text) != "" {
		rewritten = append(rewritten, text)
	}
	return rewritten
}

func genExtend(data []any, sep string) []any {
	var out []any
	for _, d := range data {
		if s, ok := d.(string); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(string); ok {
				out[len(out)-1] = prev + sep + s
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func joinStrings(vals []any, sep string) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// RewriteRegex rewrites raw for a regex shortcut match: each `{N}` or
// `{name}` token is substituted with the matched group (via wrapper, if
// set), and tokens resolving to empty text are dropped. Ground:
// `_handle_shortcut_reg`.
func RewriteRegex(raw []any, groups []string, names map[string]string, wrapper Wrapper) []any {
	out := make([]any, 0, len(raw))
	for _, unit := range raw {
		s, isStr := unit.(string)
		if !isStr {
			out = append(out, unit)
			continue
		}
		if m := indexRegSlot.FindStringSubmatch(s); m != nil && m[0] == s {
			idx := atoiSafe(m[1])
			if idx < 0 || idx >= len(groups) || groups[idx] == "" {
				continue
			}
			out = append(out, applyWrapper(wrapper, idx, groups[idx]))
			continue
		}
		if m := keyRegSlot.FindStringSubmatch(s); m != nil && m[0] == s {
			val, ok := names[m[1]]
			if !ok || val == "" {
				continue
			}
			out = append(out, applyWrapper(wrapper, m[1], val))
			continue
		}
		s = indexRegSlot.ReplaceAllStringFunc(s, func(tok string) string {
			idx := atoiSafe(indexRegSlot.FindStringSubmatch(tok)[1])
			if idx < 0 || idx >= len(groups) || groups[idx] == "" {
				return ""
			}
			return applyWrapper(wrapper, idx, groups[idx]).(string)
		})
		s = keyRegSlot.ReplaceAllStringFunc(s, func(tok string) string {
			key := keyRegSlot.FindStringSubmatch(tok)[1]
			val, ok := names[key]
			if !ok || val == "" {
				return ""
			}
			return applyWrapper(wrapper, key, val).(string)
		})
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applyWrapper(w Wrapper, key any, captured string) any {
	if w == nil {
		return captured
	}
	if v := w(key, captured); v != "" {
		return v
	}
	return captured
}
