// Package args implements the Args analyzer (C4): the bucketed model of
// an Arg slot (normal, keyword-only, variadic-positional, variadic-
// keyword, unpack) and the analyse routine that consumes tokens off an
// Argv in the strict order spec.md §4.3 names: normals, unpack,
// var-positional, keyword-only, var-keyword.
package args

import "github.com/alconna-go/alconna/pattern"

// Field carries the per-Arg extras the upstream bundles into a Field
// object: a default value, whether the slot is optional, completion
// hints, and custom diagnostic messages.
type Field struct {
	Default      any
	HasDefault   bool
	Optional     bool
	Completion   func() []string
	MissingTips  string
	UnmatchTips  string
}

// WithDefault returns a Field carrying the given default value.
func WithDefault(v any) Field { return Field{Default: v, HasDefault: true} }

func (f Field) missingTips(key string) string {
	if f.MissingTips != "" {
		return f.MissingTips
	}
	return "missing argument: " + key
}

func (f Field) unmatchTips(got any, reason string) string {
	if f.UnmatchTips != "" {
		return f.UnmatchTips
	}
	if reason != "" {
		return reason
	}
	return "argument did not match"
}

// Arg is one positional or keyword-only slot.
type Arg struct {
	Name       string
	Value      pattern.Pattern
	Separators []rune
	// KeySep is the key=value delimiter a keyword-only Arg's token is
	// split on (distinct from Separators, which bounds the token itself
	// in the surrounding stream). Defaults to '=' when zero. Mirrors the
	// upstream KeyWordVar's own `sep`, separate from the Args-wide
	// token separator passed to `argv.next`.
	KeySep rune
	Field  Field
}

// NewArg builds a normal/keyword-only Arg. Pass args.WithDefault(v) or
// leave Field zero for a required slot.
func NewArg(name string, p pattern.Pattern, field ...Field) *Arg {
	a := &Arg{Name: name, Value: p, KeySep: '='}
	if len(field) > 0 {
		a.Field = field[0]
	}
	return a
}

func (a *Arg) keySep() rune {
	if a.KeySep == 0 {
		return '='
	}
	return a.KeySep
}

func (a *Arg) isWildcard() bool {
	return a.Value != nil && a.Value.Name() == "*"
}

// VarFlag controls how a variadic slot behaves when it collects nothing:
// FlagRequireOne fails with ArgumentMissing, FlagAllowEmpty yields an
// empty collection, FlagUseDefault falls back to the slot's default.
type VarFlag int

const (
	FlagUseDefault VarFlag = iota
	FlagRequireOne         // '+'
	FlagAllowEmpty         // '*'
)

// VarPositional is a variadic-positional slot: it greedily consumes
// tokens that validate against Value until failure, a param id, a
// special, or a recognized keyword-only key is seen.
type VarPositional struct {
	Arg      *Arg
	MaxCount int // 0 = unlimited
	Flag     VarFlag
}

// VarKeyword is a variadic-keyword slot: it greedily consumes
// `key<sep>value`-shaped tokens.
type VarKeyword struct {
	Arg      *Arg
	Sep      rune
	MaxCount int
	Flag     VarFlag
}

// Unpack recursively analyses a nested Args and stores the result as a
// single named value (e.g. constructing a nested record from flat args).
type Unpack struct {
	Arg    *Arg
	Nested *Args
}

// Args is the bucketed slot collection a Header/Option/Subcommand's
// argument list compiles into. Invariant: normals precede variadics, and
// at most one Unpack slot is allowed — kept by the AddNormal/
// AddKeywordOnly/AddVarPositional/AddVarKeyword/SetUnpack builders.
type Args struct {
	Normal        []*Arg
	Unpack        *Unpack
	VarsPositional []*VarPositional
	KeywordOnly   []*Arg
	VarsKeyword   []*VarKeyword

	keywordIndex map[string]int
}

// New builds an empty Args.
func New() *Args {
	return &Args{keywordIndex: map[string]int{}}
}

// AddNormal appends a normal positional slot.
func (as *Args) AddNormal(a *Arg) *Args {
	as.Normal = append(as.Normal, a)
	return as
}

// AddKeywordOnly appends a keyword-only slot.
func (as *Args) AddKeywordOnly(a *Arg) *Args {
	as.KeywordOnly = append(as.KeywordOnly, a)
	as.keywordIndex[a.Name] = len(as.KeywordOnly) - 1
	return as
}

// AddVarPositional appends a variadic-positional slot.
func (as *Args) AddVarPositional(v *VarPositional) *Args {
	as.VarsPositional = append(as.VarsPositional, v)
	return as
}

// AddVarKeyword appends a variadic-keyword slot.
func (as *Args) AddVarKeyword(v *VarKeyword) *Args {
	as.VarsKeyword = append(as.VarsKeyword, v)
	return as
}

// SetUnpack installs the (at most one) nested-args slot.
func (as *Args) SetUnpack(u *Unpack) *Args {
	as.Unpack = u
	return as
}

// KeywordByName looks up a keyword-only Arg by name.
func (as *Args) KeywordByName(name string) (*Arg, bool) {
	i, ok := as.keywordIndex[name]
	if !ok {
		return nil, false
	}
	return as.KeywordOnly[i], true
}

// HasSlots reports whether this Args carries any slot at all — used by
// the option analyzer to decide whether an Option/Subcommand consumes a
// trailing Args block (nargs > 0) or is a bare flag.
func (as *Args) HasSlots() bool {
	if as == nil {
		return false
	}
	return len(as.Normal) > 0 || as.Unpack != nil ||
		len(as.VarsPositional) > 0 || len(as.KeywordOnly) > 0 || len(as.VarsKeyword) > 0
}
