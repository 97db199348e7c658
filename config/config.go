// Package config implements per-namespace defaults (A3): command
// prefixes, token separators, fuzzy-match threshold, and which builtin
// special options (help/shortcut/completion) a namespace exposes and
// under what aliases. Mirrors `arclet.alconna.config.Namespace`.
package config

import (
	"sync"

	"github.com/alconna-go/alconna/argv"
)

// Namespace bundles the defaults every command compiled under it
// inherits unless overridden at the command level.
type Namespace struct {
	Name string

	Prefixes   []string
	Separators []rune

	FuzzyMatch     bool
	FuzzyThreshold float64

	// BuiltinOptions maps each builtin special option kind to the alias
	// list it is exposed under; an empty or absent entry disables that
	// builtin for the namespace.
	BuiltinOptions map[argv.Special][]string

	// Remainders names tokens that end greedy variadic collection
	// without being consumed by it (e.g. "--").
	Remainders []string
}

// Default returns the baseline namespace: no prefixes, space
// separator, fuzzy matching on with a 0.6 threshold, and help/shortcut/
// completion all enabled under their conventional aliases. Grounded on
// the teacher's DefaultValidationConfig()-style "plain struct literal +
// constructor function" shape (core/types/validation_config.go).
func Default() *Namespace {
	return &Namespace{
		Name:           "default",
		Prefixes:       nil,
		Separators:     []rune{' '},
		FuzzyMatch:     true,
		FuzzyThreshold: 0.6,
		BuiltinOptions: map[argv.Special][]string{
			argv.SpecialHelp:       {"--help", "-h"},
			argv.SpecialShortcut:   {"--shortcut"},
			argv.SpecialCompletion: {"--comp", "?"},
		},
		Remainders: []string{"--"},
	}
}

// Disable removes kind's builtin option for this namespace.
func (ns *Namespace) Disable(kind argv.Special) *Namespace {
	delete(ns.BuiltinOptions, kind)
	return ns
}

// WithBuiltin overrides (or adds) the alias list a builtin kind is
// exposed under.
func (ns *Namespace) WithBuiltin(kind argv.Special, aliases ...string) *Namespace {
	if ns.BuiltinOptions == nil {
		ns.BuiltinOptions = map[argv.Special][]string{}
	}
	ns.BuiltinOptions[kind] = aliases
	return ns
}

// Seed configures a freshly-built Argv with this namespace's separators,
// fuzzy settings, remainders, and the special-token table the dispatch
// loop consults for builtin options.
func (ns *Namespace) Seed(av *argv.Argv) {
	if len(ns.Separators) > 0 {
		av.Separators = make(map[rune]bool, len(ns.Separators))
		for _, r := range ns.Separators {
			av.Separators[r] = true
		}
	}
	av.FuzzyMatch = ns.FuzzyMatch
	av.FuzzyThreshold = ns.FuzzyThreshold
	for _, r := range ns.Remainders {
		av.Remainders[r] = true
	}
	av.Specials = make(map[string]argv.Special)
	for kind, aliases := range ns.BuiltinOptions {
		for _, alias := range aliases {
			av.Specials[alias] = kind
		}
	}
}

// registry is a process-wide, concurrency-safe table of named
// namespaces, mirroring the teacher's core/decorator/registry.go
// mutex+map "driver registration" idiom applied to namespaces instead
// of decorators.
type registry struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
}

var global = &registry{namespaces: map[string]*Namespace{}}

// Register makes ns available to later Get/Require calls under its Name.
func Register(ns *Namespace) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.namespaces[ns.Name] = ns
}

// Get returns the namespace registered under name, if any.
func Get(name string) (*Namespace, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	ns, ok := global.namespaces[name]
	return ns, ok
}

// Require returns the namespace registered under name, falling back to
// Default() when none was registered.
func Require(name string) *Namespace {
	if ns, ok := Get(name); ok {
		return ns
	}
	return Default()
}

func init() {
	Register(Default())
}
