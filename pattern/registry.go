package pattern

import "sync"

// regexFragments maps a built-in kind to the bare (unanchored) regex fragment it
// contributes to header-brace compilation (SPEC_FULL.md / spec.md §4.2's
// `{name:type}` -> named-group rewriting). Mirrors the upstream's module-
// level `regex_patterns` table in _internal/_header.py.
var regexFragments = map[string]string{
	"str":    `.+`,
	"int":    `-?\d+`,
	"float":  `-?\d+\.?\d*`,
	"number": `-?\d+(?:\.\d*)?`,
	"bool":   `(?i:true|false)`,
	"semver": `v?\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?`,
}

// registry is the global name->Pattern table, mirroring nepattern's
// `all_patterns()` global lookup used by header-brace compilation to
// resolve a `{name:type}` slot's type name to both a Pattern and a regex
// fragment. Guarded the same way the teacher's core/decorator/registry.go
// guards its decorator registry: a plain sync.RWMutex over a map (the
// "database/sql driver registration" idiom).
type registry struct {
	mu    sync.RWMutex
	byKey map[string]Pattern
}

var global = newRegistry()

func newRegistry() *registry {
	r := &registry{byKey: make(map[string]Pattern)}
	r.register("any", Any)
	r.register("str", String)
	r.register("string", String)
	r.register("int", Int)
	r.register("float", Float)
	r.register("number", Number)
	r.register("bool", Bool)
	r.register("semver", SemVer)
	r.register("flag", KWBool)
	r.register("*", Wildcard)
	return r
}

func (r *registry) register(name string, p Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[name] = p
}

func (r *registry) lookup(name string) (Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byKey[name]
	return p, ok
}

// Register adds or replaces a named Pattern in the global registry so it
// can be referenced by name from header brace syntax (e.g. Register("port",
// myPortPattern) enables "server.{p:port}").
func Register(name string, p Pattern) {
	global.register(name, p)
}

// Lookup resolves a name to a registered Pattern.
func Lookup(name string) (Pattern, bool) {
	return global.lookup(name)
}

// RegexFragment returns the bare regex fragment for a built-in type name,
// or the name itself (treated as a literal fragment) when unknown — mirrors
// `regex_patterns.get(res[1], str(pat.pattern ...))` in _internal/_header.py.
func RegexFragment(name string) string {
	if frag, ok := regexFragments[name]; ok {
		return frag
	}
	return name
}
