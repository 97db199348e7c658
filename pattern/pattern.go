// Package pattern implements the value-pattern abstraction the analyzer
// delegates per-argument validation to (spec C1): every Arg carries a
// Pattern, and the analyzer only ever calls Validate/Invalidate on it.
//
// Concrete kinds (any/string/int/float/number/bool/flag/wildcard/regex/
// semver/schema) live alongside the interface the way the upstream
// `nepattern` package ships a handful of built-ins next to `BasePattern`.
package pattern

import "fmt"

// Flag reports the outcome of a Pattern validation.
type Flag int

const (
	// Valid means the input matched and Result.Value holds the converted value.
	Valid Flag = iota
	// Default means the input did not match but a default was supplied.
	Default
	// Error means the input did not match and there is no default.
	Error
)

func (f Flag) String() string {
	switch f {
	case Valid:
		return "valid"
	case Default:
		return "default"
	default:
		return "error"
	}
}

// Result is what a Pattern.Validate call returns.
type Result struct {
	Flag  Flag
	Value any
	Err   error
}

// Pattern is the abstract per-argument validation contract (C1). The
// analyzer never inspects a Pattern's internals; it only calls Validate
// (or Invalidate, for a negated match) and inspects the returned Flag.
type Pattern interface {
	// Name is a short human label used in diagnostics and help text.
	Name() string
	// Validate checks text against the pattern. When it doesn't match and
	// def is non-nil, Validate should return a Default result carrying def
	// rather than Error.
	Validate(text string, def any) Result
	// Invalidate is Validate with success/failure swapped, used for Option
	// wildcards and negated matchers; the default implementation inverts
	// Validate's flag.
	Invalidate(text string, def any) Result
}

// base provides the shared Invalidate behavior so concrete Patterns only
// need to implement Validate.
type base struct{}

func (base) invalidate(p Pattern, text string, def any) Result {
	res := p.Validate(text, nil)
	if res.Flag == Valid {
		if def != nil {
			return Result{Flag: Default, Value: def}
		}
		return Result{Flag: Error, Err: fmt.Errorf("%q unexpectedly matched %s", text, p.Name())}
	}
	return Result{Flag: Valid, Value: text}
}

func valid(v any) Result { return Result{Flag: Valid, Value: v} }

func errf(format string, args ...any) Result {
	return Result{Flag: Error, Err: fmt.Errorf(format, args...)}
}

func withDefault(def any, err Result) Result {
	if def != nil {
		return Result{Flag: Default, Value: def}
	}
	return err
}
