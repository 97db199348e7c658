package pattern

import (
	"strconv"
	"strings"
)

// Any matches and passes through any text unchanged.
var Any Pattern = anyPattern{}

type anyPattern struct{ base }

func (anyPattern) Name() string { return "any" }
func (p anyPattern) Validate(text string, def any) Result {
	return valid(text)
}
func (p anyPattern) Invalidate(text string, def any) Result { return p.base.invalidate(p, text, def) }

// String matches any non-empty text as-is. Mirrors nepattern's `STRING`.
var String Pattern = stringPattern{}

type stringPattern struct{ base }

func (stringPattern) Name() string { return "str" }
func (p stringPattern) Validate(text string, def any) Result {
	if text == "" {
		return withDefault(def, errf("expected a string, got empty input"))
	}
	return valid(text)
}
func (p stringPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}

// Int parses a signed integer, matching regex_patterns["int"] = `-?\d+`.
var Int Pattern = intPattern{}

type intPattern struct{ base }

func (intPattern) Name() string { return "int" }
func (p intPattern) Validate(text string, def any) Result {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return withDefault(def, errf("%q is not an int: %w", text, err))
	}
	return valid(n)
}
func (p intPattern) Invalidate(text string, def any) Result { return p.base.invalidate(p, text, def) }

// Float parses a floating point number.
var Float Pattern = floatPattern{}

type floatPattern struct{ base }

func (floatPattern) Name() string { return "float" }
func (p floatPattern) Validate(text string, def any) Result {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return withDefault(def, errf("%q is not a float: %w", text, err))
	}
	return valid(f)
}
func (p floatPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}

// Number parses either an int or a float, preferring int, matching
// regex_patterns["number"].
var Number Pattern = numberPattern{}

type numberPattern struct{ base }

func (numberPattern) Name() string { return "number" }
func (p numberPattern) Validate(text string, def any) Result {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return valid(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return valid(f)
	}
	return withDefault(def, errf("%q is not a number", text))
}
func (p numberPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}

// Bool parses case-insensitive true/false, matching regex_patterns["bool"].
var Bool Pattern = boolPattern{}

type boolPattern struct{ base }

func (boolPattern) Name() string { return "bool" }
func (p boolPattern) Validate(text string, def any) Result {
	switch strings.ToLower(text) {
	case "true":
		return valid(true)
	case "false":
		return valid(false)
	default:
		return withDefault(def, errf("%q is not a bool", text))
	}
}
func (p boolPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}

// KWBool is a keyword-only boolean flag: presence of the bare key (no
// "=value" tail) is truthy. Resolved Open Question, SPEC_FULL.md §4.3a.
var KWBool Pattern = kwBoolPattern{}

type kwBoolPattern struct{ base }

func (kwBoolPattern) Name() string { return "flag" }
func (p kwBoolPattern) Validate(text string, def any) Result {
	if text == "" {
		return withDefault(def, errf("expected a flag value"))
	}
	switch strings.ToLower(text) {
	case "false", "no", "0":
		return valid(false)
	default:
		return valid(true)
	}
}
func (p kwBoolPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}

// Wildcard absorbs all remaining tokens; Args analysis special-cases its
// alias ("*") to short-circuit the rest of the positional scan (spec §4.3
// step 1). Validate always succeeds so a direct call still behaves sanely.
var Wildcard Pattern = wildcardPattern{}

type wildcardPattern struct{ base }

func (wildcardPattern) Name() string { return "*" }
func (p wildcardPattern) Validate(text string, def any) Result { return valid(text) }
func (p wildcardPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}
