package pattern

import "golang.org/x/mod/semver"

// SemVer validates a semantic version string (leading "v" optional; the
// "vMAJOR" and "vMAJOR.MINOR" shorthands are accepted too) using
// golang.org/x/mod/semver, the way the teacher's core/types/validation.go
// leans on the same package for its "version" JSON Schema format.
var SemVer Pattern = semverPattern{}

type semverPattern struct{ base }

func (semverPattern) Name() string { return "semver" }

func (p semverPattern) Validate(text string, def any) Result {
	v := text
	if len(v) == 0 || v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return withDefault(def, errf("%q is not a valid semantic version", text))
	}
	return valid(v)
}

func (p semverPattern) Invalidate(text string, def any) Result {
	return p.base.invalidate(p, text, def)
}
