package pattern

import "regexp"

// Regex wraps a compiled regular expression as a Pattern; a full match
// against text succeeds with the matched string as the value. It can be
// used as any Arg's Pattern.
type Regex struct {
	base
	name string
	re   *regexp.Regexp
}

// NewRegex compiles expr and names the resulting Pattern name for
// diagnostics (defaults to the expression itself).
func NewRegex(name, expr string) (*Regex, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = expr
	}
	return &Regex{name: name, re: re}, nil
}

func (r *Regex) Name() string { return r.name }

func (r *Regex) Validate(text string, def any) Result {
	if loc := r.re.FindStringIndex(text); loc != nil && loc[0] == 0 && loc[1] == len(text) {
		return valid(text)
	}
	return withDefault(def, errf("%q does not match /%s/", text, r.re.String()))
}

func (r *Regex) Invalidate(text string, def any) Result {
	return r.base.invalidate(r, text, def)
}
