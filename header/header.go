// Package header implements the command header matcher (C3): compiling
// a command name plus its prefixes into a literal-set, regex, Pattern,
// or prefix/command pair matcher, and matching the leading token(s) of
// an Argv stream against it at parse time.
package header

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/internal/fuzzy"
	"github.com/alconna-go/alconna/pattern"
)

// Kind selects which of Header's content variants is populated, mirroring
// the upstream Header.flag discriminant computed from content's Python
// type at construction time.
type Kind int

const (
	KindLiteralSet Kind = iota
	KindRegex
	KindPattern
	KindPairs // non-string prefix + command, matched across two Next calls
)

// Result is the outcome of a successful header match: the raw matched
// text, the (possibly pattern-converted) value, and any named regex
// groups captured from brace slots in the command name.
type Result struct {
	Origin  string
	Value   any
	Matched bool
	Groups  map[string]string
	Fixes   map[string]pattern.Pattern
}

// Pair matches a non-string prefix token followed by a command token,
// used when Header.Kind is KindPairs (mixed or fully non-string prefix
// set). Grounded on spec.md §4.2's "Double pair matcher".
type Pair struct {
	Prefix  any
	Command string
}

// Header is the compiled command header matcher.
type Header struct {
	Kind Kind

	// Origin is the raw (command, prefixes) pair used for fuzzy-match
	// suggestion text and for re-deriving headersText on failure.
	Command  string
	Prefixes []string

	Literals map[string]bool
	Regex    *regexp.Regexp
	Pattern  pattern.Pattern
	Pairs    []Pair

	// Fixes maps a named brace-slot to the Pattern it should validate
	// against post-match (populated when the command name contains
	// `{name:type}` slots referencing a registered Pattern by name).
	Fixes map[string]pattern.Pattern

	Compact        bool
	CompactPattern *regexp.Regexp

	FuzzyMatch     bool
	FuzzyThreshold float64
}

// Compile builds a Header from a command name and its prefixes. The
// command name may use `{name}`, `{name:type}`, `{:type}`, or `{}` brace
// slots to capture a named regex group, optionally validated against a
// registered pattern.Pattern; a leading "re:" forces the remainder to be
// treated as a raw regular expression instead of a literal/brace name.
func Compile(command string, prefixes []string, compact bool) (*Header, error) {
	h := &Header{Command: command, Prefixes: prefixes, Fixes: map[string]pattern.Pattern{}}

	var body string
	var toRegex bool
	if strings.HasPrefix(command, "re:") {
		body = command[3:]
		toRegex = true
	} else {
		var err error
		body, toRegex, err = convertBraces(command, h.Fixes)
		if err != nil {
			return nil, err
		}
	}

	if len(prefixes) == 0 {
		if toRegex {
			re, err := regexp.Compile(body)
			if err != nil {
				return nil, fmt.Errorf("compile header regex %q: %w", body, err)
			}
			h.Kind = KindRegex
			h.Regex = re
			h.CompactPattern = mustCompile("^" + body)
			h.Compact = compact
			return h, nil
		}
		h.Kind = KindLiteralSet
		h.Literals = map[string]bool{body: true}
		h.CompactPattern = mustCompile("^" + regexp.QuoteMeta(body))
		h.Compact = compact
		return h, nil
	}

	escaped := make([]string, len(prefixes))
	for i, p := range prefixes {
		escaped[i] = regexp.QuoteMeta(p)
	}
	prefixAlt := strings.Join(escaped, "|")

	if toRegex {
		h.CompactPattern = mustCompile(fmt.Sprintf("^(?:%s)%s", prefixAlt, body))
		re, err := regexp.Compile(fmt.Sprintf("(?:%s)%s", prefixAlt, body))
		if err != nil {
			return nil, fmt.Errorf("compile header regex %q: %w", body, err)
		}
		h.Kind = KindRegex
		h.Regex = re
		h.Compact = compact
		return h, nil
	}

	h.CompactPattern = mustCompile(fmt.Sprintf("^(?:%s)%s", prefixAlt, regexp.QuoteMeta(body)))
	literals := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		literals[p+body] = true
	}
	h.Kind = KindLiteralSet
	h.Literals = literals
	h.Compact = compact
	return h, nil
}

// CompileWithPattern builds a Header whose command slot is itself a
// pattern.Pattern (e.g. a numeric command id) rather than literal text.
func CompileWithPattern(p pattern.Pattern, prefixes []string, compact bool) *Header {
	return &Header{
		Kind:     KindPattern,
		Pattern:  p,
		Prefixes: prefixes,
		Compact:  compact,
		Fixes:    map[string]pattern.Pattern{},
	}
}

// CompilePairs builds a Header matched across two tokens: a non-string
// prefix object followed by a literal command string. Used when the
// command's prefixes are opaque (non-string) segments.
func CompilePairs(command string, prefixObjs []any, compact bool) *Header {
	pairs := make([]Pair, len(prefixObjs))
	for i, p := range prefixObjs {
		pairs[i] = Pair{Prefix: p, Command: command}
	}
	return &Header{
		Kind:    KindPairs,
		Command: command,
		Pairs:   pairs,
		Compact: compact,
		Fixes:   map[string]pattern.Pattern{},
	}
}

func mustCompile(expr string) *regexp.Regexp {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

// bracketRe splits a command name on `{...}` slots, same split points the
// upstream's _convert_bracket produces via re.split(r"(\{.*?})", name).
var bracketRe = regexp.MustCompile(`(\{.*?\})`)

// convertBraces rewrites `{name}`/`{name:type}`/`{:type}`/`{}` slots in a
// command name into named regex capture groups, recording any type-named
// slot's Pattern into fixes so header match results can report a typed
// value instead of just the captured string. Ground:
// original_source/.../_internal/_header.py's _convert_bracket.
func convertBraces(name string, fixes map[string]pattern.Pattern) (string, bool, error) {
	parts := bracketRe.Split(name, -1)
	matches := bracketRe.FindAllString(name, -1)
	if len(matches) == 0 {
		return name, false, nil
	}
	var b strings.Builder
	mi := 0
	for _, lit := range parts {
		b.WriteString(regexp.QuoteMeta(lit))
		if mi < len(matches) {
			inner := strings.TrimSuffix(strings.TrimPrefix(matches[mi], "{"), "}")
			frag, err := braceFragment(inner, fixes)
			if err != nil {
				return "", false, err
			}
			b.WriteString(frag)
			mi++
		}
	}
	return b.String(), true, nil
}

// braceFragment converts one brace slot's inner text ("name:type",
// "name", ":type", or "") into the regex fragment that replaces it.
func braceFragment(inner string, fixes map[string]pattern.Pattern) (string, error) {
	res := strings.SplitN(inner, ":", 2)
	switch {
	case inner == "" || (len(res) > 1 && res[0] == "" && res[1] == ""):
		return `.+?`, nil
	case len(res) == 1 || res[1] == "":
		return fmt.Sprintf(`(?P<%s>.+)`, res[0]), nil
	case res[0] == "":
		return pattern.RegexFragment(res[1]), nil
	default:
		if p, ok := pattern.Lookup(res[1]); ok {
			fixes[res[0]] = p
			frag := pattern.RegexFragment(res[1])
			if frag == res[1] {
				frag = `.+`
			}
			return fmt.Sprintf(`(?P<%s>%s)`, res[0], frag), nil
		}
		return fmt.Sprintf(`(?P<%s>%s)`, res[0], res[1]), nil
	}
}

// Match consumes the leading token(s) of argv against h, returning the
// match Result or an error: *errs.FuzzyMatchSuccess when fuzzy matching
// is enabled and the head is close to a known header, else
// *errs.InvalidParam.
func (h *Header) Match(av *argv.Argv) (*Result, error) {
	headText, isStr := av.Next()
	headStr, _ := headText.(string)

	if isStr {
		switch h.Kind {
		case KindLiteralSet:
			if h.Literals[headStr] {
				return &Result{Origin: headStr, Value: headStr, Matched: true, Fixes: h.Fixes}, nil
			}
		case KindRegex:
			if m := h.Regex.FindStringSubmatch(headStr); m != nil && len(m[0]) == len(headStr) {
				return &Result{Origin: headStr, Value: headStr, Matched: true, Groups: namedGroups(h.Regex, m), Fixes: h.Fixes}, nil
			}
		}
		if h.Compact && (h.Kind == KindLiteralSet || h.Kind == KindRegex) && h.CompactPattern != nil {
			if m := h.CompactPattern.FindStringSubmatchIndex(headStr); m != nil && m[0] == 0 {
				matched := headStr[:m[1]]
				av.Rollback(headStr[m[1]:], true)
				groups := namedGroupsFromIndex(h.CompactPattern, headStr, m)
				return &Result{Origin: matched, Value: matched, Matched: true, Groups: groups, Fixes: h.Fixes}, nil
			}
		}
	}

	if h.Kind == KindPattern {
		res := h.Pattern.Validate(headStr, nil)
		if res.Flag == pattern.Valid {
			return &Result{Origin: headStr, Value: res.Value, Matched: true, Fixes: h.Fixes}, nil
		}
	}

	mayCmd, mStr := av.Next()
	mayCmdStr, _ := mayCmd.(string)

	if h.Kind == KindPairs && mStr {
		for _, pair := range h.Pairs {
			if pair.Command == mayCmdStr {
				return &Result{Origin: pair.Command, Value: pair.Command, Matched: true, Fixes: h.Fixes}, nil
			}
		}
	}

	if isStr {
		av.Rollback(mayCmd, false)
		if h.FuzzyMatch {
			if err := h.fuzzy(headStr); err != nil {
				return nil, err
			}
		}
		return nil, errs.NewInvalidParam(headStr, "header does not match %q", headStr)
	}
	if mStr && mayCmdStr != "" {
		if h.FuzzyMatch {
			if err := h.fuzzy(fmt.Sprintf("%v %s", headText, mayCmdStr)); err != nil {
				return nil, err
			}
		}
		return nil, errs.NewInvalidParam(mayCmdStr, "header does not match %q", mayCmdStr)
	}
	av.Rollback(mayCmd, false)
	return nil, errs.NewInvalidParam(headText, "header does not match")
}

// fuzzy compares source against every concrete header string this
// Header could have matched (prefix+command combinations) and raises
// FuzzyMatchSuccess when any is within threshold.
func (h *Header) fuzzy(source string) error {
	var candidates []string
	if len(h.Prefixes) == 0 {
		candidates = []string{h.Command}
	} else {
		for _, p := range h.Prefixes {
			candidates = append(candidates, p+h.Command)
		}
	}
	best, score, ok := fuzzy.BestMatch(source, candidates)
	if ok && score >= h.FuzzyThreshold {
		return &errs.FuzzyMatchSuccess{Source: source, Target: best}
	}
	return nil
}

func namedGroups(re *regexp.Regexp, m []string) map[string]string {
	names := re.SubexpNames()
	out := map[string]string{}
	for i, n := range names {
		if n != "" && i < len(m) {
			out[n] = m[i]
		}
	}
	return out
}

func namedGroupsFromIndex(re *regexp.Regexp, text string, idx []int) map[string]string {
	names := re.SubexpNames()
	out := map[string]string{}
	for i, n := range names {
		if n == "" {
			continue
		}
		lo, hi := idx[2*i], idx[2*i+1]
		if lo >= 0 && hi >= 0 {
			out[n] = text[lo:hi]
		}
	}
	return out
}
