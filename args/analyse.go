package args

import (
	"regexp"
	"strings"

	"github.com/alconna-go/alconna/argv"
	"github.com/alconna-go/alconna/errs"
	"github.com/alconna-go/alconna/internal/fuzzy"
	"github.com/alconna-go/alconna/pattern"
)

// keyNormalize strips a leading "no"/"-" negation dressing off a keyword
// token, mirroring the upstream's `pat = re.compile("(?:-*no)?-*(?P<name>.+)")`.
var keyNormalize = regexp.MustCompile(`^(?:-*no)?-*(.+)$`)

func normalizeKey(raw string) string {
	if m := keyNormalize.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// Analyse consumes args off argv in the order normals -> unpack ->
// var-positional -> keyword-only -> var-keyword in one call, returning
// the matched name->value map. Used where nothing else needs a turn
// in between: an Option's own Args, a nested Unpack group, and the
// package's own tests. A caller whose Args consumption must interleave
// with option/subcommand dispatch (one args step, then let dispatch try
// again) drives a Progress directly instead — see NewProgress.
func Analyse(av *argv.Argv, as *Args) (map[string]any, error) {
	return AnalyseClaimed(av, as, nil)
}

// AnalyseClaimed is Analyse with an extra stop predicate: claims reports
// whether a token belongs to some option/subcommand reachable from the
// current dispatch scope, including compact/count forms like "-vvv"
// that av.ParamIDs' exact-alias lookup can't see on its own. Variadic
// slots stop collecting as soon as claims (or av.ParamIDs) recognizes
// the next token. Ground: _internal/_handlers.py's `analyse_args` stop
// checks against the option table.
func AnalyseClaimed(av *argv.Argv, as *Args, claims func(string) bool) (map[string]any, error) {
	p := NewProgress(as, claims)
	for {
		progressed, err := p.Step(av)
		if err != nil {
			return nil, err
		}
		if !progressed {
			break
		}
	}
	return p.Finish(), nil
}

func isClaimed(av *argv.Argv, claims func(string) bool, s string) bool {
	if av.ParamIDs[s] {
		return true
	}
	return claims != nil && claims(s)
}

// Progress tracks how much of an Args object has been filled across
// repeated Step calls, so a dispatch loop can interleave a single unit
// of Args consumption with option/subcommand matching instead of
// running one to exhaustion before the other ever gets a turn. Ground:
// _internal/_handlers.py's `analyse_param`, which interleaves
// `analyse_args` with option/subcommand lookup on every loop iteration.
type Progress struct {
	as     *Args
	claims func(string) bool
	result map[string]any

	normalIdx  int
	unpackDone bool

	varPosIdx       int
	varPosCollected []any
	varPosCount     int

	keySetup     bool
	keyTokenSeps []rune
	keySeps      []rune
	keywordCount int

	varKeyIdx       int
	varKeyCollected map[string]any
	varKeyCount     int
}

// NewProgress builds a Progress over as. claims may be nil, in which
// case only av.ParamIDs stops variadic collection.
func NewProgress(as *Args, claims func(string) bool) *Progress {
	return &Progress{as: as, claims: claims, result: make(map[string]any)}
}

// Finish returns the accumulated result map. By the time Step reports no
// further progress every slot has already been filled, defaulted, or has
// raised its missing-argument error through Step itself.
func (p *Progress) Finish() map[string]any {
	return p.result
}

// Step attempts to consume exactly one more unit of as from av: the next
// Normal arg, the Unpack group, one VarPositional token (or slot
// finalization), one KeywordOnly token, or one VarKeyword pair, tried in
// that priority order and falling through to the next category once the
// current one has nothing left to do. It reports whether it made
// progress; false means this Args object is done for now, and the
// caller should let dispatch have another turn or stop.
func (p *Progress) Step(av *argv.Argv) (bool, error) {
	if ok, err := p.stepNormal(av); ok || err != nil {
		return ok, err
	}
	if ok, err := p.stepUnpack(av); ok || err != nil {
		return ok, err
	}
	if ok, err := p.stepVarPositional(av); ok || err != nil {
		return ok, err
	}
	if ok, err := p.stepKeywordOnly(av); ok || err != nil {
		return ok, err
	}
	if ok, err := p.stepVarKeyword(av); ok || err != nil {
		return ok, err
	}
	av.Context = nil
	return false, nil
}

func (p *Progress) stepNormal(av *argv.Argv) (bool, error) {
	if p.normalIdx >= len(p.as.Normal) {
		return false, nil
	}
	arg := p.as.Normal[p.normalIdx]
	p.normalIdx++
	av.Context = arg
	mayArg, isStr := av.Next(arg.Separators...)
	if err := checkSpecial(av, mayArg, isStr); err != nil {
		return false, err
	}
	if isStr {
		if s, _ := mayArg.(string); isClaimed(av, p.claims, s) && arg.Field.Optional {
			if arg.Field.HasDefault {
				p.result[arg.Name] = arg.Field.Default
			}
			av.Rollback(mayArg, false)
			return true, nil
		}
	}
	if mayArg == nil {
		av.Rollback(mayArg, false)
		if arg.Field.HasDefault {
			p.result[arg.Name] = arg.Field.Default
		} else if !arg.Field.Optional {
			return false, errs.NewArgumentMissing(arg.Name, arg.Field.missingTips(arg.Name))
		}
		return true, nil
	}
	if arg.isWildcard() {
		av.Rollback(mayArg, false)
		rest := av.Release(false, arg.Separators...)
		joined := joinAny(rest)
		if s, ok := joined.(string); ok {
			p.result[arg.Name] = av.Converter(s)
		} else {
			p.result[arg.Name] = joined
		}
		p.normalIdx = len(p.as.Normal)
		return true, nil
	}
	if err := validate(av, arg, mayArg, isStr, p.result); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Progress) stepUnpack(av *argv.Argv) (bool, error) {
	if p.unpackDone || p.as.Unpack == nil {
		p.unpackDone = true
		return false, nil
	}
	p.unpackDone = true
	nested, err := Analyse(av, p.as.Unpack.Nested)
	if err != nil {
		if p.as.Unpack.Arg.Field.HasDefault {
			p.result[p.as.Unpack.Arg.Name] = p.as.Unpack.Arg.Field.Default
			return true, nil
		}
		if p.as.Unpack.Arg.Field.Optional {
			return true, nil
		}
		return false, err
	}
	p.result[p.as.Unpack.Arg.Name] = nested
	return true, nil
}

func (p *Progress) stepVarPositional(av *argv.Argv) (bool, error) {
	for p.varPosIdx < len(p.as.VarsPositional) {
		slot := p.as.VarsPositional[p.varPosIdx]
		av.Context = slot.Arg
		progressed, done, err := p.tryVarPositionalToken(av, slot)
		if err != nil {
			return false, err
		}
		if !done {
			return progressed, nil
		}
		if err := p.finalizeVarPositional(slot); err != nil {
			return false, err
		}
		p.varPosIdx++
		p.varPosCollected = nil
		p.varPosCount = 0
		if progressed {
			return true, nil
		}
	}
	return false, nil
}

// tryVarPositionalToken attempts to fold one more token into slot's
// collection. done reports that the slot is finished (either a stop
// condition was hit or MaxCount was reached); progressed reports
// whether a token was actually consumed this call.
func (p *Progress) tryVarPositionalToken(av *argv.Argv, slot *VarPositional) (progressed, done bool, err error) {
	if av.Index() == av.Len() {
		return false, true, nil
	}
	mayArg, isStr := av.Next(slot.Arg.Separators...)
	if err := checkSpecial(av, mayArg, isStr); err != nil {
		return false, false, err
	}
	s, _ := mayArg.(string)
	if mayArg == nil || (isStr && isClaimed(av, p.claims, s)) {
		av.Rollback(mayArg, false)
		return false, true, nil
	}
	if isStr && av.Remainders[s] {
		return false, true, nil
	}
	if isStr && len(p.as.KeywordOnly) > 0 {
		if _, ok := p.as.KeywordByName(normalizeKey(s)); ok {
			av.Rollback(mayArg, false)
			return false, true, nil
		}
	}
	if isStr && len(p.as.VarsKeyword) > 0 && strings.ContainsRune(s, p.as.VarsKeyword[0].Sep) {
		av.Rollback(mayArg, false)
		return false, true, nil
	}
	res := slot.Arg.Value.Validate(s, nil)
	if res.Flag != pattern.Valid {
		av.Rollback(mayArg, false)
		return false, true, nil
	}
	p.varPosCollected = append(p.varPosCollected, res.Value)
	p.varPosCount++
	if slot.MaxCount > 0 && p.varPosCount >= slot.MaxCount {
		return true, true, nil
	}
	return true, false, nil
}

func (p *Progress) finalizeVarPositional(slot *VarPositional) error {
	if len(p.varPosCollected) == 0 {
		switch {
		case slot.Arg.Field.HasDefault:
			p.result[slot.Arg.Name] = slot.Arg.Field.Default
		case slot.Flag == FlagAllowEmpty:
			p.result[slot.Arg.Name] = []any{}
		default:
			return errs.NewArgumentMissing(slot.Arg.Name, slot.Arg.Field.missingTips(slot.Arg.Name))
		}
		return nil
	}
	p.result[slot.Arg.Name] = p.varPosCollected
	return nil
}

func (p *Progress) setupKeywordSeps() {
	if p.keySetup {
		return
	}
	p.keySetup = true
	seenKeySep := map[rune]bool{}
	for _, a := range p.as.KeywordOnly {
		p.keyTokenSeps = append(p.keyTokenSeps, a.Separators...)
		if ks := a.keySep(); !seenKeySep[ks] {
			seenKeySep[ks] = true
			p.keySeps = append(p.keySeps, ks)
		}
	}
}

// stepKeywordOnly consumes one token toward as.KeywordOnly per call,
// matching it against a keyword-only Arg by name after stripping the
// `-no`/`-` negation dressing. Ground: _internal/_handlers.py's
// `step_keyword`, split into single-token steps so dispatch gets a turn
// between tokens.
func (p *Progress) stepKeywordOnly(av *argv.Argv) (bool, error) {
	target := len(p.as.KeywordOnly)
	if target == 0 || p.keywordCount >= target {
		return false, nil
	}
	p.setupKeywordSeps()

	mayArg, isStr := av.Next(p.keyTokenSeps...)
	if err := checkSpecial(av, mayArg, isStr); err != nil {
		return false, err
	}
	if mayArg == nil || !isStr {
		av.Rollback(mayArg, false)
		p.keywordCount = target
		if err := p.finalizeKeywordOnly(); err != nil {
			return false, err
		}
		return true, nil
	}
	s, _ := mayArg.(string)
	if av.Remainders[s] {
		av.Rollback(mayArg, false)
		p.keywordCount = target
		if err := p.finalizeKeywordOnly(); err != nil {
			return false, err
		}
		return true, nil
	}
	key, rest := splitOnceOnAny(s, p.keySeps)
	normKey := normalizeKey(key)
	argRef, ok := p.as.KeywordByName(normKey)
	if !ok {
		argRef, ok = p.as.KeywordByName(key)
	}
	if !ok {
		av.Rollback(mayArg, false)
		if len(p.as.VarsKeyword) > 0 || isClaimed(av, p.claims, s) {
			p.keywordCount = target
			if err := p.finalizeKeywordOnly(); err != nil {
				return false, err
			}
			return true, nil
		}
		for _, a := range p.as.KeywordOnly {
			if a.Value.Validate(s, nil).Flag == pattern.Valid {
				return false, errs.NewInvalidParam(s, "key missing for value %q (expected one of the keyword args)", s)
			}
		}
		for _, a := range p.as.KeywordOnly {
			if av.FuzzyMatch && fuzzy.Similarity(normKey, a.Name) >= av.FuzzyThreshold {
				return false, &errs.FuzzyMatchSuccess{Source: normKey, Target: a.Name}
			}
		}
		return false, errs.NewInvalidParam(s, "unknown keyword argument %q", normKey)
	}
	mArg := rest
	if mArg == "" {
		if argRef.Value.Name() == "flag" {
			mArg = key
		} else {
			v, _ := av.Next(argRef.Separators...)
			mArg, _ = v.(string)
		}
	}
	if err := validate(av, argRef, mArg, isStr, p.result); err != nil {
		return false, err
	}
	p.keywordCount++
	return true, nil
}

func (p *Progress) finalizeKeywordOnly() error {
	for _, a := range p.as.KeywordOnly {
		if _, done := p.result[a.Name]; done {
			continue
		}
		if a.Field.HasDefault {
			p.result[a.Name] = a.Field.Default
		} else if !a.Field.Optional {
			return errs.NewArgumentMissing(a.Name, a.Field.missingTips(a.Name))
		}
	}
	return nil
}

func (p *Progress) stepVarKeyword(av *argv.Argv) (bool, error) {
	for p.varKeyIdx < len(p.as.VarsKeyword) {
		slot := p.as.VarsKeyword[p.varKeyIdx]
		av.Context = slot.Arg
		progressed, done, err := p.tryVarKeywordToken(av, slot)
		if err != nil {
			return false, err
		}
		if !done {
			return progressed, nil
		}
		if err := p.finalizeVarKeyword(slot); err != nil {
			return false, err
		}
		p.varKeyIdx++
		p.varKeyCollected = nil
		p.varKeyCount = 0
		if progressed {
			return true, nil
		}
	}
	return false, nil
}

func (p *Progress) tryVarKeywordToken(av *argv.Argv, slot *VarKeyword) (progressed, done bool, err error) {
	if av.Index() == av.Len() {
		return false, true, nil
	}
	mayArg, isStr := av.Next(slot.Arg.Separators...)
	if err := checkSpecial(av, mayArg, isStr); err != nil {
		return false, false, err
	}
	s, _ := mayArg.(string)
	if mayArg == nil || !isStr || isClaimed(av, p.claims, s) {
		av.Rollback(mayArg, false)
		return false, true, nil
	}
	if av.Remainders[s] {
		return false, true, nil
	}
	key, val, ok := splitKV(s, slot.Sep)
	if !ok {
		av.Rollback(mayArg, false)
		return false, true, nil
	}
	if val == "" {
		v, _ := av.Next(slot.Arg.Separators...)
		val, _ = v.(string)
	}
	res := slot.Arg.Value.Validate(val, nil)
	if res.Flag != pattern.Valid {
		av.Rollback(mayArg, false)
		return false, true, nil
	}
	if p.varKeyCollected == nil {
		p.varKeyCollected = map[string]any{}
	}
	p.varKeyCollected[key] = res.Value
	p.varKeyCount++
	if slot.MaxCount > 0 && p.varKeyCount >= slot.MaxCount {
		return true, true, nil
	}
	return true, false, nil
}

func (p *Progress) finalizeVarKeyword(slot *VarKeyword) error {
	if len(p.varKeyCollected) == 0 {
		switch {
		case slot.Arg.Field.HasDefault:
			p.result[slot.Arg.Name] = slot.Arg.Field.Default
		case slot.Flag == FlagAllowEmpty:
			p.result[slot.Arg.Name] = map[string]any{}
		default:
			return errs.NewArgumentMissing(slot.Arg.Name, slot.Arg.Field.missingTips(slot.Arg.Name))
		}
		return nil
	}
	p.result[slot.Arg.Name] = p.varKeyCollected
	return nil
}

// joinAny reduces a released token run to a single value for a wildcard
// Arg: one token returns itself untouched (so an opaque pass-through
// segment survives intact), a run of plain strings joins on a space
// (mirroring how the stream split them), and a mixed run falls back to
// the raw slice since there is no single string to reassemble into.
func joinAny(vals []any) any {
	if len(vals) == 1 {
		return vals[0]
	}
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			return vals
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func checkSpecial(av *argv.Argv, mayArg any, isStr bool) error {
	if !isStr {
		return nil
	}
	s, _ := mayArg.(string)
	if kind, ok := av.Specials[s]; ok {
		return &errs.SpecialOptionTriggered{Kind: string(kind)}
	}
	return nil
}

// validate runs a single Arg's Pattern against a consumed token, rolling
// back on non-valid outcomes and failing on Error unless the slot is
// optional. Ground: _internal/_handlers.py's `_validate`.
func validate(av *argv.Argv, arg *Arg, got any, isStr bool, result map[string]any) error {
	if arg.Value.Name() == "any" {
		result[arg.Name] = got
		return nil
	}
	if arg.Value.Name() == "str" && isStr {
		result[arg.Name] = got
		return nil
	}
	s, _ := got.(string)
	var def any
	if arg.Field.HasDefault {
		def = arg.Field.Default
	}
	res := arg.Value.Validate(s, def)
	if res.Flag != pattern.Valid {
		av.Rollback(got, false)
	}
	if res.Flag == pattern.Error {
		if arg.Field.Optional {
			return nil
		}
		reason := ""
		if res.Err != nil {
			reason = res.Err.Error()
		}
		return errs.NewInvalidParam(got, "%s", arg.Field.unmatchTips(got, reason))
	}
	result[arg.Name] = res.Value
	return nil
}

func splitKV(s string, sep rune) (key, value string, ok bool) {
	idx := strings.IndexRune(s, sep)
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// splitOnceOnAny splits text at the first rune in seps, mirroring
// argv's splitOnce but operating on an already-materialized string
// (step_keyword's own call to split_once, independent of the stream).
func splitOnceOnAny(text string, seps []rune) (head, rest string) {
	if len(seps) == 0 {
		return text, ""
	}
	set := make(map[rune]bool, len(seps))
	for _, r := range seps {
		set[r] = true
	}
	for i, ch := range text {
		if set[ch] {
			return text[:i], text[i+len(string(ch)):]
		}
	}
	return text, ""
}
