// Package argv implements the streaming, rewindable token vector that
// every analyzer step consumes from. It tokenizes a heterogeneous input
// slice — strings split on separators, honoring quotes and escapes, and
// opaque non-text segments passed through untouched — and exposes a
// next/rollback/release API with explicit checkpoint/restore for the
// speculative matching compact-option dispatch and shortcut search need.
package argv

import "strings"

// Special names a literal token that short-circuits normal dispatch at
// every recursion depth: help, shortcut listing, or completion.
type Special string

const (
	SpecialHelp       Special = "help"
	SpecialShortcut   Special = "shortcut"
	SpecialCompletion Special = "completion"
)

// Converter turns a raw token (or an assembled wildcard/shortcut string)
// back into the host's native segment type. The default is identity;
// hosts carrying a richer message-segment type than string plug in here.
type Converter func(string) any

func identity(s string) any { return s }

// token is one element of the tokenized stream: either a string borne of
// splitting an input string, or an opaque pass-through segment.
type token struct {
	text   string
	opaque any // non-nil for a pass-through segment; text is unused then
	isStr  bool
}

// snapshot is a checkpoint of the cursor and pending-split state, restored
// by Restore to undo speculative consumption (compact-option dispatch,
// shortcut search, header compact-prefix probing).
type snapshot struct {
	index   int
	pending string // leftover of a token sub-split, re-queued ahead of data[index]
	hasPend bool
}

// Argv is the per-parse token vector. It is built once from an input
// slice via Build and discarded (or reset via Build again) once the
// parse that owns it finishes.
type Argv struct {
	data []token
	ndata int

	index int

	// pending holds the remainder of a token that Next sub-split off
	// because the caller asked for different separators than the
	// stream's default; it is consumed before data[index] advances.
	pending string
	hasPend bool

	Separators map[rune]bool
	FilterCRLF bool

	Specials map[string]Special
	ParamIDs map[string]bool

	// Remainders names tokens that end greedy variadic collection without
	// being consumed (e.g. a conventional "--" separator), mirroring the
	// upstream's module-level `config.remainders` set.
	Remainders map[string]bool

	FuzzyMatch     bool
	FuzzyThreshold float64

	Converter Converter

	// Context carries the Arg or Option currently being matched, for
	// error messages and completion prompts. Explicit, not a global.
	Context any

	// CompletionPaused, when true, makes an unconsumed trailing token
	// after dispatch exhausts itself trigger a completion prompt instead
	// of being silently left on the stream. Set by a caller that has
	// established an interactive completion context for this parse.
	CompletionPaused bool
	// CompletionSink receives rendered completion output when a special
	// completion token fires and CompletionPaused is false. Its method set
	// is output.Sink's, so any output.Sink can be assigned to it.
	CompletionSink interface {
		Send(commandName string, render func() string)
	}
}

// New builds an empty Argv with the given default separators (space when
// none given) and identity converter.
func New(separators ...rune) *Argv {
	a := &Argv{
		Separators: make(map[rune]bool),
		Specials:   make(map[string]Special),
		ParamIDs:   make(map[string]bool),
		Remainders: make(map[string]bool),
		Converter:  identity,
	}
	if len(separators) == 0 {
		separators = []rune{' '}
	}
	for _, r := range separators {
		a.Separators[r] = true
	}
	return a
}

// Build tokenizes input in place, splitting each string element on the
// configured separators while honoring quote pairs (' and ") and
// backslash-escaping of a quote, and passing non-string elements through
// as single opaque tokens. It resets the cursor and any prior data.
func (a *Argv) Build(input []any) {
	a.data = a.data[:0]
	for _, elem := range input {
		s, ok := elem.(string)
		if !ok {
			a.data = append(a.data, token{opaque: elem})
			continue
		}
		for _, piece := range a.splitAll(s) {
			a.data = append(a.data, token{text: piece, isStr: true})
		}
	}
	a.ndata = len(a.data)
	a.index = 0
	a.pending = ""
	a.hasPend = false
}

// splitAll performs the respects-quotes-and-escapes full split used at
// build time (mirrors the upstream's quote/escape-aware `split`, as
// opposed to the single-token `split_once` Next uses for sub-splitting).
func (a *Argv) splitAll(text string) []string {
	var result []string
	var cache strings.Builder
	var quotation rune
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\'' || ch == '"':
			if quotation == 0 {
				quotation = ch
				if i > 0 && runes[i-1] == '\\' {
					cache.WriteRune(ch)
				}
			} else if ch == quotation {
				quotation = 0
				if i > 0 && runes[i-1] == '\\' {
					cache.WriteRune(ch)
				}
			}
		case ch == '\n' || ch == '\r' || (quotation == 0 && a.Separators[ch] && cache.Len() > 0):
			result = append(result, cache.String())
			cache.Reset()
		case ch != '\\' && (!a.Separators[ch] || quotation != 0):
			cache.WriteRune(ch)
		}
	}
	if cache.Len() > 0 {
		result = append(result, cache.String())
	}
	return result
}

// splitOnce splits text at the first rune in seps that isn't inside a
// quoted span, returning the head and the untouched remainder (the
// separator itself is dropped, as in the upstream's split_once). Used by
// Next when the caller's separators differ from the stream default, to
// peel one sub-token off without disturbing the rest.
func splitOnce(text string, seps map[rune]bool, filterCRLF bool) (head, rest string) {
	var out strings.Builder
	var quotation rune
	runes := []rune(text)
	cut := -1
	for i, ch := range runes {
		if ch == '\'' || ch == '"' {
			if quotation == 0 {
				quotation = ch
			} else if ch == quotation {
				quotation = 0
			}
		}
		sep := seps[ch] || (filterCRLF && (ch == '\n' || ch == '\r'))
		if sep && quotation == 0 {
			cut = i
			break
		}
		out.WriteRune(ch)
	}
	if cut < 0 {
		return out.String(), ""
	}
	return out.String(), string(runes[cut+1:])
}

// Len reports the total token count produced by the last Build.
func (a *Argv) Len() int { return a.ndata }

// Index reports the current cursor position.
func (a *Argv) Index() int { return a.index }

// Done reports whether every token has been consumed and nothing is
// pending from a prior sub-split.
func (a *Argv) Done() bool { return a.index >= a.ndata && !a.hasPend }

// Next returns the next token. When seps is non-empty and differs from
// the stream's own separators, the pending string token is sub-split
// once on seps and the remainder is pushed back ahead of the following
// token (a one-shot override, not a permanent change to the stream).
// The bool result reports whether the token originated from a string
// (as opposed to an opaque pass-through segment).
func (a *Argv) Next(seps ...rune) (any, bool) {
	if a.hasPend {
		text := a.pending
		a.hasPend = false
		a.pending = ""
		return a.splitPending(text, seps)
	}
	if a.index >= a.ndata {
		return nil, false
	}
	tok := a.data[a.index]
	a.index++
	if !tok.isStr {
		return tok.opaque, false
	}
	return a.splitPending(tok.text, seps)
}

// splitPending applies a one-shot seps override to a string token about
// to be returned, queuing any remainder ahead of the next Next call.
func (a *Argv) splitPending(text string, seps []rune) (any, bool) {
	if len(seps) == 0 {
		return text, true
	}
	set := make(map[rune]bool, len(seps))
	for _, r := range seps {
		set[r] = true
	}
	sameAsDefault := len(set) == len(a.Separators)
	if sameAsDefault {
		for r := range set {
			if !a.Separators[r] {
				sameAsDefault = false
				break
			}
		}
	}
	if sameAsDefault {
		return text, true
	}
	head, rest := splitOnce(text, set, a.FilterCRLF)
	if rest != "" {
		a.pending = rest
		a.hasPend = true
	}
	return head, true
}

// Rollback undoes the last Next so the token it returned (value) is
// returned again by the next Next call: a token that was sub-split is
// restored whole, a token served from a pending remainder is queued
// again, and a nil returned at the end of the stream leaves the cursor
// where it is. If replace is true and value is a string, value is
// instead queued as the pending remainder without moving the cursor —
// used when a compact option or header consumes the head of a token and
// needs to push the tail back.
func (a *Argv) Rollback(value any, replace bool) {
	if replace {
		if s, ok := value.(string); ok {
			a.pending = s
			a.hasPend = true
			return
		}
	}
	if a.hasPend {
		a.hasPend = false
		a.pending = ""
	} else if value == nil && a.index >= a.ndata {
		return
	} else if s, ok := value.(string); ok && a.index > 0 && a.data[a.index-1].isStr && s != a.data[a.index-1].text {
		a.pending = s
		a.hasPend = true
		return
	}
	if a.index > 0 {
		a.index--
	}
}

// Release returns the remaining tokens (sub-split on seps if given) as a
// slice. When recover is true the cursor is left untouched; otherwise
// the stream is fully consumed.
func (a *Argv) Release(recover bool, seps ...rune) []any {
	var out []any
	snap := a.Checkpoint()
	for {
		v, _, ok := a.peekOrNext(seps)
		if !ok {
			break
		}
		out = append(out, v)
	}
	if recover {
		a.Restore(snap)
	}
	return out
}

func (a *Argv) peekOrNext(seps []rune) (any, bool, bool) {
	if a.Done() {
		return nil, false, false
	}
	v, isStr := a.Next(seps...)
	return v, isStr, true
}

// Checkpoint captures cursor and pending-split state for later Restore.
// This is the explicit snapshot/restore pair speculative matching (compact
// option dispatch, shortcut search, header compact-prefix probing) uses
// instead of exceptions for control flow.
func (a *Argv) Checkpoint() snapshot {
	return snapshot{index: a.index, pending: a.pending, hasPend: a.hasPend}
}

// Restore rewinds to a previously captured Checkpoint.
func (a *Argv) Restore(s snapshot) {
	a.index = s.index
	a.pending = s.pending
	a.hasPend = s.hasPend
}
