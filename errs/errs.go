// Package errs defines the error taxonomy a parse can raise: ordinary
// parse-failure errors that a caller may convert into a failed result,
// and control-flow signals (fuzzy-match suggestion, special option
// interrupt, completion pause) that are not bugs but dedicated outcomes.
// All are plain Go error types, checked with errors.As, never panics.
package errs

import "fmt"

// InvalidParam is raised when a token fails to satisfy the grammar at
// the position the analyzer expected it to (wrong header, unmatched
// option, pattern validation failure on a required arg).
type InvalidParam struct {
	Message string
	Token   any // the offending token, if any
}

func (e *InvalidParam) Error() string { return e.Message }

func NewInvalidParam(token any, format string, args ...any) *InvalidParam {
	return &InvalidParam{Message: fmt.Sprintf(format, args...), Token: token}
}

// ArgumentMissing is raised when a required Arg has no default and the
// token stream is exhausted before it could be matched.
type ArgumentMissing struct {
	Message string
	ArgName string
}

func (e *ArgumentMissing) Error() string { return e.Message }

func NewArgumentMissing(argName, format string, args ...any) *ArgumentMissing {
	return &ArgumentMissing{Message: fmt.Sprintf(format, args...), ArgName: argName}
}

// NullMessage is raised when the input to parse is empty or consists
// entirely of untokenizable whitespace.
type NullMessage struct{ Message string }

func (e *NullMessage) Error() string { return e.Message }

func NewNullMessage(format string, args ...any) *NullMessage {
	return &NullMessage{Message: fmt.Sprintf(format, args...)}
}

// ExceedMaxCount is raised at registration when a command manager's
// max-count cap would be exceeded.
type ExceedMaxCount struct{ Message string }

func (e *ExceedMaxCount) Error() string { return e.Message }

func NewExceedMaxCount(format string, args ...any) *ExceedMaxCount {
	return &ExceedMaxCount{Message: fmt.Sprintf(format, args...)}
}

// BehaveCancelled is raised by a result behavior (the post-parse default
// injection pipeline) to abort the remaining behavior chain.
type BehaveCancelled struct{ Message string }

func (e *BehaveCancelled) Error() string { return e.Message }

func NewBehaveCancelled(format string, args ...any) *BehaveCancelled {
	return &BehaveCancelled{Message: fmt.Sprintf(format, args...)}
}

// FuzzyMatchSuccess is a control-flow signal: the input's head didn't
// match exactly, but came within threshold of a known header/option
// name. It is informational, carrying the suggestion for the host to
// surface, not a parse bug.
type FuzzyMatchSuccess struct {
	Source string // what the user typed
	Target string // what it was close to
}

func (e *FuzzyMatchSuccess) Error() string {
	return fmt.Sprintf("%q is close to %q, did you mean that?", e.Source, e.Target)
}

// SpecialOptionTriggered is a control-flow signal raised when a built-in
// special token (help/shortcut/completion) is hit during dispatch. Kind
// is one of "help", "shortcut", "completion".
type SpecialOptionTriggered struct{ Kind string }

func (e *SpecialOptionTriggered) Error() string {
	return fmt.Sprintf("special option triggered: %s", e.Kind)
}

// PauseTriggered is a control-flow signal raised mid-completion: the
// analyzer has a partial prompt list to offer and parsing does not run
// to its usual conclusion.
type PauseTriggered struct {
	Prompts []string
}

func (e *PauseTriggered) Error() string {
	return fmt.Sprintf("completion paused with %d candidate(s)", len(e.Prompts))
}
