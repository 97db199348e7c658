// Package output defines the narrow collaborator interfaces the core
// analyzer writes through without depending on a concrete terminal,
// logger, or help-text renderer. Ground: spec.md §6's "external
// interfaces" — help-text rendering, output sinks, and localization are
// out of scope as implementations, but the core still needs somewhere
// to call.
package output

import "github.com/alconna-go/alconna/args"

// Sink receives a rendered line for a named command. render is lazy so a
// disabled/quiet sink never pays for formatting it never uses.
type Sink interface {
	Send(commandName string, render func() string)
}

// Formatter renders help/completion text for a command's grammar nodes.
type Formatter interface {
	// FormatNode renders a list of prompt lines (e.g. a completion list
	// or a help body) into the final text a Sink writes.
	FormatNode(prompts []string) string
	// Param renders one Arg's display form (used in completion prompts
	// and per-arg help lines).
	Param(arg *args.Arg) string
}
