package ast

// RenderInfo describes how the engine renders a macro or environment. It is
// carried through unchanged; nothing in this module interprets it.
type RenderInfo struct {
	// AlignContent aligns the body on & and \\ delimiters (matrix, tabular).
	AlignContent bool `json:"alignContent"`

	// InParMode wraps the contents with the current paragraph instead of
	// displaying them as a block.
	InParMode bool `json:"inParMode"`

	// PgfkeysArgs processes the arguments as pgfkeys.
	PgfkeysArgs bool `json:"pgfkeysArgs"`

	// BreakAround puts line breaks before and after, as for \section{...}.
	BreakAround bool `json:"breakAround"`

	InMathMode bool `json:"inMathMode"`

	// HangingIndent indents wrapped arguments, as for \item.
	HangingIndent bool `json:"hangingIndent"`

	// NamedArguments has one slot per declared argument; nil marks an unnamed
	// slot. The length is the engine's business and is not checked here.
	NamedArguments []*string `json:"namedArguments,omitempty"`
}

// Info is signature metadata for a macro or environment definition.
type Info struct {
	RenderInfo *RenderInfo `json:"renderInfo,omitempty"`

	// ProcessContent replaces the body when set. A nil slice means no
	// override, an empty one means the body is replaced by nothing.
	ProcessContent []Node `json:"processContent,omitempty"`

	// Signature is an xparse argument specification, kept verbatim.
	Signature *string `json:"signature,omitempty"`

	// EscapeToken is set for macros such as ^ and _ that are not triggered
	// by a backslash.
	EscapeToken *string `json:"escapeToken,omitempty"`
}
