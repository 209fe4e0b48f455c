package errs

import (
	"errors"
	"fmt"
)

// Kind classifies every failure surfaced by the engine or the tree builder.
type Kind string

const (
	Allocation       Kind = "ALLOCATION"
	Conversion       Kind = "CONVERSION"
	EngineException  Kind = "ENGINE_EXCEPTION"
	ArgumentCount    Kind = "ARGUMENT_COUNT"
	UnrelatedContext Kind = "UNRELATED_CONTEXT"
	Io               Kind = "IO"
	Unknown          Kind = "UNKNOWN"
)

// Error is the single reportable error type. Only the fields relevant to Kind
// are populated.
type Error struct {
	Kind    Kind
	Message string

	// Conversion
	From  string // observed value type, e.g. "number"
	To    string // expected type, e.g. "string"
	Field string // key being read, empty for top-level values

	// EngineException
	File  string
	Line  int
	Stack string

	// ArgumentCount
	MinArgs int
	MaxArgs int
	Given   int

	Cause error
}

// Error formats as "[KIND] message" with kind-specific details appended.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	switch e.Kind {
	case Conversion:
		if e.Field != "" {
			msg += fmt.Sprintf(" (field %q: %s to %s)", e.Field, e.From, e.To)
		} else {
			msg += fmt.Sprintf(" (%s to %s)", e.From, e.To)
		}
	case EngineException:
		if e.File != "" || e.Line > 0 {
			msg += fmt.Sprintf(" at %s:%d", e.File, e.Line)
		}
	case ArgumentCount:
		msg += fmt.Sprintf(" (expected %d..%d arguments, got %d)", e.MinArgs, e.MaxArgs, e.Given)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewConversion reports a value of type from where type to was expected.
func NewConversion(field, from, to string) *Error {
	return &Error{
		Kind:    Conversion,
		Message: "cannot convert engine value",
		From:    from,
		To:      to,
		Field:   field,
	}
}

// NewException captures an exception thrown inside the engine.
func NewException(message, file string, line int, stack string) *Error {
	return &Error{
		Kind:    EngineException,
		Message: message,
		File:    file,
		Line:    line,
		Stack:   stack,
	}
}

// NewArgumentCount reports a call with given arguments outside [min, max].
func NewArgumentCount(name string, min, max, given int) *Error {
	return &Error{
		Kind:    ArgumentCount,
		Message: fmt.Sprintf("wrong number of arguments for %s", name),
		MinArgs: min,
		MaxArgs: max,
		Given:   given,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrAllocation       = New(Allocation, "failed to allocate engine")
	ErrConversion       = New(Conversion, "conversion failed")
	ErrEngineException  = New(EngineException, "engine exception")
	ErrArgumentCount    = New(ArgumentCount, "argument count mismatch")
	ErrUnrelatedContext = New(UnrelatedContext, "value restored in an unrelated engine")
	ErrIo               = New(Io, "io failure")
	ErrUnknown          = New(Unknown, "unknown engine failure")
)
