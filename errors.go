package fdlc

import "fmt"

// ErrorKind discriminates the emit-time error shapes the core can
// produce. ErrUnboundIdentifier and ErrNotImmediate indicate a bug
// upstream of the core (the checker or normalizer should have
// rejected the program) and are not recoverable within compile/wrap.
// ErrInvalidConfig instead flags a bad Config value (SPEC_FULL.md
// §4.12) — a driver mistake, not an upstream one.
type ErrorKind int

const (
	ErrUnboundIdentifier ErrorKind = iota
	ErrNotImmediate
	ErrInvalidConfig
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnboundIdentifier:
		return "unbound identifier"
	case ErrNotImmediate:
		return "not an immediate"
	case ErrInvalidConfig:
		return "invalid config"
	default:
		return "emit error"
	}
}

// CompileError is the error the core returns when it finds unbound
// identifiers or non-immediates where an immediate was required; it
// is pinned to the offending node's source span (spec §7).
type CompileError struct {
	Kind    ErrorKind
	Message string
	Span    Span
}

func (e CompileError) Error() string {
	return fmt.Sprintf("%s @ %s: %s", e.Kind, e.Span, e.Message)
}

func newUnboundErr(id string, span Span) CompileError {
	return CompileError{
		Kind:    ErrUnboundIdentifier,
		Message: fmt.Sprintf("unbound variable %q", id),
		Span:    span,
	}
}

func newNotImmediateErr(span Span) CompileError {
	return CompileError{
		Kind:    ErrNotImmediate,
		Message: "expected an immediate expression",
		Span:    span,
	}
}
