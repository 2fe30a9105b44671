package fdlc

import "fmt"

// SourcePos is a 1-based line/column position in the original FDL
// source text, preserved through the front-end into the ANF tree so
// that emit-time diagnostics can point back at the offending syntax.
type SourcePos struct {
	Line   int
	Column int
}

func (p SourcePos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open source range covered by one ANF node.
type Span struct {
	Start SourcePos
	End   SourcePos
}

func (s Span) String() string {
	if s.Start == s.End {
		return s.Start.String()
	}
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Tag annotates every ANF node with its source span and a globally
// unique integer, supplied by the upstream normalizer (see spec §3).
// The core never mints its own node tags — it only mints *labels* from
// them (BranchTrue, LamStart, ...) — so ID is read-only from here on.
type Tag struct {
	Span Span
	ID   int
}

func (t Tag) String() string {
	return fmt.Sprintf("#%d@%s", t.ID, t.Span)
}
