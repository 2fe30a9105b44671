package fdlc

import (
	"fmt"
	"strings"

	"github.com/alvinyongho/06-fer-de-lance/ascii"
)

// AsmFormatToken classifies a fragment of pretty-printed output for
// syntax highlighting, mirrored directly on the teacher's
// AsmFormatToken/asmPrinterTheme split (vm_program.go) — plain text
// and ANSI-highlighted text share one formatting walk and differ only
// in this function.
type AsmFormatToken int

const (
	AsmNone AsmFormatToken = iota
	AsmComment
	AsmLabel
	AsmLiteral
	AsmOperator
	AsmOperand
)

var asmTheme = map[AsmFormatToken]string{
	AsmNone:     ascii.Reset,
	AsmComment:  ascii.DefaultTheme.Comment,
	AsmLabel:    ascii.DefaultTheme.Label,
	AsmLiteral:  ascii.DefaultTheme.Literal,
	AsmOperator: ascii.DefaultTheme.Operator,
	AsmOperand:  ascii.DefaultTheme.Operand,
}

type formatFunc func(input string, tok AsmFormatToken) string

// Program bundles the emitted instruction stream with enough metadata
// to render it back out for debugging (SPEC_FULL.md §4.10).
type Program struct {
	Code []Instruction

	// Spans maps the index of the first instruction of each
	// production (an ANF node boundary, reusing that node's tag) to
	// the span it was compiled from (SPEC_FULL.md §4.10). Built once
	// by spanTable when the Program is constructed.
	Spans map[int]Span

	// Comments mirrors the codegen.comments Config knob at the time
	// the Program was built: when true, render emits a ";; <span>"
	// comment at each entry in Spans, the way the teacher's
	// prettyString emits "\n;; name @ msg\n" at each production
	// boundary (vm_program.go).
	Comments bool
}

// spanTable walks code and records the index of every instruction
// whose source span differs from the instruction before it — each
// such index is the first instruction of a new production.
func spanTable(code []Instruction) map[int]Span {
	spans := make(map[int]Span)
	var last Span
	for i, instr := range code {
		sl := instr.SourceLocation()
		if i == 0 || sl != last {
			spans[i] = sl
		}
		last = sl
	}
	return spans
}

// PrettyString renders the program as plain, uncolored text.
func (p *Program) PrettyString() string {
	return p.render(func(input string, _ AsmFormatToken) string { return input })
}

// HighlightPrettyString renders the program with ANSI syntax
// highlighting, grounded on the teacher's
// Program.HighlightPrettyString.
func (p *Program) HighlightPrettyString() string {
	return p.render(func(input string, tok AsmFormatToken) string {
		return asmTheme[tok] + input + asmTheme[AsmNone]
	})
}

func (p *Program) render(format formatFunc) string {
	var s strings.Builder
	index := 0
	prevWasLabel := false

	writeName := func(name string) {
		s.WriteString(format(fmt.Sprintf("%06d  ", index), AsmComment))
		s.WriteString("        ")
		s.WriteString(format(name, AsmOperand))
		prevWasLabel = false
	}

	writeOperand := func(op Operand) {
		switch v := op.(type) {
		case Reg:
			s.WriteString(" ")
			s.WriteString(format(v.String(), AsmOperator))
		case Label:
			s.WriteString(" ")
			s.WriteString(format(v.String(), AsmLabel))
		case DynamicErr:
			s.WriteString(" ")
			s.WriteString(format(v.String(), AsmLabel))
		default:
			s.WriteString(" ")
			s.WriteString(format(op.String(), AsmLiteral))
		}
	}

	for cursor, instr := range p.Code {
		if p.Comments {
			if span, ok := p.Spans[cursor]; ok {
				s.WriteString(format(fmt.Sprintf("\n;; %s\n", span), AsmComment))
			}
		}

		if lbl, ok := instr.(ILabel); ok {
			if prevWasLabel {
				s.WriteString("\n")
			}
			s.WriteString(format(fmt.Sprintf("%06d  ", index), AsmComment))
			s.WriteString(format(lbl.Target.Name+":", AsmLabel))
			s.WriteString("\n")
			prevWasLabel = true
			continue
		}

		writeName(instr.Name())
		switch ii := instr.(type) {
		case IMov:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case IPush:
			writeOperand(ii.Src)
		case IPop:
			writeOperand(ii.Dst)
		case IAdd:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case ISub:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case IMul:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case IAnd:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case IOr:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case IShl:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case ISar:
			writeOperand(ii.Dst)
			writeOperand(ii.Src)
		case ICmp:
			writeOperand(ii.Left)
			writeOperand(ii.Right)
		case IJmp:
			writeOperand(ii.Target)
		case IJe:
			writeOperand(ii.Target)
		case IJne:
			writeOperand(ii.Target)
		case IJl:
			writeOperand(ii.Target)
		case IJg:
			writeOperand(ii.Target)
		case IJge:
			writeOperand(ii.Target)
		case IJo:
			writeOperand(ii.Target)
		case ICall:
			writeOperand(ii.Target)
		case IRet:
			// no operands
		}
		s.WriteString("\n")
		index++
	}
	return s.String()
}
