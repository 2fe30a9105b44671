// Package ascii provides terminal ANSI color codes under semantic
// names for the diagnostics and asm-listing printers, grouped into a
// Theme so both can be recolored together.
package ascii

import "fmt"

const (
	Reset = "\033[0m"
	Red   = "\033[1;31m"
	Green = "\033[1;32m"
	Gray  = "\033[90m" // Bright black, actually

	// 256-color palette
	Gray245 = "\033[1;38;5;245m" // Medium gray
	Purple  = "\033[1;38;5;99m"
	Pink    = "\033[1;38;5;127m"
)

// Theme defines semantic color mappings for the two printers this
// module has: diagnostics.Report and Program's asm listing.
type Theme struct {
	// Diagnostic levels
	Error string

	// UI elements
	Muted   string // secondary/dimmed text
	Success string

	// Asm listing syntax highlighting
	Operator string
	Operand  string
	Literal  string
	Comment  string
	Label    string
}

// DefaultTheme provides a sensible default color mapping.
var DefaultTheme = Theme{
	Error: Red,

	Muted:   Gray,
	Success: Green,

	Operator: Purple,
	Operand:  Pink,
	Literal:  Green,
	Comment:  Gray245,
	Label:    Red,
}

func Color(color, format string, args ...any) string {
	return fmt.Sprintf(color+format+Reset, args...)
}
