// Package diagnostics formats and correlates compile errors for the
// command-line driver. The core (package fdlc) stays free of this —
// it only ever returns plain fdlc.CompileError values — so that
// correlation IDs and colorized rendering remain a driver concern
// (SPEC_FULL.md §4.11).
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alvinyongho/06-fer-de-lance"
	"github.com/alvinyongho/06-fer-de-lance/ascii"
)

// Report bundles every CompileError produced by one compile run under
// a single correlation ID, so a batch driver can log "run abc123
// failed with 3 errors" instead of unrelated bare error lines.
type Report struct {
	CorrelationID string
	Source        string
	Errors        []fdlc.CompileError
}

// NewReport assigns a fresh correlation ID to errs. source names the
// input the errors came from (a file path, or "-" for stdin).
func NewReport(source string, errs []fdlc.CompileError) Report {
	return Report{
		CorrelationID: uuid.NewString(),
		Source:        source,
		Errors:        errs,
	}
}

// OK reports whether the run produced no errors.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// String renders the report as plain text, one line per error.
func (r Report) String() string {
	return r.render(ascii.DefaultTheme, func(s, _ string) string { return s })
}

// Highlight renders the report with ANSI coloring from theme.
func (r Report) Highlight(theme ascii.Theme) string {
	return r.render(theme, func(s, color string) string { return ascii.Color(color, "%s", s) })
}

func (r Report) render(theme ascii.Theme, colorize func(s, color string) string) string {
	if r.OK() {
		return fmt.Sprintf("%s: %s: %s", colorize(r.CorrelationID, theme.Muted), r.Source,
			colorize("ok", theme.Success))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s\n",
		colorize(r.CorrelationID, theme.Muted), r.Source,
		colorize(fmt.Sprintf("%d error(s)", len(r.Errors)), theme.Error))
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  %s\n", colorize(e.Error(), theme.Error))
	}
	return b.String()
}
