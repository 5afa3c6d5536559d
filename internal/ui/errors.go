package ui

import (
	"fmt"
	"strings"
)

// ErrorMessage represents a structured, actionable error to present to users.
type ErrorMessage struct {
	Problem string   // one-line problem statement
	Causes  []string // possible causes
	Actions []string // actionable steps to resolve
}

// Format renders the error using the color theme.
func (e ErrorMessage) Format(c *ColorConfig) string {
	var b strings.Builder
	b.WriteString(c.Error("✗ "))
	b.WriteString(c.Header("Error"))
	b.WriteString("\n")
	if e.Problem != "" {
		fmt.Fprintf(&b, "  %s: %s\n", c.Label("Problem"), e.Problem)
	}
	if len(e.Causes) > 0 {
		fmt.Fprintf(&b, "  %s:\n", c.Label("Possible causes"))
		for _, it := range e.Causes {
			fmt.Fprintf(&b, "   • %s\n", it)
		}
	}
	if len(e.Actions) > 0 {
		fmt.Fprintf(&b, "  %s:\n", c.Label("Try"))
		for _, it := range e.Actions {
			fmt.Fprintf(&b, "   → %s\n", it)
		}
	}
	return b.String()
}

// PrintError prints the structured error using the printer's theme.
func (p Printer) PrintError(e ErrorMessage) {
	fmt.Fprint(p.out, e.Format(p.Colors))
}
