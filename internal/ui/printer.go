package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Printer centralizes output formatting for commands.
// - Respects --output (text|json|yaml)
// - Uses ColorConfig for styling when printing text
// - Provides helpers for common message types
type Printer struct {
	format string
	out    io.Writer
	Colors *ColorConfig
}

// NewPrinter returns a Printer writing to out, or stdout when out is nil.
func NewPrinter(format string, out io.Writer) Printer {
	if out == nil {
		out = os.Stdout
	}
	return Printer{format: format, out: out, Colors: NewColorConfig()}
}

// Format returns the selected output format.
func (p Printer) Format() string {
	if p.format == "" {
		return FormatText
	}
	return p.format
}

// Writer returns the underlying writer.
func (p Printer) Writer() io.Writer { return p.out }

// Render writes v as JSON or YAML, or calls text for the text format.
func (p Printer) Render(v any, text func()) error {
	switch p.Format() {
	case FormatJSON:
		return p.JSON(v)
	case FormatYAML:
		return p.YAML(v)
	default:
		text()
		return nil
	}
}

// Textf prints formatted text (always text path).
func (p Printer) Textf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }

// JSON pretty-prints a JSON value.
func (p Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML prints v as a YAML document.
func (p Printer) YAML(v any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Success prints a success line with themed prefix.
func (p Printer) Success(msg string) {
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintf(p.out, "%s %s\n", c.Success("✓"), msg)
	} else {
		fmt.Fprintf(p.out, "%s %s\n", c.Success("[OK]"), msg)
	}
}

// Info prints an informational line.
func (p Printer) Info(msg string) {
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintln(p.out, c.Info("ℹ"), msg)
	} else {
		fmt.Fprintln(p.out, c.Info("[INFO]"), msg)
	}
}

// Warn prints a warning line.
func (p Printer) Warn(msg string) {
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintln(p.out, c.Warning("!"), msg)
	} else {
		fmt.Fprintln(p.out, c.Warning("[WARN]"), msg)
	}
}

// Error prints an error line.
func (p Printer) Error(msg string) {
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintln(p.out, c.Error("✗"), msg)
	} else {
		fmt.Fprintln(p.out, c.Error("[ERR]"), msg)
	}
}

// Section prints a section header with separator
func (p Printer) Section(title string) {
	fmt.Fprintln(p.out, p.Colors.Header(title))
	fmt.Fprintln(p.out, p.Colors.Separator(40))
}

// KeyValueLine prints a key-value pair; status picks the value color.
func (p Printer) KeyValueLine(key, value, status string) {
	var colored string
	switch status {
	case "success":
		colored = p.Colors.Success(value)
	case "warning":
		colored = p.Colors.Warning(value)
	case "error":
		colored = p.Colors.Error(value)
	case "dim":
		colored = p.Colors.Description(value)
	default:
		colored = p.Colors.Value(value)
	}
	fmt.Fprintf(p.out, "  %-22s %s\n", p.Colors.Label(key+":"), colored)
}
