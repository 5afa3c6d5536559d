package ui

import (
	"bytes"
	"strings"
	"testing"
)

func plainPrinter(format string) (Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	p := NewPrinter(format, &buf)
	p.Colors.Enabled = false
	return p, &buf
}

func TestPrinter_Render(t *testing.T) {
	v := struct {
		ID string `json:"id" yaml:"id"`
	}{ID: "abc"}

	tests := []struct {
		format string
		want   string
	}{
		{FormatJSON, "{\n  \"id\": \"abc\"\n}\n"},
		{FormatYAML, "id: abc\n"},
		{"", "text\n"},
		{FormatText, "text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, buf := plainPrinter(tt.format)
			err := p.Render(v, func() { p.Textf("text\n") })
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Render() wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_Messages(t *testing.T) {
	tests := []struct {
		name  string
		emoji bool
		print func(Printer)
		want  string
	}{
		{"success emoji", true, func(p Printer) { p.Success("done") }, "✓ done\n"},
		{"success plain", false, func(p Printer) { p.Success("done") }, "[OK] done\n"},
		{"warn plain", false, func(p Printer) { p.Warn("careful") }, "[WARN] careful\n"},
		{"error plain", false, func(p Printer) { p.Error("broken") }, "[ERR] broken\n"},
		{"info plain", false, func(p Printer) { p.Info("fyi") }, "[INFO] fyi\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := plainPrinter(FormatText)
			p.Colors.EmojiEnabled = tt.emoji
			tt.print(p)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_KeyValueLine(t *testing.T) {
	p, buf := plainPrinter(FormatText)
	p.KeyValueLine("Update ID", "0000-1111", "success")
	if got := buf.String(); !strings.Contains(got, "Update ID:") || !strings.HasSuffix(got, "0000-1111\n") {
		t.Errorf("KeyValueLine() = %q", got)
	}
}

func TestErrorMessage_Format(t *testing.T) {
	c := &ColorConfig{Enabled: false, Theme: DefaultTheme()}
	got := ErrorMessage{
		Problem: "update agent unreachable",
		Causes:  []string{"agent not running"},
		Actions: []string{"push-ota status --agent http://host:19010"},
	}.Format(c)

	for _, want := range []string{"Problem: update agent unreachable", "• agent not running", "→ push-ota status"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q in:\n%s", want, got)
		}
	}
}

func TestStatusIcon_NoEmoji(t *testing.T) {
	c := &ColorConfig{Enabled: false, EmojiEnabled: false, Theme: DefaultTheme()}
	tests := map[string]string{
		"available": "[OK]",
		"pending":   "[WARN]",
		"error":     "[ERR]",
		"unknown":   "[ ]",
	}
	for status, want := range tests {
		if got := c.StatusIcon(status); got != want {
			t.Errorf("StatusIcon(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestGlobal_DisablesColorAndEmoji(t *testing.T) {
	defer InitGlobal(Config{})
	InitGlobal(Config{NoColor: true, NoEmoji: true})

	p := NewPrinterFromGlobal(FormatText, &bytes.Buffer{})
	if p.Colors.Enabled || p.Colors.EmojiEnabled {
		t.Errorf("colors = %+v, want both disabled", p.Colors)
	}
}
