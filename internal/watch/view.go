package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pushchain/push-ota/internal/update"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(18)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// View renders the model (Bubble Tea lifecycle)
func (m *Model) View() string {
	if m.showHelp {
		return sectionStyle.Render(m.help.FullHelpView(m.keys.FullHelp()))
	}

	var rows []string
	rows = append(rows, titleStyle.Render("push-ota watch"))
	rows = append(rows, sectionStyle.Render(m.runningView()))
	rows = append(rows, sectionStyle.Render(m.checkView()))
	if m.download != nil {
		rows = append(rows, m.downloadView())
	}
	rows = append(rows, m.streamView())
	rows = append(rows, m.help.ShortHelpView(m.keys.ShortHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) icon(ok, emoji string) string {
	if m.opts.NoEmoji {
		return ok
	}
	return emoji
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func (m *Model) runningView() string {
	r := m.info.CurrentlyRunning
	id := r.UpdateID
	if r.IsEmbeddedLaunch {
		id += dimStyle.Render(" (embedded)")
	}
	lines := []string{
		titleStyle.Render("Currently running"),
		row("Update ID", orDash(id)),
		row("Channel", orDash(r.Channel)),
		row("Runtime version", orDash(r.RuntimeVersion)),
		row("Created", formatTime(r.CreatedAt)),
	}
	if r.IsEmergencyLaunch {
		lines = append(lines, errStyle.Render(m.icon("[!]", "⚠")+" emergency launch"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) checkView() string {
	lines := []string{titleStyle.Render("Update")}

	if m.info.LastCheckForUpdateTime == nil && !m.received {
		lines = append(lines, m.spinner.View()+" "+dimStyle.Render("Waiting for update events"))
		return strings.Join(lines, "\n")
	}

	switch {
	case m.info.Err != nil:
		lines = append(lines, row("Status", errStyle.Render(m.icon("[ERR]", "✗")+" "+m.info.Err.Error())))
	case m.info.AvailableUpdate != nil:
		a := m.info.AvailableUpdate
		lines = append(lines,
			row("Status", okStyle.Render(m.icon("[OK]", "✓")+" update available")),
			row("Update ID", orDash(a.UpdateID)),
			row("Created", formatTime(a.CreatedAt)),
		)
	default:
		lines = append(lines, row("Status", "up to date"))
	}
	lines = append(lines, row("Last check", formatTime(m.info.LastCheckForUpdateTime)))
	if m.checking {
		lines = append(lines, m.spinner.View()+" "+dimStyle.Render("Checking"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) downloadView() string {
	switch m.download.Type {
	case update.DownloadStart:
		return m.spinner.View() + " " + warnStyle.Render("Downloading update")
	case update.DownloadComplete:
		return okStyle.Render(m.icon("[OK]", "✓") + " Update downloaded, run push-ota reload to apply it")
	default:
		msg := "download failed"
		if m.download.Err != nil {
			msg += ": " + m.download.Err.Error()
		}
		return errStyle.Render(m.icon("[ERR]", "✗") + " " + msg)
	}
}

func (m *Model) streamView() string {
	if m.ended == nil {
		return dimStyle.Render("Listening for update events")
	}
	if m.ended.Err != nil {
		return errStyle.Render("Event stream ended: " + m.ended.Err.Error())
	}
	return warnStyle.Render("Event stream closed")
}

// Line renders info as a single plain line, for non-interactive output.
func Line(info update.Info) string {
	var b strings.Builder
	b.WriteString(formatTime(info.LastCheckForUpdateTime))
	b.WriteString(" running=")
	b.WriteString(orDash(info.CurrentlyRunning.UpdateID))
	switch {
	case info.Err != nil:
		fmt.Fprintf(&b, " error=%q", info.Err.Error())
	case info.AvailableUpdate != nil:
		b.WriteString(" available=")
		b.WriteString(orDash(info.AvailableUpdate.UpdateID))
	default:
		b.WriteString(" available=none")
	}
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
