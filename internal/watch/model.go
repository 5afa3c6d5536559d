// Package watch renders the live update state in the terminal.
package watch

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pushchain/push-ota/internal/update"
)

// Source is the update state the view follows. *update.Provider
// satisfies it.
type Source interface {
	Info() update.Info
	Subscribe(fn func(update.Info)) func()
	Listen(ctx context.Context) error
	CheckForUpdate(ctx context.Context) update.Info
	DownloadUpdate(ctx context.Context, handler update.DownloadHandler)
}

// Options configures the watch view.
type Options struct {
	NoEmoji bool
	// CheckTimeout bounds checks started with the check key. Zero means 30s.
	CheckTimeout time.Duration
}

// InfoMsg carries a snapshot applied by the provider.
type InfoMsg update.Info

// DownloadMsg carries a download progress event.
type DownloadMsg update.DownloadEvent

// StreamEndedMsg reports that the event stream ended.
type StreamEndedMsg struct {
	Err error
}

type toggleHelpMsg struct{}

// checkDoneMsg ends a check started with the check key. The snapshot
// itself arrives as an InfoMsg through the provider subscription.
type checkDoneMsg struct{}

// Model is the Bubble Tea model for the watch view.
type Model struct {
	src  Source
	opts Options

	info     update.Info
	received bool
	download *update.DownloadEvent
	checking bool
	ended    *StreamEndedMsg

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	showHelp bool
}

// NewModel returns a model showing src's current snapshot.
func NewModel(src Source, opts Options) *Model {
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = 30 * time.Second
	}
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		src:     src,
		opts:    opts,
		info:    src.Info(),
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: s,
	}
}

// Init starts the spinner (Bubble Tea lifecycle)
func (m *Model) Init() tea.Cmd {
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return m.spinner.Tick
}

// Update handles messages (Bubble Tea lifecycle)
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case InfoMsg:
		m.info = update.Info(msg)
		m.received = true
		return m, nil

	case checkDoneMsg:
		m.checking = false
		return m, nil

	case DownloadMsg:
		ev := update.DownloadEvent(msg)
		m.download = &ev
		return m, nil

	case StreamEndedMsg:
		m.ended = &msg
		return m, nil

	case toggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q", "h", "?", "esc":
			return m, func() tea.Msg { return toggleHelpMsg{} }
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		return m, func() tea.Msg { return toggleHelpMsg{} }
	case key.Matches(msg, m.keys.Check):
		if m.checking {
			return m, nil
		}
		m.checking = true
		return m, m.checkCmd()
	case key.Matches(msg, m.keys.Download):
		if m.download != nil && m.download.Type == update.DownloadStart {
			return m, nil
		}
		return m, m.downloadCmd()
	}
	return m, nil
}

// checkCmd runs a check. Its snapshot, if applied, reaches the model
// through the provider subscription, never through the command result.
func (m *Model) checkCmd() tea.Cmd {
	src, timeout := m.src, m.opts.CheckTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		src.CheckForUpdate(ctx)
		return checkDoneMsg{}
	}
}

// downloadCmd marks the download as started and reports how it ended.
func (m *Model) downloadCmd() tea.Cmd {
	src := m.src
	start := update.DownloadEvent{Type: update.DownloadStart}
	m.download = &start
	return func() tea.Msg {
		var last update.DownloadEvent
		src.DownloadUpdate(context.Background(), func(ev update.DownloadEvent) { last = ev })
		return DownloadMsg(last)
	}
}
