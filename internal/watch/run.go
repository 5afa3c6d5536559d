package watch

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pushchain/push-ota/internal/update"
)

// Run shows the interactive view until the user quits or ctx is done. It
// listens for update events on src for as long as the view is open.
func Run(ctx context.Context, src Source, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(NewModel(src, opts), tea.WithAltScreen())

	unsubscribe := src.Subscribe(func(info update.Info) { prog.Send(InfoMsg(info)) })
	defer unsubscribe()

	go func() {
		err := src.Listen(ctx)
		prog.Send(StreamEndedMsg{Err: err})
	}()
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
