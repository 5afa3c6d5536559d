package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/exitcodes"
	"github.com/pushchain/push-ota/internal/update"
	"github.com/pushchain/push-ota/internal/watch"
)

// runWatch follows the agent's update events. On a terminal it shows the
// interactive view unless plain is set; otherwise it prints one line (or
// one JSON/YAML document) per snapshot until the stream ends.
func runWatch(ctx context.Context, d *Deps, plain bool) error {
	p, err := d.newProvider(ctx)
	if err != nil {
		return err
	}

	if !plain && d.Printer.Format() == "text" && d.IsTTY() {
		return watch.Run(ctx, p, watch.Options{NoEmoji: flagNoEmoji, CheckTimeout: d.Cfg.RequestTimeout})
	}

	pr := d.Printer
	unsubscribe := p.Subscribe(func(info update.Info) {
		if err := pr.Render(newInfoView(info), func() { pr.Textf("%s\n", watch.Line(info)) }); err != nil {
			d.Log.WithError(err).Warn("Failed to print snapshot")
		}
	})
	defer unsubscribe()

	err = p.Listen(ctx)
	if errors.Is(err, update.ErrAlreadyListening) {
		return exitcodes.WrapError(exitcodes.PreconditionFailed, "watch rejected", err)
	}
	if err != nil {
		return exitcodes.NetworkErr("watch failed", err)
	}
	return nil
}

func init() {
	var plain bool
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow update events from the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), d, plain)
		},
	}
	watchCmd.Flags().BoolVar(&plain, "plain", false, "Print one line per update instead of the interactive view")
	rootCmd.AddCommand(watchCmd)
}
