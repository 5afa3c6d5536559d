package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/exitcodes"
	"github.com/pushchain/push-ota/internal/update"
)

type downloadResult struct {
	Events []string `json:"events" yaml:"events"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// runDownload fetches the available update, printing each download event
// as it arrives in text mode.
func runDownload(ctx context.Context, d *Deps) error {
	p, err := d.newProvider(ctx)
	if err != nil {
		return err
	}

	pr := d.Printer
	text := pr.Format() == "text"
	var res downloadResult
	var failed error
	p.DownloadUpdate(ctx, func(ev update.DownloadEvent) {
		res.Events = append(res.Events, string(ev.Type))
		switch ev.Type {
		case update.DownloadStart:
			if text && !flagQuiet {
				pr.Info("Downloading update...")
			}
		case update.DownloadComplete:
			if text {
				pr.Success("Update downloaded; run push-ota reload to apply it")
			}
		case update.DownloadError:
			failed = ev.Err
			if failed == nil {
				failed = errors.New("download failed")
			}
			res.Error = failed.Error()
			if text {
				pr.Error("Download failed: " + res.Error)
			}
		}
	})

	if !text {
		if err := pr.Render(res, func() {}); err != nil {
			return err
		}
	}

	switch {
	case failed == nil:
		return nil
	case errors.Is(failed, update.ErrDownloadInProgress):
		return silentErr{exitcodes.WrapError(exitcodes.PreconditionFailed, "download rejected", failed)}
	default:
		return silentErr{exitcodes.NetworkErr("download failed", failed)}
	}
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "download",
		Short: "Download the available update without applying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runDownload(cmd.Context(), d)
		},
	})
}
