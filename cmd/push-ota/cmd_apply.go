package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/exitcodes"
	"github.com/pushchain/push-ota/internal/update"
)

type actionResult struct {
	Action string `json:"action" yaml:"action"`
	OK     bool   `json:"ok" yaml:"ok"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// runApply downloads the available update and reloads into it. A non-nil
// delay overrides the configured pause between the two.
func runApply(ctx context.Context, d *Deps, delay *time.Duration) error {
	if delay != nil {
		if *delay < 0 {
			return exitcodes.InvalidArgsErrorf("--delay must not be negative, got %s", *delay)
		}
		d.Cfg.ReloadDelay = *delay
	}
	p, err := d.newProvider(ctx)
	if err != nil {
		return err
	}

	pr := d.Printer
	if pr.Format() == "text" && !flagQuiet {
		pr.Info("Downloading update and reloading...")
	}
	err = p.DownloadAndRunUpdate(ctx)
	return reportAction(d, "apply", "Update applied; the app is reloading", err)
}

// runReload reloads the app into the most recently downloaded update.
func runReload(ctx context.Context, d *Deps) error {
	p, err := d.newProvider(ctx)
	if err != nil {
		return err
	}
	err = p.RunUpdate(ctx)
	return reportAction(d, "reload", "Reload requested", err)
}

func reportAction(d *Deps, action, okMsg string, err error) error {
	res := actionResult{Action: action, OK: err == nil}
	if err != nil {
		res.Error = err.Error()
	}
	pr := d.Printer
	if rerr := pr.Render(res, func() {
		if err == nil {
			pr.Success(okMsg)
		} else {
			pr.Error(res.Error)
		}
	}); rerr != nil {
		return rerr
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, update.ErrDownloadInProgress):
		return silentErr{exitcodes.WrapError(exitcodes.PreconditionFailed, action+" rejected", err)}
	case errors.Is(err, update.ErrReloadFailed):
		return silentErr{exitcodes.ReloadErr(err)}
	default:
		return silentErr{exitcodes.NetworkErr(action+" failed", err)}
	}
}

func init() {
	var delay time.Duration
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Download the available update and reload into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			var override *time.Duration
			if cmd.Flags().Changed("delay") {
				override = &delay
			}
			return runApply(cmd.Context(), d, override)
		},
	}
	applyCmd.Flags().DurationVar(&delay, "delay", 0, "Pause between download and reload (default from config)")
	rootCmd.AddCommand(applyCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "reload",
		Short: "Reload the app into the downloaded update",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runReload(cmd.Context(), d)
		},
	})
}
