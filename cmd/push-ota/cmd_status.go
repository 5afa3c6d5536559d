package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/exitcodes"
	"github.com/pushchain/push-ota/internal/update"
)

type statusResult struct {
	CurrentlyRunning update.CurrentlyRunning `json:"currentlyRunning" yaml:"currentlyRunning"`
	LastCheck        *update.CacheEntry      `json:"lastCheck,omitempty" yaml:"lastCheck,omitempty"`
}

// runStatus reports the running bundle and the last cached check without
// contacting the update server.
func runStatus(ctx context.Context, d *Deps) error {
	running, err := d.Agent.Constants(ctx)
	if err != nil {
		return exitcodes.NetworkErr("failed to read running update from agent", err)
	}

	res := statusResult{CurrentlyRunning: running}
	cache, err := update.LoadCache(d.Cfg.HomeDir)
	switch {
	case err == nil:
		res.LastCheck = cache
	case !errors.Is(err, os.ErrNotExist):
		d.Log.WithError(err).Warn("Ignoring unreadable check cache")
	}

	p := d.Printer
	return p.Render(res, func() {
		printRunning(p, running)
		p.Textf("\n")
		p.Section("Last check")
		if res.LastCheck == nil {
			p.Info("No check recorded yet; run push-ota check")
			return
		}
		c := res.LastCheck
		p.KeyValueLine("Checked at", formatTime(&c.CheckedAt), "dim")
		switch {
		case c.Error != "":
			p.KeyValueLine("Result", c.Error, "error")
		case c.UpdateAvailable:
			p.KeyValueLine("Result", "update available", "success")
			p.KeyValueLine("Update ID", orDash(c.AvailableUpdateID), "")
			p.KeyValueLine("Created", formatTime(c.AvailableCreatedAt), "dim")
		default:
			p.KeyValueLine("Result", "up to date", "")
		}
	})
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the running update and the last check",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), d)
		},
	})
}
