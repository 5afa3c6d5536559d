package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/update"
)

// runExtra prints the custom extra properties of the available update's
// manifest, checking first. With running set it reads the manifest of
// the running bundle instead and skips the check.
func runExtra(ctx context.Context, d *Deps, running bool) error {
	p, err := d.newProvider(ctx)
	if err != nil {
		return err
	}

	var extra map[string]any
	if running {
		extra = update.ExtraPropertiesFromManifest(p.Info().CurrentlyRunning.Manifest)
	} else {
		info := p.CheckForUpdate(ctx)
		if info.Err != nil {
			d.Log.WithError(info.Err).Warn("Update check failed")
		}
		extra = p.ExtraProperties()
	}

	pr := d.Printer
	return pr.Render(extra, func() {
		if len(extra) == 0 {
			pr.Info("No extra properties")
			return
		}
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pr.KeyValueLine(k, fmt.Sprint(extra[k]), "")
		}
	})
}

func init() {
	var running bool
	extraCmd := &cobra.Command{
		Use:   "extra",
		Short: "Show custom extra properties from an update manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runExtra(cmd.Context(), d, running)
		},
	}
	extraCmd.Flags().BoolVar(&running, "running", false, "Read the running bundle's manifest instead of the available update")
	rootCmd.AddCommand(extraCmd)
}
