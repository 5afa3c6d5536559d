package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/exitcodes"
)

// runCheck asks the agent for an update and prints the resulting
// snapshot. With strict set, a failed check is returned as a
// NetworkError after printing.
func runCheck(ctx context.Context, d *Deps, strict bool) error {
	p, err := d.newProvider(ctx)
	if err != nil {
		return err
	}

	info := p.CheckForUpdate(ctx)
	pr := d.Printer
	if err := pr.Render(newInfoView(info), func() { printInfoText(pr, info) }); err != nil {
		return err
	}

	if strict && info.Err != nil {
		return silentErr{exitcodes.NetworkErr("update check failed", info.Err)}
	}
	return nil
}

func init() {
	var strict bool
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check the update server for a new update",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), d, strict)
		},
	}
	checkCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the check fails")
	rootCmd.AddCommand(checkCmd)
}
