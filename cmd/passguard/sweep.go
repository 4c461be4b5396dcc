package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/PassGuard/internal/config"
	"github.com/atinyakov/PassGuard/internal/db"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete secrets whose account no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := db.SweepOrphans(cmd.Context(), a.store, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned secrets\n", removed)
			return nil
		},
	}
}
