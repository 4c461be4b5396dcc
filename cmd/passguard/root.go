package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/PassGuard/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "passguard",
		Short: "Local multi-user password vault",
		Long: `PassGuard stores website passwords encrypted per account.

Configuration is read from flags, PASSGUARD_* environment variables and an
optional passguard.{json,yaml,toml} file, in that order of precedence.`,
		SilenceUsage: true,
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(newShellCmd(), newPipeCmd(), newSweepCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "PassGuard\nVersion: %s\nBuild Date: %s\n",
				cmpOr(version, "N/A"), cmpOr(buildDate, "N/A"))
		},
	}
}

// cmpOr returns the first of its arguments that is not the zero value
// (equivalent to cmp.Or, which requires Go 1.22).
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
