// Package main is the PassGuard command line: an interactive shell and a
// JSON line protocol over the local password vault.
package main

import (
	"os"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
