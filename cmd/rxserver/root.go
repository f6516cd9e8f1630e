package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd mirrors api/cmd/helix/root.go's shape: a bare root command with
// subcommands attached, no default Run of its own.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rxserver",
		Short: "rxserver",
		Long:  "An X11 protocol engine core.",
	}
	root.AddCommand(newServeCmd())
	return root
}
