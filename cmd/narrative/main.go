package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "narrative",
		Short: "Targeting and dispatch core for data-driven narrative worlds",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(resolveCmd())
	root.AddCommand(dispatchCmd())
	root.AddCommand(journalCmd())
	root.AddCommand(snapshotCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
