package cmd

import (
	"github.com/grovetools/extender/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the extender command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"extender",
		"Profile broker for the data set, filesystem and job views",
	)

	root.AddCommand(NewProfilesCmd())
	root.AddCommand(NewReloadCmd())
	root.AddCommand(NewWatchCmd())
	root.AddCommand(NewExploreCmd())
	root.AddCommand(NewSchemaCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewPathsCmd())
	root.AddCommand(cli.NewVersionCommand("extender"))

	cli.ApplyStyledHelpRecursive(root)
	return root
}
