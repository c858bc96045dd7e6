package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/logging"
	"github.com/spf13/cobra"
)

// NewSchemaCmd creates the schema command.
func NewSchemaCmd() *cobra.Command {
	var (
		output      string
		loggingOnly bool
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for extender.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			generate := config.GenerateSchema
			if loggingOnly {
				generate = logging.GenerateSchema
			}
			data, err := generate()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			if output != "" {
				return os.WriteFile(output, append(data, '\n'), 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&loggingOnly, "logging", false, "Print the schema of the logging section instead")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the schema to a file")
	return cmd
}
