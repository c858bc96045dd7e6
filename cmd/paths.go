package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/extender/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput represents the XDG-compliant paths used by extender.
type PathsOutput struct {
	ConfigDir    string `json:"config_dir"`
	GlobalConfig string `json:"global_config"`
	StateDir     string `json:"state_dir"`
	LogDir       string `json:"log_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by extender",
		Long: `Print the XDG-compliant paths used by extender as JSON.

- config_dir: Configuration directory
- global_config: Global extender.yml, the base configuration layer
- state_dir: Runtime state
- log_dir: Log files written when logging.file.enabled is set`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:    paths.ConfigDir(),
				GlobalConfig: paths.GlobalConfigPath(),
				StateDir:     paths.StateDir(),
				LogDir:       paths.LogDir(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	return cmd
}
