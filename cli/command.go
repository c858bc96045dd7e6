package cli

import (
	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/util/pathutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds common options for extender commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to extender.yml config file")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger returns the CLI logger adjusted for the command flags
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger("extender-cli")

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return entry
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// ConfigPath returns the expanded --config value, or "" when the flag is
// unset.
func ConfigPath(cmd *cobra.Command) (string, error) {
	configFile := GetOptions(cmd).ConfigFile
	if configFile == "" {
		return "", nil
	}
	path, err := pathutil.Expand(configFile)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid --config path")
	}
	return path, nil
}

// LoadConfig loads the config named by --config, or the layered config
// found from the working directory.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := ConfigPath(cmd)
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}
