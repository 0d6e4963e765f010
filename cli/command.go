package cli

import (
	"os"

	"github.com/grovetools/reqs/config"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the options shared by every reqs command.
type CommandOptions struct {
	ConfigFile string
	Project    string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a command carrying the standard reqs flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to reqs.yml config file")
	cmd.PersistentFlags().StringP("project", "p", "", "Project directory (default: from reqs.yml)")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger returns the cli logger, switched to debug by --verbose.
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger("cli")

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}

	return entry
}

// GetOptions extracts the standard options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	project, _ := cmd.Flags().GetString("project")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Project:    project,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads the file named by --config, or searches upwards from the
// working directory. A missing reqs.yml yields the defaults.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := GetOptions(cmd)
	if opts.ConfigFile != "" {
		return config.Load(opts.ConfigFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(cwd)
}

// ProjectPath returns the project directory from --project, falling back to
// the project named in cfg.
func ProjectPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if project := GetOptions(cmd).Project; project != "" {
		return project, nil
	}
	if cfg != nil && cfg.Project != "" {
		return cfg.Project, nil
	}
	return "", errors.Invalid("project", "no project given; pass --project or set 'project' in reqs.yml")
}

// Execute runs root and reports a failure through the error handler. It
// returns the process exit code.
func Execute(root *cobra.Command) int {
	ApplyStyledHelpRecursive(root)
	root.SilenceErrors = true
	root.SilenceUsage = true

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = root
	}
	NewErrorHandler(GetOptions(cmd).Verbose).WithWriter(cmd.ErrOrStderr()).Handle(cmd, err)
	return 1
}
