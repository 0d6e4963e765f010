package cmd

import (
	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/state"
	"github.com/grovetools/reqs/tui/editor"
	"github.com/spf13/cobra"
)

// NewEditCmd creates the `edit` command.
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive editor",
		Long: `Opens the project in the interactive editor. Without --project or a
'project' entry in reqs.yml the previous session is restored from
.reqs/state.yml in the working directory.`,
		Args: cobra.NoArgs,
		RunE: runEditor,
	}
	cmd.Flags().Bool("no-restore", false, "Do not restore or save the session")
	return cmd
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := newStore(cmd, cfg)
	if err != nil {
		return err
	}

	if project, err := cli.ProjectPath(cmd, cfg); err == nil {
		store.Dispatch(state.SetProjectPath{Path: project})
	}

	opts := editor.Options{Config: cfg}
	if noRestore, _ := cmd.Flags().GetBool("no-restore"); !noRestore {
		opts.PrefsDir = store.State().Cwd()
	}
	return editor.Run(cmd.Context(), store, opts)
}
