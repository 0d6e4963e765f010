package cmd

import (
	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/pkg/profiling"
	"github.com/grovetools/reqs/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the reqs command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand("reqs", "Edit requirement hierarchies")
	root.Long = `reqs edits Doorstop-style requirement projects: documents of YAML items
linked to the items of a parent document.

Run 'reqs edit' for the interactive editor, or use the item, link and apply
commands to script edits.`
	root.SilenceUsage = true

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(root)
	root.PersistentPreRunE = profiler.PreRun
	root.PersistentPostRunE = profiler.PostRun

	root.AddCommand(
		NewShowCmd(),
		NewCheckCmd(),
		NewItemCmd(),
		NewLinkCmd(),
		NewEditCmd(),
		NewApplyCmd(),
		NewConfigCmd(),
		NewLogsCmd(),
		cli.NewVersionCommand("reqs", version.GetInfo()),
	)
	cli.SetVersionTemplate(root, version.GetInfo())
	return root
}
