package cmd

import (
	"fmt"

	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/spf13/cobra"
)

// NewLinkCmd creates the `link` command group.
func NewLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Add or remove links between items",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "add UID TARGET...",
		Short:   "Link an item to one or more parent items",
		Example: "reqs link add TST-002 REQ-002",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := make([]state.Action, 0, len(args)-1)
			for _, target := range args[1:] {
				actions = append(actions, state.AddLink{UID: hierarchy.UID(args[0]), Target: target})
			}
			return runEdit(cmd, fmt.Sprintf("Linked %s to %d item(s)", args[0], len(args)-1), actions...)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove UID TARGET...",
		Short: "Remove links from an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, fmt.Sprintf("Unlinked %d item(s) from %s", len(args)-1, args[0]),
				state.RemoveLinks{UID: hierarchy.UID(args[0]), Targets: uids(args[1:])})
		},
	})

	return cmd
}
