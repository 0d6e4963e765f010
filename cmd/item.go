package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/logging"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/spf13/cobra"
)

// NewItemCmd creates the `item` command group.
func NewItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Edit items and document structure",
		Long:  "Edits items of the project. Every change is applied and saved as one session; a failing edit leaves the files untouched.",
	}

	cmd.AddCommand(
		newSetTextCmd(),
		newSetRefCmd(),
		newSetFlagCmd(),
		newSetAttrCmd(),
		newAddItemCmd(),
		newRemoveItemCmd(),
		newIndentCmd(),
		newReorderCmd(),
	)
	return cmd
}

func newSetTextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-text UID [TEXT]",
		Short: "Replace an item's text",
		Long:  "Replaces the text of an item. Without TEXT, or with '-', the text is read from stdin.",
		Example: `# Set the text directly
reqs item set-text REQ-001 "The system shall load projects."

# Read multi-line text from a file
reqs item set-text REQ-001 < text.md`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := "-"
			if len(args) == 2 {
				text = args[1]
			}
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.IOFailure("read", "stdin", err)
				}
				text = string(data)
			}
			return runEdit(cmd, "Updated text of "+args[0],
				state.SetItemText{UID: hierarchy.UID(args[0]), Text: text})
		},
	}
	return cmd
}

func newSetRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-ref UID REF",
		Short: "Set an item's external reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, "Updated ref of "+args[0],
				state.SetItemReference{UID: hierarchy.UID(args[0]), Ref: args[1]})
		},
	}
}

func newSetFlagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-flag UID FLAG true|false",
		Short: "Set active, derived, normative or heading",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := state.ParseFlag(args[1])
			if err != nil {
				return err
			}
			value, err := strconv.ParseBool(args[2])
			if err != nil {
				return errors.Invalid("value", fmt.Sprintf("%q is not a boolean", args[2]))
			}
			return runEdit(cmd, fmt.Sprintf("Set %s of %s to %t", flag, args[0], value),
				state.SetItemFlag{UID: hierarchy.UID(args[0]), Flag: flag, Value: value})
		},
	}
}

func newSetAttrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-attr UID NAME [VALUE]",
		Short: "Set or remove an extended attribute",
		Long:  "Sets the extended attribute NAME of an item. Without VALUE the attribute is removed.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 3 {
				value = args[2]
			}
			return runEdit(cmd, fmt.Sprintf("Updated %s of %s", args[1], args[0]),
				state.SetExtendedAttributeValue{UID: hierarchy.UID(args[0]), Name: args[1], Value: value})
		},
	}
}

func newAddItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add PREFIX",
		Short: "Add an item to a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("level")
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.edit(state.AddItem{Prefix: hierarchy.Prefix(args[0]), Level: level}); err != nil {
				return err
			}
			item, _ := s.store.State().PrincipalItem()
			logging.NewPrinter().WithWriter(cmd.OutOrStdout()).Success(
				fmt.Sprintf("Added %s at level %s", item.UID(), item.Level()))
			return nil
		},
	}
	cmd.Flags().String("level", "", "Level of the new item (default: after the last item)")
	return cmd
}

func newRemoveItemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove UID...",
		Short: "Delete items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, fmt.Sprintf("Removed %d item(s)", len(args)),
				state.RemoveItems{UIDs: uids(args)})
		},
	}
}

func newIndentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indent UID",
		Short: "Move an item deeper or shallower in its document",
		Example: `reqs item indent TST-002
reqs item indent TST-002 --delta -1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, _ := cmd.Flags().GetInt("delta")
			return runEdit(cmd, "Reindented "+args[0],
				state.Reindent{UID: hierarchy.UID(args[0]), Delta: delta})
		},
	}
	cmd.Flags().Int("delta", 1, "Levels to move; negative moves up")
	return cmd
}

func newReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder PREFIX",
		Short: "Renumber a document's levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetString("keep")
			return runEdit(cmd, "Renumbered "+args[0],
				state.ReorderDocument{Prefix: hierarchy.Prefix(args[0]), Keep: hierarchy.UID(keep)})
		},
	}
	cmd.Flags().String("keep", "", "Item that stays first when levels collide")
	return cmd
}

// runEdit opens the project, applies actions, saves and reports done.
func runEdit(cmd *cobra.Command, done string, actions ...state.Action) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	if err := s.edit(actions...); err != nil {
		return err
	}
	logging.NewPrinter().WithWriter(cmd.OutOrStdout()).Success(done)
	return nil
}

func uids(args []string) []hierarchy.UID {
	out := make([]hierarchy.UID, len(args))
	for i, a := range args {
		out[i] = hierarchy.UID(a)
	}
	return out
}
