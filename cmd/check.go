package cmd

import (
	"fmt"
	"io"

	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/logging"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/spf13/cobra"
)

// Issue is one finding of `reqs check`.
type Issue struct {
	UID      string `json:"uid"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

const (
	severityError   = "error"
	severityWarning = "warning"
)

// NewCheckCmd creates the `check` command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the project and its links",
		Long: `Loads the project, which validates every file, and then checks the links:
links must resolve, point into the parent document and not point at inactive
items. Normative items of child documents should link to a parent item unless
they are derived. Exits non-zero when an error is found.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	issues := CheckTree(s.tree())

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		if issues == nil {
			issues = []Issue{}
		}
		if err := writeJSON(out, issues); err != nil {
			return err
		}
	} else {
		printIssues(out, s.tree(), issues)
	}

	failures := 0
	for _, issue := range issues {
		if issue.Severity == severityError {
			failures++
		}
	}
	if failures > 0 {
		return errors.Invalid("project", fmt.Sprintf("%d error(s) found", failures))
	}
	return nil
}

// CheckTree returns the link issues of tree in document and level order.
func CheckTree(tree *hierarchy.Tree) []Issue {
	var issues []Issue
	add := func(item *hierarchy.Item, severity, format string, a ...interface{}) {
		issues = append(issues, Issue{UID: string(item.UID()), Severity: severity, Message: fmt.Sprintf(format, a...)})
	}

	for _, doc := range tree.Documents() {
		for _, item := range doc.Items() {
			links := item.Links()
			if doc.Parent() == "" && len(links) > 0 {
				add(item, severityWarning, "root document item has links")
			}
			for _, uid := range links {
				target, err := tree.FindItem(uid)
				if err != nil {
					add(item, severityError, "links to missing item %s", uid)
					continue
				}
				if target.Document().Prefix() != doc.Parent() {
					add(item, severityWarning, "links to %s outside parent document %s", uid, doc.Parent())
				}
				if !target.Active() {
					add(item, severityWarning, "links to inactive item %s", uid)
				}
			}
			if doc.Parent() != "" && len(links) == 0 && item.Active() && item.Normative() && !item.Derived() && !item.Heading() {
				add(item, severityWarning, "no links to %s", doc.Parent())
			}
		}
	}
	return issues
}

func printIssues(w io.Writer, tree *hierarchy.Tree, issues []Issue) {
	p := logging.NewPrinter().WithWriter(w)

	items := 0
	for _, doc := range tree.Documents() {
		items += len(doc.Items())
	}
	p.Path("Project", tree.Root())
	p.Field("Documents", len(tree.Documents()))
	p.Field("Items", items)

	for _, issue := range issues {
		msg := fmt.Sprintf("%s: %s", issue.UID, issue.Message)
		if issue.Severity == severityError {
			p.Error(msg, nil)
		} else {
			p.Warn(msg)
		}
	}
	if len(issues) == 0 {
		p.Success("No issues found")
	}
}
