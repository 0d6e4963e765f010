package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/tui/components/table"
	"github.com/grovetools/reqs/tui/theme"
	"github.com/spf13/cobra"
)

type itemJSON struct {
	UID        string                 `json:"uid"`
	Document   string                 `json:"document"`
	Level      string                 `json:"level"`
	Header     string                 `json:"header,omitempty"`
	Text       string                 `json:"text"`
	Ref        string                 `json:"ref,omitempty"`
	Active     bool                   `json:"active"`
	Derived    bool                   `json:"derived"`
	Normative  bool                   `json:"normative"`
	Heading    bool                   `json:"heading"`
	Links      []string               `json:"links"`
	LinkedFrom []string               `json:"linked_from,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

func toJSON(item *hierarchy.Item, withChildren bool) itemJSON {
	out := itemJSON{
		UID:       string(item.UID()),
		Document:  string(item.Document().Prefix()),
		Level:     item.Level().String(),
		Header:    item.Header(),
		Text:      item.Text(),
		Ref:       item.Ref(),
		Active:    item.Active(),
		Derived:   item.Derived(),
		Normative: item.Normative(),
		Heading:   item.Heading(),
		Links:     []string{},
	}
	for _, uid := range item.Links() {
		out.Links = append(out.Links, string(uid))
	}
	if withChildren {
		for _, child := range item.FindChildLinks() {
			out.LinkedFrom = append(out.LinkedFrom, string(child.UID()))
		}
	}
	if names := item.AttributeNames(); len(names) > 0 {
		out.Attributes = make(map[string]interface{}, len(names))
		for _, name := range names {
			out.Attributes[name], _ = item.Attribute(name)
		}
	}
	return out
}

// NewShowCmd creates the `show` command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [PREFIX]",
		Short: "List documents and items",
		Long:  "Lists the items of every document, or of the document PREFIX. With --item, shows one item with the items linking to it.",
		Example: `reqs show
reqs show TST
reqs show --item REQ-002
reqs show --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
	cmd.Flags().String("item", "", "Show a single item in detail")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	tree := s.tree()
	out := cmd.OutOrStdout()
	jsonOutput := cli.GetOptions(cmd).JSONOutput

	if uid, _ := cmd.Flags().GetString("item"); uid != "" {
		item, err := tree.FindItem(hierarchy.UID(uid))
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, toJSON(item, true))
		}
		showItem(out, theme.DefaultTheme, item)
		return nil
	}

	docs := tree.Documents()
	if len(args) == 1 {
		doc, err := tree.FindDocument(hierarchy.Prefix(args[0]))
		if err != nil {
			return err
		}
		docs = []*hierarchy.Document{doc}
	}

	if jsonOutput {
		items := []itemJSON{}
		for _, doc := range docs {
			for _, item := range doc.Items() {
				items = append(items, toJSON(item, false))
			}
		}
		return writeJSON(out, items)
	}

	width := cli.TerminalWidth(100)
	for i, doc := range docs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		showDocument(out, theme.DefaultTheme, doc, width)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func showDocument(w io.Writer, t *theme.Theme, doc *hierarchy.Document, width int) {
	title := string(doc.Prefix())
	if doc.Parent() != "" {
		title += " → " + string(doc.Parent())
	}
	fmt.Fprintf(w, "%s %s\n", t.Header.Render(title), t.Muted.Render(doc.Dir()))

	items := doc.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, t.Muted.Render("  no items"))
		return
	}

	// UID, level, links and flags take about 40 cells.
	summaryWidth := width - 40
	if summaryWidth < 20 {
		summaryWidth = 20
	}

	b := table.NewBuilder().WithTheme(t).WithHeaders("UID", "LEVEL", "SUMMARY", "LINKS", "FLAGS")
	for i, item := range items {
		summary := item.Header()
		if summary == "" {
			summary = firstLine(item.Text())
		}
		b.WithRows([]string{
			string(item.UID()),
			item.Level().String(),
			truncate(summary, summaryWidth),
			joinUIDs(item.Links()),
			flags(item),
		})
		if !item.Active() {
			b.WithMutedRow(i)
		}
	}
	fmt.Fprintln(w, b.Build().String())
}

func showItem(w io.Writer, t *theme.Theme, item *hierarchy.Item) {
	title := fmt.Sprintf("%s  %s", item.UID(), item.Level())
	if item.Header() != "" {
		title += "  " + item.Header()
	}
	fmt.Fprintln(w, t.Header.Render(title))

	fields := [][2]string{
		{"document", string(item.Document().Prefix())},
		{"ref", item.Ref()},
		{"flags", flags(item)},
		{"links", joinUIDs(item.Links())},
	}
	var children []hierarchy.UID
	for _, child := range item.FindChildLinks() {
		children = append(children, child.UID())
	}
	fields = append(fields, [2]string{"linked from", joinUIDs(children)})
	for _, name := range item.AttributeNames() {
		v, _ := item.Attribute(name)
		fields = append(fields, [2]string{name, fmt.Sprint(v)})
	}
	fmt.Fprintln(w, table.FieldTable(t, fields))

	if text := strings.TrimRight(item.Text(), "\n"); text != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, text)
	}
}

// flags renders the boolean fields as letters, e.g. "AN" for active and
// normative.
func flags(item *hierarchy.Item) string {
	var b strings.Builder
	for _, f := range []struct {
		set    bool
		letter string
	}{
		{item.Active(), "A"},
		{item.Derived(), "D"},
		{item.Normative(), "N"},
		{item.Heading(), "H"},
	} {
		if f.set {
			b.WriteString(f.letter)
		} else {
			b.WriteString("-")
		}
	}
	return b.String()
}

func joinUIDs(uids []hierarchy.UID) string {
	parts := make([]string, len(uids))
	for i, uid := range uids {
		parts[i] = string(uid)
	}
	return strings.Join(parts, ", ")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
