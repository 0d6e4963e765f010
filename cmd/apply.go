package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/logging"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Edit is one entry of an edits file. Which fields apply depends on Action.
type Edit struct {
	Action  string      `yaml:"action"`
	UID     string      `yaml:"uid,omitempty"`
	UIDs    []string    `yaml:"uids,omitempty"`
	Text    string      `yaml:"text,omitempty"`
	Ref     string      `yaml:"ref,omitempty"`
	Flag    string      `yaml:"flag,omitempty"`
	Name    string      `yaml:"name,omitempty"`
	Value   interface{} `yaml:"value,omitempty"`
	Target  string      `yaml:"target,omitempty"`
	Targets []string    `yaml:"targets,omitempty"`
	Prefix  string      `yaml:"prefix,omitempty"`
	Level   string      `yaml:"level,omitempty"`
	Delta   int         `yaml:"delta,omitempty"`
	Keep    string      `yaml:"keep,omitempty"`
}

type editsFile struct {
	Edits []Edit `yaml:"edits"`
}

type applyResult struct {
	Index  int      `json:"index"`
	Action string   `json:"action"`
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// NewApplyCmd creates the `apply` command.
func NewApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply a file of edits in one session",
		Long: `Applies the edits listed in FILE, or stdin for '-', in order. The project is
saved only when every edit succeeds.

Actions: set-text, set-ref, set-flag, set-attr, add-link, remove-links,
add-item, remove-items, indent, reorder.`,
		Example: `# edits.yml
edits:
  - action: set-text
    uid: REQ-001
    text: The system shall load projects.
  - action: set-flag
    uid: REQ-002
    flag: derived
    value: true
  - action: add-link
    uid: TST-002
    target: REQ-002

reqs apply edits.yml`,
		Args: cobra.ExactArgs(1),
		RunE: runApply,
	}
	cmd.Flags().Bool("dry-run", false, "Apply the edits without saving")
	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	edits, err := readEdits(cmd, args[0])
	if err != nil {
		return err
	}
	actions := make([]state.Action, len(edits))
	for i, e := range edits {
		if actions[i], err = e.toAction(); err != nil {
			return errors.Wrap(err, errors.ErrCodeValidation, fmt.Sprintf("edit %d", i+1))
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	queue := state.NewQueue(s.store)
	go queue.Run(ctx)

	pending := make([]<-chan state.Result, len(actions))
	for i, action := range actions {
		pending[i] = queue.Submit(action)
	}

	results := make([]applyResult, len(actions))
	var failures []error
	for i, ch := range pending {
		res := <-ch
		results[i] = applyResult{Index: i + 1, Action: edits[i].Action, OK: res.OK}
		for _, e := range res.Errors {
			results[i].Errors = append(results[i].Errors, e.Error())
		}
		if !res.OK {
			failures = append(failures, res.Err())
		}
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if len(failures) == 0 && !dryRun {
		if res := <-queue.Submit(state.SaveProject{}); !res.OK {
			failures = append(failures, res.Err())
		}
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		printApplyResults(out, results, len(failures) == 0, dryRun)
	}
	return stderrors.Join(failures...)
}

func readEdits(cmd *cobra.Command, path string) ([]Edit, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.IOFailure("read", path, err)
	}

	var file editsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	if len(file.Edits) == 0 {
		return nil, errors.Invalid("edits", "no edits in "+path)
	}
	return file.Edits, nil
}

func (e Edit) toAction() (state.Action, error) {
	uid := hierarchy.UID(e.UID)
	switch e.Action {
	case "set-text":
		return state.SetItemText{UID: uid, Text: e.Text}, nil
	case "set-ref":
		return state.SetItemReference{UID: uid, Ref: e.Ref}, nil
	case "set-flag":
		flag, err := state.ParseFlag(e.Flag)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseBool(e.value())
		if err != nil {
			return nil, errors.Invalid("value", fmt.Sprintf("%q is not a boolean", e.value()))
		}
		return state.SetItemFlag{UID: uid, Flag: flag, Value: value}, nil
	case "set-attr":
		return state.SetExtendedAttributeValue{UID: uid, Name: e.Name, Value: e.value()}, nil
	case "add-link":
		return state.AddLink{UID: uid, Target: e.Target}, nil
	case "remove-links":
		return state.RemoveLinks{UID: uid, Targets: uids(e.Targets)}, nil
	case "add-item":
		return state.AddItem{Prefix: hierarchy.Prefix(e.Prefix), Level: e.Level}, nil
	case "remove-items":
		ids := e.UIDs
		if len(ids) == 0 && e.UID != "" {
			ids = []string{e.UID}
		}
		return state.RemoveItems{UIDs: uids(ids)}, nil
	case "indent":
		delta := e.Delta
		if delta == 0 {
			delta = 1
		}
		return state.Reindent{UID: uid, Delta: delta}, nil
	case "reorder":
		return state.ReorderDocument{Prefix: hierarchy.Prefix(e.Prefix), Keep: hierarchy.UID(e.Keep)}, nil
	case "":
		return nil, errors.Invalid("action", "missing")
	default:
		return nil, errors.Invalid("action", fmt.Sprintf("unknown action %q", e.Action))
	}
}

func (e Edit) value() string {
	if e.Value == nil {
		return ""
	}
	return fmt.Sprint(e.Value)
}

func printApplyResults(w io.Writer, results []applyResult, ok, dryRun bool) {
	p := logging.NewPrinter().WithWriter(w)
	for _, r := range results {
		label := fmt.Sprintf("%d %s", r.Index, r.Action)
		if r.OK {
			p.Info(label)
			continue
		}
		for _, msg := range r.Errors {
			p.Error(label+": "+msg, nil)
		}
	}
	switch {
	case !ok:
		p.Warn("Nothing saved")
	case dryRun:
		p.Success(fmt.Sprintf("Applied %d edit(s), not saved", len(results)))
	default:
		p.Success(fmt.Sprintf("Applied and saved %d edit(s)", len(results)))
	}
}
