package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/tui/theme"
	"github.com/spf13/cobra"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		out:     os.Stderr,
	}
}

// WithWriter redirects the messages.
func (h *ErrorHandler) WithWriter(w io.Writer) *ErrorHandler {
	h.out = w
	return h
}

// Handle prints one message per failure in err, with a hint based on its
// code, and returns err. Joined errors, as returned by a failed dispatch,
// are reported one by one.
func (h *ErrorHandler) Handle(cmd *cobra.Command, err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			h.handleOne(cmd, e)
		}
		return err
	}
	h.handleOne(cmd, err)
	return err
}

func (h *ErrorHandler) handleOne(cmd *cobra.Command, err error) {
	t := theme.DefaultTheme
	red := lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Red)
	hint := func(text string) {
		fmt.Fprintln(h.out, t.Muted.Render(text))
	}

	fmt.Fprintf(h.out, "%s %s\n", red.Render("Error:"), message(err))

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		hint("Create reqs.yml or pass --config.")
	case errors.ErrCodeConfigInvalid:
		hint(fmt.Sprintf("Run '%s config schema' to see the expected format.", cmd.Root().Name()))
	case errors.ErrCodeNotFound:
		if kind, ok := errors.Detail(err, "kind"); ok && kind == "item" {
			hint(fmt.Sprintf("Run '%s show' to list items.", cmd.Root().Name()))
		}
	case errors.ErrCodeParse:
		hint("Fix the file by hand or run 'reqs check' for details.")
	case errors.ErrCodeDispatchBusy:
		hint("Another edit is in progress; retry.")
	case "":
		hint(fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath()))
	}

	if h.Verbose {
		var coded *errors.Error
		if stderrors.As(err, &coded) {
			fmt.Fprintf(h.out, "\nError details:\n%s\n", coded.ToJSON())
		}
	}
}

// message strips the code prefix that *errors.Error adds, keeping the cause.
func message(err error) string {
	var coded *errors.Error
	if stderrors.As(err, &coded) && coded == err {
		if coded.Cause != nil {
			return fmt.Sprintf("%s: %v", coded.Message, coded.Cause)
		}
		return coded.Message
	}
	return err.Error()
}
