package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/pkg/logging/logutil"
	"github.com/grovetools/reqs/tui/theme"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs [COMPONENT]",
		Short: "Show the reqs log file",
		Long: `Prints the most recent log file below .reqs/logs next to reqs.yml, or the
file configured under logging.file. COMPONENT picks the file of one
component, e.g. "store" or "editor".`,
		Example: `# Follow the editor log while it runs
reqs logs editor -f

# Last 50 lines
reqs logs --tail 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLogs,
	}
	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")
	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}
	component := ""
	if len(args) == 1 {
		component = args[0]
	}

	path, err := logutil.FindLogFile(cfg, component)
	if err != nil {
		return err
	}
	logger.WithField("log_file", path).Debug("Showing log file")

	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")
	out := cmd.OutOrStdout()

	lines, err := readLastLines(path, tailLines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		printLogLine(out, line)
	}
	if !follow {
		return nil
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return errors.IOFailure("tail", path, err)
	}
	defer t.Cleanup()

	ctx := cmd.Context()
	for {
		select {
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				logger.WithError(line.Err).Debug("Error reading log line")
				continue
			}
			printLogLine(out, line.Text)
		case <-ctx.Done():
			return t.Stop()
		}
	}
}

// readLastLines returns the last n lines of path, or all of them when n is
// negative.
func readLastLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOFailure("open", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n >= 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.IOFailure("read", path, err)
	}
	return lines, nil
}

// printLogLine prints text lines unchanged and reformats JSON lines written
// with the "json" preset.
func printLogLine(w io.Writer, line string) {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		fmt.Fprintln(w, line)
		return
	}

	t := theme.DefaultTheme
	ts, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)
	component, _ := entry["component"].(string)

	timeStr := ts
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		timeStr = parsed.Format("15:04:05")
	}

	var levelStyle lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		levelStyle = t.Error
	case "warning":
		levelStyle = t.Warning
		level = "warn"
	case "info":
		levelStyle = t.Info
	default:
		levelStyle = t.Muted
	}

	var keys []string
	for k := range entry {
		switch k {
		case "time", "level", "msg", "component":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", t.Muted.Render(k), entry[k]))
	}

	fmt.Fprintf(w, "%s %s [%s] %s %s\n",
		timeStr,
		levelStyle.Render(strings.ToUpper(level)),
		t.Accent.Render(component),
		msg,
		strings.Join(fields, " "),
	)
}
