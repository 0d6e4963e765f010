package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerCachesPerComponent(t *testing.T) {
	a := NewLogger("test-component")
	b := NewLogger("test-component")

	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, "test-component", a.Data["component"])
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		fields  logrus.Fields
		want    []string
		notWant []string
	}{
		{
			name:   "default",
			config: FormatConfig{},
			fields: logrus.Fields{"component": "store", "action": "LoadProject"},
			want:   []string{"[INFO]", "store", "dispatched", "action=LoadProject", "2026-"},
		},
		{
			name:    "no timestamp or component",
			config:  FormatConfig{DisableTimestamp: true, DisableComponent: true},
			fields:  logrus.Fields{"component": "store"},
			want:    []string{"[INFO] dispatched"},
			notWant: []string{"2026-", "store"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Data:    tt.fields,
				Time:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				Level:   logrus.InfoLevel,
				Message: "dispatched",
			}

			out, err := (&TextFormatter{Config: tt.config}).Format(entry)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(out), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(out), nw)
			}
		})
	}
}

func TestTextFormatterSortsFieldsAndShortensWarn(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Data:    logrus.Fields{"b": 2, "a": 1},
		Level:   logrus.WarnLevel,
		Message: "m",
	}
	out, err := (&TextFormatter{Config: FormatConfig{DisableTimestamp: true}}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[WARN] m a=1 b=2\n", string(out))
}

func TestBuildLevelFromEnvironment(t *testing.T) {
	t.Setenv("REQS_LOG_LEVEL", "debug")
	t.Setenv("REQS_LOG_CALLER", "true")

	entry := build("env-test", Config{Level: "error"}, "", true)

	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
	assert.True(t, entry.Logger.ReportCaller)
}

func TestBuildLevelFromConfig(t *testing.T) {
	t.Setenv("REQS_LOG_LEVEL", "")

	entry := build("cfg-test", Config{Level: "warn", Format: FormatConfig{Preset: "json"}}, "", true)

	assert.Equal(t, logrus.WarnLevel, entry.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, entry.Logger.Formatter)
}

func TestBuildWritesDefaultLogFile(t *testing.T) {
	t.Setenv("REQS_LOG_LEVEL", "")
	dir := t.TempDir()

	entry := build("store", Config{Format: FormatConfig{StructuredToStderr: "never"}}, dir, true)
	entry.Info("hello from the store")

	data, err := os.ReadFile(LogFile(dir, "store", time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the store")
	assert.Equal(t, filepath.Join(dir, ".reqs", "logs"), filepath.Dir(LogFile(dir, "store", time.Now())))
}

func TestBuildStderrRedirect(t *testing.T) {
	t.Setenv("REQS_LOG_LEVEL", "")
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	defer SetGlobalOutput(os.Stderr)

	entry := build("quiet", Config{Format: FormatConfig{StructuredToStderr: "always"}}, "", true)
	entry.Info("visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	entry = build("quiet", Config{}, "", true)
	entry.Info("hidden")
	assert.Empty(t, buf.String(), "interactive info logs stay off stderr")
}

func TestSetGlobalOutputIgnoresSinkAndNil(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	defer SetGlobalOutput(nil)

	SetGlobalOutput(GetGlobalOutput())
	_, err := GetGlobalOutput().Write([]byte("still buffered"))
	require.NoError(t, err)
	assert.Equal(t, "still buffered", buf.String())

	SetGlobalOutput(nil)
	assert.Equal(t, io.Writer(os.Stderr), sink.target)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter().WithWriter(&buf)

	p.Success("saved")
	p.Field("documents", 2)
	p.Indented("line one\nline two\n")

	out := buf.String()
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, "documents")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}
