package logging

// Config is the "logging" extension section of reqs.yml, decoded with
// config.UnmarshalExtension.
//
//	logging:
//	  level: debug
//	  file:
//	    enabled: true
//	    path: ~/.local/state/reqs/reqs.log
type Config struct {
	// Level is the minimum level written. REQS_LOG_LEVEL takes precedence.
	Level string `yaml:"level"`

	// ReportCaller adds file and function to each entry. REQS_LOG_CALLER=true
	// turns it on as well.
	ReportCaller bool `yaml:"report_caller"`

	// File replaces the per-component files below .reqs/logs with one file.
	File FileSinkConfig `yaml:"file"`

	Format FormatConfig `yaml:"format"`
}

// FileSinkConfig names a single log file shared by all components. `reqs
// logs` reads the same setting to find it.
type FileSinkConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path may start with ~ or contain $VAR.
	Path string `yaml:"path"`
}

// FormatConfig selects how entries are rendered.
type FormatConfig struct {
	// Preset is "default" (TextFormatter), "simple" (message only) or "json".
	// `reqs logs` pretty-prints json entries.
	Preset string `yaml:"preset"`
	// DisableTimestamp and DisableComponent trim the "default" preset.
	DisableTimestamp bool `yaml:"disable_timestamp"`
	DisableComponent bool `yaml:"disable_component"`
	// StructuredToStderr is "auto" (debug level or no terminal), "always" or
	// "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
