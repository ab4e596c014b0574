package logging

// Config is the "logging" section of the forksync config file.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	// FORKSYNC_LOG_LEVEL overrides it.
	Level string `yaml:"level"`

	// ReportCaller adds file, line and function to each entry.
	// FORKSYNC_LOG_CALLER=true enables it.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig configures the file sink. When disabled or without a
// path, logs go to <state dir>/logs/<component>-<date>.log.
type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset is "default", "simple" or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto" (default), "always" or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
