// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moorestech/mcpsetup/pkg/platform"
)

const (
	// MirrorAuto picks robocopy on Windows and rsync (or the native walker) elsewhere.
	MirrorAuto MirrorStrategy = "auto"
	// MirrorRsync always shells out to rsync.
	MirrorRsync MirrorStrategy = "rsync"
	// MirrorRobocopy always shells out to robocopy.
	MirrorRobocopy MirrorStrategy = "robocopy"
	// MirrorNative always uses the built-in directory walker.
	MirrorNative MirrorStrategy = "native"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
	LogFormatLogfmt LogFormat = "logfmt"
)

var (
	// ErrInvalidMirrorStrategy is returned when a MirrorStrategy value is not recognized.
	ErrInvalidMirrorStrategy = errors.New("invalid mirror strategy")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// MirrorStrategy names how a local server folder is mirrored.
	// Defined locally to avoid coupling config to internal/provision;
	// the CLI converts it at the boundary.
	MirrorStrategy string

	// LogLevel is the minimum level emitted by the logger.
	LogLevel string

	// LogFormat selects the log record encoding.
	LogFormat string

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and every collected field error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Install InstallConfig `json:"install" mapstructure:"install"`
		Source  SourceConfig  `json:"source" mapstructure:"source"`
		Remote  RemoteConfig  `json:"remote" mapstructure:"remote"`
		Tools   ToolsConfig   `json:"tools" mapstructure:"tools"`
		Mirror  MirrorConfig  `json:"mirror" mapstructure:"mirror"`
		Project ProjectConfig `json:"project" mapstructure:"project"`
		Log     LogConfig     `json:"log" mapstructure:"log"`

		// SourcePath is the file the configuration was read from, or empty
		// when only defaults and environment overrides apply.
		SourcePath string `json:"-" mapstructure:"-"`
	}

	// InstallConfig controls where the server is installed.
	InstallConfig struct {
		// Root replaces the per-OS installation root when set.
		Root         string `json:"root" mapstructure:"root"`
		RootFolder   string `json:"root_folder" mapstructure:"root_folder"`
		ServerFolder string `json:"server_folder" mapstructure:"server_folder"`
	}

	// SourceConfig identifies the upstream repository.
	SourceConfig struct {
		RepositoryURL string `json:"repository_url" mapstructure:"repository_url"`
		Branch        string `json:"branch" mapstructure:"branch"`
		ManifestURL   string `json:"manifest_url" mapstructure:"manifest_url"`
	}

	// RemoteConfig tunes the latest-version fetch.
	RemoteConfig struct {
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		Retries int           `json:"retries" mapstructure:"retries"`
	}

	// ToolsConfig names the external executables.
	ToolsConfig struct {
		Git      string `json:"git" mapstructure:"git"`
		Rsync    string `json:"rsync" mapstructure:"rsync"`
		Robocopy string `json:"robocopy" mapstructure:"robocopy"`
	}

	// MirrorConfig controls the local sync.
	MirrorConfig struct {
		Strategy     MirrorStrategy `json:"strategy" mapstructure:"strategy"`
		ExcludeDirs  []string       `json:"exclude_dirs" mapstructure:"exclude_dirs"`
		ExcludeFiles []string       `json:"exclude_files" mapstructure:"exclude_files"`
	}

	// ProjectConfig locates the developer-local server folder.
	ProjectConfig struct {
		// DataDir is the host project's data directory (e.g. <repo>/<project>/Assets).
		DataDir string `json:"data_dir" mapstructure:"data_dir"`
		// AnchorLevels is how many parents of DataDir hold the server folder.
		AnchorLevels int `json:"anchor_levels" mapstructure:"anchor_levels"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}
)

// String returns the string representation of the MirrorStrategy.
func (s MirrorStrategy) String() string { return string(s) }

// Validate returns an error wrapping ErrInvalidMirrorStrategy if the value is unknown.
func (s MirrorStrategy) Validate() error {
	switch s {
	case MirrorAuto, MirrorRsync, MirrorRobocopy, MirrorNative:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: auto, rsync, robocopy, native)", ErrInvalidMirrorStrategy, string(s))
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error wrapping ErrInvalidLogLevel if the value is unknown.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: debug, info, warn, error)", ErrInvalidLogLevel, string(l))
	}
}

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// Validate returns an error wrapping ErrInvalidLogFormat if the value is unknown.
func (f LogFormat) Validate() error {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: text, json, logfmt)", ErrInvalidLogFormat, string(f))
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so both the
// sentinel and the per-field causes match errors.Is().
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks constraints that environment overrides can violate after
// the CUE schema has already accepted the file.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Mirror.Strategy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("mirror.strategy: %w", err))
	}
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := c.Log.Format.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	if c.Remote.Retries < 0 {
		errs = append(errs, fmt.Errorf("remote.retries: must not be negative, got %d", c.Remote.Retries))
	}
	if c.Remote.Timeout < 0 {
		errs = append(errs, fmt.Errorf("remote.timeout: must not be negative, got %s", c.Remote.Timeout))
	}
	if c.Project.AnchorLevels < 0 {
		errs = append(errs, fmt.Errorf("project.anchor_levels: must not be negative, got %d", c.Project.AnchorLevels))
	}
	if !platform.IsPortableFolderName(c.Install.RootFolder) {
		errs = append(errs, fmt.Errorf("install.root_folder: %q is not a portable folder name", c.Install.RootFolder))
	}
	if !platform.IsPortableFolderName(c.Install.ServerFolder) {
		errs = append(errs, fmt.Errorf("install.server_folder: %q is not a portable folder name", c.Install.ServerFolder))
	}
	if strings.TrimSpace(c.Source.Branch) == "" {
		errs = append(errs, errors.New("source.branch: must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Install: InstallConfig{
			RootFolder:   "mooresUnityMCP",
			ServerFolder: "UnityMcpServer",
		},
		Source: SourceConfig{
			RepositoryURL: "https://github.com/moorestech/mooresUnityMCP",
			Branch:        "master",
			ManifestURL:   "https://raw.githubusercontent.com/moorestech/mooresUnityMCP/refs/heads/master/UnityMcpServer/src/pyproject.toml",
		},
		Remote: RemoteConfig{
			Timeout: 10 * time.Second,
			Retries: 2,
		},
		Tools: ToolsConfig{
			Git:      "git",
			Rsync:    "rsync",
			Robocopy: "robocopy",
		},
		Mirror: MirrorConfig{
			Strategy:     MirrorAuto,
			ExcludeDirs:  []string{"__pycache__", ".git", ".uv", ".venv"},
			ExcludeFiles: []string{"*.pyc"},
		},
		Project: ProjectConfig{
			AnchorLevels: 2,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}
