// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/moorestech/mcpsetup/internal/issue"
	"github.com/moorestech/mcpsetup/pkg/cueutil"
	"github.com/moorestech/mcpsetup/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "mcpsetup"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (MCPSETUP_LOG_LEVEL etc.).
	EnvPrefix = "MCPSETUP"
)

//go:embed config_schema.cue
var configSchema []byte

// configDirOverride replaces ConfigDir() in tests; os.UserHomeDir does not
// honor HOME on every platform.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir. Tests only.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// ConfigDir returns the mcpsetup configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns the config file location inside ConfigDir.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without touching
// package-level state other than the test directory override.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'mcpsetup config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.SourcePath = path

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// resolveConfigFile returns the file to load, or "" when defaults apply.
// An explicit ConfigFilePath must exist; the default locations are optional.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'mcpsetup config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}
	if p := ConfigFileName + "." + ConfigFileExt; fileExists(p) {
		return p, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("install.root", d.Install.Root)
	v.SetDefault("install.root_folder", d.Install.RootFolder)
	v.SetDefault("install.server_folder", d.Install.ServerFolder)
	v.SetDefault("source.repository_url", d.Source.RepositoryURL)
	v.SetDefault("source.branch", d.Source.Branch)
	v.SetDefault("source.manifest_url", d.Source.ManifestURL)
	v.SetDefault("remote.timeout", d.Remote.Timeout)
	v.SetDefault("remote.retries", d.Remote.Retries)
	v.SetDefault("tools.git", d.Tools.Git)
	v.SetDefault("tools.rsync", d.Tools.Rsync)
	v.SetDefault("tools.robocopy", d.Tools.Robocopy)
	v.SetDefault("mirror.strategy", string(d.Mirror.Strategy))
	v.SetDefault("mirror.exclude_dirs", d.Mirror.ExcludeDirs)
	v.SetDefault("mirror.exclude_files", d.Mirror.ExcludeFiles)
	v.SetDefault("project.data_dir", d.Project.DataDir)
	v.SetDefault("project.anchor_levels", d.Project.AnchorLevels)
	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", string(d.Log.Format))
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. The file decodes to a map so omitted fields keep their defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var configMap map[string]any
	if err := cueutil.Decode(configSchema, "#Config", data, &configMap,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	); err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to path unless a
// file already exists there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE renders cfg as a config.cue document accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// mcpsetup configuration file\n")
	sb.WriteString("// Omitted fields use built-in defaults.\n\n")

	sb.WriteString("install: {\n")
	if cfg.Install.Root != "" {
		fmt.Fprintf(&sb, "\troot: %q\n", cfg.Install.Root)
	}
	fmt.Fprintf(&sb, "\troot_folder: %q\n", cfg.Install.RootFolder)
	fmt.Fprintf(&sb, "\tserver_folder: %q\n", cfg.Install.ServerFolder)
	sb.WriteString("}\n")

	sb.WriteString("\nsource: {\n")
	fmt.Fprintf(&sb, "\trepository_url: %q\n", cfg.Source.RepositoryURL)
	fmt.Fprintf(&sb, "\tbranch: %q\n", cfg.Source.Branch)
	fmt.Fprintf(&sb, "\tmanifest_url: %q\n", cfg.Source.ManifestURL)
	sb.WriteString("}\n")

	sb.WriteString("\nremote: {\n")
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Remote.Timeout.String())
	fmt.Fprintf(&sb, "\tretries: %d\n", cfg.Remote.Retries)
	sb.WriteString("}\n")

	sb.WriteString("\ntools: {\n")
	fmt.Fprintf(&sb, "\tgit: %q\n", cfg.Tools.Git)
	fmt.Fprintf(&sb, "\trsync: %q\n", cfg.Tools.Rsync)
	fmt.Fprintf(&sb, "\trobocopy: %q\n", cfg.Tools.Robocopy)
	sb.WriteString("}\n")

	sb.WriteString("\nmirror: {\n")
	fmt.Fprintf(&sb, "\tstrategy: %q\n", string(cfg.Mirror.Strategy))
	fmt.Fprintf(&sb, "\texclude_dirs: %s\n", cueList(cfg.Mirror.ExcludeDirs))
	fmt.Fprintf(&sb, "\texclude_files: %s\n", cueList(cfg.Mirror.ExcludeFiles))
	sb.WriteString("}\n")

	sb.WriteString("\nproject: {\n")
	if cfg.Project.DataDir != "" {
		fmt.Fprintf(&sb, "\tdata_dir: %q\n", cfg.Project.DataDir)
	}
	fmt.Fprintf(&sb, "\tanchor_levels: %d\n", cfg.Project.AnchorLevels)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", string(cfg.Log.Level))
	fmt.Fprintf(&sb, "\tformat: %q\n", string(cfg.Log.Format))
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, fmt.Sprintf("%q", it))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
