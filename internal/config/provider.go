// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
)

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath names the file to load. It must exist when set.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir() when looking for config.cue.
		ConfigDirPath string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}

	staticProvider struct {
		cfg Config
	}
)

// NewProvider returns the Provider that reads config.cue, the environment,
// and the built-in defaults.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source. The returned
// Config.SourcePath reports which file, if any, was used.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}

// Static returns a Provider that always yields a copy of cfg, validated on
// every Load. LoadOptions are ignored.
func Static(cfg *Config) Provider {
	return &staticProvider{cfg: *cfg}
}

func (p *staticProvider) Load(ctx context.Context, _ LoadOptions) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}
	cfg := p.cfg
	cfg.Mirror.ExcludeDirs = append([]string(nil), p.cfg.Mirror.ExcludeDirs...)
	cfg.Mirror.ExcludeFiles = append([]string(nil), p.cfg.Mirror.ExcludeFiles...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
