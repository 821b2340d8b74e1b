// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"testing"
)

func TestProvider_ExplicitFileWinsOverDir(t *testing.T) {
	t.Parallel()

	dirCfg := t.TempDir()
	writeConfig(t, dirCfg, `log: level: "warn"`)
	explicit := writeConfig(t, t.TempDir(), `log: level: "error"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: explicit, ConfigDirPath: dirCfg})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != LogLevelError {
		t.Errorf("Log.Level = %s, want error", cfg.Log.Level)
	}
	if cfg.SourcePath != explicit {
		t.Errorf("SourcePath = %q, want %q", cfg.SourcePath, explicit)
	}
}

func TestStatic_ReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	base := DefaultConfig()
	base.Project.DataDir = "/work/Game/Assets"
	p := Static(base)

	first, err := p.Load(context.Background(), LoadOptions{ConfigFilePath: "ignored.cue"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	first.Mirror.ExcludeDirs[0] = "mutated"
	first.Project.DataDir = ""

	second, err := p.Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Mirror.ExcludeDirs[0] == "mutated" || second.Project.DataDir != "/work/Game/Assets" {
		t.Errorf("Static provider leaked a mutation: %+v", second)
	}
}

func TestStatic_Validates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	if _, err := Static(cfg).Load(context.Background(), LoadOptions{}); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Load() error = %v, want ErrInvalidLogLevel", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Static(DefaultConfig()).Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
