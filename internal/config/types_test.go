// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestMirrorStrategy_Validate(t *testing.T) {
	t.Parallel()

	for _, s := range []MirrorStrategy{MirrorAuto, MirrorRsync, MirrorRobocopy, MirrorNative} {
		if err := s.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", s, err)
		}
	}
	for _, s := range []MirrorStrategy{"", "AUTO", "scp"} {
		if err := s.Validate(); !errors.Is(err, ErrInvalidMirrorStrategy) {
			t.Errorf("%q.Validate() = %v, want ErrInvalidMirrorStrategy", s, err)
		}
	}
}

func TestLogSettings_Validate(t *testing.T) {
	t.Parallel()

	if err := LogLevel("trace").Validate(); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("LogLevel(trace).Validate() = %v", err)
	}
	if err := LogFormat("xml").Validate(); !errors.Is(err, ErrInvalidLogFormat) {
		t.Errorf("LogFormat(xml).Validate() = %v", err)
	}
	if err := LogLevelWarn.Validate(); err != nil {
		t.Errorf("warn: %v", err)
	}
	if err := LogFormatLogfmt.Validate(); err != nil {
		t.Errorf("logfmt: %v", err)
	}
}

func TestConfig_ValidateCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Mirror.Strategy = "bogus"
	cfg.Remote.Retries = -1
	cfg.Source.Branch = "  "

	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() = %v, want *InvalidConfigError", err)
	}
	if len(invalid.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %v, want 3 entries", invalid.FieldErrors)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("InvalidConfigError should wrap ErrInvalidConfig")
	}
}

func TestConfig_ValidateRejectsNonPortableFolders(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"CON", "a/b", ".."} {
		cfg := DefaultConfig()
		cfg.Install.ServerFolder = name
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate() with server_folder %q = %v, want ErrInvalidConfig", name, err)
		}
	}
}
