package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxCycles != 1000000 {
		t.Errorf("MaxCycles = %d, want 1000000", cfg.Execution.MaxCycles)
	}
	if cfg.Rules.ForbidLoops {
		t.Error("ForbidLoops should default to false")
	}
	if len(cfg.Rules.ForbidMnemonics) != 0 {
		t.Errorf("ForbidMnemonics should default empty, got %v", cfg.Rules.ForbidMnemonics)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file: %v", err)
	}
	if cfg.Execution.MaxCycles != DefaultConfig().Execution.MaxCycles {
		t.Error("missing config file should fall back to defaults")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 42
	cfg.Rules.ForbidLoops = true
	cfg.Rules.ForbidMnemonics = []string{"svc", "bl"}
	cfg.Rules.RecursiveLabels = []string{"factorial"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if loaded.Execution.MaxCycles != 42 {
		t.Errorf("MaxCycles = %d, want 42", loaded.Execution.MaxCycles)
	}
	if !loaded.Rules.ForbidLoops {
		t.Error("ForbidLoops should round-trip true")
	}
	if len(loaded.Rules.ForbidMnemonics) != 2 || loaded.Rules.ForbidMnemonics[0] != "svc" {
		t.Errorf("ForbidMnemonics = %v, want [svc bl]", loaded.Rules.ForbidMnemonics)
	}
	if len(loaded.Rules.RecursiveLabels) != 1 || loaded.Rules.RecursiveLabels[0] != "factorial" {
		t.Errorf("RecursiveLabels = %v, want [factorial]", loaded.Rules.RecursiveLabels)
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("execution = not valid toml ["), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected an error parsing malformed TOML")
	}
}
