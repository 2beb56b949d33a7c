package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Prompt != DefaultPrompt {
		t.Errorf("got prompt %q, want %q", cfg.Prompt, DefaultPrompt)
	}
	if !cfg.Banner {
		t.Error("expected banner to default to true")
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Prompt != DefaultPrompt {
		t.Errorf("got prompt %q, want default %q", cfg.Prompt, DefaultPrompt)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cheshirerc.yaml")
	if err := os.WriteFile(path, []byte("prompt: \"scheme> \"\n"), 0644); err != nil {
		t.Fatalf("setup: %s", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Prompt != "scheme> " {
		t.Errorf("got prompt %q, want %q", cfg.Prompt, "scheme> ")
	}
	if cfg.InitialStackSize != DefaultInitialStackSize {
		t.Errorf("unset key should keep default, got %d", cfg.InitialStackSize)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cheshirerc.yaml")
	if err := os.WriteFile(path, []byte("prompt: [unterminated\n"), 0644); err != nil {
		t.Fatalf("setup: %s", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestExpandHistoryPath(t *testing.T) {
	cfg := Default()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	cfg.HistoryPath = "~/.cheshire_history.db"
	want := filepath.Join(home, ".cheshire_history.db")
	if got := cfg.ExpandHistoryPath(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	cfg.HistoryPath = "/absolute/path.db"
	if got := cfg.ExpandHistoryPath(); got != "/absolute/path.db" {
		t.Errorf("absolute path should pass through unchanged, got %q", got)
	}
}
