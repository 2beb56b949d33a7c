// Package config loads the interpreter's optional YAML configuration
// file: REPL prompt/banner settings, an initial stack size and growth
// increment, and the history store path. The two stack settings are
// parsed and kept on Config only; the VM sizes its stacks with its own
// constant and does not read them. A missing file falls back to
// documented defaults; a malformed one is a startup error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPrompt           = ">> "
	DefaultBanner           = true
	DefaultInitialStackSize = 256
	DefaultStackGrowth      = 256
	DefaultHistoryPath      = "~/.cheshire_history.db"
)

// Config is the resolved set of tunables, either from the YAML file or
// the documented defaults for any key it omits.
type Config struct {
	Prompt              string `yaml:"prompt"`
	Banner              bool   `yaml:"banner"`
	InitialStackSize    int    `yaml:"initial_stack_size"`
	StackGrowthIncrement int   `yaml:"stack_growth_increment"`
	HistoryPath         string `yaml:"history_path"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Prompt:               DefaultPrompt,
		Banner:               DefaultBanner,
		InitialStackSize:     DefaultInitialStackSize,
		StackGrowthIncrement: DefaultStackGrowth,
		HistoryPath:          DefaultHistoryPath,
	}
}

// DefaultPath returns ~/.cheshirerc.yaml, resolving the user's home
// directory; it returns the bare literal if the home directory cannot
// be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cheshirerc.yaml"
	}
	return filepath.Join(home, ".cheshirerc.yaml")
}

// Load reads path and merges it over Default(); a missing file is not
// an error (the defaults apply as-is), but a present, malformed file
// is — callers should treat that as a CLI usage error (exit 64).
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: malformed %s: %w", path, err)
	}
	return cfg, nil
}

// ExpandHistoryPath resolves a leading "~" in HistoryPath against the
// user's home directory, the way a shell would.
func (c *Config) ExpandHistoryPath() string {
	if len(c.HistoryPath) >= 2 && c.HistoryPath[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.HistoryPath[2:])
		}
	}
	return c.HistoryPath
}
