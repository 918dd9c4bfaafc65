// Package config loads asmlex settings from project and user config files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomasrohde/asmlex/pkg/formatter"
	"github.com/thomasrohde/asmlex/pkg/mnemonic"
)

// ProjectFile is the config file name looked up in the project directory.
const ProjectFile = ".asmlex.json"

// DefaultPrompt is the REPL prompt used when no config sets one.
const DefaultPrompt = "> "

// Config holds the effective settings.
type Config struct {
	Prompt string
	Format string
	Pretty bool
	Table  *mnemonic.Table
	// Source is the file the settings were read from, empty for defaults.
	Source string
}

// fileConfig is the JSON structure of a config file.
type fileConfig struct {
	Prompt    *string  `json:"prompt,omitempty"`
	Format    string   `json:"format,omitempty"`
	Pretty    bool     `json:"pretty,omitempty"`
	Mnemonics []string `json:"mnemonics,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Prompt: DefaultPrompt,
		Format: formatter.FormatDebug,
		Table:  mnemonic.Default(),
	}
}

// Load reads settings from project and user config files.
// Precedence: project (.asmlex.json) → user (~/.asmlex/config.json) → defaults.
// A missing file falls through to the next; a malformed one is an error.
func Load(projectDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".asmlex", "config.json"))
	}

	for _, path := range candidates {
		f, err := loadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg, err := build(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
		return cfg, nil
	}

	return Default(), nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func build(f *fileConfig) (*Config, error) {
	cfg := Default()
	if f.Prompt != nil {
		cfg.Prompt = *f.Prompt
	}
	if f.Format != "" {
		if err := ValidateFormat(f.Format); err != nil {
			return nil, err
		}
		cfg.Format = f.Format
	}
	cfg.Pretty = f.Pretty

	if len(f.Mnemonics) > 0 {
		var ops []mnemonic.Op
		var unknown []string
		for _, name := range f.Mnemonics {
			op, ok := mnemonic.Parse(name)
			if !ok {
				unknown = append(unknown, name)
				continue
			}
			ops = append(ops, op)
		}
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unknown mnemonics: %s", strings.Join(unknown, ", "))
		}
		cfg.Table = mnemonic.NewTable(ops...)
	}
	return cfg, nil
}

// ValidateFormat reports an error for output formats the formatter rejects.
func ValidateFormat(format string) error {
	for _, name := range formatter.Formats {
		if format == name {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(formatter.Formats, ", "))
}

// Mnemonics lists the table's members, lowercased, for display.
func (c *Config) Mnemonics() []string {
	ops := c.Table.Ops()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(op.String())
	}
	return names
}
