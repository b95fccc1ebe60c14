package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "config.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// An explicit path takes priority over the standard locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./z64scene.yaml",
		"./" + FileName,
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "z64scene")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "z64scene")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "z64scene")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "z64scene")
	}
}

// loadFromFile merges a YAML file into cfg. Unknown keys are rejected and
// relative paths are taken relative to the file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return nil
}

func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Export.OutputDir, &c.Decomp.Root, &c.Data.ActorList, &c.Logging.LogFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks values that have a fixed vocabulary.
func (c *Config) Validate() error {
	switch c.Export.CutsceneWriteMode {
	case "", "embedded", "object":
	default:
		return fmt.Errorf("export.cutscene_write_mode: unknown mode %q", c.Export.CutsceneWriteMode)
	}
	if !c.Export.CustomExport && c.Decomp.Root == "" {
		return fmt.Errorf("decomp.root is required unless export.custom_export is set")
	}
	return nil
}
