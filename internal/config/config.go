// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Decomp  DecompConfig  `yaml:"decomp"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig controls how scene files are laid out.
type ExportConfig struct {
	OutputDir     string `yaml:"output_dir"`
	SingleFile    bool   `yaml:"single_file"`
	TextureFormat string `yaml:"texture_format"`
	// CutsceneWriteMode is "embedded" or "object".
	CutsceneWriteMode string `yaml:"cutscene_write_mode"`
	// CustomExport writes outside a decomp checkout and skips registry patching.
	CustomExport bool `yaml:"custom_export"`
	// IncludeDir is the build relative directory used in spec includes.
	IncludeDir string `yaml:"include_dir"`
}

// DecompConfig points at a decomp checkout.
type DecompConfig struct {
	Root            string `yaml:"root"`
	SpecPath        string `yaml:"spec_path"`
	SceneTablePath  string `yaml:"scene_table_path"`
	PatchRegistries bool   `yaml:"patch_registries"`
}

// DataConfig holds data file overrides.
type DataConfig struct {
	ActorList string `yaml:"actor_list"` // ActorList.xml; embedded copy when empty
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir:         ".",
			SingleFile:        false,
			TextureFormat:     "rgba16",
			CutsceneWriteMode: "embedded",
			CustomExport:      true,
		},
		Decomp: DecompConfig{
			SpecPath:        "spec",
			SceneTablePath:  "include/tables/scene_table.h",
			PatchRegistries: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
