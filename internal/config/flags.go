package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagOut           = flag.String("out", "", "Output directory")
	flagSingleFile    = flag.Bool("single-file", false, "Write one file per scene and room")
	flagDecomp        = flag.String("decomp", "", "Decomp checkout to patch")
	flagTextureFormat = flag.String("texture-format", "", "Texture format (rgba16, rgba32, i8, ia8, ia16)")
)

// ParseArgs parses flags from args, e.g. the arguments after a subcommand.
func ParseArgs(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
	if *flagSingleFile {
		cfg.Export.SingleFile = true
	}
	if *flagDecomp != "" {
		cfg.Decomp.Root = *flagDecomp
		cfg.Decomp.PatchRegistries = true
		cfg.Export.CustomExport = false
	}
	if *flagTextureFormat != "" {
		cfg.Export.TextureFormat = *flagTextureFormat
	}
}
