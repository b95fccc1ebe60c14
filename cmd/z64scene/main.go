// z64scene exports scene descriptions as decomp C source.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/internal/config"
	"github.com/Faultbox/z64scene/internal/exporter"
	"github.com/Faultbox/z64scene/internal/logger"
	"github.com/Faultbox/z64scene/internal/patch"
	"github.com/Faultbox/z64scene/pkg/actordb"
	"github.com/Faultbox/z64scene/pkg/cutscene"
	"github.com/Faultbox/z64scene/pkg/level"
	"github.com/Faultbox/z64scene/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		cmdExport(args)
	case "import-cs":
		cmdImportCutscene(args)
	case "info":
		cmdInfo(args)
	case "actors":
		cmdActors(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`z64scene - scene to decomp C source exporter

Usage:
  z64scene <command> [flags] <args>

Commands:
  export <scene.yaml>              Export a scene and its rooms
  import-cs <file.c> [out.yaml]    Read CutsceneData arrays into YAML
  info <scene.yaml>                Show scene statistics
  actors [pattern]                 List known actors
  init-config [path]               Write the effective config (default: user config dir)

Flags:
  -config <file>          Config file (default ./config.yaml)
  -out <dir>              Output directory
  -single-file            One source file per scene and room
  -decomp <dir>           Decomp checkout whose spec and scene table get patched
  -texture-format <fmt>   rgba16, rgba32, i8, ia8 or ia16
  -debug                  Debug logging

Examples:
  z64scene export -out build/spot00 spot00.yaml
  z64scene export -decomp ~/oot -out ~/oot/assets/scenes/overworld/spot00 spot00.yaml
  z64scene import-cs spot00_scene.c cutscenes.yaml`)
}

// setup parses the flags following a command and initializes logging.
func setup(args []string) (*config.Config, []string) {
	if err := config.ParseArgs(args); err != nil {
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, config.Args()
}

func fail(msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	os.Exit(1)
}

func loadActors(cfg *config.Config) *actordb.Table {
	var (
		table *actordb.Table
		err   error
	)
	if cfg.Data.ActorList != "" {
		table, err = actordb.LoadFile(cfg.Data.ActorList)
	} else {
		table, err = actordb.Default()
	}
	if err != nil {
		fail("Failed to load actor list", err)
	}
	logger.Debug("Actor list loaded", zap.Int("actors", table.Len()))
	return table
}

func newExporter(cfg *config.Config) *exporter.Exporter {
	return exporter.New(loadActors(cfg), exporter.Options{
		Layout: level.Options{
			SingleFile:    cfg.Export.SingleFile,
			TextureFormat: cfg.Export.TextureFormat,
		},
		CutsceneMode: cutscene.WriteMode(cfg.Export.CutsceneWriteMode),
	}, logger.Component("export"))
}

func loadScene(path string) *scene.Scene {
	s, err := scene.LoadFile(path)
	if err != nil {
		fail("Failed to load scene", err)
	}
	return s
}

// includeDir is the build path of the output directory inside the decomp.
func includeDir(cfg *config.Config) string {
	if cfg.Export.IncludeDir != "" || cfg.Decomp.Root == "" {
		return cfg.Export.IncludeDir
	}
	out, err := filepath.Abs(cfg.Export.OutputDir)
	if err != nil {
		return cfg.Export.OutputDir
	}
	root, err := filepath.Abs(cfg.Decomp.Root)
	if err != nil {
		return cfg.Export.OutputDir
	}
	rel, err := filepath.Rel(root, out)
	if err != nil {
		return cfg.Export.OutputDir
	}
	return filepath.ToSlash(rel)
}

func cmdExport(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: z64scene export [flags] <scene.yaml>")
		os.Exit(1)
	}

	s := loadScene(rest[0])
	sink := patch.NewSink(patch.Options{
		OutputDir:       cfg.Export.OutputDir,
		DecompRoot:      cfg.Decomp.Root,
		SpecPath:        cfg.Decomp.SpecPath,
		SceneTablePath:  cfg.Decomp.SceneTablePath,
		PatchRegistries: cfg.Decomp.PatchRegistries && !cfg.Export.CustomExport,
		IncludeDir:      includeDir(cfg),
	}, logger.Component("patch"))

	if err := newExporter(cfg).Run(s, sink); err != nil {
		fail("Export failed", err)
	}
}

func cmdInfo(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: z64scene info <scene.yaml>")
		os.Exit(1)
	}

	a, err := newExporter(cfg).Assemble(loadScene(rest[0]))
	if err != nil {
		fail("Assembly failed", err)
	}
	fmt.Print(exporter.Stats(a))
}

func cmdImportCutscene(args []string) {
	_, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: z64scene import-cs <file.c> [out.yaml]")
		os.Exit(1)
	}

	cutscenes, err := readCutscenes(rest[0], logger.Component("import"))
	if err != nil {
		fail("Failed to parse cutscenes", err)
	}

	for _, cs := range cutscenes {
		tree, warnings, err := cutscene.Materialize(cs)
		if err != nil {
			fail("Failed to build cutscene "+cs.Name, err)
		}
		for _, w := range warnings {
			logger.Warn(w.Message, zap.String("cutscene", w.Cutscene))
		}
		logger.Info("Cutscene imported",
			zap.String("name", tree.Name),
			zap.Int("frames", tree.FrameCount),
			zap.Int("cue_lists", len(tree.CueLists)),
			zap.Int("shots", len(tree.Shots)),
		)
	}

	if len(rest) > 1 {
		err = writeCutscenesFile(rest[1], cutscenes)
	} else {
		err = writeCutscenes(os.Stdout, cutscenes)
	}
	if err != nil {
		fail("Failed to write cutscenes", err)
	}
}

func cmdInitConfig(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()

	var err error
	path := filepath.Join(config.ConfigDir(), config.FileName)
	if len(rest) > 0 {
		path = rest[0]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fail("Failed to write config", err)
	}
	fmt.Printf("Config written: %s\n", path)
}
