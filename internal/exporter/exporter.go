// Package exporter runs the scene export pipeline: snapshot, assembly,
// emission and the hand-off to a file sink.
package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/z64scene/internal/geometry"
	"github.com/Faultbox/z64scene/internal/patch"
	"github.com/Faultbox/z64scene/pkg/actordb"
	"github.com/Faultbox/z64scene/pkg/cutscene"
	"github.com/Faultbox/z64scene/pkg/level"
	"github.com/Faultbox/z64scene/pkg/scene"
)

// Scene table defaults for scenes that leave them unset.
const (
	DefaultTitle      = "none"
	DefaultDrawConfig = "SDC_DEFAULT"
)

// Options configures an Exporter.
type Options struct {
	Layout       level.Options
	CutsceneMode cutscene.WriteMode
}

// Sink receives the emitted files of a scene.
type Sink interface {
	Finalize(files *level.Files, row patch.SceneTableRow) error
}

// Exporter turns scene descriptions into C source files.
type Exporter struct {
	actors *actordb.Table
	opts   Options
	log    *zap.Logger
	dumper *spew.ConfigState
}

// New creates an Exporter. A nil actor table disables parameter composition
// and object dependency tracking. A nil logger discards output.
func New(actors *actordb.Table, opts Options, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CutsceneMode == "" {
		opts.CutsceneMode = cutscene.Embedded
	}
	dumper := spew.NewDefaultConfig()
	dumper.DisableCapacities = true
	dumper.DisablePointerAddresses = true
	dumper.SortKeys = true
	return &Exporter{actors: actors, opts: opts, log: log, dumper: dumper}
}

// Assemble snapshots s and assembles the copy. Edits made to s while the
// export runs are not observed.
func (e *Exporter) Assemble(s *scene.Scene) (*level.Assembly, error) {
	if s == nil {
		return nil, fmt.Errorf("no scene to export")
	}
	start := time.Now()
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	a, err := level.Assemble(snap, level.Deps{
		Actors:       e.actors,
		CutsceneMode: e.opts.CutsceneMode,
		Logger:       e.log.Named("assemble"),
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("Assembly finished", zap.Duration("took", time.Since(start)))

	if e.log.Core().Enabled(zapcore.DebugLevel) {
		e.log.Debug("Command streams\n" + e.dumper.Sdump(a.Commands()))
	}
	return a, nil
}

// Export assembles and emits s. The first error is returned unchanged and
// nothing is emitted.
func (e *Exporter) Export(s *scene.Scene) (*level.Files, error) {
	a, err := e.Assemble(s)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	geo := geometry.NewProvider(e.log.Named("geometry"))
	files, err := level.Emit(a, geo, e.opts.Layout)
	if err != nil {
		return nil, err
	}
	e.log.Info("Scene exported",
		zap.String("scene", files.Name),
		zap.Int("files", len(files.All())),
		zap.Bool("single_file", e.opts.Layout.SingleFile),
		zap.Duration("emit", time.Since(start)),
	)
	return files, nil
}

// Run exports s and hands the files to sink.
func (e *Exporter) Run(s *scene.Scene, sink Sink) error {
	files, err := e.Export(s)
	if err != nil {
		return err
	}
	return sink.Finalize(files, SceneTableRow(s, files))
}

// SceneTableRow builds the scene table entry of an exported scene.
func SceneTableRow(s *scene.Scene, files *level.Files) patch.SceneTableRow {
	row := patch.SceneTableRow{
		Name:       files.Name,
		Title:      s.Title,
		Enum:       "SCENE_" + strings.ToUpper(files.Base),
		DrawConfig: s.DrawConfig,
	}
	if row.Title == "" {
		row.Title = DefaultTitle
	}
	if row.DrawConfig == "" {
		row.DrawConfig = DefaultDrawConfig
	}
	return row
}
