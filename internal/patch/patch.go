// Package patch writes emitted scene files into a decomp checkout and keeps
// its build registries in sync: the segment spec and the scene table.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/level"
)

// Registry locations relative to the decomp root.
const (
	DefaultSpecPath       = "spec"
	DefaultSceneTablePath = "include/tables/scene_table.h"
)

// Options configures a Sink.
type Options struct {
	// OutputDir receives the scene files.
	OutputDir string
	// DecompRoot enables registry patching when PatchRegistries is set.
	DecompRoot      string
	SpecPath        string
	SceneTablePath  string
	PatchRegistries bool
	// IncludeDir is the build relative directory of the scene objects,
	// e.g. "assets/scenes/overworld/spot00".
	IncludeDir string
}

// SceneTableRow is one DEFINE_SCENE entry.
type SceneTableRow struct {
	Name       string
	Title      string
	Enum       string
	DrawConfig string
}

func (r SceneTableRow) String() string {
	return fmt.Sprintf("DEFINE_SCENE(%s, %s, %s, %s, 0, 0)", r.Name, r.Title, r.Enum, r.DrawConfig)
}

// Sink writes emitted files and patches registries.
type Sink struct {
	opts Options
	log  *zap.Logger
}

// NewSink creates a Sink. A nil logger discards output.
func NewSink(opts Options, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.SpecPath == "" {
		opts.SpecPath = DefaultSpecPath
	}
	if opts.SceneTablePath == "" {
		opts.SceneTablePath = DefaultSceneTablePath
	}
	return &Sink{opts: opts, log: log}
}

// Finalize removes stale room files, writes every file and, when enabled,
// patches the build spec file and scene table.
func (s *Sink) Finalize(files *level.Files, row SceneTableRow) error {
	dir := s.opts.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	removed, err := RemoveStaleRooms(dir, files.Base, files.RoomCount)
	if err != nil {
		return fmt.Errorf("remove stale rooms: %w", err)
	}
	for _, name := range removed {
		s.log.Info("Removed stale room file", zap.String("file", name))
	}

	for _, f := range files.All() {
		if err := os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	s.log.Info("Scene files written", zap.String("dir", dir), zap.Int("files", len(files.All())))

	if !s.opts.PatchRegistries {
		return nil
	}
	if s.opts.DecompRoot == "" {
		return fmt.Errorf("registry patching needs a decomp root")
	}

	specPath := filepath.Join(s.opts.DecompRoot, s.opts.SpecPath)
	if err := patchFile(specPath, func(text string) (string, error) {
		return PatchSpec(text, files, s.opts.IncludeDir)
	}); err != nil {
		return fmt.Errorf("patch spec: %w", err)
	}
	s.log.Info("Spec patched", zap.String("path", specPath))

	tablePath := filepath.Join(s.opts.DecompRoot, s.opts.SceneTablePath)
	if err := patchFile(tablePath, func(text string) (string, error) {
		return PatchSceneTable(text, row), nil
	}); err != nil {
		return fmt.Errorf("patch scene table: %w", err)
	}
	s.log.Info("Scene table patched", zap.String("path", tablePath), zap.String("scene", row.Name))
	return nil
}

func patchFile(path string, edit func(string) (string, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := edit(string(data))
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0644)
}

// RemoveStaleRooms deletes room files of base whose index is not below
// roomCount and returns their names in order.
func RemoveStaleRooms(dir, base string, roomCount int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `_room_(\d+)(_main|_model_info|_model)?\.[ch]$`)

	var removed []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil || index < roomCount {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, err
		}
		removed = append(removed, e.Name())
	}
	sort.Strings(removed)
	return removed, nil
}

// segment is one beginseg/endseg block of the build spec file.
type segment struct {
	name  string
	start int
	end   int
}

var segmentName = regexp.MustCompile(`^\s*name\s+"([^"]+)"`)

func parseSegments(lines []string) []segment {
	var segs []segment
	cur := -1
	name := ""
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case "beginseg":
			cur, name = i, ""
			continue
		case "endseg":
			if cur >= 0 {
				segs = append(segs, segment{name: name, start: cur, end: i})
			}
			cur = -1
			continue
		}
		if cur >= 0 {
			if m := segmentName.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
		}
	}
	return segs
}

// objects groups the emitted sources by the segment they belong to: the
// scene segment first, then one per room.
func objects(files *level.Files) (names []string, includes map[string][]string) {
	includes = make(map[string][]string)
	names = append(names, files.Name)
	for i := 0; i < files.RoomCount; i++ {
		names = append(names, level.RoomFileName(files.Base, i))
	}

	for _, f := range files.Sources {
		stem := strings.TrimSuffix(f.Name, ".c")
		owner := files.Name
		for _, room := range names[1:] {
			if stem == room || strings.HasPrefix(stem, room+"_") {
				owner = room
			}
		}
		includes[owner] = append(includes[owner], stem+".o")
	}
	return names, includes
}

// PatchSpec replaces the segments of the scene and its rooms. New segments
// take the place of the first replaced one, or are appended.
func PatchSpec(text string, files *level.Files, includeDir string) (string, error) {
	if files == nil {
		return "", fmt.Errorf("no files to register")
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	roomSeg := regexp.MustCompile(`^` + regexp.QuoteMeta(files.Base) + `_room_\d+$`)

	drop := make(map[int]bool)
	insertAt := -1
	for _, seg := range parseSegments(lines) {
		if seg.name != files.Name && !roomSeg.MatchString(seg.name) {
			continue
		}
		if insertAt < 0 {
			insertAt = seg.start
		}
		for i := seg.start; i <= seg.end; i++ {
			drop[i] = true
		}
		// The blank line after a segment goes with it.
		if seg.end+1 < len(lines) && strings.TrimSpace(lines[seg.end+1]) == "" {
			drop[seg.end+1] = true
		}
	}

	names, includes := objects(files)
	var block []string
	for _, name := range names {
		block = append(block, "beginseg")
		block = append(block, fmt.Sprintf("    name \"%s\"", name))
		block = append(block, "    compress")
		block = append(block, "    romalign 0x1000")
		for _, obj := range includes[name] {
			block = append(block, fmt.Sprintf("    include \"$(BUILD_DIR)/%s\"", filepath.ToSlash(filepath.Join(includeDir, obj))))
		}
		number := 3
		if name == files.Name {
			number = 2
		}
		block = append(block, fmt.Sprintf("    number %d", number), "endseg", "")
	}

	var out []string
	inserted := false
	for i, line := range lines {
		if i == insertAt {
			out = append(out, block...)
			inserted = true
		}
		if !drop[i] {
			out = append(out, line)
		}
	}
	if !inserted {
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, block...)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n", nil
}

var sceneRow = regexp.MustCompile(`^(\s*(?:/\*.*?\*/\s*)?)DEFINE_SCENE\(\s*([A-Za-z0-9_]+)\s*,[^,]*,\s*([A-Za-z0-9_]+)`)

// PatchSceneTable rewrites the row of the scene, matched by name or enum,
// keeping its leading comment. A new scene is appended.
func PatchSceneTable(text string, row SceneTableRow) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		m := sceneRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[2] == row.Name || m[3] == row.Enum {
			lines[i] = m[1] + row.String()
			return strings.Join(lines, "\n") + "\n"
		}
	}
	lines = append(lines, row.String())
	return strings.Join(lines, "\n") + "\n"
}
