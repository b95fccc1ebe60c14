package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/z64scene/pkg/errs"
)

// Load decodes a scene description. Unknown keys are rejected.
func Load(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	return &s, nil
}

// LoadFile reads a scene description from disk. Relative texture and
// background image paths are resolved against the file's directory.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	if s.Model != nil {
		for i := range s.Model.Textures {
			s.Model.Textures[i].Path = resolve(s.Model.Textures[i].Path)
		}
	}
	for _, room := range s.Rooms {
		for i := range room.Model.Textures {
			room.Model.Textures[i].Path = resolve(room.Model.Textures[i].Path)
		}
		for i := range room.Shape.BGImages {
			room.Shape.BGImages[i].Path = resolve(room.Shape.BGImages[i].Path)
		}
	}
	return s, nil
}

// Save encodes a scene description.
func (s *Scene) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}
	return enc.Close()
}

// Snapshot returns a deep copy of the scene with rooms ordered by index.
// Later edits to s do not affect the copy.
func (s *Scene) Snapshot() (*Scene, error) {
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	var out Scene
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	sort.SliceStable(out.Rooms, func(i, j int) bool {
		return out.Rooms[i].Index < out.Rooms[j].Index
	})
	return &out, nil
}

// Validate checks room indices and every cross reference by index.
func (s *Scene) Validate() error {
	if s.Name == "" {
		return errs.Reference("scene has no name")
	}
	if len(s.Rooms) == 0 {
		return errs.StructuralIndex("scene %s has no rooms", s.Name)
	}

	seen := make(map[int]bool, len(s.Rooms))
	for _, room := range s.Rooms {
		if room == nil {
			return errs.Reference("scene %s has a nil room", s.Name)
		}
		if seen[room.Index] {
			return errs.StructuralIndex("room index %d used more than once", room.Index)
		}
		seen[room.Index] = true
	}
	for i := range s.Rooms {
		if !seen[i] {
			return errs.StructuralIndex("room indices of scene %s are not consecutive from 0: missing %d", s.Name, i)
		}
	}

	sceneCutscenes := len(s.Headers.Cutscenes)
	for i, t := range s.TransitionActors {
		owner := fmt.Sprintf("transition actor %d (%s)", i, t.ID)
		if err := t.Headers.validate(owner, sceneCutscenes); err != nil {
			return err
		}
		if !seen[t.Room] {
			return errs.Reference("%s: room %d does not exist", owner, t.Room)
		}
		if !t.DontTransition && !seen[t.ToRoom] {
			return errs.Reference("%s: room %d does not exist", owner, t.ToRoom)
		}
	}
	for i, e := range s.Entrances {
		owner := fmt.Sprintf("entrance %d", i)
		if err := e.Headers.validate(owner, sceneCutscenes); err != nil {
			return err
		}
		if !seen[e.Room] {
			return errs.Reference("%s: room %d does not exist", owner, e.Room)
		}
		if e.Spawn < 0 {
			return errs.StructuralIndex("%s: negative spawn index %d", owner, e.Spawn)
		}
	}
	for _, room := range s.Rooms {
		for i, a := range room.Actors {
			owner := fmt.Sprintf("room %d actor %d (%s)", room.Index, i, a.ID)
			if err := a.Headers.validate(owner, len(room.Headers.Cutscenes)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RoomCount returns the number of rooms.
func (s *Scene) RoomCount() int {
	return len(s.Rooms)
}
