// Package level stitches the compiled parts of a scene into per-header command
// streams and renders them as the scene and room source files.
package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/actordb"
	"github.com/Faultbox/z64scene/pkg/bgcam"
	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/collision"
	"github.com/Faultbox/z64scene/pkg/cutscene"
	"github.com/Faultbox/z64scene/pkg/encoding"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/scene"
)

// Deps are the collaborators of Assemble.
type Deps struct {
	// Actors resolves actor objects and parameter fields. Nil disables both.
	Actors *actordb.Table
	// CutsceneMode is used by headers that do not choose a write mode.
	CutsceneMode cutscene.WriteMode
	Logger       *zap.Logger
}

// Stream is the command stream of one header and the lists it references.
type Stream struct {
	Slot scene.Slot
	// Name is the symbol of the command array.
	Name     string
	Commands []string
	// Data holds the lists owned by this header, in emission order.
	Data []cdata.CData
}

func (s *Stream) add(format string, args ...any) {
	s.Commands = append(s.Commands, fmt.Sprintf(format, args...))
}

// CompiledCutscene is a rendered cutscene and the symbol it defines.
type CompiledCutscene struct {
	Name string
	Data cdata.CData
}

// RoomAssembly is the assembled content of one room.
type RoomAssembly struct {
	Index int
	// Name prefixes every room symbol, e.g. "spot00_room_0".
	Name    string
	Headers []*Stream
	// AlternateTable is empty when the room has no alternate headers.
	AlternateTable cdata.CData
	// Shape holds the room shape header and its display list entries.
	Shape cdata.CData
	Model scene.Model
	// ActorCount counts actor entries over every header.
	ActorCount int
}

// Assembly is a scene ready to be emitted.
type Assembly struct {
	// Base is the scene name as a C identifier, Name adds the "_scene" suffix.
	Base string
	Name string

	Headers        []*Stream
	AlternateTable cdata.CData
	Collision      cdata.CData
	Mesh           *collision.Mesh
	Cameras        *bgcam.Table
	Cutscenes      []CompiledCutscene
	Rooms          []*RoomAssembly

	// Model is the scene wide geometry, nil when absent.
	Model *scene.Model
}

// RoomFileName returns the symbol prefix of room i.
func RoomFileName(base string, i int) string {
	return fmt.Sprintf("%s_room_%d", base, i)
}

func headerName(owner string, slot scene.Slot) string {
	return fmt.Sprintf("%s_header%02d", owner, int(slot))
}

func alternateName(owner string) string {
	return owner + "_alternateHeaders"
}

type assembler struct {
	scene *scene.Scene
	deps  Deps
	log   *zap.Logger
	a     *Assembly
}

// Assemble validates s and builds the command stream of every scene and room
// header. The first error aborts assembly.
func Assemble(s *scene.Scene, deps Deps) (*Assembly, error) {
	if s == nil {
		return nil, errs.Reference("no scene to assemble")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	base := encoding.ToAlnum(s.Name)
	as := &assembler{
		scene: s,
		deps:  deps,
		log:   log,
		a: &Assembly{
			Base:  base,
			Name:  base + "_scene",
			Model: s.Model,
		},
	}

	if err := as.compileCollision(); err != nil {
		return nil, err
	}
	for _, slot := range s.Headers.Slots() {
		st, err := as.sceneStream(slot, s.Headers.At(slot))
		if err != nil {
			return nil, fmt.Errorf("scene header %s: %w", slot, err)
		}
		as.a.Headers = append(as.a.Headers, st)
	}
	if s.Headers.HasAlternates() {
		as.a.AlternateTable = alternateTable(as.a.Name, s.Headers.AlternateSlots(), func(slot scene.Slot) bool {
			return s.Headers.At(slot) != nil
		})
	}
	if err := as.compileExtraCutscenes(); err != nil {
		return nil, err
	}

	for _, room := range s.Rooms {
		ra, err := as.room(room)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", room.Index, err)
		}
		as.a.Rooms = append(as.a.Rooms, ra)
	}

	log.Info("Scene assembled",
		zap.String("scene", as.a.Name),
		zap.Int("headers", len(as.a.Headers)),
		zap.Int("rooms", len(as.a.Rooms)),
		zap.Int("polygons", as.a.Mesh.PolygonCount()),
		zap.Int("cameras", as.a.Cameras.Len()),
		zap.Int("cutscenes", len(as.a.Cutscenes)),
	)
	return as.a, nil
}

func (as *assembler) compileCollision() error {
	s := as.scene
	table, err := bgcam.Compile(s.Cameras, s.Crawlspaces)
	if err != nil {
		return err
	}
	mesh, err := collision.Compile(s.Collision.Triangles, s.Collision.Surfaces, collision.Options{
		Name:        as.a.Name,
		WaterBoxes:  s.Collision.WaterBoxes,
		CameraCount: table.Len(),
		RoomCount:   s.RoomCount(),
		Logger:      as.log,
	})
	if err != nil {
		return err
	}

	camSymbol := ""
	if table.Len() > 0 {
		camSymbol = bgcam.InfoName(as.a.Name)
	}
	col := table.ToC(as.a.Name)
	meshC, err := mesh.ToC(camSymbol)
	if err != nil {
		return err
	}
	col.Append(meshC)

	as.a.Cameras = table
	as.a.Mesh = mesh
	as.a.Collision = col
	return nil
}

// alternateTable renders one slot per alternate, 0 for unused slots.
func alternateTable(owner string, slots []scene.Slot, present func(scene.Slot) bool) cdata.CData {
	arr := cdata.NewUnsizedArray("SCmdBase*", alternateName(owner))
	for _, slot := range slots {
		if present(slot) {
			arr.Add("%s", headerName(owner, slot))
		} else {
			arr.Add("0")
		}
	}
	return arr.CData()
}

func (as *assembler) compileCutscene(name string, cs *cutscene.Cutscene, mode cutscene.WriteMode) error {
	data, err := cutscene.Compile(cs, name, mode)
	if err != nil {
		return err
	}
	as.a.Cutscenes = append(as.a.Cutscenes, CompiledCutscene{Name: name, Data: data})
	return nil
}

func (as *assembler) compileExtraCutscenes() error {
	for i, cs := range as.scene.ExtraCutscenes {
		if cs == nil || cs.Name == "" {
			return errs.Reference("extra cutscene %d has no name", i)
		}
		if err := as.compileCutscene(encoding.ToAlnum(cs.Name), cs, cutscene.Embedded); err != nil {
			return err
		}
	}
	return nil
}

// streams returns every command stream of the assembly, scene headers first.
func (a *Assembly) streams() []*Stream {
	out := append([]*Stream(nil), a.Headers...)
	for _, r := range a.Rooms {
		out = append(out, r.Headers...)
	}
	return out
}

// Commands returns the command streams keyed by their array symbol.
func (a *Assembly) Commands() map[string][]string {
	out := make(map[string][]string)
	for _, st := range a.streams() {
		out[st.Name] = st.Commands
	}
	return out
}
