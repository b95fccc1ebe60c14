package collision

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/z64scene/pkg/errs"
)

// createTestFloor builds a square floor of two triangles at height y.
func createTestFloor(y float32, surface int) []Triangle {
	return []Triangle{
		{Vertices: [3]mgl32.Vec3{{0, y, 0}, {0, y, 100}, {100, y, 0}}, Surface: surface},
		{Vertices: [3]mgl32.Vec3{{100, y, 0}, {0, y, 100}, {100, y, 100}}, Surface: surface},
	}
}

func TestCompileDeduplicatesVertices(t *testing.T) {
	mesh, err := Compile(createTestFloor(0, 0), []PolygonType{{}}, Options{Name: "test"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(mesh.Vertices))
	}
	if mesh.Min != [3]int{0, 0, 0} || mesh.Max != [3]int{100, 0, 100} {
		t.Errorf("bounds = %v %v", mesh.Min, mesh.Max)
	}
}

func TestCompileGroupsByFullPolygonType(t *testing.T) {
	tests := []struct {
		name       string
		surfaces   []PolygonType
		wantGroups int
	}{
		{"same type", []PolygonType{{Sound: 1}, {Sound: 1}}, 1},
		{"different exit", []PolygonType{{Sound: 1}, {Sound: 1, ExitID: 2}}, 2},
		{"different ignore flag", []PolygonType{{}, {IgnoreActor: true}}, 2},
		{"different conveyor enable", []PolygonType{{}, {EnableConveyor: true}}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			soup := append(createTestFloor(0, 0), createTestFloor(50, 1)...)
			mesh, err := Compile(soup, tc.surfaces, Options{Name: "test"})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if len(mesh.Groups) != tc.wantGroups {
				t.Errorf("groups = %d, want %d", len(mesh.Groups), tc.wantGroups)
			}

			total := 0
			for _, g := range mesh.Groups {
				total += len(g.Polygons)
			}
			if total != len(soup) || mesh.PolygonCount() != len(soup) {
				t.Errorf("polygons = %d, want %d", total, len(soup))
			}
		})
	}
}

func TestCompileSkipsDegeneratePolygons(t *testing.T) {
	line := Triangle{Vertices: [3]mgl32.Vec3{{0, 0, 0}, {10, 0, 0}, {20, 0, 0}}}
	collapsed := Triangle{Vertices: [3]mgl32.Vec3{{500, 0, 500}, {500.2, 0, 500}, {500, 0, 500.3}}}

	tests := []struct {
		name     string
		soup     []Triangle
		polygons int
		vertices int
		max      [3]int
	}{
		{"collinear after floor", append(createTestFloor(0, 0), line), 2, 4, [3]int{100, 0, 100}},
		{"collinear before floor", append([]Triangle{line}, createTestFloor(0, 0)...), 2, 4, [3]int{100, 0, 100}},
		{"collapses when rounded", append(createTestFloor(0, 0), collapsed), 2, 4, [3]int{100, 0, 100}},
		{"only degenerate", []Triangle{line, collapsed}, 0, 0, [3]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := Compile(tt.soup, []PolygonType{{}}, Options{Name: "test"})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if mesh.PolygonCount() != tt.polygons {
				t.Errorf("polygons = %d, want %d", mesh.PolygonCount(), tt.polygons)
			}
			if len(mesh.Vertices) != tt.vertices {
				t.Errorf("vertices = %d, want %d", len(mesh.Vertices), tt.vertices)
			}
			if mesh.Max != tt.max {
				t.Errorf("max = %v, want %v", mesh.Max, tt.max)
			}
			for _, g := range mesh.Groups {
				for _, p := range g.Polygons {
					for _, idx := range p.Indices {
						if idx >= len(mesh.Vertices) {
							t.Errorf("index %d out of range", idx)
						}
					}
				}
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		surfaces []PolygonType
		opts     Options
		want     error
	}{
		{"missing surface", nil, Options{}, errs.ErrReference},
		{"exit overflow", []PolygonType{{ExitID: 32}}, Options{}, errs.ErrFieldOverflow},
		{"sound overflow", []PolygonType{{Sound: 16}}, Options{}, errs.ErrFieldOverflow},
		{"missing camera", []PolygonType{{CameraID: 2}}, Options{CameraCount: 2}, errs.ErrReference},
		{
			"water box room",
			[]PolygonType{{}},
			Options{RoomCount: 1, WaterBoxes: []WaterBox{{Room: 3}}},
			errs.ErrReference,
		},
		{
			"water box camera",
			[]PolygonType{{}},
			Options{RoomCount: 1, WaterBoxes: []WaterBox{{Room: AllRooms, Camera: 1}}},
			errs.ErrReference,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(createTestFloor(0, 0), tc.surfaces, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPolygonTypeWords(t *testing.T) {
	p := PolygonType{
		EponaBlock:      true,
		FloorSetting:    0x5,
		WallSetting:     0x1,
		FloorProperty:   0x0C,
		ExitID:          3,
		CameraID:        2,
		Hookshotable:    true,
		Echo:            0x2,
		LightingSetting: 4,
		Terrain:         1,
		Sound:           0xB,
	}

	hi, err := p.High()
	if err != nil {
		t.Fatalf("High: %v", err)
	}
	wantHi := uint32(1<<31 | 0x5<<26 | 0x1<<21 | 0x0C<<13 | 3<<8 | 2)
	if hi != wantHi {
		t.Errorf("High = 0x%08X, want 0x%08X", hi, wantHi)
	}

	lo, err := p.Low()
	if err != nil {
		t.Fatalf("Low: %v", err)
	}
	wantLo := uint32(1<<17 | 0x2<<11 | 4<<6 | 1<<4 | 0xB)
	if lo != wantLo {
		t.Errorf("Low = 0x%08X, want 0x%08X", lo, wantLo)
	}
}

func TestToC(t *testing.T) {
	surfaces := []PolygonType{{IgnoreCamera: true}}
	soup := createTestFloor(0, 0)[:1]
	opts := Options{
		Name:        "spot00_scene",
		RoomCount:   1,
		CameraCount: 1,
		WaterBoxes:  []WaterBox{{Min: mgl32.Vec3{-10, -50, -20}, Max: mgl32.Vec3{30, 5, 40}, Room: AllRooms, Lighting: 1}},
	}
	mesh, err := Compile(soup, surfaces, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	c, err := mesh.ToC("spot00_scene_camData")
	if err != nil {
		t.Fatalf("ToC: %v", err)
	}

	wants := []string{
		"SurfaceType spot00_scene_polygonTypes[1] = {\n\t{ 0x00000000, 0x00000000 },\n};\n\n",
		"\t{ 0x0000, 0x2000, 0x0001, 0x0002, { 0x0000, 0x7FFF, 0x0000 }, 0x0000 },\n",
		"Vec3s spot00_scene_vertices[3] = {\n\t{      0,      0,      0 },\n",
		"\t{ -10, 5, -20, 40, 60, ((63 << 13) | (1 << 8) | 0) },\n",
		"CollisionHeader spot00_scene_collisionHeader = {\n\t{ 0, 0, 0 },\n\t{ 100, 0, 100 },\n\t3,\n\tspot00_scene_vertices,\n\t1,\n\tspot00_scene_polygons,\n\tspot00_scene_polygonTypes,\n\tspot00_scene_camData,\n\t1,\n\tspot00_scene_waterBoxes,\n};\n",
	}
	for _, want := range wants {
		if !strings.Contains(c.Source, want) {
			t.Errorf("source missing %q\n%s", want, c.Source)
		}
	}
	if !strings.Contains(c.Header, "extern CollisionHeader spot00_scene_collisionHeader;\n") {
		t.Errorf("header missing collision header extern:\n%s", c.Header)
	}
}

func TestToCEmpty(t *testing.T) {
	mesh, err := Compile(nil, nil, Options{Name: "empty"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	c, err := mesh.ToC("")
	if err != nil {
		t.Fatalf("ToC: %v", err)
	}
	if strings.Contains(c.Source, "SurfaceType") {
		t.Error("empty mesh should not emit surface types")
	}
	if !strings.Contains(c.Source, "\t0,\n\tNULL,\n\t0,\n\tNULL,\n\tNULL,\n\tNULL,\n\t0,\n\tNULL,\n") {
		t.Errorf("unexpected header:\n%s", c.Source)
	}
}
