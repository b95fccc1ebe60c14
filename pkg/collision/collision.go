// Package collision compiles a polygon soup into the engine collision mesh:
// deduplicated vertices, packed polygons grouped by surface type, water boxes
// and the collision header.
package collision

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
)

// Vertex indices occupy the low 13 bits of each polygon word.
const (
	vertexIndexMask = 0x1FFF
	maxVertices     = vertexIndexMask + 1
	// AllRooms is the water box room index matching every room.
	AllRooms = 0x3F
)

// Triangle is one polygon of the input soup. Surface indexes the surface table.
type Triangle struct {
	Vertices [3]mgl32.Vec3 `yaml:"vertices"`
	Surface  int           `yaml:"surface"`
}

// WaterBox is an axis aligned water volume.
type WaterBox struct {
	Min      mgl32.Vec3 `yaml:"min"`
	Max      mgl32.Vec3 `yaml:"max"`
	Room     int        `yaml:"room"`
	Lighting int        `yaml:"lighting"`
	Camera   int        `yaml:"camera"`
}

// Options configures Compile.
type Options struct {
	// Name prefixes every emitted symbol, e.g. "spot00_scene".
	Name        string
	WaterBoxes  []WaterBox
	CameraCount int
	RoomCount   int
	Logger      *zap.Logger
}

// Polygon is a compiled triangle.
type Polygon struct {
	Indices  [3]int
	Normal   [3]int16
	Distance int16
}

// Group holds the polygons sharing one PolygonType.
type Group struct {
	Type     PolygonType
	Polygons []Polygon
}

// Mesh is the compiled collision data of a scene.
type Mesh struct {
	Name       string
	Vertices   [][3]int
	Groups     []*Group
	WaterBoxes []WaterBox
	Min, Max   [3]int

	byType map[PolygonType]*Group
}

// Compile builds the collision mesh. Polygons are grouped by the full value
// of their PolygonType, in first-seen order.
func Compile(soup []Triangle, surfaces []PolygonType, opts Options) (*Mesh, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := validateWaterBoxes(opts); err != nil {
		return nil, err
	}

	mesh := &Mesh{
		Name:       opts.Name,
		WaterBoxes: append([]WaterBox(nil), opts.WaterBoxes...),
		byType:     make(map[PolygonType]*Group),
	}
	vertexIndex := make(map[[3]int]int)

	skipped := 0
	for i, tri := range soup {
		if tri.Surface < 0 || tri.Surface >= len(surfaces) {
			return nil, errs.Reference("polygon %d uses surface %d, table has %d entries", i, tri.Surface, len(surfaces))
		}
		surface := surfaces[tri.Surface]
		if surface.CameraID != 0 && surface.CameraID >= opts.CameraCount {
			return nil, errs.Reference("polygon %d uses camera %d, scene has %d cameras", i, surface.CameraID, opts.CameraCount)
		}
		if _, err := surface.High(); err != nil {
			return nil, err
		}
		if _, err := surface.Low(); err != nil {
			return nil, err
		}

		var positions [3][3]int
		for k, v := range tri.Vertices {
			pos := math.RoundVec(v)
			for _, c := range pos {
				if c < -0x8000 || c > 0x7FFF {
					return nil, errs.FieldOverflow("polygon %d vertex %v exceeds 16 bits", i, pos)
				}
			}
			positions[k] = pos
		}

		// Degenerate triangles contribute no vertices.
		normal, distance, ok := plane(positions)
		if !ok {
			skipped++
			continue
		}
		if distance < -0x8000 || distance > 0x7FFF {
			return nil, errs.FieldOverflow("polygon %d plane distance %d exceeds 16 bits", i, distance)
		}

		poly := Polygon{Normal: normal, Distance: int16(distance)}
		for k, pos := range positions {
			idx, ok := vertexIndex[pos]
			if !ok {
				idx = len(mesh.Vertices)
				if idx >= maxVertices {
					return nil, errs.FieldOverflow("collision mesh exceeds %d vertices", maxVertices)
				}
				vertexIndex[pos] = idx
				mesh.Vertices = append(mesh.Vertices, pos)
			}
			poly.Indices[k] = idx
		}

		group, ok := mesh.byType[surface]
		if !ok {
			group = &Group{Type: surface}
			mesh.byType[surface] = group
			mesh.Groups = append(mesh.Groups, group)
		}
		group.Polygons = append(group.Polygons, poly)
	}

	mesh.computeBounds()

	log.Debug("collision compiled",
		zap.String("name", opts.Name),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("polygons", mesh.PolygonCount()),
		zap.Int("surfaceTypes", len(mesh.Groups)),
		zap.Int("degenerate", skipped),
	)
	return mesh, nil
}

// PolygonCount returns the number of polygons across all groups.
func (m *Mesh) PolygonCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Polygons)
	}
	return n
}

// plane computes the scaled unit normal and plane distance of a triangle.
// Degenerate triangles report ok == false.
func plane(p [3][3]int) (normal [3]int16, distance int, ok bool) {
	v0 := toVec(p[0])
	n := toVec(p[1]).Sub(v0).Cross(toVec(p[2]).Sub(v0))
	if n.Len() == 0 {
		return normal, 0, false
	}
	n = n.Normalize()

	for i := range normal {
		normal[i] = int16(math.Round(n[i] * 0x7FFF))
	}
	distance = math.Round(-n.Dot(v0))
	return normal, distance, true
}

func toVec(p [3]int) mgl32.Vec3 {
	return mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
}

func (m *Mesh) computeBounds() {
	if len(m.Vertices) == 0 {
		return
	}
	m.Min = m.Vertices[0]
	m.Max = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := range v {
			m.Min[i] = min(m.Min[i], v[i])
			m.Max[i] = max(m.Max[i], v[i])
		}
	}
}

func validateWaterBoxes(opts Options) error {
	for i, box := range opts.WaterBoxes {
		if box.Room != AllRooms && (box.Room < 0 || box.Room >= opts.RoomCount) {
			return errs.Reference("water box %d references room %d, scene has %d rooms", i, box.Room, opts.RoomCount)
		}
		if box.Camera != 0 && box.Camera >= opts.CameraCount {
			return errs.Reference("water box %d references camera %d, scene has %d cameras", i, box.Camera, opts.CameraCount)
		}
		if box.Lighting < 0 || box.Lighting > 0x1F {
			return errs.FieldOverflow("water box %d lighting %d exceeds 5 bits", i, box.Lighting)
		}
	}
	return nil
}
