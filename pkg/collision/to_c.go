package collision

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/math"
)

// Symbol names derived from the mesh name.
func (m *Mesh) HeaderName() string       { return m.Name + "_collisionHeader" }
func (m *Mesh) VerticesName() string     { return m.Name + "_vertices" }
func (m *Mesh) PolygonsName() string     { return m.Name + "_polygons" }
func (m *Mesh) SurfaceTypesName() string { return m.Name + "_polygonTypes" }
func (m *Mesh) WaterBoxesName() string   { return m.Name + "_waterBoxes" }

// ToC renders surface types, polygons, vertices, water boxes and the
// collision header. camDataSymbol names the BgCamInfo array, empty for none.
func (m *Mesh) ToC(camDataSymbol string) (cdata.CData, error) {
	var out cdata.CData

	if len(m.Groups) > 0 {
		types := cdata.NewArray("SurfaceType", m.SurfaceTypesName())
		polys := cdata.NewArray("CollisionPoly", m.PolygonsName())
		for typeIndex, g := range m.Groups {
			hi, err := g.Type.High()
			if err != nil {
				return cdata.CData{}, err
			}
			lo, err := g.Type.Low()
			if err != nil {
				return cdata.CData{}, err
			}
			types.Add("{ 0x%08X, 0x%08X }", hi, lo)

			for _, p := range g.Polygons {
				polys.Add("%s", polygonC(typeIndex, g.Type, p))
			}
		}
		out.Append(types.CData())
		out.Append(polys.CData())
	}

	if len(m.Vertices) > 0 {
		verts := cdata.NewArray("Vec3s", m.VerticesName())
		for _, v := range m.Vertices {
			verts.Add("{ %6d, %6d, %6d }", v[0], v[1], v[2])
		}
		out.Append(verts.CData())
	}

	if len(m.WaterBoxes) > 0 {
		boxes := cdata.NewArray("WaterBox", m.WaterBoxesName())
		for _, b := range m.WaterBoxes {
			boxes.Add("%s", waterBoxC(b))
		}
		out.Append(boxes.CData())
	}

	out.Append(m.headerC(camDataSymbol))
	return out, nil
}

func polygonC(typeIndex int, t PolygonType, p Polygon) string {
	w0 := uint16(p.Indices[0]&vertexIndexMask) | t.IgnoreFlags()<<13
	w1 := uint16(p.Indices[1] & vertexIndexMask)
	if t.EnableConveyor {
		w1 |= 1 << 13
	}
	w2 := uint16(p.Indices[2] & vertexIndexMask)

	return fmt.Sprintf("{ 0x%04X, 0x%04X, 0x%04X, 0x%04X, { 0x%04X, 0x%04X, 0x%04X }, 0x%04X }",
		typeIndex, w0, w1, w2,
		uint16(p.Normal[0]), uint16(p.Normal[1]), uint16(p.Normal[2]),
		uint16(p.Distance),
	)
}

func waterBoxC(b WaterBox) string {
	xMin := math.Round(b.Min[0])
	zMin := math.Round(b.Min[2])
	ySurface := math.Round(b.Max[1])
	xLength := math.Round(b.Max[0]) - xMin
	zLength := math.Round(b.Max[2]) - zMin
	return fmt.Sprintf("{ %d, %d, %d, %d, %d, ((%d << 13) | (%d << 8) | %d) }",
		xMin, ySurface, zMin, xLength, zLength, b.Room, b.Lighting, b.Camera)
}

func (m *Mesh) headerC(camDataSymbol string) cdata.CData {
	ptr := func(name string, n int) string {
		if n == 0 {
			return "NULL"
		}
		return name
	}
	if camDataSymbol == "" {
		camDataSymbol = "NULL"
	}

	lines := []string{
		fmt.Sprintf("{ %d, %d, %d }", m.Min[0], m.Min[1], m.Min[2]),
		fmt.Sprintf("{ %d, %d, %d }", m.Max[0], m.Max[1], m.Max[2]),
		fmt.Sprint(len(m.Vertices)),
		ptr(m.VerticesName(), len(m.Vertices)),
		fmt.Sprint(m.PolygonCount()),
		ptr(m.PolygonsName(), m.PolygonCount()),
		ptr(m.SurfaceTypesName(), len(m.Groups)),
		camDataSymbol,
		fmt.Sprint(len(m.WaterBoxes)),
		ptr(m.WaterBoxesName(), len(m.WaterBoxes)),
	}

	return cdata.Struct("CollisionHeader", m.HeaderName(), lines...)
}
