// Package bgcam compiles background cameras and crawlspace splines into the
// BgCamInfo table and its shared position data array.
package bgcam

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
)

const (
	// CrawlspaceSetting is the camera setting of every crawlspace entry.
	CrawlspaceSetting = "CAM_SET_CRAWLSPACE"

	cameraDataCount     = 3
	crawlspaceDataCount = 6
	// fovScaleThreshold mirrors CAM_DATA_SCALED: larger values are stored times 100.
	fovScaleThreshold = 3.6
)

// Camera is a fixed camera placement.
type Camera struct {
	Index           int        `yaml:"index"`
	Setting         string     `yaml:"setting"`
	HasPositionData bool       `yaml:"has_position_data"`
	Position        mgl32.Vec3 `yaml:"position"`
	// Rotation is the authored orientation in degrees, YXZ order.
	Rotation        mgl32.Vec3 `yaml:"rotation"`
	FOV             float32    `yaml:"fov"`
	BGImageOverride int        `yaml:"bg_image_override"`
}

// UnmarshalYAML applies the defaults of an unset camera.
func (c *Camera) UnmarshalYAML(value *yaml.Node) error {
	type plain Camera
	raw := plain{Setting: "CAM_SET_NONE", BGImageOverride: -1, FOV: 60}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = Camera(raw)
	return nil
}

// Crawlspace is a two point crawlspace spline.
type Crawlspace struct {
	Index  int          `yaml:"index"`
	Points []mgl32.Vec3 `yaml:"points"`
}

// Entry is one compiled BgCamInfo row.
type Entry struct {
	Index   int
	Setting string
	// Count is the number of Vec3s the entry consumes, 0 without data.
	Count int
	// ArrayIndex is the offset of the entry's data in the position array.
	ArrayIndex int
	// Data holds Count rows of three values.
	Data [][3]string
}

// Table is the compiled camera table, ordered by index.
type Table struct {
	Entries []Entry
}

// Compile merges cameras and crawlspaces into one table. Indices must be
// unique and contiguous from 0.
func Compile(cameras []Camera, crawlspaces []Crawlspace) (*Table, error) {
	byIndex := make(map[int]Entry, len(cameras)+len(crawlspaces))

	for _, cam := range cameras {
		if _, dup := byIndex[cam.Index]; dup {
			return nil, errs.StructuralIndex("camera index %d already used", cam.Index)
		}
		entry := Entry{Index: cam.Index, Setting: cam.Setting}
		if cam.HasPositionData {
			entry.Count = cameraDataCount
			entry.Data = cameraData(cam)
		}
		byIndex[cam.Index] = entry
	}

	for _, crawl := range crawlspaces {
		if _, dup := byIndex[crawl.Index]; dup {
			return nil, errs.StructuralIndex("crawlspace index %d already used", crawl.Index)
		}
		if len(crawl.Points) != 2 {
			return nil, errs.Continuity("crawlspace %d has %d points, want 2", crawl.Index, len(crawl.Points))
		}
		byIndex[crawl.Index] = Entry{
			Index:   crawl.Index,
			Setting: CrawlspaceSetting,
			Count:   crawlspaceDataCount,
			Data:    crawlspaceData(crawl.Points[0], crawl.Points[1]),
		}
	}

	indices := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	table := &Table{Entries: make([]Entry, 0, len(indices))}
	offset := 0
	for want, i := range indices {
		if i != want {
			return nil, errs.StructuralIndex("camera indices are not consecutive, missing %d", want)
		}
		entry := byIndex[i]
		entry.ArrayIndex = offset
		offset += entry.Count
		table.Entries = append(table.Entries, entry)
	}
	return table, nil
}

// Len returns the number of camera entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// HasPositionData reports whether any entry uses the position array.
func (t *Table) HasPositionData() bool {
	if t == nil {
		return false
	}
	for _, e := range t.Entries {
		if e.Count > 0 {
			return true
		}
	}
	return false
}

// ScaleFOV converts a field of view in degrees to its stored value.
func ScaleFOV(fov float32) int {
	if fov > fovScaleThreshold {
		return math.Round(fov * 100)
	}
	return math.Round(fov)
}

func cameraData(cam Camera) [][3]string {
	pos := math.RoundVec(cam.Position)
	rot := math.TurnAround(cam.Rotation)
	return [][3]string{
		{fmt.Sprintf("%6d", pos[0]), fmt.Sprintf("%6d", pos[1]), fmt.Sprintf("%6d", pos[2])},
		{fmt.Sprintf("0x%04X", uint16(rot[0])), fmt.Sprintf("0x%04X", uint16(rot[1])), fmt.Sprintf("0x%04X", uint16(rot[2]))},
		{fmt.Sprintf("%6d", ScaleFOV(cam.FOV)), fmt.Sprintf("%6d", cam.BGImageOverride), fmt.Sprintf("%6d", -1)},
	}
}

// crawlspaceData triples both endpoints: p0, p0, p0, p1, p1, p1.
func crawlspaceData(p0, p1 mgl32.Vec3) [][3]string {
	rows := make([][3]string, 0, crawlspaceDataCount)
	for _, p := range []mgl32.Vec3{p0, p0, p0, p1, p1, p1} {
		r := math.RoundVec(p)
		rows = append(rows, [3]string{fmt.Sprintf("%6d", r[0]), fmt.Sprintf("%6d", r[1]), fmt.Sprintf("%6d", r[2])})
	}
	return rows
}

// InfoName returns the BgCamInfo array symbol of owner.
func InfoName(owner string) string { return owner + "_camData" }

// DataName returns the position array symbol of owner.
func DataName(owner string) string { return owner + "_camPosData" }

// InfoArrayC renders the BgCamInfo array.
func (t *Table) InfoArrayC(owner string) cdata.CData {
	arr := cdata.NewUnsizedArray("BgCamInfo", InfoName(owner))
	for _, e := range t.Entries {
		ptr := "NULL"
		if e.Count > 0 {
			ptr = fmt.Sprintf("&%s[%d]", DataName(owner), e.ArrayIndex)
		}
		arr.Add("{ %s, %d, %s }", e.Setting, e.Count, ptr)
	}
	return arr.CData()
}

// DataArrayC renders the Vec3s position array, one blank line between entries.
func (t *Table) DataArrayC(owner string) cdata.CData {
	decl := fmt.Sprintf("Vec3s %s[]", DataName(owner))

	var blocks []string
	for _, e := range t.Entries {
		if e.Count == 0 {
			continue
		}
		var sb strings.Builder
		for _, row := range e.Data {
			fmt.Fprintf(&sb, "%s{ %s, %s, %s },\n", cdata.Indent, row[0], row[1], row[2])
		}
		blocks = append(blocks, sb.String())
	}

	return cdata.CData{
		Header: "extern " + decl + ";\n",
		Source: decl + " = {\n" + strings.Join(blocks, "\n") + "};\n\n",
	}
}

// ToC renders the position array, when used, followed by the info array.
func (t *Table) ToC(owner string) cdata.CData {
	var out cdata.CData
	if t.Len() == 0 {
		return out
	}
	if t.HasPositionData() {
		out.Append(t.DataArrayC(owner))
	}
	out.Append(t.InfoArrayC(owner))
	return out
}
