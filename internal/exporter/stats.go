package exporter

import (
	"bytes"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/Faultbox/z64scene/pkg/level"
)

// Stats builds a tabular summary of an assembled scene.
func Stats(a *level.Assembly) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Part", "Item", "Count"})

	table.Append([]string{"Scene", a.Name, ""})
	table.Append([]string{"", "Headers", strconv.Itoa(len(a.Headers))})
	table.Append([]string{"", "Polygons", strconv.Itoa(a.Mesh.PolygonCount())})
	table.Append([]string{"", "Cameras", strconv.Itoa(a.Cameras.Len())})
	table.Append([]string{"", "Cutscenes", strconv.Itoa(len(a.Cutscenes))})

	actors := 0
	for _, r := range a.Rooms {
		table.Append([]string{" ", " ", " "})
		table.Append([]string{"Room", r.Name, ""})
		table.Append([]string{"", "Headers", strconv.Itoa(len(r.Headers))})
		table.Append([]string{"", "Actors", strconv.Itoa(r.ActorCount)})
		table.Append([]string{"", "Display lists", strconv.Itoa(len(r.Model.DisplayLists))})
		actors += r.ActorCount
	}
	table.SetFooter([]string{"Total", strconv.Itoa(len(a.Rooms)) + " rooms", strconv.Itoa(actors) + " actors"})

	table.Render()
	return buf.String()
}
