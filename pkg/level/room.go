package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/actordb"
	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
	"github.com/Faultbox/z64scene/pkg/scene"
)

func shapeHeaderName(room string) string { return room + "_shapeHeader" }
func shapeEntryName(room string) string  { return room + "_shapeDListEntry" }

func (as *assembler) room(r *scene.Room) (*RoomAssembly, error) {
	ra := &RoomAssembly{
		Index: r.Index,
		Name:  RoomFileName(as.a.Base, r.Index),
		Model: r.Model,
	}

	shape, err := as.roomShape(ra.Name, r)
	if err != nil {
		return nil, err
	}
	ra.Shape = shape

	for _, slot := range r.Headers.Slots() {
		st, n, err := as.roomStream(ra.Name, r, slot, r.Headers.At(slot))
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", slot, err)
		}
		ra.Headers = append(ra.Headers, st)
		ra.ActorCount += n
	}
	if r.Headers.HasAlternates() {
		ra.AlternateTable = alternateTable(ra.Name, r.Headers.AlternateSlots(), func(slot scene.Slot) bool {
			return r.Headers.At(slot) != nil
		})
	}
	return ra, nil
}

// roomStream builds the commands of one room header and returns the number
// of actors it places.
func (as *assembler) roomStream(owner string, r *scene.Room, slot scene.Slot, h *scene.RoomHeader) (*Stream, int, error) {
	st := &Stream{Slot: slot, Name: headerName(owner, slot)}

	var actors *cdata.Array
	var objectIDs []string
	objectIDs = append(objectIDs, h.Objects...)
	for _, a := range r.Actors {
		if !a.Headers.Includes(slot) {
			continue
		}
		if actors == nil {
			actors = cdata.NewArray("ActorEntry", st.Name+"_actorList")
		}
		line, err := as.actorEntry(a, "")
		if err != nil {
			return nil, 0, err
		}
		actors.Add("%s", line)
		objectIDs = as.addMissingObject(objectIDs, a.ID, st.Name)
	}

	var objects *cdata.Array
	if len(objectIDs) > 0 {
		objects = cdata.NewArray("s16", st.Name+"_objectList")
		for _, o := range objectIDs {
			objects.Add("%s", o)
		}
	}

	if slot == scene.Main && r.Headers.HasAlternates() {
		st.add("ROOM_CMD_ALTERNATE_HEADER_LIST(%s)", alternateName(owner))
	}
	st.add("ROOM_CMD_ECHO_SETTINGS(%s)", orDefault(h.Echo, "0x00"))
	st.add("ROOM_CMD_ROOM_BEHAVIOR(%s, %s, %t, %t)",
		orDefault(h.Behaviour.Type, "0x00"), orDefault(h.Behaviour.Environment, "0x00"),
		h.Behaviour.ShowInvisibleActors, h.Behaviour.DisableWarpSongs)
	st.add("ROOM_CMD_SKYBOX_DISABLES(%t, %t)", h.DisableSky, h.DisableSunMoon)
	st.add("ROOM_CMD_TIME_SETTINGS(%d, %d, %d)", h.Time.Hour, h.Time.Minute, h.Time.Speed)
	if h.Wind != nil {
		d := math.DirectionToS8(h.Wind.Direction)
		st.add("ROOM_CMD_WIND_SETTINGS(%d, %d, %d, %d)", d[0], d[1], d[2], h.Wind.Strength)
	}
	st.add("ROOM_CMD_ROOM_SHAPE(&%s)", shapeHeaderName(owner))
	if objects != nil {
		st.add("ROOM_CMD_OBJECT_LIST(%d, %s)", objects.Len(), objects.Name)
	}
	if actors != nil {
		st.add("ROOM_CMD_ACTOR_LIST(%d, %s)", actors.Len(), actors.Name)
	}
	st.add("ROOM_CMD_END()")

	n := 0
	if objects != nil {
		st.Data = append(st.Data, objects.CData())
	}
	if actors != nil {
		st.Data = append(st.Data, actors.CData())
		n = actors.Len()
	}
	return st, n, nil
}

// addMissingObject appends the object an actor needs when the header does
// not load it yet.
func (as *assembler) addMissingObject(objects []string, actorID, owner string) []string {
	if as.deps.Actors == nil {
		return objects
	}
	obj := as.deps.Actors.ObjectFor(actorID)
	if obj == "" || actordb.IsAlwaysLoaded(obj) {
		return objects
	}
	for _, o := range objects {
		if o == obj {
			return objects
		}
	}
	as.log.Debug("Adding missing object", zap.String("header", owner), zap.String("actor", actorID), zap.String("object", obj))
	return append(objects, obj)
}

// roomShape renders the shape header and display list entries of a room.
func (as *assembler) roomShape(owner string, r *scene.Room) (cdata.CData, error) {
	shape := r.Shape.Type
	if shape == "" {
		shape = scene.ShapeNormal
	}

	var typ, entryType string
	switch shape {
	case scene.ShapeNormal:
		typ, entryType = "RoomShapeNormal", "RoomShapeDListsEntry"
	case scene.ShapeCullable:
		typ, entryType = "RoomShapeCullable", "RoomShapeCullableEntry"
	case scene.ShapeImage:
		if len(r.Shape.BGImages) == 0 {
			return cdata.CData{}, errs.Reference("image room shape has no background images")
		}
		if as.scene.RoomCount() > 1 {
			return cdata.CData{}, errs.Unsupported("image room shape in a scene with %d rooms", as.scene.RoomCount())
		}
		return cdata.CData{}, errs.Unsupported("image room shape export")
	default:
		return cdata.CData{}, errs.Unsupported("room shape %q", shape)
	}

	if len(r.Shape.Entries) == 0 {
		return cdata.CData{}, errs.Reference("room shape has no mesh entries")
	}

	entries := cdata.NewArray(entryType, shapeEntryName(owner))
	for i, e := range r.Shape.Entries {
		opa, err := as.displayList(r, e.Opaque)
		if err != nil {
			return cdata.CData{}, fmt.Errorf("mesh entry %d: %w", i, err)
		}
		xlu, err := as.displayList(r, e.Transparent)
		if err != nil {
			return cdata.CData{}, fmt.Errorf("mesh entry %d: %w", i, err)
		}
		if shape == scene.ShapeCullable {
			c := math.RoundVec(e.Center)
			entries.Add("{ { %d, %d, %d }, %d, %s, %s }", c[0], c[1], c[2], e.Radius, opa, xlu)
		} else {
			entries.Add("{ %s, %s }", opa, xlu)
		}
	}

	name := shapeHeaderName(owner)
	list := shapeEntryName(owner)
	out := cdata.Struct(typ, name,
		string(shape),
		fmt.Sprintf("ARRAY_COUNT(%s)", list),
		list,
		fmt.Sprintf("%s + ARRAY_COUNT(%s)", list, list),
	)
	out.Append(entries.CData())
	return out, nil
}

// displayList resolves a display list symbol against the room and scene
// models, NULL when empty.
func (as *assembler) displayList(r *scene.Room, name string) (string, error) {
	if name == "" {
		return "NULL", nil
	}
	models := []*scene.Model{&r.Model}
	if as.scene.Model != nil {
		models = append(models, as.scene.Model)
	}
	for _, m := range models {
		for _, dl := range m.DisplayLists {
			if dl.Name == name {
				return name, nil
			}
		}
	}
	return "", errs.Reference("display list %s is not defined", name)
}
