package level

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/cutscene"
	"github.com/Faultbox/z64scene/pkg/encoding"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
	"github.com/Faultbox/z64scene/pkg/scene"
)

const playerActor = "ACTOR_PLAYER"

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (as *assembler) roomListName() string { return as.a.Name + "_roomList" }
func (as *assembler) pathListName() string { return as.a.Name + "_pathList" }

// sceneStream builds the commands of one scene header. Lists are emitted
// only when non-empty; the room list is always referenced.
func (as *assembler) sceneStream(slot scene.Slot, h *scene.SceneHeader) (*Stream, error) {
	s := as.scene
	st := &Stream{Slot: slot, Name: headerName(as.a.Name, slot)}
	main := slot == scene.Main

	startPositions, entrances, err := as.entranceLists(st.Name, slot)
	if err != nil {
		return nil, err
	}
	transitions, err := as.transitionActorList(st.Name, slot)
	if err != nil {
		return nil, err
	}
	lights, err := lightList(st.Name, h)
	if err != nil {
		return nil, err
	}
	var exits *cdata.Array
	if len(h.Exits) > 0 {
		exits = cdata.NewArray("u16", st.Name+"_exitList")
		for _, e := range h.Exits {
			exits.Add("%s", e)
		}
	}
	csName, err := as.headerCutscene(st.Name, h)
	if err != nil {
		return nil, err
	}

	if main && s.Headers.HasAlternates() {
		st.add("SCENE_CMD_ALTERNATE_HEADER_LIST(%s)", alternateName(as.a.Name))
	}
	st.add("SCENE_CMD_SOUND_SETTINGS(%s, %s, %s)",
		orDefault(h.Sound.Spec, "0"), orDefault(h.Sound.Ambience, "0x00"), orDefault(h.Sound.Music, "NA_BGM_NO_MUSIC"))
	st.add("SCENE_CMD_ROOM_LIST(%d, %s)", s.RoomCount(), as.roomListName())
	if transitions != nil {
		st.add("SCENE_CMD_TRANSITION_ACTOR_LIST(%d, %s)", transitions.Len(), transitions.Name)
	}
	st.add("SCENE_CMD_MISC_SETTINGS(%s, %s)",
		orDefault(h.Misc.CameraType, "SCENE_CAM_TYPE_DEFAULT"), orDefault(h.Misc.WorldMapLocation, "0x00"))
	st.add("SCENE_CMD_COL_HEADER(&%s)", as.a.Mesh.HeaderName())
	if entrances != nil {
		st.add("SCENE_CMD_ENTRANCE_LIST(%s)", entrances.Name)
	}
	st.add("SCENE_CMD_SPECIAL_FILES(%s, %s)",
		orDefault(h.SpecialFiles.NaviHint, "NAVI_QUEST_HINTS_NONE"), orDefault(h.SpecialFiles.KeepObject, "OBJECT_INVALID"))
	if len(s.Paths) > 0 {
		st.add("SCENE_CMD_PATH_LIST(%s)", as.pathListName())
	}
	if startPositions != nil {
		st.add("SCENE_CMD_SPAWN_LIST(%d, %s)", startPositions.Len(), startPositions.Name)
	}
	st.add("SCENE_CMD_SKYBOX_SETTINGS(%s, %s, %s)",
		orDefault(h.Skybox.ID, "SKYBOX_NONE"), orDefault(h.Skybox.Config, "0"), orDefault(string(h.LightMode), string(scene.LightModeTime)))
	if exits != nil {
		st.add("SCENE_CMD_EXIT_LIST(%s)", exits.Name)
	}
	if lights != nil {
		st.add("SCENE_CMD_ENV_LIGHT_SETTINGS(%d, %s)", lights.Len(), lights.Name)
	}
	if csName != "" {
		st.add("SCENE_CMD_CUTSCENE_DATA(%s)", csName)
	}
	st.add("SCENE_CMD_END()")

	for _, arr := range []*cdata.Array{startPositions, transitions} {
		if arr != nil {
			st.Data = append(st.Data, arr.CData())
		}
	}
	if main {
		st.Data = append(st.Data, as.roomList())
	}
	for _, arr := range []*cdata.Array{entrances, exits, lights} {
		if arr != nil {
			st.Data = append(st.Data, arr.CData())
		}
	}
	if main && len(s.Paths) > 0 {
		st.Data = append(st.Data, as.pathList())
	}
	return st, nil
}

// entranceLists builds the start position and entrance lists of a header.
// Spawn indices of the header must be unique and consecutive from 0.
func (as *assembler) entranceLists(owner string, slot scene.Slot) (*cdata.Array, *cdata.Array, error) {
	var selected []scene.Entrance
	for _, e := range as.scene.Entrances {
		if e.Headers.Includes(slot) {
			selected = append(selected, e)
		}
	}
	if len(selected) == 0 {
		return nil, nil, nil
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Spawn < selected[j].Spawn })

	starts := cdata.NewArray("ActorEntry", owner+"_startPositionList")
	entrances := cdata.NewArray("EntranceEntry", owner+"_entranceList")
	for i, e := range selected {
		if e.Spawn != i {
			if i > 0 && selected[i-1].Spawn == e.Spawn {
				return nil, nil, errs.StructuralIndex("spawn index %d used more than once", e.Spawn)
			}
			return nil, nil, errs.StructuralIndex("spawn indices are not consecutive, missing %d", i)
		}
		line, err := as.actorEntry(e.Actor, playerActor)
		if err != nil {
			return nil, nil, err
		}
		starts.Add("%s", line)
		entrances.Add("{ %d, %d }", i, e.Room)
	}
	return starts, entrances, nil
}

// transitionActorList renders the transition actors of a header. An actor
// that does not transition keeps its room on the back side and marks the
// front side with room 255.
func (as *assembler) transitionActorList(owner string, slot scene.Slot) (*cdata.Array, error) {
	var arr *cdata.Array
	for _, t := range as.scene.TransitionActors {
		if !t.Headers.Includes(slot) {
			continue
		}
		if arr == nil {
			arr = cdata.NewArray("TransitionActorEntry", owner+"_transitionActors")
		}

		camFront := orDefault(t.CameraFront, "0xFF")
		camBack := orDefault(t.CameraBack, "0xFF")
		front := fmt.Sprintf("{ %d, %s }", t.Room, camFront)
		back := fmt.Sprintf("{ %d, %s }", t.ToRoom, camBack)
		if t.DontTransition {
			front = fmt.Sprintf("{ 255, %s }", camBack)
			back = fmt.Sprintf("{ %d, %s }", t.Room, camFront)
		}

		id := t.ID
		if id == "" {
			return nil, errs.Reference("transition actor in room %d has no actor id", t.Room)
		}
		rot, params, err := as.actorValues(t.Actor, id)
		if err != nil {
			return nil, err
		}
		pos := math.RoundVec(t.Position)
		arr.Add("{ { %s, %s }, %s, { %d, %d, %d }, %s, %s }",
			front, back, id, pos[0], pos[1], pos[2], rot[1], params)
	}
	return arr, nil
}

// roomList renders the room segment table, or null rows when a dummy list
// is requested.
func (as *assembler) roomList() cdata.CData {
	arr := cdata.NewUnsizedArray("RomFile", as.roomListName())
	var out cdata.CData
	if as.scene.WriteDummyRoomList {
		out.AppendSource("// Dummy room list\n")
		for range as.scene.Rooms {
			arr.Add("{ 0, 0 }")
		}
	} else {
		for i := range as.scene.Rooms {
			room := RoomFileName(as.a.Base, i)
			out.AppendSource("extern u8 _%sSegmentRomStart[];\n", room)
			out.AppendSource("extern u8 _%sSegmentRomEnd[];\n", room)
			arr.Add("{ (u32)_%sSegmentRomStart, (u32)_%sSegmentRomEnd }", room, room)
		}
		out.AppendSource("\n")
	}
	out.Append(arr.CData())
	return out
}

// pathList renders one point array per path followed by the path table.
func (as *assembler) pathList() cdata.CData {
	var out cdata.CData
	list := cdata.NewArray("Path", as.pathListName())
	for i, p := range as.scene.Paths {
		points := cdata.NewArray("Vec3s", fmt.Sprintf("%s_pathwayList%02d", as.a.Name, i))
		for _, pt := range p.Points {
			r := math.RoundVec(pt)
			points.Add("{ %d, %d, %d }", r[0], r[1], r[2])
		}
		out.Append(points.CData())
		list.Add("{ %d, %s }", len(p.Points), points.Name)
	}
	out.Append(list.CData())
	return out
}

// headerCutscene compiles the cutscene of a header and returns its symbol,
// empty when the header has none.
func (as *assembler) headerCutscene(owner string, h *scene.SceneHeader) (string, error) {
	if h.Cutscene == nil {
		return "", nil
	}
	cs := h.Cutscene.Cutscene
	if cs == nil {
		return "", errs.Reference("%s: cutscene is missing", owner)
	}

	mode := h.Cutscene.Mode
	if mode == "" {
		mode = as.deps.CutsceneMode
	}
	name := owner + "_cutscene"
	if mode == cutscene.Object {
		if cs.Name == "" {
			return "", errs.Reference("%s: object cutscene has no name", owner)
		}
		name = encoding.ToAlnum(cs.Name)
	}

	if err := as.compileCutscene(name, cs, mode); err != nil {
		return "", err
	}
	as.log.Debug("Cutscene compiled", zap.String("name", name), zap.String("mode", string(mode)))
	return name, nil
}
