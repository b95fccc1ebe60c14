package cutscene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
)

// minSplinePoints is the shortest camera list the engine interpolates.
const minSplinePoints = 4

// Compile validates a cutscene and renders it as a CutsceneData array.
//
// In Object mode only actor cue and camera lists are written. An empty name
// falls back to the cutscene's own name. The input is not modified.
func Compile(cs *Cutscene, name string, mode WriteMode) (cdata.CData, error) {
	if cs == nil {
		return cdata.CData{}, errs.Reference("cutscene %q is missing", name)
	}
	if name == "" {
		name = cs.Name
	}
	if name == "" {
		return cdata.CData{}, errs.Format("cutscene has no name")
	}
	if mode == "" {
		mode = Embedded
	}
	if mode != Embedded && mode != Object {
		return cdata.CData{}, errs.Unsupported("cutscene write mode %q", mode)
	}
	if err := cs.validateCommands(); err != nil {
		return cdata.CData{}, err
	}

	commands := cs.Commands
	if mode == Object {
		commands = nil
		for _, c := range cs.Commands {
			if c.IsMotion() {
				commands = append(commands, c)
			}
		}
	}

	commands, err := trimCameraLists(name, commands)
	if err != nil {
		return cdata.CData{}, err
	}
	for _, c := range commands {
		if c.ActorCues != nil {
			if err := checkCueContinuity(name, c.ActorCues); err != nil {
				return cdata.CData{}, err
			}
		}
	}

	arr := cdata.NewUnsizedArray("CutsceneData", name)
	arr.Terminated = true
	arr.Add("CS_BEGIN_CUTSCENE(%d, %d),", len(commands), cs.FrameCount)
	for _, c := range commands {
		writeCommand(arr, c)
	}
	arr.Add("CS_END(),")

	return arr.CData(), nil
}

// checkCueContinuity verifies each cue starts where the previous one ended.
func checkCueContinuity(name string, list *ActorCueList) error {
	if len(list.Cues) == 0 {
		return errs.Continuity("cutscene %s: empty actor cue list", name)
	}
	for i := 1; i < len(list.Cues); i++ {
		prev, cur := list.Cues[i-1], list.Cues[i]
		if prev.EndFrame != cur.StartFrame {
			return errs.Continuity("cutscene %s: cue %d ends at frame %d but cue %d starts at frame %d",
				name, i-1, prev.EndFrame, i, cur.StartFrame)
		}
		if prev.EndPos != cur.StartPos {
			return errs.Continuity("cutscene %s: cue %d ends at %v but cue %d starts at %v",
				name, i-1, prev.EndPos, i, cur.StartPos)
		}
	}
	return nil
}

// trimCameraLists pairs every eye list with the AT list of the same family in
// command order, checks the pair lengths and drops the final point of pairs
// longer than four. Trimmed lists are copies.
func trimCameraLists(name string, commands []Command) ([]Command, error) {
	byKind := make(map[CamKind][]int)
	for i, c := range commands {
		if c.Camera != nil {
			byKind[c.Camera.Kind] = append(byKind[c.Camera.Kind], i)
		}
	}

	out := make([]Command, len(commands))
	copy(out, commands)

	for _, eye := range []CamKind{CamEyeSpline, CamEyeSplineRelToPlayer, CamEye} {
		at := eye.Pair()
		eyes, ats := byKind[eye], byKind[at]
		if len(eyes) != len(ats) {
			return nil, errs.Continuity("cutscene %s: %d %s lists but %d %s lists", name, len(eyes), eye, len(ats), at)
		}
		for i := range eyes {
			e, a := out[eyes[i]].Camera, out[ats[i]].Camera
			if len(e.Points) != len(a.Points) {
				return nil, errs.Continuity("cutscene %s: eye list has %d points but at list has %d", name, len(e.Points), len(a.Points))
			}
			if len(e.Points) < minSplinePoints {
				return nil, errs.Continuity("cutscene %s: camera list needs at least %d points, has %d", name, minSplinePoints, len(e.Points))
			}
			if len(e.Points) > minSplinePoints {
				out[eyes[i]].Camera = dropLastPoint(e)
				out[ats[i]].Camera = dropLastPoint(a)
			}
		}
	}
	for kind := range byKind {
		if kind.Pair() == "" {
			return nil, errs.Format("cutscene %s: unknown camera list kind %q", name, kind)
		}
	}
	return out, nil
}

func dropLastPoint(l *CamList) *CamList {
	c := *l
	c.Points = append([]CamPoint(nil), l.Points[:len(l.Points)-1]...)
	return &c
}

var camListMacros = map[CamKind]string{
	CamEyeSpline:            "CS_CAM_EYE_SPLINE",
	CamATSpline:             "CS_CAM_AT_SPLINE",
	CamEyeSplineRelToPlayer: "CS_CAM_EYE_SPLINE_REL_TO_PLAYER",
	CamATSplineRelToPlayer:  "CS_CAM_AT_SPLINE_REL_TO_PLAYER",
	CamEye:                  "CS_CAM_EYE",
	CamAT:                   "CS_CAM_AT",
}

var seqMacros = map[SeqKind][2]string{
	SeqStart:   {"CS_START_SEQ_LIST", "CS_START_SEQ"},
	SeqStop:    {"CS_STOP_SEQ_LIST", "CS_STOP_SEQ"},
	SeqFadeOut: {"CS_FADE_OUT_SEQ_LIST", "CS_FADE_OUT_SEQ"},
}

func entry(arr *cdata.Array, macro string, args ...any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	arr.Add("%s%s(%s),", cdata.Indent, macro, strings.Join(parts, ", "))
}

func unused(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = 0
	}
	return out
}

func rotation(b math.Binang) string {
	return fmt.Sprintf("0x%04X", uint16(b))
}

func writeCommand(arr *cdata.Array, c Command) {
	switch {
	case c.ActorCues != nil:
		l := c.ActorCues
		macro := "CS_ACTOR_CUE"
		if l.Player {
			arr.Add("CS_PLAYER_CUE_LIST(%d),", len(l.Cues))
			macro = "CS_PLAYER_CUE"
		} else {
			arr.Add("CS_ACTOR_CUE_LIST(%s, %d),", l.CmdType, len(l.Cues))
		}
		for _, cue := range l.Cues {
			entry(arr, macro, cue.Action, cue.StartFrame, cue.EndFrame,
				rotation(cue.Rotation[0]), rotation(cue.Rotation[1]), rotation(cue.Rotation[2]),
				cue.StartPos[0], cue.StartPos[1], cue.StartPos[2],
				cue.EndPos[0], cue.EndPos[1], cue.EndPos[2],
				"0.0f", "0.0f", "0.0f")
		}

	case c.Camera != nil:
		l := c.Camera
		arr.Add("%s(%d, %d),", camListMacros[l.Kind], l.StartFrame, l.EndFrame)
		for _, p := range l.Points {
			entry(arr, "CS_CAM_POINT", p.Continue, p.Roll, p.Frame, math.FormatFloat(p.ViewAngle),
				p.Pos[0], p.Pos[1], p.Pos[2], 0)
		}

	case c.Text != nil:
		arr.Add("CS_TEXT_LIST(%d),", len(c.Text.Entries))
		for _, t := range c.Text.Entries {
			switch t.Kind {
			case TextNone:
				entry(arr, "CS_TEXT_NONE", t.StartFrame, t.EndFrame)
			case TextOcarinaAction:
				entry(arr, "CS_TEXT_OCARINA_ACTION", t.OcarinaAction, t.StartFrame, t.EndFrame, t.TextID)
			default:
				entry(arr, "CS_TEXT", t.TextID, t.StartFrame, t.EndFrame, t.Type, t.AltTextID1, t.AltTextID2)
			}
		}

	case c.Lighting != nil:
		arr.Add("CS_LIGHT_SETTING_LIST(%d),", len(c.Lighting.Entries))
		for _, l := range c.Lighting.Entries {
			entry(arr, "CS_LIGHT_SETTING", append([]any{l.Setting, l.StartFrame, l.EndFrame}, unused(8)...)...)
		}

	case c.Time != nil:
		arr.Add("CS_TIME_LIST(%d),", len(c.Time.Entries))
		for _, t := range c.Time.Entries {
			entry(arr, "CS_TIME", 0, t.StartFrame, t.EndFrame, t.Hour, t.Minute)
		}

	case c.Sequence != nil:
		macros := seqMacros[c.Sequence.Kind]
		arr.Add("%s(%d),", macros[0], len(c.Sequence.Entries))
		for _, s := range c.Sequence.Entries {
			entry(arr, macros[1], append([]any{s.Value, s.StartFrame, s.EndFrame}, unused(8)...)...)
		}

	case c.Misc != nil:
		arr.Add("CS_MISC_LIST(%d),", len(c.Misc.Entries))
		for _, m := range c.Misc.Entries {
			entry(arr, "CS_MISC", append([]any{m.Type, m.StartFrame, m.EndFrame}, unused(11)...)...)
		}

	case c.Rumble != nil:
		arr.Add("CS_RUMBLE_CONTROLLER_LIST(%d),", len(c.Rumble.Entries))
		for _, r := range c.Rumble.Entries {
			entry(arr, "CS_RUMBLE_CONTROLLER", 0, r.StartFrame, r.EndFrame,
				r.SourceStrength, r.Duration, r.DecreaseRate, 0, 0)
		}

	case c.Unknown != nil:
		arr.Add("CS_UNK_DATA_LIST(%s, %d),", c.Unknown.CmdType, len(c.Unknown.Entries))
		for _, words := range c.Unknown.Entries {
			args := make([]any, len(words))
			for i, w := range words {
				args[i] = cdata.Hex(int64(uint32(w)), 8)
			}
			entry(arr, "CS_UNK_DATA", args...)
		}

	case c.Transition != nil:
		arr.Add("CS_TRANSITION(%s, %d, %d),", c.Transition.Type, c.Transition.StartFrame, c.Transition.EndFrame)

	case c.Destination != nil:
		arr.Add("CS_DESTINATION(%s, %d, %d),", c.Destination.Destination, c.Destination.StartFrame, c.Destination.EndFrame)
	}
}
