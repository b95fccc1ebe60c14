// Package cutscene models engine cutscene command streams and converts them
// to and from CutsceneData source text.
package cutscene

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
)

// WriteMode selects how a cutscene is emitted.
type WriteMode string

// Write modes.
const (
	// Embedded writes the full command stream into the scene's data.
	Embedded WriteMode = "embedded"
	// Object writes the motion lists only, as a standalone export.
	Object WriteMode = "object"
)

// Cutscene is an ordered list of commands.
type Cutscene struct {
	Name       string    `yaml:"name"`
	FrameCount int       `yaml:"frame_count"`
	Commands   []Command `yaml:"commands"`
}

// Command is one top level entry of a cutscene. Exactly one field is set.
type Command struct {
	ActorCues   *ActorCueList     `yaml:"actor_cues,omitempty"`
	Camera      *CamList          `yaml:"camera,omitempty"`
	Text        *TextList         `yaml:"text,omitempty"`
	Lighting    *LightSettingList `yaml:"lighting,omitempty"`
	Time        *TimeList         `yaml:"time,omitempty"`
	Sequence    *SeqList          `yaml:"sequence,omitempty"`
	Misc        *MiscList         `yaml:"misc,omitempty"`
	Rumble      *RumbleList       `yaml:"rumble,omitempty"`
	Unknown     *UnknownList      `yaml:"unknown,omitempty"`
	Transition  *Transition       `yaml:"transition,omitempty"`
	Destination *Destination      `yaml:"destination,omitempty"`
}

// Kind names the variant held by the command, empty when none or several are set.
func (c Command) Kind() string {
	kind := ""
	set := 0
	check := func(ok bool, name string) {
		if ok {
			kind = name
			set++
		}
	}
	check(c.ActorCues != nil, "actor_cues")
	check(c.Camera != nil, "camera")
	check(c.Text != nil, "text")
	check(c.Lighting != nil, "lighting")
	check(c.Time != nil, "time")
	check(c.Sequence != nil, "sequence")
	check(c.Misc != nil, "misc")
	check(c.Rumble != nil, "rumble")
	check(c.Unknown != nil, "unknown")
	check(c.Transition != nil, "transition")
	check(c.Destination != nil, "destination")
	if set != 1 {
		return ""
	}
	return kind
}

// IsMotion reports whether the command is an actor cue or camera list.
func (c Command) IsMotion() bool {
	return c.ActorCues != nil || c.Camera != nil
}

// ActorCueList is a list of actor or player cues.
type ActorCueList struct {
	Player bool `yaml:"player,omitempty"`
	// CmdType identifies the actor cue channel, e.g. "0x000F". Unused for the player.
	CmdType string     `yaml:"cmd_type,omitempty"`
	Cues    []ActorCue `yaml:"cues"`
}

// ActorCue is a timed motion of an actor between two positions.
type ActorCue struct {
	Action     string         `yaml:"action"`
	StartFrame int            `yaml:"start_frame"`
	EndFrame   int            `yaml:"end_frame"`
	Rotation   [3]math.Binang `yaml:"rotation"`
	StartPos   [3]int         `yaml:"start_pos"`
	EndPos     [3]int         `yaml:"end_pos"`
}

// CamKind identifies a camera list command.
type CamKind string

// Camera list kinds.
const (
	CamEyeSpline            CamKind = "eye_spline"
	CamATSpline             CamKind = "at_spline"
	CamEyeSplineRelToPlayer CamKind = "eye_spline_rel_to_player"
	CamATSplineRelToPlayer  CamKind = "at_spline_rel_to_player"
	CamEye                  CamKind = "eye"
	CamAT                   CamKind = "at"
)

// IsEye reports whether the list positions the camera rather than its target.
func (k CamKind) IsEye() bool {
	return k == CamEyeSpline || k == CamEyeSplineRelToPlayer || k == CamEye
}

// Pair returns the matching AT kind of an eye kind and the reverse.
func (k CamKind) Pair() CamKind {
	switch k {
	case CamEyeSpline:
		return CamATSpline
	case CamATSpline:
		return CamEyeSpline
	case CamEyeSplineRelToPlayer:
		return CamATSplineRelToPlayer
	case CamATSplineRelToPlayer:
		return CamEyeSplineRelToPlayer
	case CamEye:
		return CamAT
	case CamAT:
		return CamEye
	}
	return ""
}

// ShotMode is the camera shot mode of a kind's family.
func (k CamKind) ShotMode() string {
	switch k {
	case CamEyeSpline, CamATSpline:
		return "splineEyeOrAT"
	case CamEyeSplineRelToPlayer, CamATSplineRelToPlayer:
		return "splineEyeOrATRelPlayer"
	case CamEye, CamAT:
		return "eyeOrAT"
	}
	return ""
}

// CamList is a list of camera key points.
type CamList struct {
	Kind       CamKind    `yaml:"kind"`
	StartFrame int        `yaml:"start_frame"`
	EndFrame   int        `yaml:"end_frame"`
	Points     []CamPoint `yaml:"points"`
}

// Camera point continue flags.
const (
	CamContinue = "CS_CAM_CONTINUE"
	CamStop     = "CS_CAM_STOP"
)

// CamPoint is one camera key point.
type CamPoint struct {
	Continue  string  `yaml:"continue"`
	Roll      int     `yaml:"roll"`
	Frame     int     `yaml:"frame"`
	ViewAngle float32 `yaml:"view_angle"`
	Pos       [3]int  `yaml:"pos"`
}

// IsStop reports whether the point ends its list.
func (p CamPoint) IsStop() bool {
	return p.Continue == CamStop || p.Continue == "-1"
}

// TextKind identifies a textbox command.
type TextKind string

// Textbox kinds.
const (
	TextNormal        TextKind = "text"
	TextNone          TextKind = "none"
	TextOcarinaAction TextKind = "ocarina_action"
)

// TextList is a list of textbox commands.
type TextList struct {
	Entries []TextEntry `yaml:"entries"`
}

// TextEntry is one textbox command. Fields unused by its kind stay empty.
type TextEntry struct {
	Kind          TextKind `yaml:"kind"`
	TextID        string   `yaml:"text_id,omitempty"`
	StartFrame    int      `yaml:"start_frame"`
	EndFrame      int      `yaml:"end_frame"`
	Type          string   `yaml:"type,omitempty"`
	AltTextID1    string   `yaml:"alt_text_id1,omitempty"`
	AltTextID2    string   `yaml:"alt_text_id2,omitempty"`
	OcarinaAction string   `yaml:"ocarina_action,omitempty"`
}

// LightSettingList changes the environment light setting.
type LightSettingList struct {
	Entries []LightSetting `yaml:"entries"`
}

// LightSetting is one light setting change.
type LightSetting struct {
	Setting    int `yaml:"setting"`
	StartFrame int `yaml:"start_frame"`
	EndFrame   int `yaml:"end_frame"`
}

// TimeList changes the time of day.
type TimeList struct {
	Entries []TimeEntry `yaml:"entries"`
}

// TimeEntry is one time of day change.
type TimeEntry struct {
	StartFrame int `yaml:"start_frame"`
	EndFrame   int `yaml:"end_frame"`
	Hour       int `yaml:"hour"`
	Minute     int `yaml:"minute"`
}

// SeqKind identifies a sequence list.
type SeqKind string

// Sequence list kinds.
const (
	SeqStart   SeqKind = "start"
	SeqStop    SeqKind = "stop"
	SeqFadeOut SeqKind = "fade_out"
)

// SeqList starts, stops or fades out music.
type SeqList struct {
	Kind    SeqKind    `yaml:"kind"`
	Entries []SeqEntry `yaml:"entries"`
}

// SeqEntry is one sequence command. Value is a sequence id, or the sequence
// player for fade outs.
type SeqEntry struct {
	Value      string `yaml:"value"`
	StartFrame int    `yaml:"start_frame"`
	EndFrame   int    `yaml:"end_frame"`
}

// MiscList holds miscellaneous commands.
type MiscList struct {
	Entries []MiscEntry `yaml:"entries"`
}

// MiscEntry is one miscellaneous command.
type MiscEntry struct {
	Type       string `yaml:"type"`
	StartFrame int    `yaml:"start_frame"`
	EndFrame   int    `yaml:"end_frame"`
}

// RumbleList holds controller rumble commands.
type RumbleList struct {
	Entries []RumbleEntry `yaml:"entries"`
}

// RumbleEntry is one controller rumble.
type RumbleEntry struct {
	StartFrame     int    `yaml:"start_frame"`
	EndFrame       int    `yaml:"end_frame"`
	SourceStrength string `yaml:"source_strength"`
	Duration       string `yaml:"duration"`
	DecreaseRate   string `yaml:"decrease_rate"`
}

// UnknownList holds raw CS_UNK_DATA words. It is written but never imported.
type UnknownList struct {
	CmdType string      `yaml:"cmd_type"`
	Entries [][12]int32 `yaml:"entries"`
}

// Transition is a standalone screen transition.
type Transition struct {
	Type       string `yaml:"type"`
	StartFrame int    `yaml:"start_frame"`
	EndFrame   int    `yaml:"end_frame"`
}

// Destination is a standalone scene change.
type Destination struct {
	Destination string `yaml:"destination"`
	StartFrame  int    `yaml:"start_frame"`
	EndFrame    int    `yaml:"end_frame"`
}

// validateCommands checks every command holds exactly one variant and that
// the kinds and types naming its macros are known and non empty.
func (cs *Cutscene) validateCommands() error {
	for i, c := range cs.Commands {
		if c.Kind() == "" {
			return errs.Format("cutscene %s command %d must set exactly one list", cs.Name, i)
		}
		if err := c.validateKinds(); err != nil {
			return fmt.Errorf("cutscene %s command %d: %w", cs.Name, i, err)
		}
	}
	return nil
}

func (c Command) validateKinds() error {
	switch {
	case c.ActorCues != nil:
		if !c.ActorCues.Player && c.ActorCues.CmdType == "" {
			return errs.Format("actor cue list has no command type")
		}
	case c.Camera != nil:
		if _, ok := camListMacros[c.Camera.Kind]; !ok {
			return errs.Format("unknown camera list kind %q", c.Camera.Kind)
		}
		for j, p := range c.Camera.Points {
			if p.Continue == "" {
				return errs.Format("camera point %d has no continue flag", j)
			}
		}
	case c.Text != nil:
		for j, t := range c.Text.Entries {
			switch t.Kind {
			case TextNormal, TextNone, TextOcarinaAction:
			default:
				return errs.Format("text entry %d has unknown kind %q", j, t.Kind)
			}
		}
	case c.Sequence != nil:
		if _, ok := seqMacros[c.Sequence.Kind]; !ok {
			return errs.Format("unknown sequence list kind %q", c.Sequence.Kind)
		}
	case c.Unknown != nil:
		if c.Unknown.CmdType == "" {
			return errs.Format("unknown data list has no command type")
		}
	case c.Transition != nil:
		if c.Transition.Type == "" {
			return errs.Format("transition has no type")
		}
	case c.Destination != nil:
		if c.Destination.Destination == "" {
			return errs.Format("destination has no target")
		}
	}
	return nil
}
