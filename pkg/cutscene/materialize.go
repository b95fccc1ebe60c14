package cutscene

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/math"
)

// Warning is a non-fatal problem found while importing a cutscene.
type Warning struct {
	Cutscene string
	Message  string
}

func newWarning(cutscene, format string, args ...any) Warning {
	return Warning{Cutscene: cutscene, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	return w.Cutscene + ": " + w.Message
}

// ObjectTree is the hierarchy created for an imported cutscene: one node per
// cue list with its cues, and one node per camera shot with its key points.
type ObjectTree struct {
	Name       string
	FrameCount int
	CueLists   []CueListNode
	Shots      []ShotNode
}

// CueListNode groups the cues of one actor or player cue list.
type CueListNode struct {
	Name    string
	Player  bool
	CmdType string
	Cues    []CueNode
}

// CueNode is one cue placed at its start position.
type CueNode struct {
	Name       string
	Action     string
	StartFrame int
	EndFrame   int
	Position   [3]int
	Rotation   [3]float64
}

// ShotNode is a camera shot built from a paired eye and AT list.
type ShotNode struct {
	Name       string
	Mode       string
	StartFrame int
	EndFrame   int
	Points     []ShotPoint
}

// ShotPoint is one key point: the camera sits at Eye and looks at AT.
type ShotPoint struct {
	Name      string
	Eye       [3]int
	AT        [3]int
	Frame     int
	ViewAngle float32
	Roll      int
}

// Materialize builds the object hierarchy of a parsed cutscene. Camera lists
// follow the same pairing and length rules as Compile. Frame irregularities
// are reported as warnings.
func Materialize(cs *Cutscene) (*ObjectTree, []Warning, error) {
	if err := cs.validateCommands(); err != nil {
		return nil, nil, err
	}
	commands, err := trimCameraLists(cs.Name, cs.Commands)
	if err != nil {
		return nil, nil, err
	}

	tree := &ObjectTree{Name: "Cutscene." + cs.Name, FrameCount: cs.FrameCount}
	var warnings []Warning
	prefix := cs.Name

	actorLists, playerLists := 0, 0
	eyes, ats := map[string][]*CamList{}, map[string][]*CamList{}
	var modes []string

	for _, c := range commands {
		switch {
		case c.ActorCues != nil:
			if err := checkCueContinuity(cs.Name, c.ActorCues); err != nil {
				return nil, nil, err
			}
			l := c.ActorCues
			var name string
			if l.Player {
				playerLists++
				name = fmt.Sprintf("%s.Player Cue List %02d", prefix, playerLists)
			} else {
				actorLists++
				name = fmt.Sprintf("%s.Actor Cue List %02d", prefix, actorLists)
			}
			node := CueListNode{Name: name, Player: l.Player, CmdType: l.CmdType}
			for i, cue := range l.Cues {
				node.Cues = append(node.Cues, CueNode{
					Name:       fmt.Sprintf("%s.Point %02d", name, i+1),
					Action:     cue.Action,
					StartFrame: cue.StartFrame,
					EndFrame:   cue.EndFrame,
					Position:   cue.StartPos,
					Rotation:   RotationDegrees(cue.Rotation),
				})
			}
			tree.CueLists = append(tree.CueLists, node)

		case c.Camera != nil:
			mode := c.Camera.Kind.ShotMode()
			if c.Camera.Kind.IsEye() {
				if len(eyes[mode]) == 0 && len(ats[mode]) == 0 {
					modes = append(modes, mode)
				}
				eyes[mode] = append(eyes[mode], c.Camera)
			} else {
				if len(eyes[mode]) == 0 && len(ats[mode]) == 0 {
					modes = append(modes, mode)
				}
				ats[mode] = append(ats[mode], c.Camera)
			}
		}
	}

	shot := 0
	for _, mode := range modes {
		for i, eye := range eyes[mode] {
			at := ats[mode][i]
			shot++
			for k, p := range eye.Points {
				if p.Frame != 0 {
					warnings = append(warnings, newWarning(cs.Name, "camera shot %d point %d: eye frames must be 0, got %d", shot, k+1, p.Frame))
				}
			}
			if eye.EndFrame < eye.StartFrame+2 {
				warnings = append(warnings, newWarning(cs.Name, "camera shot %d: non-standard end frame %d", shot, eye.EndFrame))
			}
			node := ShotNode{
				Name:       fmt.Sprintf("%s.Camera Shot %02d", prefix, shot),
				Mode:       mode,
				StartFrame: eye.StartFrame,
				EndFrame:   eye.EndFrame,
			}
			// Timing, view angle and roll come from the AT list.
			for k := range eye.Points {
				node.Points = append(node.Points, ShotPoint{
					Name:      fmt.Sprintf("%s.Point %02d", node.Name, k+1),
					Eye:       eye.Points[k].Pos,
					AT:        at.Points[k].Pos,
					Frame:     at.Points[k].Frame,
					ViewAngle: at.Points[k].ViewAngle,
					Roll:      at.Points[k].Roll,
				})
			}
			tree.Shots = append(tree.Shots, node)
		}
	}

	return tree, warnings, nil
}

// RotationDegrees converts a cue rotation back to degrees.
func RotationDegrees(r [3]math.Binang) [3]float64 {
	return [3]float64{r[0].Degrees(), r[1].Degrees(), r[2].Degrees()}
}
