package level

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
	"github.com/Faultbox/z64scene/pkg/scene"
)

// actorEntry renders an ActorEntry initializer. defaultID replaces an
// empty actor id.
func (as *assembler) actorEntry(a scene.Actor, defaultID string) (string, error) {
	id := orDefault(a.ID, defaultID)
	if id == "" {
		return "", errs.Reference("actor at %v has no actor id", a.Position)
	}
	rot, params, err := as.actorValues(a, id)
	if err != nil {
		return "", err
	}
	pos := math.RoundVec(a.Position)
	return fmt.Sprintf("{ %s, { %d, %d, %d }, { %s, %s, %s }, %s }",
		id, pos[0], pos[1], pos[2], rot[0], rot[1], rot[2], params), nil
}

// actorValues resolves rotation and parameter words. Field values are
// composed over the literal parameters; fields that target a rotation axis
// replace that axis.
func (as *assembler) actorValues(a scene.Actor, id string) ([3]string, string, error) {
	var rot [3]string
	if a.RotationOverride != nil {
		rot = *a.RotationOverride
	} else {
		for i, b := range math.EulerToBinang(a.Rotation) {
			rot[i] = fmt.Sprintf("0x%04X", uint16(b))
		}
	}
	params := orDefault(a.Params, "0x0000")

	if len(a.Fields) == 0 {
		return rot, params, nil
	}
	if as.deps.Actors == nil {
		return rot, "", errs.Reference("actor %s sets fields without an actor table", id)
	}
	entry, ok := as.deps.Actors.ByID(id)
	if !ok {
		return rot, "", errs.Reference("actor %s is not in the actor table", id)
	}

	var base uint16
	if a.Params != "" {
		v, err := math.ParseWord(a.Params)
		if err != nil {
			return rot, "", errs.Format("actor %s: params %q: %v", id, a.Params, err)
		}
		base = uint16(v)
	}
	composed, err := entry.Compose(base, a.Fields)
	if err != nil {
		return rot, "", err
	}
	for i, set := range composed.HasRotation {
		if set {
			rot[i] = fmt.Sprintf("0x%04X", composed.Rotations[i])
		}
	}
	return rot, fmt.Sprintf("0x%04X", composed.Params), nil
}
