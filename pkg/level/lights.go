package level

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/math"
	"github.com/Faultbox/z64scene/pkg/scene"
)

// Directions used when a light source has no direction.
var (
	defaultDiffuse0 = [3]uint8{0x49, 0x49, 0x49}
	defaultDiffuse1 = [3]uint8{0xB7, 0xB7, 0xB7}
)

// blendFog packs the transition speed above the fog near distance.
var (
	blendSpeedField = math.Field{Name: "transition speed", Shift: 10, Width: 6}
	fogNearField    = math.Field{Name: "fog near", Shift: 0, Width: 10}
	fogFarField     = math.Field{Name: "fog far", Shift: 0, Width: 16}
)

// lightList renders the light settings of a header. Time mode uses the
// dawn, day, dusk and night lights; settings mode uses the indexed list.
func lightList(owner string, h *scene.SceneHeader) (*cdata.Array, error) {
	var lights []scene.Light
	if h.LightMode == "" || h.LightMode == scene.LightModeTime {
		if h.TimeOfDay != nil {
			t := h.TimeOfDay
			lights = []scene.Light{t.Dawn, t.Day, t.Dusk, t.Night}
		}
	} else {
		lights = h.Lights
	}
	if len(lights) == 0 {
		return nil, nil
	}

	arr := cdata.NewArray("EnvLightSettings", owner+"_lightSettings")
	for i, l := range lights {
		line, err := lightC(l)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		arr.Add("%s", line)
	}
	return arr, nil
}

func lightC(l scene.Light) (string, error) {
	speed, err := blendSpeedField.Pack(l.TransitionSpeed)
	if err != nil {
		return "", err
	}
	near, err := fogNearField.Pack(l.FogNear)
	if err != nil {
		return "", err
	}
	far, err := fogFarField.Pack(l.FogFar)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("{ %s, %s, %s, %s, %s, %s, 0x%04X, 0x%04X }",
		rgb(l.Ambient),
		rgb(direction(l.Diffuse0.Direction, defaultDiffuse0)),
		rgb(l.Diffuse0.Color),
		rgb(direction(l.Diffuse1.Direction, defaultDiffuse1)),
		rgb(l.Diffuse1.Color),
		rgb(l.FogColor),
		speed|near, far,
	), nil
}

func direction(dir [3]float32, def [3]uint8) [3]uint8 {
	if dir == [3]float32{} {
		return def
	}
	s8 := math.DirectionToS8(dir)
	return [3]uint8{uint8(s8[0]), uint8(s8[1]), uint8(s8[2])}
}

func rgb(c [3]uint8) string {
	return fmt.Sprintf("{ 0x%02X, 0x%02X, 0x%02X }", c[0], c[1], c[2])
}
