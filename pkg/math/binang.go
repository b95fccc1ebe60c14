package math

import "math"

// Binang is an engine binary angle: a full turn spans 0x10000 units.
type Binang uint16

// binangPerDegree is the DEG_TO_BINANG scale factor.
const binangPerDegree = 0x8000 / 180.0

// DegToBinang converts degrees with round(deg * 32768 / 180).
// Results above 0xFFFF clamp to 0xFFFF (a full 360 degree turn); negative
// results wrap to 16 bits.
func DegToBinang(deg float64) Binang {
	v := int64(math.Round(deg * binangPerDegree))
	if v > 0xFFFF {
		return 0xFFFF
	}
	return Binang(uint16(v))
}

// WrapDegToBinang converts degrees to a binary angle modulo a full turn.
func WrapDegToBinang(deg float64) Binang {
	return Binang(uint16(int64(math.Round(deg * binangPerDegree))))
}

// Degrees returns the angle in degrees within [0, 360).
func (b Binang) Degrees() float64 {
	return float64(b) * 180 / 0x8000
}
