// Package math provides the numeric conversions used when emitting engine data:
// binary angles, packed bit fields, rounding and rotation conversion.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RoundVec rounds each component to the nearest integer.
func RoundVec(v mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Round(float64(v[0]))),
		int(math.Round(float64(v[1]))),
		int(math.Round(float64(v[2]))),
	}
}

// Round rounds a float to the nearest integer, halves away from zero.
func Round(v float32) int {
	return int(math.Round(float64(v)))
}

// EulerToQuat builds the orientation R = Ry * Rx * Rz from engine euler angles in degrees.
func EulerToQuat(deg mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(deg[1]),
		mgl32.DegToRad(deg[0]),
		mgl32.DegToRad(deg[2]),
		mgl32.YXZ,
	)
}

// QuatToEuler decomposes q into Y-X-Z euler angles in degrees, returned as (x, y, z).
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	sx := -m.At(1, 2)
	if sx > 1 {
		sx = 1
	} else if sx < -1 {
		sx = -1
	}

	x := math.Asin(float64(sx))
	var y, z float64
	if math.Abs(float64(sx)) < 0.99999 {
		y = math.Atan2(float64(m.At(0, 2)), float64(m.At(2, 2)))
		z = math.Atan2(float64(m.At(1, 0)), float64(m.At(1, 1)))
	} else {
		y = math.Atan2(float64(-m.At(2, 0)), float64(m.At(0, 0)))
	}

	return mgl32.Vec3{
		mgl32.RadToDeg(float32(x)),
		mgl32.RadToDeg(float32(y)),
		mgl32.RadToDeg(float32(z)),
	}
}

// EulerToBinang converts euler degrees into engine binary angles, wrapping full turns.
func EulerToBinang(deg mgl32.Vec3) [3]Binang {
	return [3]Binang{
		WrapDegToBinang(float64(deg[0])),
		WrapDegToBinang(float64(deg[1])),
		WrapDegToBinang(float64(deg[2])),
	}
}

// TurnAround applies a 180 degree turn about the local up axis to an euler
// orientation and returns the corrected binary angles.
func TurnAround(deg mgl32.Vec3) [3]Binang {
	q := EulerToQuat(deg).Mul(mgl32.QuatRotate(math.Pi, mgl32.Vec3{0, 1, 0}))
	return EulerToBinang(normalizeDegrees(QuatToEuler(q)))
}

// DirectionToS8 scales a direction vector to the signed byte range used by light settings.
func DirectionToS8(dir mgl32.Vec3) [3]int8 {
	n := dir
	if l := dir.Len(); l > 0 {
		n = dir.Mul(1 / l)
	}
	return [3]int8{
		int8(math.Round(float64(n[0]) * 0x7F)),
		int8(math.Round(float64(n[1]) * 0x7F)),
		int8(math.Round(float64(n[2]) * 0x7F)),
	}
}

func normalizeDegrees(v mgl32.Vec3) mgl32.Vec3 {
	for i := range v {
		for v[i] < 0 {
			v[i] += 360
		}
		for v[i] >= 360 {
			v[i] -= 360
		}
	}
	return v
}
