package collision

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/math"
)

// PolygonType is the surface property record shared by a group of polygons.
// It is compared by value over all fields, so it can key a map directly.
type PolygonType struct {
	EponaBlock     bool `yaml:"epona_block,omitempty"`
	DecreaseHeight bool `yaml:"decrease_height,omitempty"`
	FloorSetting   int  `yaml:"floor_setting,omitempty"`
	WallSetting    int  `yaml:"wall_setting,omitempty"`
	FloorProperty  int  `yaml:"floor_property,omitempty"`
	ExitID         int  `yaml:"exit_id,omitempty"`
	CameraID       int  `yaml:"camera_id,omitempty"`

	IsWallDamage     bool `yaml:"wall_damage,omitempty"`
	EnableConveyor   bool `yaml:"enable_conveyor,omitempty"`
	ConveyorRotation int  `yaml:"conveyor_rotation,omitempty"`
	ConveyorSpeed    int  `yaml:"conveyor_speed,omitempty"`
	Hookshotable     bool `yaml:"hookshotable,omitempty"`
	Echo             int  `yaml:"echo,omitempty"`
	LightingSetting  int  `yaml:"lighting_setting,omitempty"`
	Terrain          int  `yaml:"terrain,omitempty"`
	Sound            int  `yaml:"sound,omitempty"`

	IgnoreCamera     bool `yaml:"ignore_camera,omitempty"`
	IgnoreActor      bool `yaml:"ignore_actor,omitempty"`
	IgnoreProjectile bool `yaml:"ignore_projectile,omitempty"`
}

// Bit layout of the two SurfaceType words.
var (
	fieldFloorSetting  = math.Field{Name: "floor_setting", Shift: 26, Width: 4}
	fieldWallSetting   = math.Field{Name: "wall_setting", Shift: 21, Width: 5}
	fieldFloorProperty = math.Field{Name: "floor_property", Shift: 13, Width: 8}
	fieldExitID        = math.Field{Name: "exit_id", Shift: 8, Width: 5}
	fieldCameraID      = math.Field{Name: "camera_id", Shift: 0, Width: 8}

	fieldConveyorRotation = math.Field{Name: "conveyor_rotation", Shift: 21, Width: 6}
	fieldConveyorSpeed    = math.Field{Name: "conveyor_speed", Shift: 18, Width: 3}
	fieldEcho             = math.Field{Name: "echo", Shift: 11, Width: 6}
	fieldLightingSetting  = math.Field{Name: "lighting_setting", Shift: 6, Width: 5}
	fieldTerrain          = math.Field{Name: "terrain", Shift: 4, Width: 2}
	fieldSound            = math.Field{Name: "sound", Shift: 0, Width: 4}
)

// High packs the first SurfaceType word.
func (p PolygonType) High() (uint32, error) {
	value := flag(p.EponaBlock, 31) | flag(p.DecreaseHeight, 30)
	for _, f := range []struct {
		field math.Field
		v     int
	}{
		{fieldFloorSetting, p.FloorSetting},
		{fieldWallSetting, p.WallSetting},
		{fieldFloorProperty, p.FloorProperty},
		{fieldExitID, p.ExitID},
		{fieldCameraID, p.CameraID},
	} {
		bits, err := f.field.Pack(f.v)
		if err != nil {
			return 0, err
		}
		value |= bits
	}
	return checkWord(value)
}

// Low packs the second SurfaceType word.
func (p PolygonType) Low() (uint32, error) {
	value := flag(p.IsWallDamage, 27) | flag(p.Hookshotable, 17)
	for _, f := range []struct {
		field math.Field
		v     int
	}{
		{fieldConveyorRotation, p.ConveyorRotation},
		{fieldConveyorSpeed, p.ConveyorSpeed},
		{fieldEcho, p.Echo},
		{fieldLightingSetting, p.LightingSetting},
		{fieldTerrain, p.Terrain},
		{fieldSound, p.Sound},
	} {
		bits, err := f.field.Pack(f.v)
		if err != nil {
			return 0, err
		}
		value |= bits
	}
	return checkWord(value)
}

// IgnoreFlags returns the collision-ignore bits stored above the first vertex index.
func (p PolygonType) IgnoreFlags() uint16 {
	var v uint16
	if p.IgnoreCamera {
		v |= 1
	}
	if p.IgnoreActor {
		v |= 2
	}
	if p.IgnoreProjectile {
		v |= 4
	}
	return v
}

// String returns a short description for logs.
func (p PolygonType) String() string {
	hi, _ := p.High()
	lo, _ := p.Low()
	return fmt.Sprintf("SurfaceType{0x%08X, 0x%08X}", hi, lo)
}

func flag(set bool, shift uint) uint32 {
	if set {
		return 1 << shift
	}
	return 0
}

func checkWord(value uint32) (uint32, error) {
	packed, err := math.TwosComplement(int64(value), 4, false)
	if err != nil {
		return 0, err
	}
	return uint32(packed), nil
}
