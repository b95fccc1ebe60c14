// Package scene is the in-memory scene description consumed by the exporter.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/z64scene/pkg/bgcam"
	"github.com/Faultbox/z64scene/pkg/collision"
	"github.com/Faultbox/z64scene/pkg/cutscene"
)

// Scene is the root of a scene description.
type Scene struct {
	Name string `yaml:"name"`
	// Title and DrawConfig fill the scene table row.
	Title      string `yaml:"title,omitempty"`
	DrawConfig string `yaml:"draw_config,omitempty"`

	Headers AlternateHeaders[SceneHeader] `yaml:"headers"`
	Rooms   []*Room                       `yaml:"rooms"`

	Collision   Collision          `yaml:"collision"`
	Cameras     []bgcam.Camera     `yaml:"cameras,omitempty"`
	Crawlspaces []bgcam.Crawlspace `yaml:"crawlspaces,omitempty"`
	Paths       []Path             `yaml:"paths,omitempty"`

	TransitionActors []TransitionActor `yaml:"transition_actors,omitempty"`
	Entrances        []Entrance        `yaml:"entrances,omitempty"`

	ExtraCutscenes     []*cutscene.Cutscene `yaml:"extra_cutscenes,omitempty"`
	WriteDummyRoomList bool                 `yaml:"write_dummy_room_list,omitempty"`

	// Model holds geometry shared by every room.
	Model *Model `yaml:"model,omitempty"`
}

// SceneHeader is the content of one scene header variant.
type SceneHeader struct {
	Sound        SoundSettings   `yaml:"sound"`
	Misc         MiscSettings    `yaml:"misc"`
	SpecialFiles SpecialFiles    `yaml:"special_files"`
	Skybox       SkyboxSettings  `yaml:"skybox"`
	LightMode    LightMode       `yaml:"light_mode,omitempty"`
	Lights       []Light         `yaml:"lights,omitempty"`
	TimeOfDay    *TimeOfDayLight `yaml:"time_of_day,omitempty"`
	Exits        []string        `yaml:"exits,omitempty"`
	Cutscene     *CutsceneRef    `yaml:"cutscene,omitempty"`
}

// SoundSettings selects the sound bank, ambience and music.
type SoundSettings struct {
	Spec     string `yaml:"spec"`
	Ambience string `yaml:"ambience"`
	Music    string `yaml:"music"`
}

// MiscSettings holds the scene camera type and world map location.
type MiscSettings struct {
	CameraType       string `yaml:"camera_type"`
	WorldMapLocation string `yaml:"world_map_location"`
}

// SpecialFiles selects the navi hint file and keep object.
type SpecialFiles struct {
	NaviHint   string `yaml:"navi_hint"`
	KeepObject string `yaml:"keep_object"`
}

// SkyboxSettings selects the skybox and its configuration.
type SkyboxSettings struct {
	ID     string `yaml:"id"`
	Config string `yaml:"config"`
}

// LightMode selects between time of day lighting and indexed settings.
type LightMode string

// Light modes.
const (
	LightModeTime     LightMode = "LIGHT_MODE_TIME"
	LightModeSettings LightMode = "LIGHT_MODE_SETTINGS"
)

// Light is one environment light setting.
type Light struct {
	Ambient  [3]uint8    `yaml:"ambient"`
	Diffuse0 LightSource `yaml:"diffuse0"`
	Diffuse1 LightSource `yaml:"diffuse1"`
	FogColor [3]uint8    `yaml:"fog_color"`
	FogNear  int         `yaml:"fog_near"`
	FogFar   int         `yaml:"fog_far"`
	// TransitionSpeed blends between settings, 0..63.
	TransitionSpeed int `yaml:"transition_speed"`
}

// LightSource is a directional light. A zero direction uses the default one.
type LightSource struct {
	Direction mgl32.Vec3 `yaml:"direction"`
	Color     [3]uint8   `yaml:"color"`
}

// TimeOfDayLight holds the four lights of time of day mode.
type TimeOfDayLight struct {
	Dawn  Light `yaml:"dawn"`
	Day   Light `yaml:"day"`
	Dusk  Light `yaml:"dusk"`
	Night Light `yaml:"night"`
}

// CutsceneRef attaches a cutscene to a scene header.
type CutsceneRef struct {
	Mode     cutscene.WriteMode `yaml:"mode,omitempty"`
	Cutscene *cutscene.Cutscene `yaml:"cutscene"`
}

// Room is one room of a scene.
type Room struct {
	Index   int                          `yaml:"index"`
	Headers AlternateHeaders[RoomHeader] `yaml:"headers"`
	Shape   RoomShape                    `yaml:"shape"`
	Actors  []Actor                      `yaml:"actors,omitempty"`
	Model   Model                        `yaml:"model"`
}

// RoomHeader is the content of one room header variant.
type RoomHeader struct {
	Echo           string        `yaml:"echo,omitempty"`
	Behaviour      RoomBehaviour `yaml:"behaviour"`
	DisableSky     bool          `yaml:"disable_sky,omitempty"`
	DisableSunMoon bool          `yaml:"disable_sun_moon,omitempty"`
	Time           TimeSettings  `yaml:"time"`
	Wind           *Wind         `yaml:"wind,omitempty"`
	Objects        []string      `yaml:"objects,omitempty"`
}

// RoomBehaviour holds the room type and environment flags.
type RoomBehaviour struct {
	Type                string `yaml:"type"`
	Environment         string `yaml:"environment"`
	ShowInvisibleActors bool   `yaml:"show_invisible_actors,omitempty"`
	DisableWarpSongs    bool   `yaml:"disable_warp_songs,omitempty"`
}

// TimeSettings fixes the time of day and its speed. 0xFF keeps the current time.
type TimeSettings struct {
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
	Speed  int `yaml:"speed"`
}

// Wind is a constant wind applied in the room.
type Wind struct {
	Direction mgl32.Vec3 `yaml:"direction"`
	Strength  int        `yaml:"strength"`
}

// ShapeType is the room shape variant.
type ShapeType string

// Room shapes.
const (
	ShapeNormal   ShapeType = "ROOM_SHAPE_TYPE_NORMAL"
	ShapeImage    ShapeType = "ROOM_SHAPE_TYPE_IMAGE"
	ShapeCullable ShapeType = "ROOM_SHAPE_TYPE_CULLABLE"
)

// RoomShape is the room's draw data.
type RoomShape struct {
	Type     ShapeType   `yaml:"type"`
	Entries  []MeshEntry `yaml:"entries"`
	BGImages []BGImage   `yaml:"bg_images,omitempty"`
}

// MeshEntry pairs the opaque and translucent display lists of one cull group.
type MeshEntry struct {
	Center      mgl32.Vec3 `yaml:"center"`
	Radius      int        `yaml:"radius"`
	Opaque      string     `yaml:"opaque,omitempty"`
	Transparent string     `yaml:"transparent,omitempty"`
}

// BGImage is a pre-rendered background.
type BGImage struct {
	Path     string `yaml:"path"`
	CameraID int    `yaml:"camera_id"`
}

// Model is the compiled geometry of a room or the scene: display lists and
// the textures they sample.
type Model struct {
	Name         string        `yaml:"name,omitempty"`
	DisplayLists []DisplayList `yaml:"display_lists,omitempty"`
	Textures     []Texture     `yaml:"textures,omitempty"`
}

// DisplayList is an opaque list of compiled graphics commands.
type DisplayList struct {
	Name     string   `yaml:"name"`
	Commands []string `yaml:"commands"`
}

// Texture is an image converted to a texture array.
type Texture struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Format overrides the configured texture format.
	Format string `yaml:"format,omitempty"`
}

// Actor is an actor placed in a room.
type Actor struct {
	ID       string     `yaml:"id"`
	Position mgl32.Vec3 `yaml:"position"`
	// Rotation is in degrees.
	Rotation         mgl32.Vec3 `yaml:"rotation"`
	RotationOverride *[3]string `yaml:"rotation_override,omitempty"`
	Params           string     `yaml:"params,omitempty"`
	// Fields are composed into Params through the actor table.
	Fields  map[string]int `yaml:"fields,omitempty"`
	Headers HeaderSettings `yaml:"headers,omitempty"`
}

// TransitionActor is a door or loading plane between two rooms.
type TransitionActor struct {
	Actor       `yaml:",inline"`
	Room        int    `yaml:"room"`
	ToRoom      int    `yaml:"to_room"`
	CameraFront string `yaml:"camera_front,omitempty"`
	CameraBack  string `yaml:"camera_back,omitempty"`
	// DontTransition keeps the front room loaded.
	DontTransition bool `yaml:"dont_transition,omitempty"`
}

// Entrance is a player spawn point.
type Entrance struct {
	Actor `yaml:",inline"`
	Room  int `yaml:"room"`
	Spawn int `yaml:"spawn"`
}

// Path is a list of points used by actors.
type Path struct {
	Points []mgl32.Vec3 `yaml:"points"`
}

// Collision is the collision input of a scene.
type Collision struct {
	Triangles  []collision.Triangle    `yaml:"triangles"`
	Surfaces   []collision.PolygonType `yaml:"surfaces"`
	WaterBoxes []collision.WaterBox    `yaml:"water_boxes,omitempty"`
}
