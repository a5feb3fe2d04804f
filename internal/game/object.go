package game

import "math"

// Handle identifies an object in the world registry. Handles are never reused
// within a World.
type Handle uint32

// ObjectKind is the category of a scene object.
type ObjectKind string

const (
	KindGround     ObjectKind = "ground"
	KindStructure  ObjectKind = "structure"
	KindProp       ObjectKind = "prop"
	KindNPC        ObjectKind = "npc"
	KindDistortion ObjectKind = "distortion"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Distance(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Object is the headless record of something the renderer draws.
type Object struct {
	Handle   Handle     `json:"handle"`
	Kind     ObjectKind `json:"kind"`
	Name     string     `json:"name"`
	Position Vec3       `json:"position"`
	Rotation Vec3       `json:"rotation"`
	Scale    float64    `json:"scale"`
	Opacity  float64    `json:"opacity"`
	Color    uint32     `json:"color"`

	// NPCType is set for KindNPC objects.
	NPCType string `json:"npc_type,omitempty"`
	// LinkTarget is an explicit destination scene id. Empty defers to the
	// scene's link exits.
	LinkTarget string `json:"link_target,omitempty"`
	// Linkable objects trigger a scene link when the player touches them.
	Linkable bool `json:"linkable"`
	// SceneOwned objects are removed when the scene is unloaded.
	SceneOwned bool `json:"scene_owned"`
	// Parent groups objects spawned together, such as nested boxes.
	Parent Handle `json:"parent,omitempty"`
}

type Camera struct {
	FOV  float64 `json:"fov"`
	Roll float64 `json:"roll"`
}

type Lighting struct {
	Color     uint32  `json:"color"`
	Intensity float64 `json:"intensity"`
}
