// Package mapdef defines the persisted map interchange format: objects,
// markers, modes, validation, and the JSON document stored and exchanged by
// the editor, the map store, and the game modes. Field names are part of
// the on-disk contract and must not change.
package mapdef

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Mode is the game mode a map is built for.
type Mode string

const (
	ModeRace    Mode = "race"
	ModeShooter Mode = "shooter"
)

// ShooterSubMode refines ModeShooter.
type ShooterSubMode string

const (
	SubModeFFA        ShooterSubMode = "ffa"
	SubModeTeam       ShooterSubMode = "team"
	SubModeDomination ShooterSubMode = "domination"
)

// ShapeType is the geometry of a placed object.
type ShapeType string

const (
	ShapeBox      ShapeType = "box"
	ShapeCylinder ShapeType = "cylinder"
	ShapeSphere   ShapeType = "sphere"
	ShapePlane    ShapeType = "plane"
	ShapeRamp     ShapeType = "ramp"
)

// MarkerType is the gameplay role of a placed marker.
type MarkerType string

const (
	MarkerSpawn        MarkerType = "spawn"
	MarkerCheckpoint   MarkerType = "checkpoint"
	MarkerFinish       MarkerType = "finish"
	MarkerKillzone     MarkerType = "killzone"
	MarkerSpawnA       MarkerType = "spawn_a"
	MarkerSpawnB       MarkerType = "spawn_b"
	MarkerCapturePoint MarkerType = "capture_point"
)

// Vec3 is the persisted vector form. Kept as explicit x/y/z fields so the
// JSON layout stays stable.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// V converts to the math vector type used by the engine.
func (v Vec3) V() mgl32.Vec3 { return mgl32.Vec3{v.X, v.Y, v.Z} }

// FromVec converts an engine vector to the persisted form.
func FromVec(v mgl32.Vec3) Vec3 { return Vec3{X: v[0], Y: v[1], Z: v[2]} }

// MapObject is a static geometry piece. The shape is immutable; colliders
// and render geometry are derived from it, never stored. Rotation is Euler;
// only the Y component is meaningful, and only for planes and ramps.
type MapObject struct {
	ID       string    `json:"id"`
	Type     ShapeType `json:"type"`
	Position Vec3      `json:"position"`
	Rotation Vec3      `json:"rotation"`
	Scale    Vec3      `json:"scale"`
	Color    string    `json:"color"`
	Name     string    `json:"name,omitempty"`
}

// MapMarker is a gameplay marker (spawn, checkpoint, finish, killzone,
// team spawns, capture point).
type MapMarker struct {
	ID       string     `json:"id"`
	Type     MarkerType `json:"type"`
	Position Vec3       `json:"position"`
	Rotation Vec3       `json:"rotation"`
}

// Map is the interchange document. It round-trips through JSON
// field-for-field; previously saved maps must keep loading.
type Map struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Mode           Mode           `json:"mode"`
	ShooterSubMode ShooterSubMode `json:"shooterSubMode,omitempty"`
	Objects        []MapObject    `json:"objects"`
	Markers        []MapMarker    `json:"markers"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// New returns an empty map of the given mode with a fresh identity.
func New(name string, mode Mode) *Map {
	now := time.Now().UTC()
	return &Map{
		ID:        uuid.NewString(),
		Name:      name,
		Mode:      mode,
		Objects:   []MapObject{},
		Markers:   []MapMarker{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Load parses a map document.
func Load(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mapdef: decode map: %w", err)
	}
	if m.Objects == nil {
		m.Objects = []MapObject{}
	}
	if m.Markers == nil {
		m.Markers = []MapMarker{}
	}
	return &m, nil
}

// Export serializes the map document. Load(Export(m)) round-trips every
// field.
func (m *Map) Export() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mapdef: encode map: %w", err)
	}
	return data, nil
}

// MarkersOfType returns all markers of the given type in placement order.
func (m *Map) MarkersOfType(t MarkerType) []MapMarker {
	var out []MapMarker
	for _, marker := range m.Markers {
		if marker.Type == t {
			out = append(out, marker)
		}
	}
	return out
}

// FirstMarker returns the first marker of the given type, if any.
func (m *Map) FirstMarker(t MarkerType) (MapMarker, bool) {
	for _, marker := range m.Markers {
		if marker.Type == t {
			return marker, true
		}
	}
	return MapMarker{}, false
}

// SingletonTypes returns the marker types that may appear at most once for
// the map's mode.
func (m *Map) SingletonTypes() []MarkerType {
	switch m.Mode {
	case ModeRace:
		return []MarkerType{MarkerSpawn, MarkerFinish}
	case ModeShooter:
		switch m.ShooterSubMode {
		case SubModeTeam:
			return []MarkerType{MarkerSpawnA, MarkerSpawnB}
		case SubModeDomination:
			return []MarkerType{MarkerSpawnA, MarkerSpawnB, MarkerCapturePoint}
		default:
			return nil // ffa: spawns unlimited
		}
	}
	return nil
}
