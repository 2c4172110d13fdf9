// Package editor implements the map editor's placement engine. It keeps a
// private physics world in sync with the map document so placement clicks
// can be resolved with raycasts, and enforces the placement rules: grid
// snapping, face adjacency, overlap rejection, marker singletons and the
// killzone exclusion zone.
package editor

import (
	"fmt"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/level"
	"github.com/gridlock-gg/gridlock/mapdef"
	"github.com/gridlock-gg/gridlock/phys"
)

// errorVisibleFor is how long a placement rejection stays on screen before
// it clears on its own.
const errorVisibleFor = 3 * time.Second

// groundHalfExtent is the size of the editor's pickable ground plane. Large
// enough that clicks anywhere in a plausible map land on it.
const groundHalfExtent = 500

// Editor owns a map document being edited and the physics colliders derived
// from it. All mutation goes through Place/Remove so the document and the
// pick world never drift apart.
type Editor struct {
	doc *mapdef.Map
	w   *phys.World
	log *logrus.Logger

	ground     phys.ColliderHandle
	colliders  map[string]phys.ColliderHandle
	byCollider map[phys.ColliderHandle]string

	now   func() time.Time
	msg   string
	msgAt time.Time
}

// New wraps a map document for editing. Existing objects get pick colliders
// immediately; unknown shapes are skipped with a warning.
func New(doc *mapdef.Map, log *logrus.Logger) *Editor {
	e := &Editor{
		doc:        doc,
		w:          phys.NewWorld(mgl32.Vec3{}),
		log:        log,
		colliders:  make(map[string]phys.ColliderHandle),
		byCollider: make(map[phys.ColliderHandle]string),
		now:        time.Now,
	}
	e.ground = e.w.CreateCollider(
		phys.CuboidDesc(mgl32.Vec3{groundHalfExtent, 0.05, groundHalfExtent}),
		mgl32.Vec3{0, -0.05, 0}, 0,
	)
	for _, obj := range doc.Objects {
		e.addCollider(obj)
	}
	return e
}

// Doc returns the document being edited.
func (e *Editor) Doc() *mapdef.Map { return e.doc }

// World returns the editor's pick world.
func (e *Editor) World() *phys.World { return e.w }

// Free releases the pick world. The document survives.
func (e *Editor) Free() { e.w.Free() }

// UserError returns the current placement rejection message, or the empty
// string once it has expired.
func (e *Editor) UserError() string {
	if e.msg != "" && e.now().Sub(e.msgAt) >= errorVisibleFor {
		e.msg = ""
	}
	return e.msg
}

func (e *Editor) reject(msg string) {
	e.msg = msg
	e.msgAt = e.now()
	if e.log != nil {
		e.log.Debugf("editor: placement rejected: %s", msg)
	}
}

// PlaceObject resolves a center-screen ray into a placement position and
// places a new object there. A click on an existing object's face places the
// new object adjacent along the face's dominant axis; a click on the ground
// snaps to the grid. Returns nil when nothing was hit or placement was
// rejected.
func (e *Editor) PlaceObject(ray phys.Ray, shape mapdef.ShapeType, scale, rotation mapdef.Vec3, color, name string) *mapdef.MapObject {
	hit := e.w.CastRay(ray, game.RenderDistance, phys.ColliderHandle{}, phys.BodyHandle{})
	if hit == nil {
		return nil
	}
	var pos mgl32.Vec3
	if id, ok := e.byCollider[hit.Collider]; ok {
		base, found := e.objectByID(id)
		if !found {
			return nil
		}
		pos = base.Position.V().Add(faceDirection(snapFace(hit.Normal)))
	} else {
		lifted := hit.Position.Add(mgl32.Vec3{0, scale.Y * 0.5, 0})
		pos = game.SnapVec3ToGrid(lifted)
	}
	return e.PlaceObjectAt(mapdef.FromVec(pos), shape, scale, rotation, color, name)
}

// PlaceObjectAt places an object at an explicit position, subject to the
// overlap check. Returns nil when rejected.
func (e *Editor) PlaceObjectAt(pos mapdef.Vec3, shape mapdef.ShapeType, scale, rotation mapdef.Vec3, color, name string) *mapdef.MapObject {
	if e.overlapsExisting(pos.V(), scale.V()) {
		e.reject("Cannot place: overlaps an existing object.")
		return nil
	}
	obj := mapdef.MapObject{
		ID:       uuid.NewString(),
		Type:     shape,
		Position: pos,
		Rotation: rotation,
		Scale:    scale,
		Color:    color,
		Name:     name,
	}
	e.doc.Objects = append(e.doc.Objects, obj)
	e.addCollider(obj)
	e.touch()
	return &e.doc.Objects[len(e.doc.Objects)-1]
}

// PlaceMarker resolves a ray into a grid-snapped position and places a
// marker there, subject to the singleton and killzone rules.
func (e *Editor) PlaceMarker(ray phys.Ray, typ mapdef.MarkerType) *mapdef.MapMarker {
	hit := e.w.CastRay(ray, game.RenderDistance, phys.ColliderHandle{}, phys.BodyHandle{})
	if hit == nil {
		return nil
	}
	return e.PlaceMarkerAt(mapdef.FromVec(game.SnapVec3ToGrid(hit.Position)), typ)
}

// PlaceMarkerAt places a marker at an explicit position. Duplicate
// singletons are dropped silently; a killzone too close to a spawn or finish
// marker is rejected with a user-visible reason.
func (e *Editor) PlaceMarkerAt(pos mapdef.Vec3, typ mapdef.MarkerType) *mapdef.MapMarker {
	for _, singleton := range e.doc.SingletonTypes() {
		if typ == singleton && len(e.doc.MarkersOfType(typ)) > 0 {
			return nil
		}
	}
	if typ == mapdef.MarkerKillzone && e.nearProtectedMarker(pos.V()) {
		e.reject(fmt.Sprintf("Killzone must be at least %.0f units from spawn and finish markers.", float64(game.KillzoneSpawnGap)))
		return nil
	}
	marker := mapdef.MapMarker{
		ID:       uuid.NewString(),
		Type:     typ,
		Position: pos,
	}
	e.doc.Markers = append(e.doc.Markers, marker)
	e.touch()
	return &e.doc.Markers[len(e.doc.Markers)-1]
}

// RemoveObject deletes an object and its pick collider. Unknown ids are
// no-ops.
func (e *Editor) RemoveObject(id string) {
	for i, obj := range e.doc.Objects {
		if obj.ID != id {
			continue
		}
		if h, ok := e.colliders[id]; ok {
			e.w.RemoveCollider(h, false)
			delete(e.byCollider, h)
			delete(e.colliders, id)
		}
		e.doc.Objects = append(e.doc.Objects[:i], e.doc.Objects[i+1:]...)
		e.touch()
		return
	}
}

// RemoveMarker deletes a marker. Unknown ids are no-ops.
func (e *Editor) RemoveMarker(id string) {
	for i, marker := range e.doc.Markers {
		if marker.ID != id {
			continue
		}
		e.doc.Markers = append(e.doc.Markers[:i], e.doc.Markers[i+1:]...)
		e.touch()
		return
	}
}

func (e *Editor) touch() {
	e.doc.UpdatedAt = e.now().UTC()
}

func (e *Editor) objectByID(id string) (mapdef.MapObject, bool) {
	for _, obj := range e.doc.Objects {
		if obj.ID == id {
			return obj, true
		}
	}
	return mapdef.MapObject{}, false
}

func (e *Editor) addCollider(obj mapdef.MapObject) {
	desc, ok := level.DescFor(obj)
	if !ok {
		if e.log != nil {
			e.log.Warnf("editor: object %s has unknown shape %q", obj.ID, obj.Type)
		}
		return
	}
	h := e.w.CreateCollider(desc, obj.Position.V(), obj.Rotation.Y)
	e.colliders[obj.ID] = h
	e.byCollider[h] = obj.ID
}

// overlapsExisting reports whether a box at pos with the given scale,
// shrunk by the placement tolerance, intersects any existing object's box.
func (e *Editor) overlapsExisting(pos, scale mgl32.Vec3) bool {
	half := scale.Mul(0.5 * game.OverlapTolerance)
	candidate := boxAround(pos, half)
	for _, obj := range e.doc.Objects {
		existing := boxAround(obj.Position.V(), obj.Scale.V().Mul(0.5))
		if candidate.IntersectsWith(existing) {
			return true
		}
	}
	return false
}

func (e *Editor) nearProtectedMarker(pos mgl32.Vec3) bool {
	for _, marker := range e.doc.Markers {
		switch marker.Type {
		case mapdef.MarkerSpawn, mapdef.MarkerSpawnA, mapdef.MarkerSpawnB, mapdef.MarkerFinish:
			if marker.Position.V().Sub(pos).Len() < game.KillzoneSpawnGap {
				return true
			}
		}
	}
	return false
}

func boxAround(pos, half mgl32.Vec3) cube.BBox {
	return cube.Box(
		pos.X()-half.X(), pos.Y()-half.Y(), pos.Z()-half.Z(),
		pos.X()+half.X(), pos.Y()+half.Y(), pos.Z()+half.Z(),
	)
}

// snapFace maps a world-space surface normal to the cube face of its
// dominant axis.
func snapFace(normal mgl32.Vec3) cube.Face {
	axis, sign := game.DominantAxis(normal)
	switch axis {
	case 0:
		if sign < 0 {
			return cube.FaceWest
		}
		return cube.FaceEast
	case 1:
		if sign < 0 {
			return cube.FaceDown
		}
		return cube.FaceUp
	default:
		if sign < 0 {
			return cube.FaceNorth
		}
		return cube.FaceSouth
	}
}

func faceDirection(f cube.Face) mgl32.Vec3 {
	switch f {
	case cube.FaceWest:
		return mgl32.Vec3{-1, 0, 0}
	case cube.FaceEast:
		return mgl32.Vec3{1, 0, 0}
	case cube.FaceDown:
		return mgl32.Vec3{0, -1, 0}
	case cube.FaceUp:
		return mgl32.Vec3{0, 1, 0}
	case cube.FaceNorth:
		return mgl32.Vec3{0, 0, -1}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}
