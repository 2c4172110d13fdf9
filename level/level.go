// Package level turns a map document into static physics geometry and
// exposes marker lookups to the game modes. Colliders are derived from map
// objects on build and owned by the physics world; nothing here is
// persisted.
package level

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/mapdef"
	"github.com/gridlock-gg/gridlock/phys"
)

// Level is a built map: its static colliders and its markers.
type Level struct {
	def       *mapdef.Map
	colliders []phys.ColliderHandle

	spawn       mgl32.Vec3
	hasSpawn    bool
	checkpoints []mgl32.Vec3
	finish      mgl32.Vec3
	hasFinish   bool
	killzones   []mgl32.Vec3
}

// Build creates static colliders in the world for every object of the map
// and indexes its markers. Objects with unknown shapes are skipped with a
// warning rather than failing the whole map.
func Build(w *phys.World, m *mapdef.Map, cache *Cache, log *logrus.Logger) *Level {
	l := &Level{def: m}
	for _, obj := range m.Objects {
		desc, ok := colliderFor(obj, cache)
		if !ok {
			if log != nil {
				log.Warnf("level: skipping object %s with unknown shape %q", obj.ID, obj.Type)
			}
			continue
		}
		h := w.CreateCollider(desc, obj.Position.V(), yawOf(obj))
		l.colliders = append(l.colliders, h)
	}

	for _, marker := range m.Markers {
		pos := marker.Position.V()
		switch marker.Type {
		case mapdef.MarkerSpawn, mapdef.MarkerSpawnA:
			if !l.hasSpawn {
				l.spawn = pos
				l.hasSpawn = true
			}
		case mapdef.MarkerCheckpoint:
			l.checkpoints = append(l.checkpoints, pos)
		case mapdef.MarkerFinish:
			l.finish = pos
			l.hasFinish = true
		case mapdef.MarkerKillzone:
			l.killzones = append(l.killzones, pos)
		}
	}
	return l
}

// yawOf returns the rotation component that matters: Y, and only for
// planes and ramps.
func yawOf(obj mapdef.MapObject) float32 {
	if obj.Type == mapdef.ShapePlane || obj.Type == mapdef.ShapeRamp {
		return obj.Rotation.Y
	}
	return 0
}

// colliderFor derives the collider descriptor for a map object, going
// through the geometry cache so identical (shape, color) pairs share their
// derived resources.
func colliderFor(obj mapdef.MapObject, cache *Cache) (phys.ColliderDesc, bool) {
	if cache != nil {
		cache.Get(obj.Type, obj.Color)
	}
	scale := obj.Scale.V()
	half := scale.Mul(0.5)
	switch obj.Type {
	case mapdef.ShapeBox:
		return phys.CuboidDesc(half), true
	case mapdef.ShapeCylinder:
		return phys.CylinderDesc(half.Y(), half.X()), true
	case mapdef.ShapeSphere:
		return phys.BallDesc(half.X()), true
	case mapdef.ShapePlane:
		yaw := obj.Rotation.Y
		thin := mgl32.Vec3{half.X(), 0.05, half.Z()}
		if yaw == 0 {
			return phys.CuboidDesc(thin), true
		}
		return phys.ConvexHullDesc(boxVertices(thin, yaw)), true
	case mapdef.ShapeRamp:
		return phys.ConvexHullDesc(phys.WedgeVertices(half, obj.Rotation.Y)), true
	}
	return phys.ColliderDesc{}, false
}

// DescFor derives the physics collider descriptor for a map object without
// going through a geometry cache. The boolean is false for unknown shapes.
func DescFor(obj mapdef.MapObject) (phys.ColliderDesc, bool) {
	return colliderFor(obj, nil)
}

// boxVertices returns the eight yaw-rotated corners of a box.
func boxVertices(half mgl32.Vec3, yaw float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, 0, 8)
	for _, sx := range [2]float32{-1, 1} {
		for _, sy := range [2]float32{-1, 1} {
			for _, sz := range [2]float32{-1, 1} {
				v := mgl32.Vec3{sx * half.X(), sy * half.Y(), sz * half.Z()}
				out = append(out, game.RotateY(v, yaw))
			}
		}
	}
	return out
}

// Def returns the map document the level was built from.
func (l *Level) Def() *mapdef.Map { return l.def }

// Spawn returns the spawn marker position. The boolean is false for maps
// without one; callers fall back to the world origin.
func (l *Level) Spawn() (mgl32.Vec3, bool) { return l.spawn, l.hasSpawn }

// Checkpoints returns checkpoint positions in placement order. Placement
// order is race order.
func (l *Level) Checkpoints() []mgl32.Vec3 { return l.checkpoints }

// Finish returns the finish marker position, if the map has one.
func (l *Level) Finish() (mgl32.Vec3, bool) { return l.finish, l.hasFinish }

// Killzones returns all killzone marker positions.
func (l *Level) Killzones() []mgl32.Vec3 { return l.killzones }

// Colliders returns the static collider handles owned by the level.
func (l *Level) Colliders() []phys.ColliderHandle { return l.colliders }
