package phys

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/game"
)

// ShapeType enumerates the collider shapes the world supports.
type ShapeType uint8

const (
	ShapeCapsule ShapeType = iota
	ShapeCuboid
	ShapeCylinder
	ShapeBall
	ShapeConvexHull
)

// ColliderDesc describes a collider to be created. Use the shape
// constructors instead of filling the struct directly.
type ColliderDesc struct {
	Shape ShapeType

	// HalfHeight and Radius apply to capsules and cylinders; Radius alone
	// to balls. A capsule's total height is 2*(HalfHeight+Radius).
	HalfHeight float32
	Radius     float32

	// HalfExtents applies to cuboids.
	HalfExtents mgl32.Vec3

	// Vertices applies to convex hulls, in local space around the origin.
	Vertices []mgl32.Vec3
}

// CapsuleDesc describes a vertical capsule: a cylinder of the given half
// height capped by hemispheres of the given radius.
func CapsuleDesc(halfHeight, radius float32) ColliderDesc {
	return ColliderDesc{Shape: ShapeCapsule, HalfHeight: halfHeight, Radius: radius}
}

// CuboidDesc describes an axis-aligned box by its half extents.
func CuboidDesc(halfExtents mgl32.Vec3) ColliderDesc {
	return ColliderDesc{Shape: ShapeCuboid, HalfExtents: halfExtents}
}

// CylinderDesc describes a vertical cylinder.
func CylinderDesc(halfHeight, radius float32) ColliderDesc {
	return ColliderDesc{Shape: ShapeCylinder, HalfHeight: halfHeight, Radius: radius}
}

// BallDesc describes a sphere.
func BallDesc(radius float32) ColliderDesc {
	return ColliderDesc{Shape: ShapeBall, Radius: radius}
}

// ConvexHullDesc describes a convex hull by its defining vertices.
func ConvexHullDesc(vertices []mgl32.Vec3) ColliderDesc {
	return ColliderDesc{Shape: ShapeConvexHull, Vertices: vertices}
}

// WedgeVertices returns the six hull vertices of a ramp ascending towards
// +Z, centered on the origin, yaw-rotated and scaled to the given extents.
func WedgeVertices(halfExtents mgl32.Vec3, yaw float32) []mgl32.Vec3 {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	verts := []mgl32.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz},
		{-hx, hy, hz}, {hx, hy, hz},
	}
	for i, v := range verts {
		verts[i] = game.RotateY(v, yaw)
	}
	return verts
}

// bounds returns the local-space bounding box of the shape.
func (d ColliderDesc) bounds() cube.BBox {
	switch d.Shape {
	case ShapeCapsule:
		e := d.HalfHeight + d.Radius
		return cube.Box(-d.Radius, -e, -d.Radius, d.Radius, e, d.Radius)
	case ShapeCuboid:
		h := d.HalfExtents
		return cube.Box(-h[0], -h[1], -h[2], h[0], h[1], h[2])
	case ShapeCylinder:
		return cube.Box(-d.Radius, -d.HalfHeight, -d.Radius, d.Radius, d.HalfHeight, d.Radius)
	case ShapeBall:
		r := d.Radius
		return cube.Box(-r, -r, -r, r, r, r)
	case ShapeConvexHull:
		min := mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
		max := min.Mul(-1)
		for _, v := range d.Vertices {
			for i := 0; i < 3; i++ {
				if v[i] < min[i] {
					min[i] = v[i]
				}
				if v[i] > max[i] {
					max[i] = v[i]
				}
			}
		}
		return cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])
	}
	return cube.Box(0, 0, 0, 0, 0, 0)
}

// collisionBoxes returns the world-space boxes a static collider
// contributes to movement clipping. Hulls decompose into horizontal slabs
// so capsules can walk up ramps through the regular step-up path; every
// other shape contributes its bounding box.
func (d ColliderDesc) collisionBoxes(pos mgl32.Vec3) []cube.BBox {
	if d.Shape == ShapeConvexHull {
		return hullSlabs(d.Vertices, pos)
	}
	return []cube.BBox{d.bounds().Translate(pos)}
}

// hullSlabs slices a convex hull into horizontal slabs and returns the
// bounding box of each slab's cross-section. Exact for convex vertex sets:
// the extreme points of a Y-clipped convex hull lie on clipped edges or on
// vertices inside the slab.
func hullSlabs(vertices []mgl32.Vec3, pos mgl32.Vec3) []cube.BBox {
	if len(vertices) == 0 {
		return nil
	}
	minY, maxY := vertices[0].Y(), vertices[0].Y()
	for _, v := range vertices {
		minY = math32.Min(minY, v.Y())
		maxY = math32.Max(maxY, v.Y())
	}
	height := maxY - minY
	if height <= slabHeight {
		d := ColliderDesc{Shape: ShapeConvexHull, Vertices: vertices}
		return []cube.BBox{d.bounds().Translate(pos)}
	}

	slabs := int(math32.Ceil(height / slabHeight))
	boxes := make([]cube.BBox, 0, slabs)
	for i := 0; i < slabs; i++ {
		y0 := minY + float32(i)*slabHeight
		y1 := math32.Min(y0+slabHeight, maxY)
		box, ok := slabCrossSection(vertices, y0, y1)
		if !ok {
			continue
		}
		boxes = append(boxes, box.Translate(pos))
	}
	return boxes
}

// slabCrossSection returns the XZ bounding box of the hull clipped to the
// vertical range [y0, y1].
func slabCrossSection(vertices []mgl32.Vec3, y0, y1 float32) (cube.BBox, bool) {
	var (
		minX, minZ float32 = math32.MaxFloat32, math32.MaxFloat32
		maxX, maxZ float32 = -math32.MaxFloat32, -math32.MaxFloat32
	)
	found := false

	consider := func(x, z float32) {
		minX = math32.Min(minX, x)
		maxX = math32.Max(maxX, x)
		minZ = math32.Min(minZ, z)
		maxZ = math32.Max(maxZ, z)
		found = true
	}

	for _, v := range vertices {
		if v.Y() >= y0 && v.Y() <= y1 {
			consider(v.X(), v.Z())
		}
	}
	// Clip every edge of the vertex set against the slab planes. Extreme
	// cross-section points of a convex hull lie on such intersections.
	for i := 0; i < len(vertices); i++ {
		for j := i + 1; j < len(vertices); j++ {
			a, b := vertices[i], vertices[j]
			if a.Y() == b.Y() {
				continue
			}
			for _, y := range [2]float32{y0, y1} {
				t := (y - a.Y()) / (b.Y() - a.Y())
				if t < 0 || t > 1 {
					continue
				}
				p := a.Add(b.Sub(a).Mul(t))
				consider(p.X(), p.Z())
			}
		}
	}
	if !found {
		return cube.BBox{}, false
	}
	return cube.Box(minX, y0, minZ, maxX, y1, maxZ), true
}
