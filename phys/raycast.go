package phys

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line from Origin along the unit Dir.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// RayHit describes the nearest intersection found by CastRay.
type RayHit struct {
	Collider ColliderHandle
	Body     BodyHandle

	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Distance float32
}

// CastRay casts against every collider in the world and returns the nearest
// hit within maxDist, excluding the given collider and body. It returns nil
// when nothing is hit or the world is not ready.
func (w *World) CastRay(ray Ray, maxDist float32, excludeCollider ColliderHandle, excludeBody BodyHandle) *RayHit {
	if !w.Ready() || maxDist <= 0 {
		return nil
	}

	var best *RayHit
	for i := range w.colliders {
		slot := &w.colliders[i]
		if !slot.live {
			continue
		}
		h := ColliderHandle{idx: i, gen: slot.gen}
		if h == excludeCollider {
			continue
		}
		if slot.body.gen != 0 && slot.body == excludeBody {
			continue
		}

		pos := slot.pos
		if slot.body.gen != 0 {
			bslot := w.bodySlot(slot.body)
			if bslot == nil {
				continue
			}
			pos = bslot.pos
		}

		hit, ok := rayShape(ray, slot.desc, pos, maxDist)
		if !ok {
			continue
		}
		if best == nil || hit.Distance < best.Distance {
			hit.Collider = h
			hit.Body = slot.body
			best = &hit
		}
	}
	return best
}

func rayShape(ray Ray, desc ColliderDesc, pos mgl32.Vec3, maxDist float32) (RayHit, bool) {
	switch desc.Shape {
	case ShapeBall:
		return raySphere(ray, pos, desc.Radius, maxDist)
	case ShapeCylinder:
		return rayCylinder(ray, pos, desc.HalfHeight, desc.Radius, maxDist)
	case ShapeCapsule:
		return rayCapsule(ray, pos, desc.HalfHeight, desc.Radius, maxDist)
	case ShapeConvexHull:
		return rayBoxes(ray, desc.collisionBoxes(pos), maxDist)
	default:
		return rayBoxes(ray, []cube.BBox{desc.bounds().Translate(pos)}, maxDist)
	}
}

func rayBoxes(ray Ray, boxes []cube.BBox, maxDist float32) (RayHit, bool) {
	best := RayHit{Distance: math32.MaxFloat32}
	found := false
	for _, box := range boxes {
		hit, ok := rayAABB(ray, box, maxDist)
		if ok && hit.Distance < best.Distance {
			best = hit
			found = true
		}
	}
	return best, found
}

// rayAABB is the slab method: intersect the ray's parametric range with
// each axis interval and keep the entering axis for the normal.
func rayAABB(ray Ray, box cube.BBox, maxDist float32) (RayHit, bool) {
	tMin := float32(0)
	tMax := maxDist
	normalAxis := -1
	normalSign := float32(0)

	min, max := box.Min(), box.Max()
	for i := 0; i < 3; i++ {
		o, d := ray.Origin[i], ray.Dir[i]
		if math32.Abs(d) < 1e-9 {
			if o < min[i] || o > max[i] {
				return RayHit{}, false
			}
			continue
		}
		inv := 1 / d
		t1 := (min[i] - o) * inv
		t2 := (max[i] - o) * inv
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			normalAxis = i
			normalSign = sign
		}
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return RayHit{}, false
		}
	}
	if normalAxis == -1 {
		// Origin inside the box.
		return RayHit{Position: ray.Origin, Normal: ray.Dir.Mul(-1), Distance: 0}, true
	}
	normal := mgl32.Vec3{}
	normal[normalAxis] = normalSign
	return RayHit{
		Position: ray.Origin.Add(ray.Dir.Mul(tMin)),
		Normal:   normal,
		Distance: tMin,
	}, true
}

func raySphere(ray Ray, center mgl32.Vec3, radius, maxDist float32) (RayHit, bool) {
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return RayHit{}, false
	}
	t := -b - math32.Sqrt(disc)
	if t < 0 || t > maxDist {
		return RayHit{}, false
	}
	p := ray.Origin.Add(ray.Dir.Mul(t))
	return RayHit{Position: p, Normal: p.Sub(center).Normalize(), Distance: t}, true
}

func rayCylinder(ray Ray, center mgl32.Vec3, halfHeight, radius, maxDist float32) (RayHit, bool) {
	// Side surface: quadratic in the XZ plane.
	ox, oz := ray.Origin.X()-center.X(), ray.Origin.Z()-center.Z()
	dx, dz := ray.Dir.X(), ray.Dir.Z()
	a := dx*dx + dz*dz

	best := RayHit{Distance: math32.MaxFloat32}
	found := false

	if a > 1e-9 {
		b := ox*dx + oz*dz
		c := ox*ox + oz*oz - radius*radius
		disc := b*b - a*c
		if disc >= 0 {
			t := (-b - math32.Sqrt(disc)) / a
			if t >= 0 && t <= maxDist {
				y := ray.Origin.Y() + ray.Dir.Y()*t
				if math32.Abs(y-center.Y()) <= halfHeight {
					p := ray.Origin.Add(ray.Dir.Mul(t))
					n := mgl32.Vec3{p.X() - center.X(), 0, p.Z() - center.Z()}.Normalize()
					best = RayHit{Position: p, Normal: n, Distance: t}
					found = true
				}
			}
		}
	}

	// End caps.
	if math32.Abs(ray.Dir.Y()) > 1e-9 {
		for _, sign := range [2]float32{1, -1} {
			planeY := center.Y() + sign*halfHeight
			t := (planeY - ray.Origin.Y()) / ray.Dir.Y()
			if t < 0 || t > maxDist || t >= best.Distance {
				continue
			}
			p := ray.Origin.Add(ray.Dir.Mul(t))
			px, pz := p.X()-center.X(), p.Z()-center.Z()
			if px*px+pz*pz > radius*radius {
				continue
			}
			best = RayHit{Position: p, Normal: mgl32.Vec3{0, sign, 0}, Distance: t}
			found = true
		}
	}
	return best, found
}

func rayCapsule(ray Ray, center mgl32.Vec3, halfHeight, radius, maxDist float32) (RayHit, bool) {
	best := RayHit{Distance: math32.MaxFloat32}
	found := false

	if hit, ok := rayCylinder(ray, center, halfHeight, radius, maxDist); ok {
		best = hit
		found = true
	}
	for _, sign := range [2]float32{1, -1} {
		capCenter := center.Add(mgl32.Vec3{0, sign * halfHeight, 0})
		if hit, ok := raySphere(ray, capCenter, radius, maxDist); ok && hit.Distance < best.Distance {
			best = hit
			found = true
		}
	}
	return best, found
}
