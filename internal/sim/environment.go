package sim

// gravityMPS2 is applied to free-falling bodies: destroyed entities and
// projectiles (SimEngine.cpp's -9.81 literals, and Projectile.h's
// GRAVITY constant).
const gravityMPS2 = -9.81

// Building is a static axis-aligned obstacle used only for the occlusion
// test; it never moves and carries no other physics. Center/HalfExtents
// are plain [X,Y,Z] triples so callers outside the package can build one
// without naming the unexported vec3 type.
type Building struct {
	Center      [3]float64
	HalfExtents [3]float64
}

func (b Building) toInternal() building {
	return building{
		center:      vec3{X: b.Center[0], Y: b.Center[1], Z: b.Center[2]},
		halfExtents: vec3{X: b.HalfExtents[0], Y: b.HalfExtents[1], Z: b.HalfExtents[2]},
	}
}

// building is the internal vec3-based representation used by the
// occlusion test.
type building struct {
	center      vec3
	halfExtents vec3
}

// environment holds the static geometry the occlusion test runs against
// (spec §4.I's expansion: SimEngine.cpp's Environment::check_occlusion).
type environment struct {
	buildings []building
}

// occludes reports whether the segment from observer to target is blocked
// by any configured building, tested as a ray-vs-AABB intersection clipped
// to [0, segment length] (the original's Environment::check_occlusion is
// not present in the retrieved source tree; a slab-method ray/box test is
// the standard substitute for the box-list it describes).
func (e *environment) occludes(observer, target vec3) bool {
	dir := target.sub(observer)
	segLen := dir.length()
	if segLen == 0 {
		return false
	}
	dir = dir.scale(1 / segLen)

	for _, b := range e.buildings {
		if rayIntersectsBox(observer, dir, segLen, b) {
			return true
		}
	}
	return false
}

// rayIntersectsBox is the slab method: compute the entry/exit parametric
// distance along each axis and intersect the three intervals.
func rayIntersectsBox(origin, dir vec3, maxT float64, b building) bool {
	min := b.center.sub(b.halfExtents)
	max := b.center.add(b.halfExtents)

	tMin, tMax := 0.0, maxT
	axes := [3]struct{ o, d, lo, hi float64 }{
		{origin.X, dir.X, min.X, max.X},
		{origin.Y, dir.Y, min.Y, max.Y},
		{origin.Z, dir.Z, min.Z, max.Z},
	}

	for _, a := range axes {
		if a.d == 0 {
			if a.o < a.lo || a.o > a.hi {
				return false
			}
			continue
		}
		t1 := (a.lo - a.o) / a.d
		t2 := (a.hi - a.o) / a.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}
