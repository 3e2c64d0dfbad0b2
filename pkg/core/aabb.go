package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that acts as the identity for Union
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.UnionPoint(point)
	}
	return box
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// UnionPoint grows the box to contain p
func (aabb AABB) UnionPoint(p Vec3) AABB {
	return AABB{Min: aabb.Min.Min(p), Max: aabb.Max.Max(p)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB; empty boxes have zero area
func (aabb AABB) SurfaceArea() float64 {
	if !aabb.IsValid() {
		return 0
	}
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// Offset returns the position of p relative to the box corners, 0 at Min and 1 at Max
func (aabb AABB) Offset(p Vec3) Vec3 {
	o := p.Subtract(aabb.Min)
	if aabb.Max.X > aabb.Min.X {
		o.X /= aabb.Max.X - aabb.Min.X
	}
	if aabb.Max.Y > aabb.Min.Y {
		o.Y /= aabb.Max.Y - aabb.Min.Y
	}
	if aabb.Max.Z > aabb.Min.Z {
		o.Z /= aabb.Max.Z - aabb.Min.Z
	}
	return o
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// BoundingSphere returns the center and radius of a sphere enclosing the box
func (aabb AABB) BoundingSphere() (Vec3, float64) {
	if !aabb.IsValid() {
		return Vec3{}, 0
	}
	center := aabb.Center()
	return center, Distance(center, aabb.Max)
}

// corner returns Min when neg is 0 and Max otherwise
func (aabb AABB) corner(neg int) Vec3 {
	if neg == 0 {
		return aabb.Min
	}
	return aabb.Max
}

// HitSlab tests the ray against the box using a precomputed reciprocal
// direction and per-axis sign. dirIsNeg[i] is 1 when the ray direction is
// negative along axis i, which makes Max the near corner on that axis.
// A hit requires near <= far, far > 0 and near < tMax.
func (aabb AABB) HitSlab(origin, invDir Vec3, dirIsNeg [3]int, tMax float64) bool {
	near := aabb.corner(dirIsNeg[0])
	far := aabb.corner(1 - dirIsNeg[0])
	tNear := (near.X - origin.X) * invDir.X
	tFar := (far.X - origin.X) * invDir.X

	near = aabb.corner(dirIsNeg[1])
	far = aabb.corner(1 - dirIsNeg[1])
	tyNear := (near.Y - origin.Y) * invDir.Y
	tyFar := (far.Y - origin.Y) * invDir.Y

	near = aabb.corner(dirIsNeg[2])
	far = aabb.corner(1 - dirIsNeg[2])
	tzNear := (near.Z - origin.Z) * invDir.Z
	tzFar := (far.Z - origin.Z) * invDir.Z

	tNear = maxNaN(tNear, maxNaN(tyNear, tzNear))
	tFar = minNaN(tFar, minNaN(tyFar, tzFar))

	return tNear <= tFar && tFar > 0 && tNear < tMax
}

// Hit tests if a ray intersects with this AABB within [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	invDir := NewVec3(1/ray.Direction.X, 1/ray.Direction.Y, 1/ray.Direction.Z)
	for axis := 0; axis < 3; axis++ {
		t0 := (aabb.Min.Axis(axis) - ray.Origin.Axis(axis)) * invDir.Axis(axis)
		t1 := (aabb.Max.Axis(axis) - ray.Origin.Axis(axis)) * invDir.Axis(axis)
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = maxNaN(tMin, t0)
		tMax = minNaN(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// maxNaN and minNaN drop NaN operands produced by 0*Inf when a ray lies in a slab plane
func maxNaN(a, b float64) float64 {
	if math.IsNaN(b) || a > b {
		return a
	}
	return b
}

func minNaN(a, b float64) float64 {
	if math.IsNaN(b) || a < b {
		return a
	}
	return b
}
