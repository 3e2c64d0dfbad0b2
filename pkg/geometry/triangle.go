package geometry

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices
	normal     core.Vec3 // Cached normal vector
	area       float64
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices. The outward normal
// follows the counter-clockwise winding V0, V1, V2.
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	t := &Triangle{
		V0: v0,
		V1: v1,
		V2: v2,
	}
	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	t.normal = cross.Normalize()
	t.area = 0.5 * cross.Length()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)
	return t
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return nil, false
	}

	si := &material.SurfaceInteraction{
		T:     tHit,
		Point: ray.At(tHit),
	}
	si.SetFaceNormal(ray, t.normal)
	return si, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Normal returns the triangle's outward normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the surface area
func (t *Triangle) Area() float64 {
	return t.area
}

// Sample picks a point uniformly over the triangle
func (t *Triangle) Sample(u core.Vec2) ShapeSample {
	b0, b1 := core.SampleTriangle(u)
	p := t.V0.Multiply(b0).Add(t.V1.Multiply(b1)).Add(t.V2.Multiply(1 - b0 - b1))
	return ShapeSample{Point: p, Normal: t.normal, Pdf: 1 / t.area}
}

// SampleFrom implements SampleableShape
func (t *Triangle) SampleFrom(ref core.Vec3, u core.Vec2) (ShapeSample, bool) {
	if t.area == 0 {
		return ShapeSample{}, false
	}
	return sampleByArea(t, ref, u)
}

// PdfFrom implements SampleableShape
func (t *Triangle) PdfFrom(ref, wi core.Vec3) float64 {
	if t.area == 0 {
		return 0
	}
	return pdfByArea(t, ref, wi)
}
