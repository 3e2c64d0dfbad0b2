package geometry

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner core.Vec3 // One corner of the quad
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	Normal core.Vec3 // Normal vector (U × V normalized)
	D      float64   // Plane equation constant: n·p = d
	W      core.Vec3 // Cached vector for planar coordinates
	area   float64
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()
	w := core.Vec3{}
	if l2 := cross.LengthSquared(); l2 > 0 {
		w = cross.Multiply(1.0 / l2)
	}
	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: normal,
		D:      normal.Dot(corner),
		W:      w,
		area:   cross.Length(),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	denominator := ray.Direction.Dot(q.Normal)
	if math.Abs(denominator) < 1e-12 {
		return nil, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	si := &material.SurfaceInteraction{
		T:     t,
		Point: hitPoint,
	}
	si.SetFaceNormal(ray, q.Normal)
	return si, true
}

// BoundingBox returns the bounds, padded on flat axes so the box has volume
func (q *Quad) BoundingBox() core.AABB {
	box := core.NewAABBFromPoints(q.Corner, q.Corner.Add(q.U), q.Corner.Add(q.V), q.Corner.Add(q.U).Add(q.V))
	const pad = 1e-4
	size := box.Size()
	if size.X < pad {
		box.Min.X -= pad
		box.Max.X += pad
	}
	if size.Y < pad {
		box.Min.Y -= pad
		box.Max.Y += pad
	}
	if size.Z < pad {
		box.Min.Z -= pad
		box.Max.Z += pad
	}
	return box
}

// Area returns the surface area
func (q *Quad) Area() float64 {
	return q.area
}

// Sample picks a point uniformly over the quad
func (q *Quad) Sample(u core.Vec2) ShapeSample {
	p := q.Corner.Add(q.U.Multiply(u.X)).Add(q.V.Multiply(u.Y))
	return ShapeSample{Point: p, Normal: q.Normal, Pdf: 1 / q.area}
}

// SampleFrom implements SampleableShape
func (q *Quad) SampleFrom(ref core.Vec3, u core.Vec2) (ShapeSample, bool) {
	if q.area == 0 {
		return ShapeSample{}, false
	}
	return sampleByArea(q, ref, u)
}

// PdfFrom implements SampleableShape
func (q *Quad) PdfFrom(ref, wi core.Vec3) float64 {
	if q.area == 0 {
		return 0
	}
	return pdfByArea(q, ref, wi)
}
