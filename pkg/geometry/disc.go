package geometry

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Disc represents a circular disc in 3D space
type Disc struct {
	Center core.Vec3 // Center of the disc
	Normal core.Vec3 // Normal vector, the emitting side for area lights
	Radius float64
	frame  core.Frame
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64) *Disc {
	n := normal.Normalize()
	return &Disc{
		Center: center,
		Normal: n,
		Radius: radius,
		frame:  core.NewFrameFromZ(n),
	}
}

// Hit implements the Shape interface
func (d *Disc) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return nil, false // Ray is parallel to disc
	}

	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	if hitPoint.Subtract(d.Center).LengthSquared() > d.Radius*d.Radius {
		return nil, false // Outside disc
	}

	si := &material.SurfaceInteraction{
		Point: hitPoint,
		T:     t,
	}
	si.SetFaceNormal(ray, d.Normal)
	return si, true
}

// BoundingBox implements the Shape interface. Along each axis the disc
// reaches radius*sqrt(1-n²) from its center.
func (d *Disc) BoundingBox() core.AABB {
	extent := core.NewVec3(
		d.Radius*math.Sqrt(max(0, 1-d.Normal.X*d.Normal.X)),
		d.Radius*math.Sqrt(max(0, 1-d.Normal.Y*d.Normal.Y)),
		d.Radius*math.Sqrt(max(0, 1-d.Normal.Z*d.Normal.Z)),
	)
	return core.NewAABB(d.Center.Subtract(extent), d.Center.Add(extent)).Expand(1e-4)
}

// Area returns the surface area
func (d *Disc) Area() float64 {
	return math.Pi * d.Radius * d.Radius
}

// Sample picks a point uniformly on the disc surface
func (d *Disc) Sample(u core.Vec2) ShapeSample {
	p := core.SampleConcentricDisk(u)
	local := core.NewVec3(p.X*d.Radius, p.Y*d.Radius, 0)
	return ShapeSample{
		Point:  d.Center.Add(d.frame.FromLocal(local)),
		Normal: d.Normal,
		Pdf:    1 / d.Area(),
	}
}

// SampleFrom implements SampleableShape
func (d *Disc) SampleFrom(ref core.Vec3, u core.Vec2) (ShapeSample, bool) {
	if d.Radius <= 0 {
		return ShapeSample{}, false
	}
	return sampleByArea(d, ref, u)
}

// PdfFrom implements SampleableShape
func (d *Disc) PdfFrom(ref, wi core.Vec3) float64 {
	if d.Radius <= 0 {
		return 0
	}
	return pdfByArea(d, ref, wi)
}
