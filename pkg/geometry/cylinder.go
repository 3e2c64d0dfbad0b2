package geometry

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Cylinder represents a finite cylinder shape (open-ended, no caps)
type Cylinder struct {
	BaseCenter core.Vec3
	TopCenter  core.Vec3
	Radius     float64

	// Cached derived values
	axis   core.Vec3 // Unit vector from base to top
	height float64   // Distance between base and top
	frame  core.Frame
}

// NewCylinder creates a new cylinder
func NewCylinder(baseCenter, topCenter core.Vec3, radius float64) *Cylinder {
	axisVector := topCenter.Subtract(baseCenter)
	axis := axisVector.Normalize()
	return &Cylinder{
		BaseCenter: baseCenter,
		TopCenter:  topCenter,
		Radius:     radius,
		axis:       axis,
		height:     axisVector.Length(),
		frame:      core.NewFrameFromZ(axis),
	}
}

// BoundingBox returns the axis-aligned bounding box of the two rims
func (c *Cylinder) BoundingBox() core.AABB {
	extent := core.NewVec3(
		c.Radius*math.Sqrt(max(0, 1-c.axis.X*c.axis.X)),
		c.Radius*math.Sqrt(max(0, 1-c.axis.Y*c.axis.Y)),
		c.Radius*math.Sqrt(max(0, 1-c.axis.Z*c.axis.Z)),
	)
	return core.NewAABB(c.BaseCenter.Subtract(extent), c.BaseCenter.Add(extent)).
		Union(core.NewAABB(c.TopCenter.Subtract(extent), c.TopCenter.Add(extent))).
		Expand(1e-4)
}

// Hit tests if a ray intersects with the cylinder
func (c *Cylinder) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	for _, t := range c.roots(ray) {
		if !(t >= tMin && t <= tMax) { // also skips NaN
			continue
		}
		point := ray.At(t)
		h := point.Subtract(c.BaseCenter).Dot(c.axis)
		if h < 0 || h > c.height {
			continue
		}

		// Normal points radially outward from the axis
		axisPoint := c.BaseCenter.Add(c.axis.Multiply(h))
		si := &material.SurfaceInteraction{
			T:     t,
			Point: point,
		}
		si.SetFaceNormal(ray, point.Subtract(axisPoint).Normalize())
		return si, true
	}
	return nil, false
}

// roots returns the ray parameters where the ray meets the infinite
// cylinder, nearest first, or NaN when it does not
func (c *Cylinder) roots(ray core.Ray) [2]float64 {
	miss := [2]float64{math.NaN(), math.NaN()}
	delta := ray.Origin.Subtract(c.BaseCenter)
	dv := ray.Direction.Dot(c.axis)
	deltaV := delta.Dot(c.axis)

	// |(Δ + tD) - ((Δ + tD)·V)V|² = r²
	a := ray.Direction.LengthSquared() - dv*dv
	b := 2.0 * (delta.Dot(ray.Direction) - deltaV*dv)
	cc := delta.LengthSquared() - deltaV*deltaV - c.Radius*c.Radius

	if math.Abs(a) < 1e-12 {
		return miss // Ray is parallel to the axis
	}
	discriminant := b*b - 4*a*cc
	if discriminant < 0 {
		return miss
	}
	sqrtD := math.Sqrt(discriminant)
	return [2]float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)}
}

// Area returns the area of the side wall
func (c *Cylinder) Area() float64 {
	return 2 * math.Pi * c.Radius * c.height
}

// Sample picks a point uniformly on the side wall
func (c *Cylinder) Sample(u core.Vec2) ShapeSample {
	phi := 2 * math.Pi * u.Y
	n := c.frame.FromLocal(core.NewVec3(math.Cos(phi), math.Sin(phi), 0))
	p := c.BaseCenter.Add(c.axis.Multiply(u.X * c.height)).Add(n.Multiply(c.Radius))
	return ShapeSample{Point: p, Normal: n, Pdf: 1 / c.Area()}
}

// SampleFrom implements SampleableShape
func (c *Cylinder) SampleFrom(ref core.Vec3, u core.Vec2) (ShapeSample, bool) {
	if c.Area() <= 0 {
		return ShapeSample{}, false
	}
	return sampleByArea(c, ref, u)
}

// PdfFrom implements SampleableShape. Only the nearest wall point is
// visible from ref, so the density is taken there.
func (c *Cylinder) PdfFrom(ref, wi core.Vec3) float64 {
	if c.Area() <= 0 {
		return 0
	}
	return pdfByArea(c, ref, wi)
}
