package geometry

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// MinHitDistance is the smallest ray parameter accepted as a hit
const MinHitDistance = 1e-7

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit returns the closest intersection with t in [tMin, tMax]. The
	// returned interaction carries no material or emitter.
	Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool)
	BoundingBox() core.AABB
}

// SampleableShape is a shape that area lights can be attached to
type SampleableShape interface {
	Shape
	Area() float64
	// Sample picks a point uniformly by area. Pdf is 1/Area.
	Sample(u core.Vec2) ShapeSample
	// SampleFrom picks a point as seen from ref. Pdf is per unit solid angle at ref.
	SampleFrom(ref core.Vec3, u core.Vec2) (ShapeSample, bool)
	// PdfFrom is the solid angle density of SampleFrom choosing direction wi
	PdfFrom(ref, wi core.Vec3) float64
}

// ShapeSample is a point on a shape's surface
type ShapeSample struct {
	Point  core.Vec3
	Normal core.Vec3 // Outward geometric normal
	Pdf    float64
}

// sampleByArea implements SampleFrom for shapes without a better strategy by
// converting the area density to solid angle at ref
func sampleByArea(s SampleableShape, ref core.Vec3, u core.Vec2) (ShapeSample, bool) {
	ss := s.Sample(u)
	wi := ss.Point.Subtract(ref)
	dist2 := wi.LengthSquared()
	if dist2 == 0 {
		return ShapeSample{}, false
	}
	wi = wi.Multiply(1 / math.Sqrt(dist2))
	cos := ss.Normal.AbsDot(wi)
	if cos == 0 {
		return ShapeSample{}, false
	}
	ss.Pdf *= dist2 / cos
	if math.IsInf(ss.Pdf, 0) {
		return ShapeSample{}, false
	}
	return ss, true
}

// pdfByArea is the density matching sampleByArea
func pdfByArea(s SampleableShape, ref, wi core.Vec3) float64 {
	si, ok := s.Hit(core.NewRay(ref, wi), MinHitDistance, math.Inf(1))
	if !ok {
		return 0
	}
	cos := si.Normal.AbsDot(wi)
	if cos == 0 {
		return 0
	}
	return core.DistanceSquared(ref, si.Point) / (cos * s.Area())
}
