package geometry

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{
		Center: center,
		Radius: radius,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	si := &material.SurfaceInteraction{
		T:     root,
		Point: ray.At(root),
	}
	outwardNormal := si.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	si.SetFaceNormal(ray, outwardNormal)
	return si, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

// Area returns the surface area
func (s *Sphere) Area() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// Sample picks a point uniformly on the whole sphere
func (s *Sphere) Sample(u core.Vec2) ShapeSample {
	n := core.SampleOnUnitSphere(u)
	return ShapeSample{
		Point:  s.Center.Add(n.Multiply(s.Radius)),
		Normal: n,
		Pdf:    1 / s.Area(),
	}
}

// SampleFrom samples the cone of directions subtended by the sphere when ref
// is outside it, and falls back to area sampling otherwise
func (s *Sphere) SampleFrom(ref core.Vec3, u core.Vec2) (ShapeSample, bool) {
	dc2 := core.DistanceSquared(ref, s.Center)
	r2 := s.Radius * s.Radius
	if dc2 <= r2 {
		return sampleByArea(s, ref, u)
	}

	dc := math.Sqrt(dc2)
	sinThetaMax2 := r2 / dc2
	cosThetaMax := core.SafeSqrt(1 - sinThetaMax2)
	frame := core.NewFrameFromZ(s.Center.Subtract(ref).Multiply(1 / dc))

	// the cone direction is intersected analytically to avoid a ray cast
	local := core.SampleConeLocal(cosThetaMax, u)
	cosTheta := local.Z
	sinTheta2 := 1 - cosTheta*cosTheta
	ds := dc*cosTheta - core.SafeSqrt(r2-dc2*sinTheta2)
	cosAlpha := (dc2 + r2 - ds*ds) / (2 * dc * s.Radius)
	sinAlpha := core.SafeSqrt(1 - cosAlpha*cosAlpha)

	sinTheta := math.Sqrt(math.Max(0, sinTheta2))
	phiDir := core.NewVec3(local.X, local.Y, 0)
	if sinTheta > 0 {
		phiDir = phiDir.Multiply(1 / sinTheta)
	} else {
		phiDir = core.NewVec3(1, 0, 0)
	}
	// normal in the cone frame points back towards ref, tilted by alpha
	nLocal := core.NewVec3(phiDir.X*sinAlpha, phiDir.Y*sinAlpha, -cosAlpha)
	n := frame.FromLocal(nLocal)

	return ShapeSample{
		Point:  s.Center.Add(n.Multiply(s.Radius)),
		Normal: n,
		Pdf:    core.UniformConePdf(cosThetaMax),
	}, true
}

// PdfFrom returns the solid angle density of SampleFrom
func (s *Sphere) PdfFrom(ref, wi core.Vec3) float64 {
	dc2 := core.DistanceSquared(ref, s.Center)
	r2 := s.Radius * s.Radius
	if dc2 <= r2 {
		return pdfByArea(s, ref, wi)
	}
	if _, ok := s.Hit(core.NewRay(ref, wi), MinHitDistance, math.Inf(1)); !ok {
		return 0
	}
	cosThetaMax := core.SafeSqrt(1 - r2/dc2)
	return core.UniformConePdf(cosThetaMax)
}
