package lights

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// DiffuseAreaLight emits constant radiance from the surface of a shape.
// One-sided lights emit only on the side the outward normal points to.
type DiffuseAreaLight struct {
	Shape    geometry.SampleableShape
	Lemit    core.Vec3
	TwoSided bool
	area     float64
}

// NewDiffuseAreaLight attaches emission to shape
func NewDiffuseAreaLight(shape geometry.SampleableShape, lemit core.Vec3, twoSided bool) *DiffuseAreaLight {
	return &DiffuseAreaLight{Shape: shape, Lemit: lemit, TwoSided: twoSided, area: shape.Area()}
}

// Primitive binds the light and a material to the light's shape so the
// surface can be hit by rays. mat may be nil for a pure emitter.
func (al *DiffuseAreaLight) Primitive(mat material.Material) *geometry.GeometricPrimitive {
	return &geometry.GeometricPrimitive{Shape: al.Shape, Material: mat, Emitter: al}
}

func (al *DiffuseAreaLight) Type() LightType { return LightTypeArea }

func (al *DiffuseAreaLight) IsDelta() bool { return false }

// L implements material.Emitter
func (al *DiffuseAreaLight) L(point, normal, w core.Vec3) core.Vec3 {
	if !al.TwoSided && normal.Dot(w) <= 0 {
		return core.Vec3{}
	}
	return al.Lemit
}

// SampleLi implements the Light interface
func (al *DiffuseAreaLight) SampleLi(ref core.Vec3, u core.Vec2) (LightSample, bool) {
	ss, ok := al.Shape.SampleFrom(ref, u)
	if !ok || ss.Pdf == 0 {
		return LightSample{}, false
	}
	toLight := ss.Point.Subtract(ref)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{}, false
	}
	wi := toLight.Multiply(1 / distance)
	return LightSample{
		Point:    ss.Point,
		Normal:   ss.Normal,
		Wi:       wi,
		Distance: distance,
		L:        al.L(ss.Point, ss.Normal, wi.Negate()),
		Pdf:      ss.Pdf,
	}, true
}

// PdfLi implements the Light interface
func (al *DiffuseAreaLight) PdfLi(ref, wi core.Vec3) float64 {
	return al.Shape.PdfFrom(ref, wi)
}

// SampleLe picks a point uniformly by area and a cosine weighted direction
// on an emitting side
func (al *DiffuseAreaLight) SampleLe(uPos, uDir core.Vec2) (EmissionSample, bool) {
	ss := al.Shape.Sample(uPos)
	n := ss.Normal

	pdfDir := 1.0
	if al.TwoSided {
		// spend the first half of uDir.X on the front, the second on the back
		if uDir.X < 0.5 {
			uDir.X = math.Min(uDir.X*2, 1-1e-16)
		} else {
			uDir.X = math.Min((uDir.X-0.5)*2, 1-1e-16)
			n = n.Negate()
		}
		pdfDir = 0.5
	}

	local := core.SampleCosineHemisphereLocal(uDir)
	pdfDir *= core.CosineHemispherePdf(local.Z)
	if pdfDir == 0 {
		return EmissionSample{}, false
	}
	dir := core.NewFrameFromZ(n).FromLocal(local)

	return EmissionSample{
		Ray:    core.NewRay(ss.Point, dir),
		Normal: ss.Normal,
		L:      al.L(ss.Point, ss.Normal, dir),
		PdfPos: ss.Pdf,
		PdfDir: pdfDir,
	}, true
}

// PdfLe implements the Light interface
func (al *DiffuseAreaLight) PdfLe(point, n, dir core.Vec3) (float64, float64) {
	cos := n.Dot(dir)
	if al.TwoSided {
		return 1 / al.area, 0.5 * core.CosineHemispherePdf(math.Abs(cos))
	}
	if cos <= 0 {
		return 1 / al.area, 0
	}
	return 1 / al.area, core.CosineHemispherePdf(cos)
}

// Power implements the Light interface
func (al *DiffuseAreaLight) Power() core.Vec3 {
	p := al.Lemit.Multiply(math.Pi * al.area)
	if al.TwoSided {
		p = p.Multiply(2)
	}
	return p
}
