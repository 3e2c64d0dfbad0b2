package material

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base reflectance (solid or procedural)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a lambertian material driven by a color source
func NewTexturedLambertian(albedo ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// ComputeBSDF implements the Material interface
func (l *Lambertian) ComputeBSDF(si *SurfaceInteraction, cache *arena.ThreadCache) BSDF {
	r := l.Albedo.Evaluate(si.Point)
	if r.IsBlack() {
		return nil
	}
	return arena.Make(cache, LambertianBSDF{
		Frame: core.NewFrameFromZ(si.Normal),
		R:     r,
	})
}

// LambertianBSDF scatters uniformly over the hemisphere on the side of wo.
// It reflects on both sides of the surface.
type LambertianBSDF struct {
	Frame core.Frame
	R     core.Vec3
}

// F returns R/π when wi and wo are on the same side of the surface
func (b *LambertianBSDF) F(wi, wo core.Vec3) core.Vec3 {
	if !core.SameHemisphere(b.Frame.ToLocal(wi), b.Frame.ToLocal(wo)) {
		return core.Vec3{}
	}
	return b.R.Multiply(1.0 / math.Pi)
}

// Pdf is the cosine-weighted hemisphere density
func (b *LambertianBSDF) Pdf(wi, wo core.Vec3) float64 {
	li := b.Frame.ToLocal(wi)
	if !core.SameHemisphere(li, b.Frame.ToLocal(wo)) {
		return 0
	}
	return core.CosineHemispherePdf(core.AbsCosTheta(li))
}

// SampleF draws a cosine-weighted direction on wo's side
func (b *LambertianBSDF) SampleF(wo core.Vec3, sampler core.Sampler, mode TransportMode) (BSDFSample, bool) {
	lo := b.Frame.ToLocal(wo)
	if lo.Z == 0 {
		return BSDFSample{}, false
	}
	li := core.SampleCosineHemisphereLocal(sampler.Get2D())
	if lo.Z < 0 {
		li.Z = -li.Z
	}
	pdf := core.CosineHemispherePdf(core.AbsCosTheta(li))
	if pdf == 0 {
		return BSDFSample{}, false
	}
	return BSDFSample{
		F:   b.R.Multiply(1.0 / math.Pi),
		Wi:  b.Frame.FromLocal(li),
		Pdf: pdf,
	}, true
}

// IsSpecular implements BSDF
func (b *LambertianBSDF) IsSpecular() bool {
	return false
}
