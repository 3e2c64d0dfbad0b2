package material

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
	Tint            core.Vec3
}

// NewDielectric creates a new clear dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex, Tint: core.NewVec3(1, 1, 1)}
}

// ComputeBSDF implements the Material interface
func (d *Dielectric) ComputeBSDF(si *SurfaceInteraction, cache *arena.ThreadCache) BSDF {
	return arena.Make(cache, FresnelSpecularBSDF{
		Frame: core.NewFrameFromZ(si.Normal),
		Eta:   d.RefractiveIndex,
		R:     d.Tint,
		T:     d.Tint,
	})
}

// FresnelSpecularBSDF chooses between perfect reflection and refraction in
// proportion to the dielectric Fresnel reflectance. The outside of the
// surface is the +Z side of Frame.
type FresnelSpecularBSDF struct {
	Frame core.Frame
	Eta   float64
	R, T  core.Vec3
}

// F is zero for any explicitly chosen direction pair
func (b *FresnelSpecularBSDF) F(wi, wo core.Vec3) core.Vec3 {
	return core.Vec3{}
}

// Pdf is zero for any explicitly chosen direction pair
func (b *FresnelSpecularBSDF) Pdf(wi, wo core.Vec3) float64 {
	return 0
}

// SampleF picks reflection with probability Fr and transmission otherwise
func (b *FresnelSpecularBSDF) SampleF(wo core.Vec3, sampler core.Sampler, mode TransportMode) (BSDFSample, bool) {
	lo := b.Frame.ToLocal(wo)
	cosO := core.CosTheta(lo)
	if cosO == 0 {
		return BSDFSample{}, false
	}
	fr := FrDielectric(cosO, 1, b.Eta)

	if sampler.Get1D() < fr {
		li := core.NewVec3(-lo.X, -lo.Y, lo.Z)
		return BSDFSample{
			F:        b.R.Multiply(fr / core.AbsCosTheta(li)),
			Wi:       b.Frame.FromLocal(li),
			Pdf:      fr,
			Specular: true,
		}, true
	}

	etaI, etaT := 1.0, b.Eta
	n := core.NewVec3(0, 0, 1)
	if cosO < 0 {
		etaI, etaT = etaT, etaI
		n = n.Negate()
	}
	li, ok := Refract(lo, n, etaI/etaT)
	if !ok {
		return BSDFSample{}, false
	}
	ft := b.T.Multiply((1 - fr) / core.AbsCosTheta(li))
	if mode == Radiance {
		ft = ft.Multiply((etaI * etaI) / (etaT * etaT))
	}
	return BSDFSample{
		F:        ft,
		Wi:       b.Frame.FromLocal(li),
		Pdf:      1 - fr,
		Specular: true,
	}, true
}

// IsSpecular implements BSDF
func (b *FresnelSpecularBSDF) IsSpecular() bool {
	return true
}

// FrDielectric is the exact unpolarized Fresnel reflectance between media
// with indices etaI (the side of cosThetaI > 0) and etaT
func FrDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}

	sinThetaI := core.SafeSqrt(1 - cosThetaI*cosThetaI)
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1
	}
	cosThetaT := core.SafeSqrt(1 - sinThetaT*sinThetaT)

	rParl := ((etaT * cosThetaI) - (etaI * cosThetaT)) / ((etaT * cosThetaI) + (etaI * cosThetaT))
	rPerp := ((etaI * cosThetaI) - (etaT * cosThetaT)) / ((etaI * cosThetaI) + (etaT * cosThetaT))
	return (rParl*rParl + rPerp*rPerp) / 2
}

// Refract bends wi through a surface with normal n on wi's side. eta is
// etaI/etaT. It reports false on total internal reflection.
func Refract(wi, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	return wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosThetaI - cosThetaT)), true
}
