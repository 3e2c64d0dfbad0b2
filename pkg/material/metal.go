package material

import (
	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// Metal represents a polished conductor. Reflection is a perfect mirror
// tinted by Schlick's Fresnel approximation with Albedo as normal-incidence
// reflectance.
type Metal struct {
	Albedo core.Vec3
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3) *Metal {
	return &Metal{Albedo: albedo.Clamp(0, 1)}
}

// ComputeBSDF implements the Material interface
func (m *Metal) ComputeBSDF(si *SurfaceInteraction, cache *arena.ThreadCache) BSDF {
	return arena.Make(cache, MirrorBSDF{
		Frame: core.NewFrameFromZ(si.Normal),
		R0:    m.Albedo,
	})
}

// MirrorBSDF is a delta reflection about the surface normal
type MirrorBSDF struct {
	Frame core.Frame
	R0    core.Vec3
}

// F is zero for any explicitly chosen direction pair
func (b *MirrorBSDF) F(wi, wo core.Vec3) core.Vec3 {
	return core.Vec3{}
}

// Pdf is zero for any explicitly chosen direction pair
func (b *MirrorBSDF) Pdf(wi, wo core.Vec3) float64 {
	return 0
}

// SampleF returns the mirror direction with probability one
func (b *MirrorBSDF) SampleF(wo core.Vec3, sampler core.Sampler, mode TransportMode) (BSDFSample, bool) {
	lo := b.Frame.ToLocal(wo)
	if lo.Z == 0 {
		return BSDFSample{}, false
	}
	li := core.NewVec3(-lo.X, -lo.Y, lo.Z)
	cos := core.AbsCosTheta(li)
	fr := SchlickFresnel(b.R0, cos)
	return BSDFSample{
		F:        fr.Multiply(1 / cos),
		Wi:       b.Frame.FromLocal(li),
		Pdf:      1,
		Specular: true,
	}, true
}

// IsSpecular implements BSDF
func (b *MirrorBSDF) IsSpecular() bool {
	return true
}

// SchlickFresnel approximates conductor reflectance per channel
func SchlickFresnel(r0 core.Vec3, cosTheta float64) core.Vec3 {
	m := 1 - core.Clamp(cosTheta, 0, 1)
	m5 := m * m * m * m * m
	one := core.NewVec3(1, 1, 1)
	return r0.Add(one.Subtract(r0).Multiply(m5))
}
