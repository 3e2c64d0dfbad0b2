package material

import (
	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// TransportMode says whether a path carries radiance from lights or
// importance from the camera. Refraction scales the two differently.
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

// Material produces the BSDF bound to a surface point
type Material interface {
	// ComputeBSDF returns nil for surfaces that absorb everything
	ComputeBSDF(si *SurfaceInteraction, cache *arena.ThreadCache) BSDF
}

// Emitter is implemented by lights that are attached to surfaces
type Emitter interface {
	// L returns radiance leaving the surface point along w
	L(point, normal, w core.Vec3) core.Vec3
}

// BSDF is a scattering function bound to one surface point. All directions
// are world space unit vectors pointing away from the surface.
type BSDF interface {
	F(wi, wo core.Vec3) core.Vec3
	Pdf(wi, wo core.Vec3) float64
	SampleF(wo core.Vec3, sampler core.Sampler, mode TransportMode) (BSDFSample, bool)
	// IsSpecular is true when every component is a delta distribution
	IsSpecular() bool
}

// BSDFSample is the result of importance sampling a BSDF
type BSDFSample struct {
	F        core.Vec3 // BSDF value for the sampled pair
	Wi       core.Vec3 // Sampled incident direction
	Pdf      float64   // Solid angle density, or the discrete probability for specular events
	Specular bool      // Sampled from a delta component
}

// SurfaceInteraction contains information about a ray-surface intersection
type SurfaceInteraction struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Outward geometric normal
	Wo        core.Vec3 // Direction back along the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the ray arrived from the outward side
	Material  Material  // Material of the hit object, nil for pure emitters
	Emitter   Emitter   // Area light attached to the surface, if any
}

// SetFaceNormal records the outward normal and which side the ray came from
func (si *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	si.Normal = outwardNormal
	si.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	si.Wo = ray.Direction.Negate().Normalize()
}

// BSDF returns the scattering function at the hit point
func (si *SurfaceInteraction) BSDF(cache *arena.ThreadCache) BSDF {
	if si.Material == nil {
		return nil
	}
	return si.Material.ComputeBSDF(si, cache)
}

// Le returns radiance emitted from the hit point along w
func (si *SurfaceInteraction) Le(w core.Vec3) core.Vec3 {
	if si.Emitter == nil {
		return core.Vec3{}
	}
	return si.Emitter.L(si.Point, si.Normal, w)
}

// SpawnRay starts a ray at the hit point offset along the normal to avoid
// re-intersecting the surface
func (si *SurfaceInteraction) SpawnRay(dir core.Vec3) core.Ray {
	return core.NewRay(OffsetOrigin(si.Point, si.Normal, dir), dir)
}

// OffsetOrigin moves p off the surface onto the side that dir leaves towards
func OffsetOrigin(p, n, dir core.Vec3) core.Vec3 {
	offset := n.Multiply(core.ShadowEpsilon)
	if dir.Dot(n) < 0 {
		offset = offset.Negate()
	}
	return p.Add(offset)
}
