package integrator

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

// PathIntegrator implements unidirectional path tracing with next event
// estimation. Light samples and BSDF samples that hit an emitter are
// combined with the power heuristic.
type PathIntegrator struct {
	MaxDepth int
	// RRDepth is the depth at which Russian roulette would start. Paths are
	// currently only terminated by MaxDepth.
	RRDepth int
}

// NewPathIntegrator creates a new path tracing integrator
func NewPathIntegrator(maxDepth, rrDepth int) *PathIntegrator {
	return &PathIntegrator{MaxDepth: maxDepth, RRDepth: rrDepth}
}

// Li implements Integrator
func (pt *PathIntegrator) Li(cr geometry.CameraRay, scene *scene.Scene, ctx *Context) core.Vec3 {
	var L core.Vec3
	beta := cr.Weight
	ray := cr.Ray

	specularBounce := false
	var prevPoint core.Vec3 // origin of ray
	var bsdfPdf float64     // solid angle density ray was sampled with

	for bounces := 0; ; bounces++ {
		si, hit := scene.Intersect(ray)
		if !hit {
			break
		}

		// Emission reached through a diffuse bounce was already partly
		// counted by next event estimation at the previous vertex.
		if le := si.Le(si.Wo); !le.IsBlack() {
			if bounces == 0 || specularBounce {
				L = L.Add(beta.MultiplyVec(le))
			} else if light := areaLight(si.Emitter); light != nil {
				lightPdf := scene.LightSampler.Pmf(light) * light.PdfLi(prevPoint, ray.Direction)
				w := core.PowerHeuristic(1, bsdfPdf, 1, lightPdf)
				L = L.Add(beta.MultiplyVec(le).Multiply(w))
			}
		}

		if bounces >= pt.MaxDepth {
			break
		}
		bsdf := si.BSDF(ctx.Arena)
		if bsdf == nil {
			break
		}

		if !bsdf.IsSpecular() {
			light, pmf := scene.LightSampler.Sample(ctx.Sampler.Get1D())
			u := ctx.Sampler.Get2D()
			if light != nil && pmf > 0 {
				ld := sampleLightContribution(scene, si, bsdf, light, pmf, u)
				L = L.Add(beta.MultiplyVec(ld))
			}
		}

		bs, ok := bsdf.SampleF(si.Wo, ctx.Sampler, material.Radiance)
		if !ok || bs.F.IsBlack() || bs.Pdf == 0 {
			break
		}
		beta = beta.MultiplyVec(bs.F).Multiply(bs.Wi.AbsDot(si.Normal) / bs.Pdf)
		specularBounce = bs.Specular
		bsdfPdf = bs.Pdf
		prevPoint = si.Point
		ray = si.SpawnRay(bs.Wi)
	}
	return L
}

// sampleLightContribution estimates direct lighting at si from one sample of
// light, which was chosen with probability pmf. The result is weighted
// against BSDF sampling of the same light unless the light is a delta light.
func sampleLightContribution(scene *scene.Scene, si *material.SurfaceInteraction, bsdf material.BSDF, light lights.Light, pmf float64, u core.Vec2) core.Vec3 {
	ls, ok := light.SampleLi(si.Point, u)
	if !ok || ls.Pdf == 0 || ls.L.IsBlack() {
		return core.Vec3{}
	}

	f := bsdf.F(ls.Wi, si.Wo).Multiply(ls.Wi.AbsDot(si.Normal))
	if f.IsBlack() || !scene.Unoccluded(si.Point, si.Normal, ls.Point, ls.Normal) {
		return core.Vec3{}
	}

	lightPdf := ls.Pdf * pmf
	if light.IsDelta() {
		return f.MultiplyVec(ls.L).Multiply(1 / lightPdf)
	}
	w := core.PowerHeuristic(1, lightPdf, 1, bsdf.Pdf(ls.Wi, si.Wo))
	return f.MultiplyVec(ls.L).Multiply(w / lightPdf)
}
