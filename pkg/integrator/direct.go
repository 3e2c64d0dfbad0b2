package integrator

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

// LightStrategy selects how many lights the direct lighting integrator samples
type LightStrategy int

const (
	// SampleAllLights takes one sample from every light at each shading point
	SampleAllLights LightStrategy = iota
	// SampleOneLight takes a single sample from a light picked by the scene's light sampler
	SampleOneLight
)

// DirectLightingIntegrator accounts for light arriving straight from the
// emitters. Specular surfaces are followed recursively up to MaxDepth.
type DirectLightingIntegrator struct {
	MaxDepth int
	Strategy LightStrategy
}

// NewDirectLightingIntegrator creates a direct lighting integrator
func NewDirectLightingIntegrator(maxDepth int, strategy LightStrategy) *DirectLightingIntegrator {
	return &DirectLightingIntegrator{MaxDepth: maxDepth, Strategy: strategy}
}

// Li implements Integrator
func (d *DirectLightingIntegrator) Li(cr geometry.CameraRay, scene *scene.Scene, ctx *Context) core.Vec3 {
	return d.li(cr.Ray, scene, ctx, 0).MultiplyVec(cr.Weight)
}

func (d *DirectLightingIntegrator) li(ray core.Ray, scene *scene.Scene, ctx *Context, depth int) core.Vec3 {
	si, hit := scene.Intersect(ray)
	if !hit {
		return core.Vec3{}
	}

	L := si.Le(si.Wo)
	bsdf := si.BSDF(ctx.Arena)
	if bsdf == nil {
		return L
	}

	if bsdf.IsSpecular() {
		if depth+1 >= d.MaxDepth {
			return L
		}
		bs, ok := bsdf.SampleF(si.Wo, ctx.Sampler, material.Radiance)
		if !ok || bs.F.IsBlack() || bs.Pdf == 0 {
			return L
		}
		beta := bs.F.Multiply(bs.Wi.AbsDot(si.Normal) / bs.Pdf)
		return L.Add(beta.MultiplyVec(d.li(si.SpawnRay(bs.Wi), scene, ctx, depth+1)))
	}

	switch d.Strategy {
	case SampleOneLight:
		light, pmf := scene.LightSampler.Sample(ctx.Sampler.Get1D())
		uLight := ctx.Sampler.Get2D()
		if light != nil && pmf > 0 {
			L = L.Add(estimateDirect(scene, ctx, si, bsdf, light, uLight).Multiply(1 / pmf))
		}
	default:
		for _, light := range scene.Lights {
			L = L.Add(estimateDirect(scene, ctx, si, bsdf, light, ctx.Sampler.Get2D()))
		}
	}
	return L
}

// estimateDirect combines a light sample and a BSDF sample of one light with
// the power heuristic
func estimateDirect(scene *scene.Scene, ctx *Context, si *material.SurfaceInteraction, bsdf material.BSDF, light lights.Light, uLight core.Vec2) core.Vec3 {
	Ld := sampleLightContribution(scene, si, bsdf, light, 1, uLight)
	if light.IsDelta() {
		return Ld
	}

	bs, ok := bsdf.SampleF(si.Wo, ctx.Sampler, material.Radiance)
	if !ok || bs.F.IsBlack() || bs.Pdf == 0 {
		return Ld
	}

	w := 1.0
	if !bs.Specular {
		lightPdf := light.PdfLi(si.Point, bs.Wi)
		if lightPdf == 0 {
			return Ld
		}
		w = core.PowerHeuristic(1, bs.Pdf, 1, lightPdf)
	}

	hit, ok := scene.Intersect(si.SpawnRay(bs.Wi))
	if !ok || areaLight(hit.Emitter) != light {
		return Ld
	}
	f := bs.F.Multiply(bs.Wi.AbsDot(si.Normal) * w / bs.Pdf)
	return Ld.Add(f.MultiplyVec(hit.Le(hit.Wo)))
}
