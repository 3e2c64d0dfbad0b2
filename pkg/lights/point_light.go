package lights

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// PointLight emits intensity uniformly in all directions from a single point
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // Power per unit solid angle
}

// NewPointLight creates a point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() LightType { return LightTypePoint }

func (pl *PointLight) IsDelta() bool { return true }

// SampleLi implements the Light interface
func (pl *PointLight) SampleLi(ref core.Vec3, u core.Vec2) (LightSample, bool) {
	return sampleDeltaLi(pl.Position, ref, func(core.Vec3) float64 { return 1 }, pl.Intensity)
}

// PdfLi is always 0: no direction sampled by a BSDF can reach a point
func (pl *PointLight) PdfLi(ref, wi core.Vec3) float64 { return 0 }

// SampleLe emits a ray in a uniformly sampled direction
func (pl *PointLight) SampleLe(uPos, uDir core.Vec2) (EmissionSample, bool) {
	dir := core.SampleOnUnitSphere(uDir)
	return EmissionSample{
		Ray:    core.NewRay(pl.Position, dir),
		Normal: dir,
		L:      pl.Intensity,
		PdfPos: 1,
		PdfDir: core.UniformSpherePdf(),
	}, true
}

// PdfLe implements the Light interface
func (pl *PointLight) PdfLe(point, n, dir core.Vec3) (float64, float64) {
	return 0, core.UniformSpherePdf()
}

// Power implements the Light interface
func (pl *PointLight) Power() core.Vec3 {
	return pl.Intensity.Multiply(4 * math.Pi)
}

// sampleDeltaLi connects ref to a light located at a single point.
// falloff scales the intensity by the direction leaving the light.
func sampleDeltaLi(position, ref core.Vec3, falloff func(w core.Vec3) float64, intensity core.Vec3) (LightSample, bool) {
	toLight := position.Subtract(ref)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return LightSample{}, false
	}
	distance := math.Sqrt(dist2)
	wi := toLight.Multiply(1 / distance)

	scale := falloff(wi.Negate())
	if scale == 0 {
		return LightSample{}, false
	}
	return LightSample{
		Point:    position,
		Wi:       wi,
		Distance: distance,
		L:        intensity.Multiply(scale / dist2),
		Pdf:      1,
	}, true
}
