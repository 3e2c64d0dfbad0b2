package lights

import "github.com/df07/go-bdpt-renderer/pkg/core"

type LightType string

const (
	LightTypeArea  LightType = "area"
	LightTypePoint LightType = "point"
	LightTypeSpot  LightType = "spot"
)

// Light is a source of emitted radiance that can be sampled from a shading
// point (next event estimation) or from the light itself (light sub-paths)
type Light interface {
	Type() LightType

	// IsDelta reports whether the light is a point in space that directional
	// sampling can never hit
	IsDelta() bool

	// SampleLi picks a point on the light as seen from ref. The returned
	// direction points FROM ref TO the light.
	SampleLi(ref core.Vec3, u core.Vec2) (LightSample, bool)

	// PdfLi is the solid angle density of SampleLi choosing direction wi
	// from ref. Always 0 for delta lights.
	PdfLi(ref, wi core.Vec3) float64

	// SampleLe samples a ray leaving the light
	SampleLe(uPos, uDir core.Vec2) (EmissionSample, bool)

	// PdfLe returns the densities SampleLe would have used to produce a ray
	// leaving point (with surface normal n) along dir
	PdfLe(point, n, dir core.Vec3) (pdfPos, pdfDir float64)

	// Power is the total emitted flux, used to weight light selection
	Power() core.Vec3
}

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point    core.Vec3 // Point on the light source
	Normal   core.Vec3 // Normal at the light sample point, zero for point lights
	Wi       core.Vec3 // Unit direction from the shading point to the light
	Distance float64   // Distance to light
	L        core.Vec3 // Radiance arriving at the shading point
	Pdf      float64   // Solid angle density, 1 for delta lights
}

// EmissionSample is a ray leaving a light
type EmissionSample struct {
	Ray    core.Ray
	Normal core.Vec3 // Surface normal at the origin, the ray direction for point lights
	L      core.Vec3 // Emitted radiance (or intensity for delta lights) along the ray
	PdfPos float64   // Area density of the origin
	PdfDir float64   // Solid angle density of the direction
}

// LightSampler picks one light out of the scene's lights
type LightSampler interface {
	// Sample selects a light with u in [0,1) and returns it with its probability
	Sample(u float64) (Light, float64)

	// Pmf returns the probability of selecting light
	Pmf(light Light) float64

	Lights() []Light
}
