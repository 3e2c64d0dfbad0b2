package lights

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// SpotLight is a point light restricted to a cone with a smooth falloff
// towards its edge
type SpotLight struct {
	Position        core.Vec3
	Intensity       core.Vec3
	frame           core.Frame // Z is the cone axis
	cosTotalWidth   float64    // Cosine of the outer cone angle
	cosFalloffStart float64    // Cosine of the angle where falloff begins
}

// NewSpotLight creates a spot light at from aimed at to. coneAngle is the
// total half-angle of the cone and coneDelta the width of the falloff band,
// both in degrees.
func NewSpotLight(from, to, intensity core.Vec3, coneAngle, coneDelta float64) *SpotLight {
	return &SpotLight{
		Position:        from,
		Intensity:       intensity,
		frame:           core.NewFrameFromZ(to.Subtract(from).Normalize()),
		cosTotalWidth:   math.Cos(core.Radians(coneAngle)),
		cosFalloffStart: math.Cos(core.Radians(coneAngle - coneDelta)),
	}
}

func (sl *SpotLight) Type() LightType { return LightTypeSpot }

func (sl *SpotLight) IsDelta() bool { return true }

// Falloff returns the intensity scale for world direction w leaving the light
func (sl *SpotLight) Falloff(w core.Vec3) float64 {
	cosTheta := sl.frame.ToLocal(w).Z
	if cosTheta < sl.cosTotalWidth {
		return 0
	}
	if cosTheta >= sl.cosFalloffStart {
		return 1
	}
	delta := (cosTheta - sl.cosTotalWidth) / (sl.cosFalloffStart - sl.cosTotalWidth)
	return (delta * delta) * (delta * delta)
}

// SampleLi implements the Light interface
func (sl *SpotLight) SampleLi(ref core.Vec3, u core.Vec2) (LightSample, bool) {
	return sampleDeltaLi(sl.Position, ref, sl.Falloff, sl.Intensity)
}

func (sl *SpotLight) PdfLi(ref, wi core.Vec3) float64 { return 0 }

// SampleLe emits a ray uniformly inside the cone
func (sl *SpotLight) SampleLe(uPos, uDir core.Vec2) (EmissionSample, bool) {
	dir := sl.frame.FromLocal(core.SampleConeLocal(sl.cosTotalWidth, uDir))
	return EmissionSample{
		Ray:    core.NewRay(sl.Position, dir),
		Normal: dir,
		L:      sl.Intensity.Multiply(sl.Falloff(dir)),
		PdfPos: 1,
		PdfDir: core.UniformConePdf(sl.cosTotalWidth),
	}, true
}

// PdfLe implements the Light interface
func (sl *SpotLight) PdfLe(point, n, dir core.Vec3) (float64, float64) {
	if sl.frame.ToLocal(dir).Z < sl.cosTotalWidth {
		return 0, 0
	}
	return 0, core.UniformConePdf(sl.cosTotalWidth)
}

// Power implements the Light interface
func (sl *SpotLight) Power() core.Vec3 {
	return sl.Intensity.Multiply(2 * math.Pi * (1 - 0.5*(sl.cosFalloffStart+sl.cosTotalWidth)))
}
