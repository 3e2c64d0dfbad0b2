package core

import "math"

// Sampler provides sample values in [0, 1) to the rendering algorithms.
// Implementations decide how consecutive dimensions are distributed.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// SampleCosineHemisphereLocal returns a cosine-weighted direction around +Z
func SampleCosineHemisphereLocal(sample Vec2) Vec3 {
	d := SampleConcentricDisk(sample)
	z := SafeSqrt(1 - d.X*d.X - d.Y*d.Y)
	return NewVec3(d.X, d.Y, z)
}

// CosineHemispherePdf is the solid angle density of SampleCosineHemisphereLocal
func CosineHemispherePdf(cosTheta float64) float64 {
	return cosTheta / math.Pi
}

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	return NewFrameFromZ(normal).FromLocal(SampleCosineHemisphereLocal(sample))
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := SafeSqrt(1.0 - z*z)
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformSpherePdf is the solid angle density of SampleOnUnitSphere
func UniformSpherePdf() float64 {
	return 1.0 / (4.0 * math.Pi)
}

// SampleConeLocal samples a direction uniformly within a cone around +Z
func SampleConeLocal(cosTotalWidth float64, sample Vec2) Vec3 {
	cosTheta := (1.0 - sample.X) + sample.X*cosTotalWidth
	sinTheta := SafeSqrt(1.0 - cosTheta*cosTheta)
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// SampleCone samples a direction uniformly within a cone around direction
func SampleCone(direction Vec3, cosTotalWidth float64, sample Vec2) Vec3 {
	return NewFrameFromZ(direction).FromLocal(SampleConeLocal(cosTotalWidth, sample))
}

// UniformConePdf calculates the PDF for uniform sampling within a cone
func UniformConePdf(cosTotalWidth float64) float64 {
	return 1.0 / (2.0 * math.Pi * (1.0 - cosTotalWidth))
}

// SampleConcentricDisk maps the unit square onto the unit disk with Shirley's concentric mapping
func SampleConcentricDisk(sample Vec2) Vec2 {
	ox := 2*sample.X - 1
	oy := 2*sample.Y - 1
	if ox == 0 && oy == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*(ox/oy)
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SampleTriangle returns uniformly distributed barycentric coordinates (b0, b1)
func SampleTriangle(sample Vec2) (float64, float64) {
	su0 := math.Sqrt(sample.X)
	return 1 - su0, sample.Y * su0
}

// PowerHeuristic computes the power heuristic (beta = 2) MIS weight for strategy f
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	if math.IsInf(f*f, 1) {
		return 1
	}
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic computes the balance heuristic MIS weight for strategy f
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f+g == 0 {
		return 0
	}
	return f / (f + g)
}
