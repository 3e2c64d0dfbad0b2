package scene

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := core.Radians(h)

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(core.Clamp(r, 0, 1), core.Clamp(g, 0, 1), core.Clamp(blue, 0, 1))
}

// NewSphereGridScene creates a grid of diffuse and mirror spheres on a
// ground quad, lit by a spherical area light and a point light
func NewSphereGridScene() *Scene {
	width, height := 640, 360
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center:        core.NewVec3(4.5, 6, 18),
		LookAt:        core.NewVec3(4.5, 0.8, 4.5),
		Up:            core.NewVec3(0, 1, 0),
		Width:         width,
		Height:        height,
		VFov:          40.0,
		Aperture:      0.02,
		FocusDistance: 15,
	})

	s := &Scene{
		Name:          "sphere-grid",
		Camera:        camera,
		LightStrategy: "power",
		SamplingConfig: SamplingConfig{
			Width:           width,
			Height:          height,
			SamplesPerPixel: 32,
			MaxDepth:        8,
			RRDepth:         4,
		},
	}

	s.AddAreaLight(geometry.NewSphere(core.NewVec3(20, 25, 20), 8), core.NewVec3(12.0, 11.5, 10.0), false, nil)
	s.AddLight(lights.NewPointLight(core.NewVec3(4.5, 10, 12), core.NewVec3(40, 40, 40)))

	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.Add(ground, geometry.NewQuad(core.NewVec3(-50, 0, -50), core.NewVec3(0, 0, 100), core.NewVec3(100, 0, 0)))

	gridSize := 10
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := core.Clamp(spacing*0.35, 0.02, 0.35)

	baseLightness := 0.65
	minChroma, maxChroma := 0.05, 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5
			position := core.NewVec3(x, sphereRadius, z)

			// hue across X, chroma across Z
			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			var mat material.Material = material.NewLambertian(color)
			if (i+j)%3 == 0 {
				mat = material.NewMetal(color)
			}
			s.Add(mat, geometry.NewSphere(position, sphereRadius))
		}
	}

	return s
}
