package scene

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// SpherePointLightPosition is where NewSpherePointScene places its light
var SpherePointLightPosition = core.NewVec3(0, 5, 0)

// NewSpherePointScene creates a unit diffuse sphere at the origin lit by a
// single point light above it, seen from (0,0,5) looking down -z. Nothing
// else is in the scene, so every pixel off the sphere stays black.
func NewSpherePointScene() *Scene {
	width, height := 64, 64
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center: core.NewVec3(0, 0, 5),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 1, 0),
		Width:  width,
		Height: height,
		VFov:   30,
	})

	s := &Scene{
		Name:   "sphere-point",
		Camera: camera,
		SamplingConfig: SamplingConfig{
			Width:           width,
			Height:          height,
			SamplesPerPixel: 16,
			MaxDepth:        5,
			RRDepth:         3,
		},
	}

	s.Add(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8)), geometry.NewSphere(core.Vec3{}, 1))
	s.AddLight(lights.NewPointLight(SpherePointLightPosition, core.NewVec3(50, 50, 50)))
	return s
}
