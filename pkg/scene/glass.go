package scene

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// NewGlassScene creates a caustics test: a glass sphere and a glass prism
// on a checkered floor under a spot light. Light only reaches the floor
// behind the glass through specular chains, which is where bidirectional
// sampling pays off.
func NewGlassScene() *Scene {
	width, height := 480, 360
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center: core.NewVec3(0, 3, 8),
		LookAt: core.NewVec3(0, 0.8, 0),
		Up:     core.NewVec3(0, 1, 0),
		Width:  width,
		Height: height,
		VFov:   35,
	})

	s := &Scene{
		Name:   "glass",
		Camera: camera,
		SamplingConfig: SamplingConfig{
			Width:           width,
			Height:          height,
			SamplesPerPixel: 64,
			MaxDepth:        10,
			RRDepth:         5,
			Integrator:      "bdpt",
		},
	}

	floor := material.NewTexturedLambertian(material.NewChecker(
		core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.2, 0.3, 0.5), 0.5,
	))
	s.Add(floor, geometry.NewQuad(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0)))

	glass := material.NewDielectric(1.5)
	s.Add(glass, geometry.NewSphere(core.NewVec3(-1.2, 1, 0), 1))

	// triangular prism standing on the floor
	h := 1.6
	vertices := []core.Vec3{
		core.NewVec3(0.6, 0, 0.6), core.NewVec3(2.2, 0, 0.6), core.NewVec3(1.4, 0, -0.8),
		core.NewVec3(0.6, h, 0.6), core.NewVec3(2.2, h, 0.6), core.NewVec3(1.4, h, -0.8),
	}
	indices := []int{
		0, 2, 1, // bottom
		3, 4, 5, // top
		0, 1, 4, 0, 4, 3,
		1, 2, 5, 1, 5, 4,
		2, 0, 3, 2, 3, 5,
	}
	if prism, err := geometry.NewTriangleMesh(vertices, indices, nil); err == nil {
		s.AddMesh(glass, prism)
	} else {
		logger.Warningf("glass scene: %v", err)
	}

	s.AddLight(lights.NewSpotLight(core.NewVec3(-2, 7, 3), core.NewVec3(0, 0, 0), core.NewVec3(120, 115, 100), 30, 5))
	// dim fill so the floor outside the cone is not pitch black
	s.AddAreaLight(
		geometry.NewQuad(core.NewVec3(-3, 6, -3), core.NewVec3(6, 0, 0), core.NewVec3(0, 0, 2)),
		core.NewVec3(1.5, 1.5, 1.8),
		false,
		nil,
	)

	return s
}
