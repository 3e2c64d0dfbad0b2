package scene

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// NewCornellScene creates a classic Cornell box scene with quad walls and area lighting
func NewCornellScene() *Scene {
	width, height := 400, 400
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center: core.NewVec3(278, 278, -800), // Position camera outside the box looking in
		LookAt: core.NewVec3(278, 278, 0),
		Up:     core.NewVec3(0, 1, 0),
		Width:  width,
		Height: height,
		VFov:   40.0,
	})

	s := &Scene{
		Name:          "cornell",
		Camera:        camera,
		LightStrategy: "power",
		SamplingConfig: SamplingConfig{
			Width:           width,
			Height:          height,
			SamplesPerPixel: 64,
			MaxDepth:        8,
			RRDepth:         4,
		},
	}

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	// standard 555x555x555 box
	boxSize := 555.0

	// Floor, ceiling and back wall
	s.Add(white,
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0)),
		geometry.NewQuad(core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize)),
		geometry.NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0)),
	)
	// Left wall (red) at x=boxSize as seen from the camera, right wall (green) at x=0
	s.Add(red, geometry.NewQuad(core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0)))
	s.Add(green, geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize)))

	// Ceiling light facing down, slightly below the ceiling
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	s.AddAreaLight(
		geometry.NewQuad(
			core.NewVec3(lightOffset, boxSize-1, lightOffset),
			core.NewVec3(lightSize, 0, 0),
			core.NewVec3(0, 0, lightSize),
		),
		core.NewVec3(15.0, 15.0, 15.0),
		false,
		nil,
	)

	// Tall box and short box
	s.Add(white,
		geometry.NewBox(core.NewVec3(368, 165, 351), core.NewVec3(82.5, 165, 82.5), core.NewVec3(0, core.Radians(15), 0)),
		geometry.NewBox(core.NewVec3(185, 82.5, 169), core.NewVec3(82.5, 82.5, 82.5), core.NewVec3(0, core.Radians(-18), 0)),
	)

	return s
}
