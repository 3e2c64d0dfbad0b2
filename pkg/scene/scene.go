package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/log"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

var logger = log.New("scene")

var (
	ErrNoCamera      = errors.New("scene: no camera")
	ErrNoLights      = errors.New("scene: no lights")
	ErrBadResolution = errors.New("scene: image resolution must be positive")
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         geometry.Camera
	Primitives     []geometry.Primitive // Objects in the scene, area light surfaces included
	Lights         []lights.Light       // Lights in the scene
	LightSampler   lights.LightSampler  // Built by Preprocess when nil
	LightStrategy  string               // "uniform" or "power"
	SamplingConfig SamplingConfig
	BVH            *geometry.BVH // Acceleration structure for ray-object intersection
}

// SamplingConfig contains the rendering defaults a scene ships with
type SamplingConfig struct {
	Width           int    // Image width
	Height          int    // Image height
	SamplesPerPixel int    // Number of samples per pixel
	MaxDepth        int    // Maximum path depth
	RRDepth         int    // Depth at which Russian roulette may start
	Integrator      string // Preferred integrator, empty for the renderer default
}

// Add appends shapes sharing one material
func (s *Scene) Add(mat material.Material, shapes ...geometry.Shape) {
	for _, shape := range shapes {
		if box, ok := shape.(*geometry.Box); ok {
			for _, face := range box.Faces() {
				s.Primitives = append(s.Primitives, geometry.NewPrimitive(face, mat))
			}
			continue
		}
		s.Primitives = append(s.Primitives, geometry.NewPrimitive(shape, mat))
	}
}

// AddMesh adds every triangle of mesh as its own primitive
func (s *Scene) AddMesh(mat material.Material, mesh *geometry.TriangleMesh) {
	for _, tri := range mesh.Triangles() {
		s.Primitives = append(s.Primitives, geometry.NewPrimitive(tri, mat))
	}
}

// AddAreaLight turns shape into an emitter. mat is the material of the
// emitting surface, nil for a pure emitter.
func (s *Scene) AddAreaLight(shape geometry.SampleableShape, emission core.Vec3, twoSided bool, mat material.Material) *lights.DiffuseAreaLight {
	light := lights.NewDiffuseAreaLight(shape, emission, twoSided)
	s.Lights = append(s.Lights, light)
	s.Primitives = append(s.Primitives, light.Primitive(mat))
	return light
}

// AddLight adds a light that has no surface, such as a point or spot light
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
}

// Preprocess validates the scene and builds the BVH and the light sampler
func (s *Scene) Preprocess() error {
	if s.Camera == nil {
		return ErrNoCamera
	}
	if len(s.Lights) == 0 {
		return ErrNoLights
	}
	if w, h := s.Camera.Resolution(); w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadResolution, w, h)
	}

	s.BVH = geometry.NewBVH(s.Primitives, geometry.DefaultMaxLeafSize)
	if s.LightSampler == nil {
		s.LightSampler = lights.NewLightSampler(s.LightStrategy, s.Lights)
	}

	logger.Infof("scene %q: %d primitives, %d lights", s.Name, len(s.Primitives), len(s.Lights))
	return nil
}

// Intersect returns the closest hit along ray
func (s *Scene) Intersect(ray core.Ray) (*material.SurfaceInteraction, bool) {
	return s.BVH.Intersect(ray, math.Inf(1))
}

// Unoccluded reports whether the segment between two points is free of
// geometry. n0 and n1 are the surface normals used to offset the endpoints;
// a zero normal marks a point that does not lie on a surface.
func (s *Scene) Unoccluded(p0, n0, p1, n1 core.Vec3) bool {
	d := p1.Subtract(p0)
	origin := p0
	if !n0.IsZero() {
		origin = material.OffsetOrigin(p0, n0, d)
	}
	target := p1
	if !n1.IsZero() {
		target = material.OffsetOrigin(p1, n1, d.Negate())
	}

	toTarget := target.Subtract(origin)
	dist := toTarget.Length()
	if dist == 0 {
		return true
	}
	ray := core.NewRay(origin, toTarget.Multiply(1/dist))
	return !s.BVH.IntersectP(ray, dist*(1-core.ShadowEpsilon))
}

// PrimitiveCount returns the number of primitives the BVH is built over
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}
