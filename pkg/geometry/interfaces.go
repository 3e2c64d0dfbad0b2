package geometry

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Primitive is what the BVH stores: a shape bound to its surface properties
type Primitive interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool)
	BoundingBox() core.AABB
}

// GeometricPrimitive attaches a material and an optional area light to a shape
type GeometricPrimitive struct {
	Shape    Shape
	Material material.Material
	Emitter  material.Emitter
}

// NewPrimitive creates a primitive without emission
func NewPrimitive(shape Shape, mat material.Material) *GeometricPrimitive {
	return &GeometricPrimitive{Shape: shape, Material: mat}
}

// Hit intersects the shape and fills in the surface properties
func (p *GeometricPrimitive) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	si, ok := p.Shape.Hit(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	si.Material = p.Material
	si.Emitter = p.Emitter
	return si, true
}

// BoundingBox returns the bounds of the underlying shape
func (p *GeometricPrimitive) BoundingBox() core.AABB {
	return p.Shape.BoundingBox()
}
