package material

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns the color at a world space point
	Evaluate(point core.Vec3) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of position
func (s *SolidColor) Evaluate(point core.Vec3) core.Vec3 {
	return s.Color
}

// Checker alternates two colors on a 3D lattice of cubes with side Size
type Checker struct {
	Even, Odd core.Vec3
	Size      float64
}

// NewChecker creates a solid checker pattern
func NewChecker(even, odd core.Vec3, size float64) *Checker {
	return &Checker{Even: even, Odd: odd, Size: size}
}

// Evaluate picks the color of the cube containing point
func (c *Checker) Evaluate(point core.Vec3) core.Vec3 {
	ix := int(math.Floor(point.X / c.Size))
	iy := int(math.Floor(point.Y / c.Size))
	iz := int(math.Floor(point.Z / c.Size))
	if (ix+iy+iz)&1 == 0 {
		return c.Even
	}
	return c.Odd
}
