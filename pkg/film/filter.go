package film

import (
	"fmt"
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// Filter is a pixel reconstruction kernel centred at the origin
type Filter interface {
	// Radius is the half-width of the support along x and y
	Radius() core.Vec2
	Evaluate(p core.Vec2) float64
	Integral() float64
}

// MaxFilterRadius keeps a filter footprint within maxFootprint pixels
const MaxFilterRadius = (maxFootprint - 1) / 2.0

// NewFilter creates the filter named by kind ("box", "triangle" or "gaussian")
func NewFilter(kind string, radius float64) (Filter, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("film: filter radius must be positive, got %g", radius)
	}
	if radius > MaxFilterRadius {
		return nil, fmt.Errorf("film: filter radius %g exceeds %g", radius, MaxFilterRadius)
	}
	r := core.NewVec2(radius, radius)
	switch kind {
	case "box", "":
		return NewBoxFilter(r), nil
	case "triangle":
		return NewTriangleFilter(r), nil
	case "gaussian":
		return NewGaussianFilter(r, 0.5), nil
	}
	return nil, fmt.Errorf("film: unknown filter %q", kind)
}

// BoxFilter weights every sample inside its support equally
type BoxFilter struct {
	radius core.Vec2
}

func NewBoxFilter(radius core.Vec2) *BoxFilter { return &BoxFilter{radius: radius} }

func (f *BoxFilter) Radius() core.Vec2 { return f.radius }

func (f *BoxFilter) Evaluate(p core.Vec2) float64 {
	if math.Abs(p.X) <= f.radius.X && math.Abs(p.Y) <= f.radius.Y {
		return 1
	}
	return 0
}

func (f *BoxFilter) Integral() float64 { return 4 * f.radius.X * f.radius.Y }

// TriangleFilter falls off linearly from the centre to the edge of its support
type TriangleFilter struct {
	radius core.Vec2
}

func NewTriangleFilter(radius core.Vec2) *TriangleFilter { return &TriangleFilter{radius: radius} }

func (f *TriangleFilter) Radius() core.Vec2 { return f.radius }

func (f *TriangleFilter) Evaluate(p core.Vec2) float64 {
	return max(0, f.radius.X-math.Abs(p.X)) * max(0, f.radius.Y-math.Abs(p.Y))
}

func (f *TriangleFilter) Integral() float64 {
	return f.radius.X * f.radius.X * f.radius.Y * f.radius.Y
}

// GaussianFilter is a gaussian shifted down so it reaches zero at the radius
type GaussianFilter struct {
	radius     core.Vec2
	sigma      float64
	expX, expY float64
}

func NewGaussianFilter(radius core.Vec2, sigma float64) *GaussianFilter {
	return &GaussianFilter{
		radius: radius,
		sigma:  sigma,
		expX:   gaussian(radius.X, sigma),
		expY:   gaussian(radius.Y, sigma),
	}
}

func (f *GaussianFilter) Radius() core.Vec2 { return f.radius }

func (f *GaussianFilter) Evaluate(p core.Vec2) float64 {
	return max(0, gaussian(p.X, f.sigma)-f.expX) * max(0, gaussian(p.Y, f.sigma)-f.expY)
}

func (f *GaussianFilter) Integral() float64 {
	ix := gaussianIntegral(-f.radius.X, f.radius.X, f.sigma) - 2*f.radius.X*f.expX
	iy := gaussianIntegral(-f.radius.Y, f.radius.Y, f.sigma) - 2*f.radius.Y*f.expY
	return ix * iy
}

func gaussian(x, sigma float64) float64 {
	return 1 / math.Sqrt(2*math.Pi*sigma*sigma) * math.Exp(-x*x/(2*sigma*sigma))
}

func gaussianIntegral(x0, x1, sigma float64) float64 {
	s := sigma * math.Sqrt2
	return 0.5 * (math.Erf(-x0/s) - math.Erf(-x1/s))
}
