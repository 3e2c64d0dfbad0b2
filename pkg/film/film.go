// Package film accumulates filtered radiance samples into an image.
//
// Samples are first added to private tiles that are later merged into the
// film under a lock. Splats from light tracing connections go straight to
// the film with atomic adds.
package film

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// filterTableWidth is the resolution of the precomputed filter table along each axis
const filterTableWidth = 16

type pixel struct {
	rgb       core.Vec3
	weightSum float64
	splat     [3]atomic.Uint64 // float64 bits
}

// Film is the shared image accumulator
type Film struct {
	width, height int
	filter        Filter
	filterTable   [filterTableWidth * filterTableWidth]float64

	mu     sync.Mutex // guards rgb and weightSum of every pixel
	pixels []pixel
}

// NewFilm creates a film of the given resolution
func NewFilm(width, height int, filter Filter) *Film {
	f := &Film{
		width:  width,
		height: height,
		filter: filter,
		pixels: make([]pixel, width*height),
	}
	r := filter.Radius()
	for y := 0; y < filterTableWidth; y++ {
		for x := 0; x < filterTableWidth; x++ {
			p := core.NewVec2(
				(float64(x)+0.5)*r.X/filterTableWidth,
				(float64(y)+0.5)*r.Y/filterTableWidth,
			)
			f.filterTable[y*filterTableWidth+x] = filter.Evaluate(p)
		}
	}
	return f
}

// Bounds returns the pixel bounds of the image
func (f *Film) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

func (f *Film) Filter() Filter { return f.filter }

// GetTile returns a private accumulation buffer for samples taken inside
// sampleBounds. The buffer covers every pixel those samples can reach
// through the filter, so neighbouring tiles overlap.
func (f *Film) GetTile(sampleBounds image.Rectangle) *Tile {
	r := f.filter.Radius()
	x0 := int(math.Ceil(float64(sampleBounds.Min.X) - 0.5 - r.X))
	y0 := int(math.Ceil(float64(sampleBounds.Min.Y) - 0.5 - r.Y))
	x1 := int(math.Floor(float64(sampleBounds.Max.X)-0.5+r.X)) + 1
	y1 := int(math.Floor(float64(sampleBounds.Max.Y)-0.5+r.Y)) + 1
	bounds := image.Rect(x0, y0, x1, y1).Intersect(f.Bounds())

	return &Tile{
		bounds:       bounds,
		pixels:       make([]tilePixel, bounds.Dx()*bounds.Dy()),
		filterRadius: r,
		invRadius:    core.NewVec2(1/r.X, 1/r.Y),
		filterTable:  &f.filterTable,
	}
}

// MergeTile adds a tile's accumulated values into the film
func (f *Film) MergeTile(t *Tile) {
	f.mu.Lock()
	defer f.mu.Unlock()

	width := t.bounds.Dx()
	for y := t.bounds.Min.Y; y < t.bounds.Max.Y; y++ {
		for x := t.bounds.Min.X; x < t.bounds.Max.X; x++ {
			tp := &t.pixels[(y-t.bounds.Min.Y)*width+(x-t.bounds.Min.X)]
			p := &f.pixels[y*f.width+x]
			p.rgb = p.rgb.Add(tp.L)
			p.weightSum += tp.weightSum
		}
	}
}

// AddSplat adds v to the pixel containing p. Safe for concurrent use.
func (f *Film) AddSplat(p core.Vec2, v core.Vec3) {
	x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	px := &f.pixels[y*f.width+x]
	atomicAdd(&px.splat[0], v.X)
	atomicAdd(&px.splat[1], v.Y)
	atomicAdd(&px.splat[2], v.Z)
}

func atomicAdd(bits *atomic.Uint64, v float64) {
	for {
		old := bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + v)
		if bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// PixelValue is the raw accumulated state of one pixel
type PixelValue struct {
	RGB       core.Vec3
	WeightSum float64
	Splat     core.Vec3
}

// Pixel returns the raw state of pixel (x, y)
func (f *Film) Pixel(x, y int) PixelValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &f.pixels[y*f.width+x]
	return PixelValue{
		RGB:       p.rgb,
		WeightSum: p.weightSum,
		Splat:     loadSplat(p),
	}
}

func loadSplat(p *pixel) core.Vec3 {
	return core.NewVec3(
		math.Float64frombits(p.splat[0].Load()),
		math.Float64frombits(p.splat[1].Load()),
		math.Float64frombits(p.splat[2].Load()),
	)
}

// Resolve returns the final radiance of every pixel in row-major order:
// the filtered estimate divided by its weight, plus splats scaled by
// splatScale. Pixels without weight keep only their splats.
func (f *Film) Resolve(splatScale float64) []core.Vec3 {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]core.Vec3, len(f.pixels))
	for i := range f.pixels {
		p := &f.pixels[i]
		var rgb core.Vec3
		if p.weightSum != 0 {
			rgb = p.rgb.Multiply(1 / p.weightSum)
		}
		out[i] = rgb.Add(loadSplat(p).Multiply(splatScale))
	}
	return out
}

// Image resolves the film and converts it to 8-bit sRGB-ish output with gamma 2
func (f *Film) Image(splatScale float64) *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for i, c := range f.Resolve(splatScale) {
		img.SetRGBA(i%f.width, i/f.width, toRGBA(c))
	}
	return img
}

// WritePNG encodes the resolved image as PNG
func (f *Film) WritePNG(w io.Writer, splatScale float64) error {
	return png.Encode(w, f.Image(splatScale))
}

func toRGBA(c core.Vec3) color.RGBA {
	c = c.GammaCorrect(2.0).Clamp(0.0, 1.0)
	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}
