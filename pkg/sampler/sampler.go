// Package sampler provides the per-pixel sample generators used by the
// renderer. Samplers are not safe for concurrent use; each worker clones
// its own.
package sampler

import (
	"fmt"
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// PixelSampler generates the sample values for one pixel at a time
type PixelSampler interface {
	core.Sampler

	// StartPixel prepares the samples for a pixel and resets the sample index
	StartPixel(x, y int)

	// StartNextSample moves on to the next sample of the current pixel. It
	// returns false once every sample of the pixel has been taken.
	StartNextSample() bool

	SamplesPerPixel() int

	// Clone returns an independent sampler drawing from the given stream of
	// the sampler's seed. Its values depend only on the seed and stream.
	Clone(stream uint64) PixelSampler
}

// New creates the sampler named by kind ("stratified" or "random")
func New(kind string, samplesPerPixel int, seed uint64) (PixelSampler, error) {
	if samplesPerPixel <= 0 {
		return nil, fmt.Errorf("sampler: samples per pixel must be positive, got %d", samplesPerPixel)
	}
	switch kind {
	case "random", "independent":
		return NewRandomSampler(samplesPerPixel, seed), nil
	case "stratified", "":
		x, y := StratifiedDims(samplesPerPixel)
		s := NewStratifiedSampler(x, y, DefaultStratifiedDimensions, true)
		s.seed = seed
		s.rng.Seed(seed)
		return s, nil
	}
	return nil, fmt.Errorf("sampler: unknown sampler %q", kind)
}

// RandomSampler returns independent uniform values
type RandomSampler struct {
	spp   int
	index int
	seed  uint64
	rng   *PCG32
}

// NewRandomSampler creates an independent sampler
func NewRandomSampler(samplesPerPixel int, seed uint64) *RandomSampler {
	return &RandomSampler{spp: samplesPerPixel, seed: seed, rng: NewPCG32(seed)}
}

func (s *RandomSampler) StartPixel(x, y int) { s.index = 0 }

func (s *RandomSampler) StartNextSample() bool {
	s.index++
	return s.index < s.spp
}

func (s *RandomSampler) SamplesPerPixel() int { return s.spp }

func (s *RandomSampler) Get1D() float64 { return s.rng.Float64() }

func (s *RandomSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.rng.Float64(), s.rng.Float64())
}

// Clone implements PixelSampler
func (s *RandomSampler) Clone(stream uint64) PixelSampler {
	c := NewRandomSampler(s.spp, s.seed)
	c.rng.SetSequence(stream, s.seed)
	return c
}

// DefaultStratifiedDimensions is the number of 1D and 2D dimensions that
// receive stratified values before falling back to uniform random ones
const DefaultStratifiedDimensions = 5

// StratifiedSampler splits each of its first dimensions into one stratum per
// sample and jitters inside the strata. Strata are shuffled independently per
// dimension so dimensions do not correlate.
type StratifiedSampler struct {
	xSamples, ySamples int
	jitter             bool
	samples1D          [][]float64
	samples2D          [][]core.Vec2
	dim1D, dim2D       int
	index              int
	seed               uint64
	rng                *PCG32
}

// NewStratifiedSampler creates a sampler taking xSamples*ySamples samples per
// pixel with dimensions stratified dimensions of each kind
func NewStratifiedSampler(xSamples, ySamples, dimensions int, jitter bool) *StratifiedSampler {
	n := xSamples * ySamples
	s := &StratifiedSampler{
		xSamples:  xSamples,
		ySamples:  ySamples,
		jitter:    jitter,
		samples1D: make([][]float64, dimensions),
		samples2D: make([][]core.Vec2, dimensions),
		rng:       NewPCG32(0),
	}
	for i := 0; i < dimensions; i++ {
		s.samples1D[i] = make([]float64, n)
		s.samples2D[i] = make([]core.Vec2, n)
	}
	return s
}

// StratifiedDims factors spp into the most square x*y grid
func StratifiedDims(spp int) (int, int) {
	x := int(math.Sqrt(float64(spp)))
	for x > 1 && spp%x != 0 {
		x--
	}
	return spp / x, x
}

func (s *StratifiedSampler) SamplesPerPixel() int { return s.xSamples * s.ySamples }

// StartPixel implements PixelSampler
func (s *StratifiedSampler) StartPixel(x, y int) {
	n := s.SamplesPerPixel()
	for i := range s.samples1D {
		stratified1D(s.samples1D[i], s.rng, s.jitter)
		shuffle(s.samples1D[i], s.rng)
	}
	for i := range s.samples2D {
		stratified2D(s.samples2D[i], s.rng, s.xSamples, s.ySamples, s.jitter)
		shuffle(s.samples2D[i][:n], s.rng)
	}
	s.index = 0
	s.dim1D, s.dim2D = 0, 0
}

// StartNextSample implements PixelSampler
func (s *StratifiedSampler) StartNextSample() bool {
	s.index++
	s.dim1D, s.dim2D = 0, 0
	return s.index < s.SamplesPerPixel()
}

func (s *StratifiedSampler) Get1D() float64 {
	if s.dim1D < len(s.samples1D) && s.index < s.SamplesPerPixel() {
		v := s.samples1D[s.dim1D][s.index]
		s.dim1D++
		return v
	}
	return s.rng.Float64()
}

func (s *StratifiedSampler) Get2D() core.Vec2 {
	if s.dim2D < len(s.samples2D) && s.index < s.SamplesPerPixel() {
		v := s.samples2D[s.dim2D][s.index]
		s.dim2D++
		return v
	}
	return core.NewVec2(s.rng.Float64(), s.rng.Float64())
}

// Clone implements PixelSampler
func (s *StratifiedSampler) Clone(stream uint64) PixelSampler {
	c := NewStratifiedSampler(s.xSamples, s.ySamples, len(s.samples1D), s.jitter)
	c.seed = s.seed
	c.rng.SetSequence(stream, s.seed)
	return c
}

func stratified1D(data []float64, rng *PCG32, jitter bool) {
	inv := 1 / float64(len(data))
	for i := range data {
		delta := 0.5
		if jitter {
			delta = rng.Float64()
		}
		data[i] = math.Min((float64(i)+delta)*inv, OneMinusEpsilon)
	}
}

func stratified2D(data []core.Vec2, rng *PCG32, nx, ny int, jitter bool) {
	dx, dy := 1/float64(nx), 1/float64(ny)
	i := 0
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			jx, jy := 0.5, 0.5
			if jitter {
				jx, jy = rng.Float64(), rng.Float64()
			}
			data[i] = core.NewVec2(
				math.Min((float64(x)+jx)*dx, OneMinusEpsilon),
				math.Min((float64(y)+jy)*dy, OneMinusEpsilon),
			)
			i++
		}
	}
}

// shuffle is a Fisher-Yates shuffle driven by rng
func shuffle[T any](data []T, rng *PCG32) {
	for i := range data {
		j := i + int(rng.Uint32n(uint32(len(data)-i)))
		data[i], data[j] = data[j], data[i]
	}
}
