package renderer

import (
	"runtime"

	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

// Config contains the settings of one render
type Config struct {
	TileSize        int     // Edge length of a square tile in pixels
	SamplesPerPixel int     // Samples taken for every pixel
	NumWorkers      int     // Number of parallel workers (0 = use CPU count)
	Integrator      string  // "path", "bdpt", "direct" or "direct-one"
	MaxDepth        int     // Maximum number of bounces
	RRDepth         int     // Depth at which Russian roulette may start
	Filter          string  // "box", "triangle" or "gaussian"
	FilterRadius    float64 // Filter support radius in pixels
	Sampler         string  // "stratified" or "random"
	Seed            uint64  // Seed of the master sampler
	BlockSize       int     // Arena block size in bytes (0 = arena default)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:        16,
		SamplesPerPixel: 16,
		NumWorkers:      0, // Auto-detect CPU count
		Integrator:      "bdpt",
		MaxDepth:        5,
		RRDepth:         3,
		Filter:          "box",
		FilterRadius:    0.5,
		Sampler:         "stratified",
	}
}

// WithScene overlays the non-zero sampling defaults a scene ships with
func (c Config) WithScene(s *scene.Scene) Config {
	sc := s.SamplingConfig
	if sc.SamplesPerPixel > 0 {
		c.SamplesPerPixel = sc.SamplesPerPixel
	}
	if sc.MaxDepth > 0 {
		c.MaxDepth = sc.MaxDepth
	}
	if sc.RRDepth > 0 {
		c.RRDepth = sc.RRDepth
	}
	if sc.Integrator != "" {
		c.Integrator = sc.Integrator
	}
	return c
}

func (c Config) workers() int {
	if c.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.NumWorkers
}

func (c Config) tileSize() int {
	if c.TileSize <= 0 {
		return DefaultConfig().TileSize
	}
	return c.TileSize
}
