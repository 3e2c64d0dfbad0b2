// Package renderer drives an integrator over the image in parallel tiles.
//
// The image is split into square tiles that are handed to a fixed pool of
// workers. Each worker owns an arena cache that is reset before every tile,
// and each tile clones the master sampler onto a stream derived from its grid
// position. The image depends on the configured seed but not on how tiles
// are scheduled.
package renderer

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/film"
	"github.com/df07/go-bdpt-renderer/pkg/integrator"
	"github.com/df07/go-bdpt-renderer/pkg/log"
	"github.com/df07/go-bdpt-renderer/pkg/sampler"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

var logger = log.New("renderer")

var (
	ErrNoIntegrator       = errors.New("renderer: no integrator")
	ErrNoSampler          = errors.New("renderer: no sampler")
	ErrNoFilm             = errors.New("renderer: no film")
	ErrNotPreprocessed    = errors.New("renderer: scene has not been preprocessed")
	ErrResolutionMismatch = errors.New("renderer: film and camera resolutions differ")
)

// Renderer renders one scene into one film
type Renderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	film       *film.Film
	sampler    sampler.PixelSampler
	allocator  *arena.Allocator
	config     Config
	splats     *splatCounter
}

// NewRenderer wires the collaborators of a render. A nil allocator gets a
// private one with the configured block size.
func NewRenderer(s *scene.Scene, integ integrator.Integrator, f *film.Film, samp sampler.PixelSampler, alloc *arena.Allocator, config Config) *Renderer {
	if alloc == nil {
		alloc = arena.New(config.BlockSize)
	}
	return &Renderer{
		scene:      s,
		integrator: integ,
		film:       f,
		sampler:    samp,
		allocator:  alloc,
		config:     config,
		splats:     &splatCounter{film: f},
	}
}

// New builds the film, sampler, integrator and allocator described by
// config for a preprocessed scene
func New(s *scene.Scene, config Config) (*Renderer, error) {
	if s.Camera == nil {
		return nil, scene.ErrNoCamera
	}
	width, height := s.Camera.Resolution()

	filter, err := film.NewFilter(config.Filter, config.FilterRadius)
	if err != nil {
		return nil, err
	}
	samp, err := sampler.New(config.Sampler, config.SamplesPerPixel, config.Seed)
	if err != nil {
		return nil, err
	}
	integ, err := integrator.New(config.Integrator, config.MaxDepth, config.RRDepth)
	if err != nil {
		return nil, err
	}
	if samp.SamplesPerPixel() != config.SamplesPerPixel {
		logger.Warningf("using %d samples per pixel instead of %d", samp.SamplesPerPixel(), config.SamplesPerPixel)
	}

	return NewRenderer(s, integ, film.NewFilm(width, height, filter), samp, arena.New(config.BlockSize), config), nil
}

// Film returns the film the renderer accumulates into
func (r *Renderer) Film() *film.Film {
	return r.film
}

// SplatScale is the factor applied to splatted contributions when the film
// is resolved. Every pixel sample can splat anywhere on the film, so splats
// are averaged over the samples per pixel.
func (r *Renderer) SplatScale() float64 {
	return 1 / float64(r.sampler.SamplesPerPixel())
}

// WritePNG resolves the film and encodes it as PNG
func (r *Renderer) WritePNG(w io.Writer) error {
	return r.film.WritePNG(w, r.SplatScale())
}

func (r *Renderer) validate() error {
	switch {
	case r.integrator == nil:
		return ErrNoIntegrator
	case r.sampler == nil:
		return ErrNoSampler
	case r.film == nil:
		return ErrNoFilm
	case r.scene == nil || r.scene.BVH == nil || r.scene.LightSampler == nil:
		return ErrNotPreprocessed
	}

	w, h := r.scene.Camera.Resolution()
	if b := r.film.Bounds(); b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: film %dx%d, camera %dx%d", ErrResolutionMismatch, b.Dx(), b.Dy(), w, h)
	}
	return nil
}

// Render runs every tile of the image to completion and returns the render
// statistics. Samples accumulate into the film, so a second call adds to
// the first one's estimate.
func (r *Renderer) Render() (RenderStats, error) {
	if err := r.validate(); err != nil {
		return RenderStats{}, err
	}

	bounds := r.film.Bounds()
	tiles := NewTileGrid(bounds.Dx(), bounds.Dy(), r.config.tileSize())
	numWorkers := max(1, min(r.config.workers(), len(tiles)))
	pool := NewWorkerPool(r, numWorkers, len(tiles))

	logger.Infof("rendering %q at %dx%d: %d tiles, %d spp, %d workers",
		r.scene.Name, bounds.Dx(), bounds.Dy(), len(tiles), r.sampler.SamplesPerPixel(), numWorkers)

	stats := RenderStats{
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		SamplesPerPixel: r.sampler.SamplesPerPixel(),
	}
	splatsBefore := r.splats.count.Load()
	start := time.Now()

	pool.Start()
	for _, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile})
	}
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.addTile(result.Stats)
		logger.Debugf("tile %d finished on worker %d", result.TileID, result.Worker)
	}
	pool.Stop()

	stats.Duration = time.Since(start)
	stats.Workers = pool.WorkerStats()
	stats.Splats = r.splats.count.Load() - splatsBefore
	stats.Arena = r.allocator.Stats()
	stats.AverageLuminance = AverageLuminance(r.film.Resolve(r.SplatScale()))

	logger.Infof("rendered %d samples in %v (%d non-finite, %d splats)",
		stats.TotalSamples, stats.Duration, stats.NonFinite, stats.Splats)
	return stats, nil
}

// renderTile samples every pixel of tile on worker w and merges the result
// into the film
func (r *Renderer) renderTile(w *Worker, tile *Tile) TileStats {
	// Nothing allocated for the previous tile is reachable any more.
	w.cache.Reset()

	samp := r.sampler.Clone(tile.Stream())
	w.ctx.Sampler = samp
	camera := r.scene.Camera
	filmTile := r.film.GetTile(tile.Bounds)

	stats := TileStats{Pixels: tile.Bounds.Dx() * tile.Bounds.Dy()}
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			samp.StartPixel(x, y)
			for sampleIndex := 0; ; sampleIndex++ {
				pFilm := core.NewVec2(float64(x), float64(y)).Add(samp.Get2D())
				uLens := samp.Get2D()

				var L core.Vec3
				if cr, ok := camera.GenerateRay(pFilm, uLens); ok {
					L = r.integrator.Li(cr, r.scene, w.ctx)
				}
				if !L.IsFinite() {
					logger.Warningf("non-finite radiance returned for pixel (%d, %d), sample %d; setting to black", x, y, sampleIndex)
					L = core.Vec3{}
					stats.NonFinite++
				}
				filmTile.AddSample(pFilm, L)
				stats.Samples++

				if !samp.StartNextSample() {
					break
				}
			}
		}
	}

	r.film.MergeTile(filmTile)
	return stats
}

// splatCounter forwards splats to the film and counts them
type splatCounter struct {
	film  *film.Film
	count atomic.Int64
}

func (s *splatCounter) AddSplat(pFilm core.Vec2, L core.Vec3) {
	s.count.Add(1)
	s.film.AddSplat(pFilm, L)
}
