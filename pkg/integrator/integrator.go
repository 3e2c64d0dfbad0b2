package integrator

import (
	"errors"
	"fmt"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

// ErrUnknownIntegrator is returned by New for names it does not recognize
var ErrUnknownIntegrator = errors.New("integrator: unknown integrator")

// SplatSink receives contributions that land on an arbitrary film position.
// Implementations must be safe for concurrent use.
type SplatSink interface {
	AddSplat(pFilm core.Vec2, L core.Vec3)
}

// Context is the per-worker state an integrator draws on while evaluating a
// camera ray. A Context must not be shared between goroutines.
type Context struct {
	Sampler core.Sampler
	Arena   *arena.ThreadCache // scratch memory for BSDFs, reset by the caller
	Splats  SplatSink          // may be nil when splats should be dropped

	paths *bdptPaths
}

// NewContext creates a context for one worker
func NewContext(sampler core.Sampler, cache *arena.ThreadCache, splats SplatSink) *Context {
	return &Context{Sampler: sampler, Arena: cache, Splats: splats}
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Li returns the radiance arriving at the camera along cr. Contributions
	// belonging to other pixels go to ctx.Splats.
	Li(cr geometry.CameraRay, scene *scene.Scene, ctx *Context) core.Vec3
}

// New returns the integrator registered under name
func New(name string, maxDepth, rrDepth int) (Integrator, error) {
	switch name {
	case "path":
		return NewPathIntegrator(maxDepth, rrDepth), nil
	case "bdpt":
		return NewBDPTIntegrator(maxDepth), nil
	case "direct":
		return NewDirectLightingIntegrator(maxDepth, SampleAllLights), nil
	case "direct-one":
		return NewDirectLightingIntegrator(maxDepth, SampleOneLight), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
}

// areaLight returns the light attached to a surface, if any
func areaLight(e any) lights.Light {
	if l, ok := e.(lights.Light); ok {
		return l
	}
	return nil
}
