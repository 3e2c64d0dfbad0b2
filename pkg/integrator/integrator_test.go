package integrator

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
	"github.com/df07/go-bdpt-renderer/pkg/sampler"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

const (
	planeAlbedo   = 0.5
	planeLightY   = 2.0
	planeCameraY  = 5.0
	planeFov      = 40.0
	planeRes      = 32
	planeLightPow = 4.0
)

// recordingSink collects splats for inspection
type recordingSink struct {
	positions []core.Vec2
	values    []core.Vec3
}

func (r *recordingSink) AddSplat(p core.Vec2, v core.Vec3) {
	r.positions = append(r.positions, p)
	r.values = append(r.values, v)
}

func testContext(seed uint64, splats SplatSink) *Context {
	return NewContext(sampler.NewRandomSampler(1, seed), arena.New(arena.DefaultBlockSize).Cache(0), splats)
}

func preprocess(t *testing.T, s *scene.Scene) *scene.Scene {
	t.Helper()
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	return s
}

// pointLitPlane is a diffuse floor under a point light, seen from straight above
func pointLitPlane(t *testing.T) *scene.Scene {
	s := &scene.Scene{
		Name: "point-lit plane",
		Camera: geometry.NewCamera(geometry.CameraConfig{
			Center: core.NewVec3(0, planeCameraY, 0),
			LookAt: core.NewVec3(0, 0, 0),
			Up:     core.NewVec3(0, 0, -1),
			Width:  planeRes,
			Height: planeRes,
			VFov:   planeFov,
		}),
	}
	s.Add(material.NewLambertian(core.NewVec3(planeAlbedo, planeAlbedo, planeAlbedo)),
		geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10)))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, planeLightY, 0), core.NewVec3(planeLightPow, planeLightPow, planeLightPow)))
	return preprocess(t, s)
}

// facingEmitter is a lone emitting quad in front of the camera
func facingEmitter(t *testing.T, le core.Vec3) *scene.Scene {
	s := &scene.Scene{
		Camera: geometry.NewCamera(geometry.CameraConfig{
			Center: core.NewVec3(0, 0, 5),
			LookAt: core.NewVec3(0, 0, 0),
			Up:     core.NewVec3(0, 1, 0),
			Width:  planeRes,
			Height: planeRes,
			VFov:   planeFov,
		}),
	}
	s.AddAreaLight(geometry.NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), le, false, nil)
	return preprocess(t, s)
}

func centerRay(t *testing.T, s *scene.Scene) geometry.CameraRay {
	t.Helper()
	w, h := s.Camera.Resolution()
	cr, ok := s.Camera.GenerateRay(core.NewVec2(float64(w)/2, float64(h)/2), core.NewVec2(0.5, 0.5))
	if !ok {
		t.Fatal("GenerateRay failed for the image center")
	}
	return cr
}

func approxEqual(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want any
	}{
		{"path", &PathIntegrator{}},
		{"bdpt", &BDPTIntegrator{}},
		{"direct", &DirectLightingIntegrator{}},
		{"direct-one", &DirectLightingIntegrator{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.name, 5, 3)
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.name, err)
			}
			switch tt.want.(type) {
			case *PathIntegrator:
				if pt, ok := got.(*PathIntegrator); !ok || pt.MaxDepth != 5 || pt.RRDepth != 3 {
					t.Errorf("New(%q) = %#v", tt.name, got)
				}
			case *BDPTIntegrator:
				if b, ok := got.(*BDPTIntegrator); !ok || b.MaxDepth != 5 {
					t.Errorf("New(%q) = %#v", tt.name, got)
				}
			case *DirectLightingIntegrator:
				if _, ok := got.(*DirectLightingIntegrator); !ok {
					t.Errorf("New(%q) = %#v", tt.name, got)
				}
			}
		})
	}

	if _, err := New("sppm", 5, 3); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("New(sppm) error = %v, want ErrUnknownIntegrator", err)
	}
}

func TestPointLitPlane_DirectRadiance(t *testing.T) {
	s := pointLitPlane(t)
	cr := centerRay(t, s)

	// Lambertian reflection of a point light straight overhead
	v := planeAlbedo / math.Pi * planeLightPow / (planeLightY * planeLightY)
	want := core.NewVec3(v, v, v)

	integrators := map[string]Integrator{
		"path":       NewPathIntegrator(5, 3),
		"direct":     NewDirectLightingIntegrator(5, SampleAllLights),
		"direct-one": NewDirectLightingIntegrator(5, SampleOneLight),
	}
	for name, in := range integrators {
		t.Run(name, func(t *testing.T) {
			for seed := uint64(0); seed < 8; seed++ {
				got := in.Li(cr, s, testContext(seed, nil))
				if !approxEqual(got, want, 1e-6) {
					t.Fatalf("seed %d: Li = %v, want %v", seed, got, want)
				}
			}
		})
	}
}

func TestPointLitPlane_BDPTWeightsNEE(t *testing.T) {
	s := pointLitPlane(t)
	cr := centerRay(t, s)

	// The only other strategy for light -> floor -> camera is the light
	// tracing one, which lands on the film as a splat. The local estimate is
	// next event estimation scaled by its balance heuristic weight.
	v := planeAlbedo / math.Pi * planeLightPow / (planeLightY * planeLightY)
	halfTan := math.Tan(core.Radians(planeFov) / 2)
	filmArea := 4 * halfTan * halfTan
	cameraPdf := 1 / filmArea / (planeCameraY * planeCameraY)
	lightPdf := core.UniformSpherePdf() / (planeLightY * planeLightY)
	w := 1 / (1 + lightPdf/cameraPdf)
	want := core.NewVec3(v*w, v*w, v*w)

	b := NewBDPTIntegrator(5)
	for seed := uint64(0); seed < 16; seed++ {
		got := b.Li(cr, s, testContext(seed, nil))
		if !approxEqual(got, want, 1e-6) {
			t.Fatalf("seed %d: Li = %v, want %v", seed, got, want)
		}
	}
}

func TestEmitterSeenDirectly(t *testing.T) {
	le := core.NewVec3(2, 3, 4)
	s := facingEmitter(t, le)
	cr := centerRay(t, s)

	integrators := map[string]Integrator{
		"path":   NewPathIntegrator(5, 3),
		"bdpt":   NewBDPTIntegrator(5),
		"direct": NewDirectLightingIntegrator(5, SampleAllLights),
	}
	for name, in := range integrators {
		t.Run(name, func(t *testing.T) {
			got := in.Li(cr, s, testContext(1, &recordingSink{}))
			if !approxEqual(got, le, 1e-9) {
				t.Errorf("Li = %v, want %v", got, le)
			}
		})
	}

	// the back of a one-sided emitter is dark
	back := &scene.Scene{Camera: geometry.NewCamera(geometry.CameraConfig{
		Center: core.NewVec3(0, 0, -5), LookAt: core.Vec3{}, Up: core.NewVec3(0, 1, 0),
		Width: planeRes, Height: planeRes, VFov: planeFov,
	})}
	back.AddAreaLight(geometry.NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), le, false, nil)
	preprocess(t, back)
	if got := NewPathIntegrator(5, 3).Li(centerRay(t, back), back, testContext(1, nil)); !got.IsBlack() {
		t.Errorf("back of emitter Li = %v, want black", got)
	}
}

func TestMirrorReflectsEmitter(t *testing.T) {
	le := core.NewVec3(1, 2, 3)
	s := &scene.Scene{
		Camera: geometry.NewCamera(geometry.CameraConfig{
			Center: core.NewVec3(0, 0, 5), LookAt: core.Vec3{}, Up: core.NewVec3(0, 1, 0),
			Width: planeRes, Height: planeRes, VFov: planeFov,
		}),
	}
	s.Add(material.NewMetal(core.NewVec3(1, 1, 1)),
		geometry.NewQuad(core.NewVec3(-2, -2, 0), core.NewVec3(4, 0, 0), core.NewVec3(0, 4, 0)))
	// behind the camera, facing the mirror
	s.AddAreaLight(geometry.NewQuad(core.NewVec3(-10, -10, 6), core.NewVec3(0, 20, 0), core.NewVec3(20, 0, 0)), le, false, nil)
	preprocess(t, s)
	cr := centerRay(t, s)

	integrators := map[string]Integrator{
		"path":   NewPathIntegrator(5, 3),
		"bdpt":   NewBDPTIntegrator(5),
		"direct": NewDirectLightingIntegrator(5, SampleAllLights),
	}
	for name, in := range integrators {
		t.Run(name, func(t *testing.T) {
			got := in.Li(cr, s, testContext(3, &recordingSink{}))
			if !approxEqual(got, le, 1e-6) {
				t.Errorf("Li = %v, want %v", got, le)
			}
		})
	}

	// one bounce is not enough to reach the emitter through the mirror
	if got := NewDirectLightingIntegrator(1, SampleAllLights).Li(cr, s, testContext(3, nil)); !got.IsBlack() {
		t.Errorf("direct with MaxDepth 1: Li = %v, want black", got)
	}
}

func TestPathIntegrator_MaxDepthZero(t *testing.T) {
	s := pointLitPlane(t)
	if got := NewPathIntegrator(0, 0).Li(centerRay(t, s), s, testContext(0, nil)); !got.IsBlack() {
		t.Errorf("Li = %v, want black: only emission is visible at depth 0", got)
	}
}
