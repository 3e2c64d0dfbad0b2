package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

func testCamera(aperture float64) *PerspectiveCamera {
	return NewCamera(CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         200,
		Height:        100,
		VFov:          90,
		Aperture:      aperture,
		FocusDistance: 3,
	})
}

func TestCamera_CenterRay(t *testing.T) {
	camera := testCamera(0)
	cr, ok := camera.GenerateRay(core.NewVec2(100, 50), core.NewVec2(0.5, 0.5))
	if !ok {
		t.Fatal("Expected center ray to be generated")
	}
	if cr.Ray.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("Expected forward direction, got %v", cr.Ray.Direction)
	}
	// film rectangle at unit distance is 4 x 2
	if math.Abs(cr.PdfDir-1.0/8) > 1e-12 {
		t.Errorf("Expected center pdfDir 1/8, got %f", cr.PdfDir)
	}
	if cr.PdfPos != 1 {
		t.Errorf("Expected pinhole pdfPos 1, got %f", cr.PdfPos)
	}
	we, _ := camera.We(cr.Ray)
	if math.Abs(we.X-1.0/8) > 1e-12 {
		t.Errorf("Expected center importance 1/8, got %f", we.X)
	}
}

func TestCamera_RasterOrientation(t *testing.T) {
	camera := testCamera(0)
	tests := []struct {
		name  string
		pFilm core.Vec2
		check func(d core.Vec3) bool
	}{
		{"top left", core.NewVec2(1, 1), func(d core.Vec3) bool { return d.X < 0 && d.Y > 0 }},
		{"top right", core.NewVec2(199, 1), func(d core.Vec3) bool { return d.X > 0 && d.Y > 0 }},
		{"bottom left", core.NewVec2(1, 99), func(d core.Vec3) bool { return d.X < 0 && d.Y < 0 }},
		{"bottom right", core.NewVec2(199, 99), func(d core.Vec3) bool { return d.X > 0 && d.Y < 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr, ok := camera.GenerateRay(tt.pFilm, core.Vec2{})
			if !ok {
				t.Fatal("Expected ray")
			}
			if !tt.check(cr.Ray.Direction) {
				t.Errorf("Unexpected direction %v", cr.Ray.Direction)
			}
		})
	}
}

func TestCamera_RasterRoundTrip(t *testing.T) {
	for _, aperture := range []float64{0, 0.5} {
		camera := testCamera(aperture)
		for _, pFilm := range []core.Vec2{
			core.NewVec2(30.25, 70.5),
			core.NewVec2(0.5, 0.5),
			core.NewVec2(199.5, 99.5),
			core.NewVec2(123.4, 12.3),
		} {
			for _, uLens := range []core.Vec2{core.NewVec2(0.5, 0.5), core.NewVec2(0.1, 0.9), core.NewVec2(0.8, 0.3)} {
				cr, ok := camera.GenerateRay(pFilm, uLens)
				if !ok {
					t.Fatalf("aperture=%f: no ray for %v", aperture, pFilm)
				}
				we, pRaster := camera.We(cr.Ray)
				if we.IsBlack() {
					t.Errorf("aperture=%f: zero importance for %v", aperture, pFilm)
				}
				if math.Abs(pRaster.X-pFilm.X) > 1e-8 || math.Abs(pRaster.Y-pFilm.Y) > 1e-8 {
					t.Errorf("aperture=%f: raster %v mapped back to %v", aperture, pFilm, pRaster)
				}

				pdfPos, pdfDir := camera.PdfWe(cr.Ray)
				if math.Abs(pdfPos-cr.PdfPos) > 1e-12 || math.Abs(pdfDir-cr.PdfDir) > 1e-9*cr.PdfDir {
					t.Errorf("aperture=%f: PdfWe (%f, %f) differs from GenerateRay (%f, %f)",
						aperture, pdfPos, pdfDir, cr.PdfPos, cr.PdfDir)
				}
			}
		}
	}
}

func TestCamera_ThinLensPdf(t *testing.T) {
	camera := testCamera(0.5)
	cr, _ := camera.GenerateRay(core.NewVec2(100, 50), core.NewVec2(0.5, 0.5))
	expected := 1 / (math.Pi * 0.25 * 0.25)
	if math.Abs(cr.PdfPos-expected) > 1e-9 {
		t.Errorf("Expected pdfPos %f, got %f", expected, cr.PdfPos)
	}
}

func TestCamera_SampleWi(t *testing.T) {
	camera := testCamera(0)

	ref := core.NewVec3(0.5, 0.25, -2)
	s, ok := camera.SampleWi(ref, core.NewVec2(0.5, 0.5))
	if !ok {
		t.Fatal("Expected visible point to connect")
	}
	if math.Abs(s.PRaster.X-112.5) > 1e-9 || math.Abs(s.PRaster.Y-43.75) > 1e-9 {
		t.Errorf("Expected raster (112.5, 43.75), got %v", s.PRaster)
	}
	dist := ref.Length()
	expectedPdf := dist * dist / (2 / dist)
	if math.Abs(s.Pdf-expectedPdf) > 1e-9 {
		t.Errorf("Expected pdf %f, got %f", expectedPdf, s.Pdf)
	}
	if s.Wi.Subtract(ref.Negate().Normalize()).Length() > 1e-12 {
		t.Errorf("Expected wi towards the camera, got %v", s.Wi)
	}
	if s.LensPoint != (core.Vec3{}) {
		t.Errorf("Expected pinhole lens point at origin, got %v", s.LensPoint)
	}

	if _, ok := camera.SampleWi(core.NewVec3(0, 0, 2), core.NewVec2(0.5, 0.5)); ok {
		t.Error("Expected point behind the camera to fail")
	}
	if _, ok := camera.SampleWi(core.NewVec3(10, 0, -1), core.NewVec2(0.5, 0.5)); ok {
		t.Error("Expected point outside the field of view to fail")
	}
}

func TestCamera_Resolution(t *testing.T) {
	w, h := testCamera(0).Resolution()
	if w != 200 || h != 100 {
		t.Errorf("Expected 200x100, got %dx%d", w, h)
	}
}
