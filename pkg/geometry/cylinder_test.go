package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

func TestCylinder_Hit(t *testing.T) {
	// Unit radius cylinder along +Y from y=0 to y=2
	cyl := NewCylinder(core.NewVec3(0, 0, 0), core.NewVec3(0, 2, 0), 1.0)

	tests := []struct {
		name          string
		ray           core.Ray
		tMax          float64
		expectHit     bool
		expectedT     float64
		expectedFront bool
	}{
		{"hit side", core.NewRay(core.NewVec3(-3, 1, 0), core.NewVec3(1, 0, 0)), 100, true, 2, true},
		{"hit from inside", core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)), 100, true, 1, false},
		{"both walls beyond tMax", core.NewRay(core.NewVec3(-3, 1, 0), core.NewVec3(1, 0, 0)), 1, false, 0, false},
		{"miss beside", core.NewRay(core.NewVec3(-3, 1, 2), core.NewVec3(1, 0, 0)), 100, false, 0, false},
		{"miss above", core.NewRay(core.NewVec3(-3, 2.5, 0), core.NewVec3(1, 0, 0)), 100, false, 0, false},
		{"parallel to axis", core.NewRay(core.NewVec3(0.5, -1, 0), core.NewVec3(0, 1, 0)), 100, false, 0, false},
		// open ends: starts above the top and meets the inside of the wall
		{"through open top", core.NewRay(core.NewVec3(0, 2.5, 0), core.NewVec3(1, -1, 0).Normalize()), 100, true, math.Sqrt2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si, ok := cyl.Hit(tt.ray, 0.001, tt.tMax)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %v", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if math.Abs(si.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, si.T)
			}
			if si.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %v, got %v", tt.expectedFront, si.FrontFace)
			}
			radial := core.NewVec3(si.Point.X, 0, si.Point.Z)
			if si.Normal.Subtract(radial).Length() > 1e-9 {
				t.Errorf("Expected radial outward normal %v, got %v", radial, si.Normal)
			}
		})
	}
}

func TestCylinder_ArbitraryOrientation(t *testing.T) {
	cyl := NewCylinder(core.NewVec3(0, 0, 0), core.NewVec3(2, 2, 0), 0.5)
	if h := 2 * math.Sqrt2; math.Abs(cyl.Area()-2*math.Pi*0.5*h) > 1e-12 {
		t.Errorf("Expected area %f, got %f", 2*math.Pi*0.5*h, cyl.Area())
	}

	// a ray along -Z through the middle of the axis
	si, ok := cyl.Hit(core.NewRay(core.NewVec3(1, 1, 5), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !ok || math.Abs(si.T-4.5) > 1e-9 {
		t.Fatalf("Expected hit at t=4.5, got %+v (ok=%v)", si, ok)
	}

	bounds := cyl.BoundingBox()
	for i := 0; i < 32; i++ {
		ss := cyl.Sample(core.NewVec2(float64(i)/31, math.Mod(float64(i)*0.618, 1)))
		p := ss.Point
		if p.X < bounds.Min.X || p.Y < bounds.Min.Y || p.Z < bounds.Min.Z ||
			p.X > bounds.Max.X || p.Y > bounds.Max.Y || p.Z > bounds.Max.Z {
			t.Errorf("Sample %v outside bounds %v", p, bounds)
		}
		// distance from the axis equals the radius
		axis := core.NewVec3(1, 1, 0).Normalize()
		radial := p.Subtract(axis.Multiply(p.Dot(axis)))
		if math.Abs(radial.Length()-0.5) > 1e-9 {
			t.Errorf("Sample %v is %f from the axis", p, radial.Length())
		}
		if ss.Normal.Subtract(radial.Normalize()).Length() > 1e-9 {
			t.Errorf("Sample normal %v is not radial", ss.Normal)
		}
	}
}

func TestCylinder_SampleFromMatchesPdfFrom(t *testing.T) {
	cyl := NewCylinder(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 0.5)
	ref := core.NewVec3(3, 0.5, 1)

	checked := 0
	for i := 0; i < 32; i++ {
		u := core.NewVec2((float64(i)+0.5)/32, math.Mod(float64(i)*0.618, 1))
		ss, ok := cyl.SampleFrom(ref, u)
		if !ok {
			t.Fatalf("SampleFrom failed for u=%v", u)
		}
		// points on the far side are hidden behind the near wall; grazing
		// points are skipped as well
		wi := ss.Point.Subtract(ref).Normalize()
		if ss.Normal.Dot(wi) > -0.05 {
			continue
		}
		if pdf := cyl.PdfFrom(ref, wi); math.Abs(pdf-ss.Pdf) > 1e-6*ss.Pdf {
			t.Errorf("PdfFrom %f does not match sampled pdf %f at %v", pdf, ss.Pdf, ss.Point)
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("No visible samples were checked")
	}

	if pdf := cyl.PdfFrom(ref, core.NewVec3(1, 0, 0)); pdf != 0 {
		t.Errorf("Expected zero pdf for a direction missing the cylinder, got %f", pdf)
	}
}
