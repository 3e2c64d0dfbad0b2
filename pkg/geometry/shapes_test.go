package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)

	tests := []struct {
		name          string
		rayOrigin     core.Vec3
		rayDirection  core.Vec3
		expectedHit   bool
		expectedT     float64
		expectedFront bool
	}{
		{"front face hit", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), true, 1.0, true},
		{"back face hit", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), true, 1.0, false},
		{"miss", core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0), false, 0, false},
		{"behind origin", core.NewVec3(0, 0, 3), core.NewVec3(0, 0, 1), false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si, ok := sphere.Hit(core.NewRay(tt.rayOrigin, tt.rayDirection), 0.001, 1000)
			if ok != tt.expectedHit {
				t.Fatalf("Expected hit=%v, got %v", tt.expectedHit, ok)
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
			// the normal stays outward regardless of the side that was hit
			if si.Normal.Subtract(si.Point).Length() > 1e-9 {
				t.Errorf("Expected outward normal %v, got %v", si.Point, si.Normal)
			}
		})
	}
}

func TestSphere_SampleFromMatchesPdfFrom(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	refs := []core.Vec3{
		core.NewVec3(0, 0, 5),   // outside: cone sampling
		core.NewVec3(3, 1, -2),  // outside
		core.NewVec3(0.2, 0, 0), // inside: area sampling
	}

	for _, ref := range refs {
		for i := 0; i < 16; i++ {
			u := core.NewVec2((float64(i)+0.5)/16, math.Mod(float64(i)*0.618, 1))
			ss, ok := sphere.SampleFrom(ref, u)
			if !ok {
				t.Fatalf("SampleFrom(%v) failed for u=%v", ref, u)
			}
			if math.Abs(ss.Point.Length()-1) > 1e-9 {
				t.Errorf("Sample %v not on the sphere surface", ss.Point)
			}
			if ss.Normal.Subtract(ss.Point).Length() > 1e-9 {
				t.Errorf("Sample normal %v is not outward at %v", ss.Normal, ss.Point)
			}

			wi := ss.Point.Subtract(ref).Normalize()
			if ref.Length() > 1 {
				// from outside only the visible cap is sampled
				if wi.Dot(ss.Normal) > 1e-9 {
					t.Errorf("Sampled point %v faces away from %v", ss.Point, ref)
				}
				if pdf := sphere.PdfFrom(ref, wi); math.Abs(pdf-ss.Pdf) > 1e-6*ss.Pdf {
					t.Errorf("PdfFrom %f does not match sampled pdf %f", pdf, ss.Pdf)
				}
			} else if ss.Pdf <= 0 {
				t.Errorf("Expected positive pdf for inside sample, got %f", ss.Pdf)
			}
		}
	}
}

func TestTriangle_HitAndSample(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))
	if n := tri.Normal(); n != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected +Z normal for counter-clockwise winding, got %v", n)
	}
	if math.Abs(tri.Area()-0.5) > 1e-12 {
		t.Errorf("Expected area 0.5, got %f", tri.Area())
	}

	si, ok := tri.Hit(core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)), 0.001, 10)
	if !ok || math.Abs(si.T-1) > 1e-12 || !si.FrontFace {
		t.Errorf("Expected front hit at t=1, got %+v (ok=%v)", si, ok)
	}
	if _, ok := tri.Hit(core.NewRay(core.NewVec3(0.75, 0.75, 1), core.NewVec3(0, 0, -1)), 0.001, 10); ok {
		t.Error("Expected miss outside the hypotenuse")
	}

	for i := 0; i < 10; i++ {
		ss := tri.Sample(core.NewVec2(float64(i)/10, 1-float64(i)/10))
		if ss.Point.X < 0 || ss.Point.Y < 0 || ss.Point.X+ss.Point.Y > 1+1e-12 || ss.Point.Z != 0 {
			t.Errorf("Sample %v outside triangle", ss.Point)
		}
		if ss.Pdf != 2 {
			t.Errorf("Expected area pdf 2, got %f", ss.Pdf)
		}
	}

	// solid angle density from a point straight above the sampled point
	ref := core.NewVec3(0.25, 0.25, 2)
	ss, ok := tri.SampleFrom(ref, core.NewVec2(0.3, 0.4))
	if !ok {
		t.Fatal("SampleFrom failed")
	}
	wi := ss.Point.Subtract(ref).Normalize()
	if pdf := tri.PdfFrom(ref, wi); math.Abs(pdf-ss.Pdf) > 1e-9*ss.Pdf {
		t.Errorf("PdfFrom %f does not match sampled pdf %f", pdf, ss.Pdf)
	}
}

func TestQuad_HitAndBounds(t *testing.T) {
	quad := NewQuad(core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2))
	if quad.Normal.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-12 {
		t.Errorf("Expected -Y normal from U x V, got %v", quad.Normal)
	}
	if quad.Area() != 4 {
		t.Errorf("Expected area 4, got %f", quad.Area())
	}

	si, ok := quad.Hit(core.NewRay(core.NewVec3(0.5, 0, 0.5), core.NewVec3(0, 1, 0)), 0.001, 10)
	if !ok || math.Abs(si.T-2) > 1e-12 || !si.FrontFace {
		t.Errorf("Expected front hit at t=2, got %+v (ok=%v)", si, ok)
	}
	if _, ok := quad.Hit(core.NewRay(core.NewVec3(1.5, 0, 0), core.NewVec3(0, 1, 0)), 0.001, 10); ok {
		t.Error("Expected miss outside the quad")
	}

	box := quad.BoundingBox()
	if box.Size().Y <= 0 {
		t.Errorf("Flat quad bounds should be padded, got %v", box)
	}
}

func TestBox_FacesPointOutward(t *testing.T) {
	box := NewAxisAlignedBox(core.NewVec3(1, 1, 1), core.NewVec3(1, 2, 3))
	for _, face := range box.Faces() {
		center := face.Corner.Add(face.U.Multiply(0.5)).Add(face.V.Multiply(0.5))
		if center.Subtract(box.Center).Dot(face.Normal) <= 0 {
			t.Errorf("Face at %v has inward normal %v", center, face.Normal)
		}
	}

	si, ok := box.Hit(core.NewRay(core.NewVec3(1, 1, 10), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !ok || math.Abs(si.T-6) > 1e-9 {
		t.Errorf("Expected hit on the +Z face at t=6, got %+v (ok=%v)", si, ok)
	}
	bounds := box.BoundingBox()
	if bounds.Min != core.NewVec3(0, -1, -2) || bounds.Max != core.NewVec3(2, 3, 4) {
		t.Errorf("Unexpected box bounds %v", bounds)
	}
}

func TestTriangleMesh(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}

	t.Run("quad as two triangles", func(t *testing.T) {
		mesh, err := NewTriangleMesh(vertices, []int{0, 1, 2, 0, 2, 3}, &TriangleMeshOptions{Translate: core.NewVec3(0, 0, 1)})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if mesh.TriangleCount() != 2 {
			t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
		}
		if mesh.BoundingBox().Min.Z != 1 {
			t.Errorf("Expected translated bounds, got %v", mesh.BoundingBox())
		}
	})

	t.Run("degenerate faces dropped", func(t *testing.T) {
		mesh, err := NewTriangleMesh(vertices, []int{0, 1, 2, 0, 0, 1}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if mesh.TriangleCount() != 1 {
			t.Errorf("Expected 1 triangle, got %d", mesh.TriangleCount())
		}
	})

	t.Run("bad indices", func(t *testing.T) {
		if _, err := NewTriangleMesh(vertices, []int{0, 1}, nil); !errors.Is(err, ErrBadMesh) {
			t.Errorf("Expected ErrBadMesh for short index list, got %v", err)
		}
		if _, err := NewTriangleMesh(vertices, []int{0, 1, 9}, nil); !errors.Is(err, ErrBadMesh) {
			t.Errorf("Expected ErrBadMesh for out of range index, got %v", err)
		}
	})
}

func TestRotateXYZ(t *testing.T) {
	v := RotateXYZ(core.NewVec3(1, 0, 0), core.NewVec3(0, math.Pi/2, 0))
	if v.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("Expected (0,0,-1), got %v", v)
	}
}
