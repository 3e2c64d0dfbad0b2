package core

import (
	"math"
	"testing"
)

func TestSampleCosineHemisphereLocal(t *testing.T) {
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			u := NewVec2((float64(i)+0.5)/16, (float64(j)+0.5)/16)
			w := SampleCosineHemisphereLocal(u)
			if math.Abs(w.Length()-1) > 1e-9 {
				t.Fatalf("Expected unit direction for %v, got length %f", u, w.Length())
			}
			if w.Z < 0 {
				t.Fatalf("Expected direction in upper hemisphere for %v, got %v", u, w)
			}
		}
	}
}

func TestSampleCosineHemisphere_AroundNormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, 1, 1).Normalize(),
	}
	for _, n := range normals {
		for i := 0; i < 8; i++ {
			u := NewVec2(float64(i)/8+0.01, 0.37)
			w := SampleCosineHemisphere(n, u)
			if w.Dot(n) < 0 {
				t.Errorf("Direction %v not in hemisphere of %v", w, n)
			}
		}
	}
}

func TestSampleConeLocal_StaysInCone(t *testing.T) {
	cosTotal := math.Cos(Radians(20))
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			w := SampleConeLocal(cosTotal, NewVec2(float64(i)/10, float64(j)/10))
			if w.Z < cosTotal-1e-12 {
				t.Errorf("Cone sample %v outside cone (cos %f < %f)", w, w.Z, cosTotal)
			}
		}
	}
}

func TestSampleConcentricDisk(t *testing.T) {
	if d := SampleConcentricDisk(NewVec2(0.5, 0.5)); d.X != 0 || d.Y != 0 {
		t.Errorf("Center of square should map to disk center, got %v", d)
	}
	for i := 0; i <= 10; i++ {
		for j := 0; j <= 10; j++ {
			d := SampleConcentricDisk(NewVec2(float64(i)/10, float64(j)/10))
			if d.X*d.X+d.Y*d.Y > 1+1e-9 {
				t.Errorf("Disk sample %v outside unit disk", d)
			}
		}
	}
}

func TestSampleTriangle_Barycentrics(t *testing.T) {
	for i := 0; i < 10; i++ {
		b0, b1 := SampleTriangle(NewVec2(float64(i)/10, 1-float64(i)/10))
		if b0 < 0 || b1 < 0 || b0+b1 > 1+1e-12 {
			t.Errorf("Invalid barycentrics (%f, %f)", b0, b1)
		}
	}
}

func TestCoordinateSystem_Orthonormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(1, 0, 0),
		NewVec3(0, 1, 0),
		NewVec3(0, 0, 1),
		NewVec3(-0.3, 0.8, 0.2).Normalize(),
	}
	for _, n := range normals {
		s, tt := CoordinateSystem(n)
		if math.Abs(s.Dot(n)) > 1e-9 || math.Abs(tt.Dot(n)) > 1e-9 || math.Abs(s.Dot(tt)) > 1e-9 {
			t.Errorf("Basis for %v not orthogonal: s=%v t=%v", n, s, tt)
		}
		if math.Abs(s.Length()-1) > 1e-9 || math.Abs(tt.Length()-1) > 1e-9 {
			t.Errorf("Basis for %v not normalized: s=%v t=%v", n, s, tt)
		}

		frame := NewFrameFromZ(n)
		v := NewVec3(0.2, -0.5, 0.7)
		back := frame.FromLocal(frame.ToLocal(v))
		if back.Subtract(v).Length() > 1e-9 {
			t.Errorf("Frame round trip changed %v into %v", v, back)
		}
	}
}

func TestPowerHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		nf       int
		fPdf     float64
		ng       int
		gPdf     float64
		expected float64
	}{
		{
			name:     "Equal PDFs",
			nf:       1,
			fPdf:     0.5,
			ng:       1,
			gPdf:     0.5,
			expected: 0.5,
		},
		{
			name:     "First PDF zero",
			nf:       1,
			fPdf:     0.0,
			ng:       1,
			gPdf:     0.5,
			expected: 0.0,
		},
		{
			name:     "Second PDF zero",
			nf:       1,
			fPdf:     0.5,
			ng:       1,
			gPdf:     0.0,
			expected: 1.0,
		},
		{
			name:     "First PDF higher",
			nf:       1,
			fPdf:     0.8,
			ng:       1,
			gPdf:     0.2,
			expected: 0.941176, // (0.8²) / (0.8² + 0.2²)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PowerHeuristic(tt.nf, tt.fPdf, tt.ng, tt.gPdf)
			if math.Abs(result-tt.expected) > 1e-5 {
				t.Errorf("PowerHeuristic: got %f, expected %f", result, tt.expected)
			}
		})
	}
}

func TestBalanceHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		nf       int
		fPdf     float64
		ng       int
		gPdf     float64
		expected float64
	}{
		{
			name:     "Equal PDFs",
			nf:       1,
			fPdf:     0.5,
			ng:       1,
			gPdf:     0.5,
			expected: 0.5,
		},
		{
			name:     "First PDF zero",
			nf:       1,
			fPdf:     0.0,
			ng:       1,
			gPdf:     0.5,
			expected: 0.0,
		},
		{
			name:     "Second PDF zero",
			nf:       1,
			fPdf:     0.5,
			ng:       1,
			gPdf:     0.0,
			expected: 1.0,
		},
		{
			name:     "First PDF higher",
			nf:       1,
			fPdf:     0.8,
			ng:       1,
			gPdf:     0.2,
			expected: 0.8, // 0.8 / (0.8 + 0.2)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BalanceHeuristic(tt.nf, tt.fPdf, tt.ng, tt.gPdf)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("BalanceHeuristic: got %f, expected %f", result, tt.expected)
			}
		})
	}
}
