package core

import (
	"math"
	"testing"
)

func TestVec3_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		expected Vec3
	}{
		{"Unit X", NewVec3(3, 0, 0), NewVec3(1, 0, 0)},
		{"Diagonal", NewVec3(1, 1, 0), NewVec3(1/math.Sqrt2, 1/math.Sqrt2, 0)},
		{"Zero vector stays zero", NewVec3(0, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.vector.Normalize()
			if result.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_CrossAndDot(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)

	if z := x.Cross(y); z != NewVec3(0, 0, 1) {
		t.Errorf("Expected x cross y = +z, got %v", z)
	}
	if d := x.Dot(y); d != 0 {
		t.Errorf("Expected orthogonal dot product 0, got %f", d)
	}
	if d := NewVec3(1, 2, 3).AbsDot(NewVec3(-1, -1, -1)); d != 6 {
		t.Errorf("Expected AbsDot 6, got %f", d)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Finite vector reported as non-finite")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if NewVec3(0, math.Inf(-1), 0).IsFinite() {
		t.Error("Infinite vector reported as finite")
	}
}

func TestClampAndLerp(t *testing.T) {
	if v := Clamp(5, 0, 3); v != 3 {
		t.Errorf("Clamp int: expected 3, got %d", v)
	}
	if v := Clamp(-0.5, 0.0, 1.0); v != 0 {
		t.Errorf("Clamp float: expected 0, got %f", v)
	}
	if v := Lerp(0.25, 0.0, 8.0); v != 2 {
		t.Errorf("Lerp: expected 2, got %f", v)
	}
}

func TestAABB_UnionAndSurfaceArea(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(2, 0, 0), NewVec3(3, 1, 1))

	u := a.Union(b)
	if u.Min != NewVec3(0, 0, 0) || u.Max != NewVec3(3, 1, 1) {
		t.Errorf("Unexpected union %v", u)
	}
	if sa := u.SurfaceArea(); math.Abs(sa-14) > 1e-12 {
		t.Errorf("Expected surface area 14, got %f", sa)
	}

	empty := EmptyAABB()
	if empty.SurfaceArea() != 0 {
		t.Errorf("Empty box should have zero area, got %f", empty.SurfaceArea())
	}
	if got := empty.Union(a); got != a {
		t.Errorf("Union with empty box should be identity, got %v", got)
	}
}

func TestAABB_HitSlab(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name   string
		ray    Ray
		tMax   float64
		expect bool
	}{
		{"Straight through", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), math.Inf(1), true},
		{"Behind origin", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, 1)), math.Inf(1), false},
		{"Beyond tMax", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 3, false},
		{"Miss to the side", NewRay(NewVec3(3, 0, -5), NewVec3(0, 0, 1)), math.Inf(1), false},
		{"Origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(1, 1, 0).Normalize()), math.Inf(1), true},
		{"Negative direction", NewRay(NewVec3(0, 5, 0), NewVec3(0, -1, 0)), math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.ray.Direction
			invDir := NewVec3(1/d.X, 1/d.Y, 1/d.Z)
			var neg [3]int
			if invDir.X < 0 {
				neg[0] = 1
			}
			if invDir.Y < 0 {
				neg[1] = 1
			}
			if invDir.Z < 0 {
				neg[2] = 1
			}
			got := box.HitSlab(tt.ray.Origin, invDir, neg, tt.tMax)
			if got != tt.expect {
				t.Errorf("HitSlab = %v, expected %v", got, tt.expect)
			}
			if slab := box.Hit(tt.ray, 0, tt.tMax); slab != tt.expect {
				t.Errorf("Hit = %v, expected %v", slab, tt.expect)
			}
		})
	}
}
