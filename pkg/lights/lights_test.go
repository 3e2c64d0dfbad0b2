package lights

import (
	"math"
	"testing"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
)

func TestPointLight_SampleLi(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(10, 10, 10))

	sample, ok := light.SampleLi(core.NewVec3(0, 1, 0), core.NewVec2(0.3, 0.7))
	if !ok {
		t.Fatal("Expected sample")
	}
	if sample.Wi != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected wi (0,1,0), got %v", sample.Wi)
	}
	if sample.Distance != 4 {
		t.Errorf("Expected distance 4, got %f", sample.Distance)
	}
	if math.Abs(sample.L.X-10.0/16) > 1e-12 {
		t.Errorf("Expected inverse square falloff 10/16, got %f", sample.L.X)
	}
	if sample.Pdf != 1 {
		t.Errorf("Expected delta pdf 1, got %f", sample.Pdf)
	}
	if !sample.Normal.IsZero() {
		t.Errorf("Expected no surface normal, got %v", sample.Normal)
	}

	if _, ok := light.SampleLi(light.Position, core.NewVec2(0.5, 0.5)); ok {
		t.Error("Expected coincident point to fail")
	}
	if light.PdfLi(core.Vec3{}, core.NewVec3(0, 1, 0)) != 0 {
		t.Error("Expected PdfLi 0 for a delta light")
	}
	if !light.IsDelta() {
		t.Error("Point light should be delta")
	}
	if p := light.Power(); math.Abs(p.X-40*math.Pi) > 1e-9 {
		t.Errorf("Expected power 40pi, got %f", p.X)
	}
}

func TestPointLight_SampleLe(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 2, 3), core.NewVec3(1, 1, 1))
	es, ok := light.SampleLe(core.NewVec2(0.2, 0.2), core.NewVec2(0.6, 0.1))
	if !ok {
		t.Fatal("Expected emission sample")
	}
	if es.Ray.Origin != light.Position {
		t.Errorf("Expected ray to start at the light, got %v", es.Ray.Origin)
	}
	if math.Abs(es.Ray.Direction.Length()-1) > 1e-12 {
		t.Errorf("Expected unit direction, got length %f", es.Ray.Direction.Length())
	}
	if math.Abs(es.PdfDir-1/(4*math.Pi)) > 1e-12 {
		t.Errorf("Expected uniform sphere pdf, got %f", es.PdfDir)
	}
	pdfPos, pdfDir := light.PdfLe(es.Ray.Origin, es.Normal, es.Ray.Direction)
	if pdfPos != 0 || pdfDir != es.PdfDir {
		t.Errorf("Expected PdfLe (0, %f), got (%f, %f)", es.PdfDir, pdfPos, pdfDir)
	}
}

func TestSpotLight_Falloff(t *testing.T) {
	light := NewSpotLight(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), 30, 10)

	tests := []struct {
		name     string
		angle    float64
		expected func(f float64) bool
	}{
		{"axis", 0, func(f float64) bool { return f == 1 }},
		{"inside inner cone", 19, func(f float64) bool { return f == 1 }},
		{"falloff band", 25, func(f float64) bool { return f > 0 && f < 1 }},
		{"outside", 31, func(f float64) bool { return f == 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := core.Radians(tt.angle)
			w := core.NewVec3(math.Sin(a), -math.Cos(a), 0)
			if f := light.Falloff(w); !tt.expected(f) {
				t.Errorf("Unexpected falloff %f at %f degrees", f, tt.angle)
			}
		})
	}

	// falloff decreases monotonically through the band
	prev := 1.0
	for deg := 20.0; deg <= 30; deg += 0.5 {
		a := core.Radians(deg)
		f := light.Falloff(core.NewVec3(math.Sin(a), -math.Cos(a), 0))
		if f > prev {
			t.Errorf("Falloff increased at %f degrees: %f > %f", deg, f, prev)
		}
		prev = f
	}
}

func TestSpotLight_Sampling(t *testing.T) {
	light := NewSpotLight(core.NewVec3(0, 3, 0), core.NewVec3(0, 0, 0), core.NewVec3(2, 2, 2), 20, 5)

	if _, ok := light.SampleLi(core.NewVec3(5, 0, 0), core.NewVec2(0.5, 0.5)); ok {
		t.Error("Expected point outside the cone to receive nothing")
	}
	sample, ok := light.SampleLi(core.NewVec3(0, 0, 0), core.NewVec2(0.5, 0.5))
	if !ok || math.Abs(sample.L.X-2.0/9) > 1e-12 {
		t.Errorf("Expected on-axis radiance 2/9, got %v (ok=%v)", sample.L, ok)
	}

	cosTotal := math.Cos(core.Radians(20))
	for _, u := range []core.Vec2{{X: 0.1, Y: 0.2}, {X: 0.5, Y: 0.9}, {X: 0.99, Y: 0.4}} {
		es, ok := light.SampleLe(core.Vec2{}, u)
		if !ok {
			t.Fatal("Expected emission sample")
		}
		if cos := es.Ray.Direction.Dot(core.NewVec3(0, -1, 0)); cos < cosTotal-1e-12 {
			t.Errorf("Emitted direction outside the cone: cos=%f", cos)
		}
		_, pdfDir := light.PdfLe(es.Ray.Origin, es.Normal, es.Ray.Direction)
		if math.Abs(pdfDir-es.PdfDir) > 1e-9 {
			t.Errorf("PdfLe %f differs from SampleLe %f", pdfDir, es.PdfDir)
		}
	}
	if _, pdfDir := light.PdfLe(light.Position, core.Vec3{}, core.NewVec3(0, 1, 0)); pdfDir != 0 {
		t.Errorf("Expected zero pdf outside the cone, got %f", pdfDir)
	}
}

func ceilingLight(twoSided bool) *DiffuseAreaLight {
	// 1x1 quad at y=2 facing down
	quad := geometry.NewQuad(core.NewVec3(-0.5, 2, -0.5), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1))
	return NewDiffuseAreaLight(quad, core.NewVec3(5, 5, 5), twoSided)
}

func TestDiffuseAreaLight_OneSided(t *testing.T) {
	light := ceilingLight(false)
	down := core.NewVec3(0, -1, 0)

	if l := light.L(core.NewVec3(0, 2, 0), down, down); l.X != 5 {
		t.Errorf("Expected emission on the front side, got %v", l)
	}
	if l := light.L(core.NewVec3(0, 2, 0), down, down.Negate()); !l.IsBlack() {
		t.Errorf("Expected no emission on the back side, got %v", l)
	}

	ref := core.NewVec3(0.1, 0, 0.2)
	sample, ok := light.SampleLi(ref, core.NewVec2(0.3, 0.6))
	if !ok {
		t.Fatal("Expected sample")
	}
	if sample.L.X != 5 {
		t.Errorf("Expected radiance 5 from below, got %v", sample.L)
	}
	if pdf := light.PdfLi(ref, sample.Wi); math.Abs(pdf-sample.Pdf) > 1e-9*sample.Pdf {
		t.Errorf("PdfLi %f differs from SampleLi pdf %f", pdf, sample.Pdf)
	}

	above := core.NewVec3(0, 4, 0)
	if sample, ok := light.SampleLi(above, core.NewVec2(0.5, 0.5)); ok && !sample.L.IsBlack() {
		t.Errorf("Expected no radiance above a one-sided light, got %v", sample.L)
	}

	if light.IsDelta() {
		t.Error("Area light should not be delta")
	}
	if p := light.Power(); math.Abs(p.X-5*math.Pi) > 1e-9 {
		t.Errorf("Expected power 5pi, got %f", p.X)
	}
}

func TestDiffuseAreaLight_SampleLe(t *testing.T) {
	for _, twoSided := range []bool{false, true} {
		light := ceilingLight(twoSided)
		sawBack := false
		for i := 0; i < 16; i++ {
			u := core.NewVec2((float64(i)+0.5)/16, float64((i*7)%16)/16+0.03)
			es, ok := light.SampleLe(core.NewVec2(0.25, 0.75), u)
			if !ok {
				continue
			}
			cos := es.Ray.Direction.Dot(es.Normal)
			if !twoSided && cos < 0 {
				t.Errorf("One-sided light emitted backwards: cos=%f", cos)
			}
			if cos < 0 {
				sawBack = true
			}
			if es.L.X != 5 {
				t.Errorf("twoSided=%v: expected radiance 5, got %v", twoSided, es.L)
			}
			pdfPos, pdfDir := light.PdfLe(es.Ray.Origin, es.Normal, es.Ray.Direction)
			if math.Abs(pdfPos-es.PdfPos) > 1e-12 || math.Abs(pdfDir-es.PdfDir) > 1e-9 {
				t.Errorf("twoSided=%v: PdfLe (%f, %f) differs from SampleLe (%f, %f)",
					twoSided, pdfPos, pdfDir, es.PdfPos, es.PdfDir)
			}
		}
		if twoSided && !sawBack {
			t.Error("Two-sided light never emitted from its back side")
		}
	}
}

type constantLight struct {
	PointLight
}

func TestUniformLightSampler(t *testing.T) {
	lights := []Light{
		NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1)),
		NewPointLight(core.Vec3{}, core.NewVec3(9, 9, 9)),
		NewPointLight(core.Vec3{}, core.NewVec3(0, 0, 0)),
	}
	s := NewUniformLightSampler(lights)
	tests := []struct {
		u        float64
		expected int
	}{
		{0, 0}, {0.3, 0}, {0.34, 1}, {0.7, 2}, {0.9999, 2}, {1, 2},
	}
	for _, tt := range tests {
		light, pmf := s.Sample(tt.u)
		if light != lights[tt.expected] {
			t.Errorf("u=%f: expected light %d", tt.u, tt.expected)
		}
		if math.Abs(pmf-1.0/3) > 1e-12 {
			t.Errorf("u=%f: expected pmf 1/3, got %f", tt.u, pmf)
		}
	}
	if s.Pmf(lights[2]) != 1.0/3 {
		t.Errorf("Expected Pmf 1/3, got %f", s.Pmf(lights[2]))
	}

	empty := NewUniformLightSampler(nil)
	if light, pmf := empty.Sample(0.5); light != nil || pmf != 0 {
		t.Error("Expected empty sampler to return nothing")
	}
}

func TestPowerLightSampler(t *testing.T) {
	lights := []Light{
		NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1)),
		NewPointLight(core.Vec3{}, core.NewVec3(0, 0, 0)),
		NewPointLight(core.Vec3{}, core.NewVec3(3, 3, 3)),
	}
	s := NewPowerLightSampler(lights)

	expectedPmf := []float64{0.25, 0, 0.75}
	sum := 0.0
	for i, light := range lights {
		if math.Abs(s.Pmf(light)-expectedPmf[i]) > 1e-12 {
			t.Errorf("Light %d: expected pmf %f, got %f", i, expectedPmf[i], s.Pmf(light))
		}
		sum += s.Pmf(light)
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Pmf sums to %f", sum)
	}

	counts := make([]int, len(lights))
	const n = 10000
	for i := 0; i < n; i++ {
		light, pmf := s.Sample((float64(i) + 0.5) / n)
		for j := range lights {
			if lights[j] == light {
				counts[j]++
				if pmf != s.Pmf(light) {
					t.Errorf("Sample pmf %f differs from Pmf %f", pmf, s.Pmf(light))
				}
			}
		}
	}
	for i, c := range counts {
		if math.Abs(float64(c)/n-expectedPmf[i]) > 1e-3 {
			t.Errorf("Light %d selected with frequency %f, expected %f", i, float64(c)/n, expectedPmf[i])
		}
	}

	if light, _ := s.Sample(1); light != lights[2] {
		t.Error("Expected u=1 to select the last light with power")
	}
	if s.Pmf(&constantLight{}) != 0 {
		t.Error("Expected unknown light to have pmf 0")
	}
}

func TestPowerLightSampler_ZeroPower(t *testing.T) {
	lights := []Light{
		NewPointLight(core.Vec3{}, core.Vec3{}),
		NewPointLight(core.Vec3{}, core.Vec3{}),
	}
	s := NewPowerLightSampler(lights)
	for _, light := range lights {
		if s.Pmf(light) != 0.5 {
			t.Errorf("Expected uniform fallback 0.5, got %f", s.Pmf(light))
		}
	}
	if light, _ := s.Sample(0.75); light != lights[1] {
		t.Error("Expected u=0.75 to select the second light")
	}
}

func TestNewLightSampler(t *testing.T) {
	lights := []Light{NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1))}
	if _, ok := NewLightSampler("uniform", lights).(*UniformLightSampler); !ok {
		t.Error("Expected uniform sampler")
	}
	if _, ok := NewLightSampler("power", lights).(*PowerLightSampler); !ok {
		t.Error("Expected power sampler")
	}
	if got := NewLightSampler("power", lights).Lights(); len(got) != 1 {
		t.Errorf("Expected 1 light, got %d", len(got))
	}
}
