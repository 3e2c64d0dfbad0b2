package lights

import (
	"sort"
)

// UniformLightSampler selects every light with equal probability
type UniformLightSampler struct {
	lights []Light
}

// NewUniformLightSampler creates a uniform sampler over lights
func NewUniformLightSampler(lights []Light) *UniformLightSampler {
	return &UniformLightSampler{lights: lights}
}

// Sample implements LightSampler
func (s *UniformLightSampler) Sample(u float64) (Light, float64) {
	n := len(s.lights)
	if n == 0 {
		return nil, 0
	}
	idx := min(int(u*float64(n)), n-1)
	return s.lights[idx], 1 / float64(n)
}

// Pmf implements LightSampler
func (s *UniformLightSampler) Pmf(light Light) float64 {
	if len(s.lights) == 0 {
		return 0
	}
	return 1 / float64(len(s.lights))
}

func (s *UniformLightSampler) Lights() []Light { return s.lights }

// PowerLightSampler selects lights in proportion to the luminance of their
// emitted power
type PowerLightSampler struct {
	lights []Light
	pmf    []float64
	cdf    []float64 // len(lights)+1 entries, cdf[0] = 0 and cdf[n] = 1
	index  map[Light]int
}

// NewPowerLightSampler builds the selection distribution. When every light
// has zero power the distribution falls back to uniform.
func NewPowerLightSampler(lights []Light) *PowerLightSampler {
	n := len(lights)
	s := &PowerLightSampler{
		lights: lights,
		pmf:    make([]float64, n),
		cdf:    make([]float64, n+1),
		index:  make(map[Light]int, n),
	}

	total := 0.0
	for i, light := range lights {
		s.index[light] = i
		s.pmf[i] = max(light.Power().Luminance(), 0)
		total += s.pmf[i]
	}
	for i := range s.pmf {
		if total > 0 {
			s.pmf[i] /= total
		} else {
			s.pmf[i] = 1 / float64(n)
		}
		s.cdf[i+1] = s.cdf[i] + s.pmf[i]
	}
	if n > 0 {
		s.cdf[n] = 1
	}
	return s
}

// Sample implements LightSampler
func (s *PowerLightSampler) Sample(u float64) (Light, float64) {
	n := len(s.lights)
	if n == 0 {
		return nil, 0
	}
	// last interval whose start is <= u
	idx := sort.Search(n, func(i int) bool { return s.cdf[i+1] > u })
	if idx >= n {
		// u beyond the accumulated total; take the last light that can be chosen
		idx = n - 1
		for idx > 0 && s.pmf[idx] == 0 {
			idx--
		}
	}
	return s.lights[idx], s.pmf[idx]
}

// Pmf implements LightSampler
func (s *PowerLightSampler) Pmf(light Light) float64 {
	i, ok := s.index[light]
	if !ok {
		return 0
	}
	return s.pmf[i]
}

func (s *PowerLightSampler) Lights() []Light { return s.lights }

// NewLightSampler returns the sampler named by kind ("uniform" or "power")
func NewLightSampler(kind string, lights []Light) LightSampler {
	if kind == "uniform" {
		return NewUniformLightSampler(lights)
	}
	return NewPowerLightSampler(lights)
}
