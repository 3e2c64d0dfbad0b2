package integrator

import (
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

// vertexGuard snapshots path vertices and puts them back on restore. The
// MIS weight of one strategy rewrites densities on the vertices next to the
// connection; the same sub-paths are reused for every other strategy.
type vertexGuard struct {
	ptrs  [4]*Vertex
	saved [4]Vertex
	n     int
}

func (g *vertexGuard) save(v *Vertex) {
	if v == nil {
		return
	}
	g.ptrs[g.n] = v
	g.saved[g.n] = *v
	g.n++
}

func (g *vertexGuard) restore() {
	for i := g.n - 1; i >= 0; i-- {
		*g.ptrs[i] = g.saved[i]
	}
}

// misWeight computes the balance heuristic weight of strategy (s, t).
// sampled replaces the connection vertex for s == 1 and t == 1, where that
// vertex was not part of the random walk.
func misWeight(scene *scene.Scene, lightPath, cameraPath *Path, sampled *Vertex, s, t int) float64 {
	if s+t == 2 {
		return 1
	}

	light, camera := lightPath.Vertices[:s], cameraPath.Vertices[:t]

	var qs, pt, qsMinus, ptMinus *Vertex
	if s > 0 {
		qs = &light[s-1]
	}
	if t > 0 {
		pt = &camera[t-1]
	}
	if s > 1 {
		qsMinus = &light[s-2]
	}
	if t > 1 {
		ptMinus = &camera[t-2]
	}

	var guard vertexGuard
	guard.save(qs)
	guard.save(pt)
	guard.save(qsMinus)
	guard.save(ptMinus)
	defer guard.restore()

	if s == 1 {
		*qs = *sampled
	} else if t == 1 {
		*pt = *sampled
	}

	// the connection vertices are joined deterministically
	if pt != nil {
		pt.IsSpecular = false
	}
	if qs != nil {
		qs.IsSpecular = false
	}

	if pt != nil {
		if s > 0 {
			pt.AreaPdfReverse = qs.pdf(scene, qsMinus, pt)
		} else {
			pt.AreaPdfReverse = pt.pdfLightOrigin(scene, ptMinus)
		}
	}
	if ptMinus != nil {
		if s > 0 {
			ptMinus.AreaPdfReverse = pt.pdf(scene, qs, ptMinus)
		} else {
			ptMinus.AreaPdfReverse = pt.pdfLight(scene, ptMinus)
		}
	}
	if qs != nil {
		qs.AreaPdfReverse = pt.pdf(scene, ptMinus, qs)
	}
	if qsMinus != nil {
		qsMinus.AreaPdfReverse = qs.pdf(scene, pt, qsMinus)
	}

	return 1 / (1 + misRatioSum(light, camera))
}

// misRatioSum walks each sub-path outwards from the connection and sums,
// over every other strategy able to produce the same path, the ratio of its
// density to the density of the current strategy. Steps next to a specular
// vertex are skipped: no other strategy can generate such a vertex.
func misRatioSum(light, camera []Vertex) float64 {
	sum := 0.0

	ri := 1.0
	for i := len(camera) - 1; i > 0; i-- {
		ri *= remap0(camera[i].AreaPdfReverse) / remap0(camera[i].AreaPdfForward)
		if !camera[i].IsSpecular && !camera[i-1].IsSpecular {
			sum += ri
		}
	}

	ri = 1.0
	for i := len(light) - 1; i >= 0; i-- {
		ri *= remap0(light[i].AreaPdfReverse) / remap0(light[i].AreaPdfForward)
		var deltaPrev bool
		if i > 0 {
			deltaPrev = light[i-1].IsSpecular
		} else {
			deltaPrev = light[0].isDeltaLight()
		}
		if !light[i].IsSpecular && !deltaPrev {
			sum += ri
		}
	}
	return sum
}

// remap0 maps zero densities, which mark delta events, to one so they
// cancel out of the ratios
func remap0(f float64) float64 {
	if f != 0 {
		return f
	}
	return 1
}
