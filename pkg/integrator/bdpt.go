package integrator

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/material"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
)

// VertexType tags which of the Vertex payload fields are meaningful
type VertexType int

const (
	CameraVertex VertexType = iota
	LightVertex
	SurfaceVertex
)

func (t VertexType) String() string {
	switch t {
	case CameraVertex:
		return "camera"
	case LightVertex:
		return "light"
	default:
		return "surface"
	}
}

// Vertex represents a single vertex in a light transport path
type Vertex struct {
	Type   VertexType
	Point  core.Vec3 // 3D position
	Normal core.Vec3 // Geometric normal, zero when the vertex is not on a surface
	Wo     core.Vec3 // Surface vertices: unit direction back towards the previous vertex
	Beta   core.Vec3 // Accumulated throughput from the sub-path start to this vertex

	// MIS probability densities, both in area measure
	AreaPdfForward float64 // density of generating this vertex from its predecessor
	AreaPdfReverse float64 // density of generating it from its successor

	IsSpecular bool // scattering at this vertex was sampled from a delta distribution

	Camera geometry.Camera // CameraVertex
	Light  lights.Light    // LightVertex, or the area light of an emitting SurfaceVertex
	BSDF   material.BSDF   // SurfaceVertex, nil when the surface only emits or absorbs
}

// Path represents a sequence of vertices in a light transport path
type Path struct {
	Vertices []Vertex
	Length   int
}

// Valid returns the vertices generated for the current sample
func (p *Path) Valid() []Vertex {
	return p.Vertices[:p.Length]
}

type bdptPaths struct {
	camera, light Path
}

// bdptPaths returns the context's sub-path buffers, reallocating them when
// maxDepth has grown since the last call
func (ctx *Context) bdptPaths(maxDepth int) *bdptPaths {
	if ctx.paths == nil || len(ctx.paths.camera.Vertices) < maxDepth+2 {
		ctx.paths = &bdptPaths{
			camera: Path{Vertices: make([]Vertex, maxDepth+2)},
			light:  Path{Vertices: make([]Vertex, maxDepth+1)},
		}
	}
	return ctx.paths
}

// BDPTIntegrator implements bidirectional path tracing. Every connection
// strategy is weighted with the balance heuristic; strategies that connect
// directly to the camera are splatted to the film through the context.
type BDPTIntegrator struct {
	MaxDepth int
}

// NewBDPTIntegrator creates a new BDPT integrator
func NewBDPTIntegrator(maxDepth int) *BDPTIntegrator {
	return &BDPTIntegrator{MaxDepth: maxDepth}
}

// Li implements Integrator
func (b *BDPTIntegrator) Li(cr geometry.CameraRay, scene *scene.Scene, ctx *Context) core.Vec3 {
	paths := ctx.bdptPaths(b.MaxDepth)
	cameraPath, lightPath := &paths.camera, &paths.light
	b.generateCameraSubpath(cr, scene, ctx, cameraPath)
	b.generateLightSubpath(scene, ctx, lightPath)

	var L core.Vec3
	for t := 1; t <= cameraPath.Length; t++ {
		for s := 0; s <= lightPath.Length; s++ {
			depth := s + t - 2
			if (s == 1 && t == 1) || depth < 0 || depth > b.MaxDepth {
				continue
			}

			contribution, pRaster, ok := b.connect(scene, ctx, lightPath, cameraPath, s, t)
			if !ok {
				continue
			}
			if t == 1 {
				if ctx.Splats != nil && contribution.IsFinite() {
					ctx.Splats.AddSplat(pRaster, contribution)
				}
				continue
			}
			L = L.Add(contribution)
		}
	}
	return L
}

// generateCameraSubpath starts a sub-path at the camera and extends it by
// up to MaxDepth+1 bounces
func (b *BDPTIntegrator) generateCameraSubpath(cr geometry.CameraRay, scene *scene.Scene, ctx *Context, path *Path) {
	path.Vertices[0] = Vertex{
		Type:   CameraVertex,
		Point:  cr.Ray.Origin,
		Beta:   cr.Weight,
		Camera: scene.Camera,
	}
	path.Length = 1 + b.randomWalk(scene, ctx, cr.Ray, cr.Weight, cr.PdfDir, b.MaxDepth+1, material.Radiance, path.Vertices)
}

// generateLightSubpath picks a light, samples a ray leaving it and extends
// the sub-path by up to MaxDepth bounces
func (b *BDPTIntegrator) generateLightSubpath(scene *scene.Scene, ctx *Context, path *Path) {
	path.Length = 0

	light, lightPmf := scene.LightSampler.Sample(ctx.Sampler.Get1D())
	uPos, uDir := ctx.Sampler.Get2D(), ctx.Sampler.Get2D()
	if light == nil || lightPmf == 0 {
		return
	}
	es, ok := light.SampleLe(uPos, uDir)
	if !ok || es.PdfPos == 0 || es.PdfDir == 0 || es.L.IsBlack() {
		return
	}

	path.Vertices[0] = Vertex{
		Type:           LightVertex,
		Point:          es.Ray.Origin,
		Normal:         es.Normal,
		Beta:           es.L,
		AreaPdfForward: es.PdfPos * lightPmf,
		Light:          light,
	}
	beta := es.L.Multiply(es.Normal.AbsDot(es.Ray.Direction) / (lightPmf * es.PdfPos * es.PdfDir))
	ray := core.NewRay(material.OffsetOrigin(es.Ray.Origin, es.Normal, es.Ray.Direction), es.Ray.Direction)
	path.Length = 1 + b.randomWalk(scene, ctx, ray, beta, es.PdfDir, b.MaxDepth, material.Importance, path.Vertices)
}

// randomWalk extends the sub-path whose first vertex is already in path[0].
// pdf is the solid angle density of ray. Each new vertex gets its forward
// density, and once the next direction is sampled the vertex before it gets
// its reverse density. Returns the number of vertices added.
func (b *BDPTIntegrator) randomWalk(scene *scene.Scene, ctx *Context, ray core.Ray, beta core.Vec3, pdf float64, maxBounces int, mode material.TransportMode, path []Vertex) int {
	if maxBounces == 0 {
		return 0
	}

	bounces := 0
	pdfFwd := pdf
	for {
		si, hit := scene.Intersect(ray)
		if !hit {
			break
		}

		prev, vertex := &path[bounces], &path[bounces+1]
		bsdf := si.BSDF(ctx.Arena)
		*vertex = Vertex{
			Type:   SurfaceVertex,
			Point:  si.Point,
			Normal: si.Normal,
			Wo:     si.Wo,
			Beta:   beta,
			Light:  areaLight(si.Emitter),
			BSDF:   bsdf,
		}
		vertex.AreaPdfForward = prev.convertDensity(pdfFwd, vertex)
		bounces++
		if bounces >= maxBounces || bsdf == nil {
			break
		}

		bs, ok := bsdf.SampleF(si.Wo, ctx.Sampler, mode)
		if !ok || bs.F.IsBlack() || bs.Pdf == 0 {
			break
		}
		pdfFwd = bs.Pdf
		pdfRev := bsdf.Pdf(si.Wo, bs.Wi)
		if bs.Specular {
			vertex.IsSpecular = true
			pdfFwd, pdfRev = 0, 0
		}
		beta = beta.MultiplyVec(bs.F).Multiply(bs.Wi.AbsDot(si.Normal) / bs.Pdf)
		prev.AreaPdfReverse = vertex.convertDensity(pdfRev, prev)
		ray = si.SpawnRay(bs.Wi)
	}
	return bounces
}

// connect evaluates the strategy that joins the first s light vertices with
// the first t camera vertices. For t == 1 the returned raster position says
// where the contribution lands on the film. ok is false when the strategy
// contributes nothing.
func (b *BDPTIntegrator) connect(scene *scene.Scene, ctx *Context, lightPath, cameraPath *Path, s, t int) (core.Vec3, core.Vec2, bool) {
	light, camera := lightPath.Vertices, cameraPath.Vertices

	var L core.Vec3
	var pRaster core.Vec2
	var sampled Vertex

	switch {
	case s == 0:
		// the camera sub-path found an emitter on its own
		pt := &camera[t-1]
		if pt.isLight() {
			L = pt.le(&camera[t-2]).MultiplyVec(pt.Beta)
		}

	case t == 1:
		qs := &light[s-1]
		if !qs.isConnectible() {
			break
		}
		cs, ok := scene.Camera.SampleWi(qs.Point, ctx.Sampler.Get2D())
		if !ok || cs.Pdf == 0 || cs.We.IsBlack() {
			break
		}
		sampled = Vertex{
			Type:   CameraVertex,
			Point:  cs.LensPoint,
			Beta:   cs.We.Multiply(1 / cs.Pdf),
			Camera: scene.Camera,
		}
		pRaster = cs.PRaster
		L = qs.Beta.MultiplyVec(qs.f(&sampled)).MultiplyVec(sampled.Beta)
		if qs.isOnSurface() {
			L = L.Multiply(cs.Wi.AbsDot(qs.Normal))
		}
		if !L.IsBlack() && !scene.Unoccluded(qs.Point, qs.Normal, cs.LensPoint, core.Vec3{}) {
			L = core.Vec3{}
		}

	case s == 1:
		// next event estimation with a freshly sampled light point
		pt := &camera[t-1]
		if !pt.isConnectible() {
			break
		}
		lt, lightPmf := scene.LightSampler.Sample(ctx.Sampler.Get1D())
		u := ctx.Sampler.Get2D()
		if lt == nil || lightPmf == 0 {
			break
		}
		ls, ok := lt.SampleLi(pt.Point, u)
		if !ok || ls.Pdf == 0 || ls.L.IsBlack() {
			break
		}
		sampled = Vertex{
			Type:   LightVertex,
			Point:  ls.Point,
			Normal: ls.Normal,
			Beta:   ls.L.Multiply(1 / (ls.Pdf * lightPmf)),
			Light:  lt,
		}
		sampled.AreaPdfForward = sampled.pdfLightOrigin(scene, pt)
		L = pt.Beta.MultiplyVec(pt.f(&sampled)).MultiplyVec(sampled.Beta)
		if pt.isOnSurface() {
			L = L.Multiply(ls.Wi.AbsDot(pt.Normal))
		}
		if !L.IsBlack() && !scene.Unoccluded(pt.Point, pt.Normal, ls.Point, ls.Normal) {
			L = core.Vec3{}
		}

	default:
		qs, pt := &light[s-1], &camera[t-1]
		if !qs.isConnectible() || !pt.isConnectible() {
			break
		}
		L = qs.Beta.MultiplyVec(qs.f(pt)).MultiplyVec(pt.f(qs)).MultiplyVec(pt.Beta)
		if !L.IsBlack() {
			L = L.Multiply(geometricTerm(scene, qs, pt))
		}
	}

	if L.IsBlack() {
		return core.Vec3{}, pRaster, false
	}
	return L.Multiply(misWeight(scene, lightPath, cameraPath, &sampled, s, t)), pRaster, true
}

// geometricTerm couples two vertices: the cosines at both ends over the
// squared distance, or zero when the segment is blocked
func geometricTerm(scene *scene.Scene, v0, v1 *Vertex) float64 {
	d := v0.Point.Subtract(v1.Point)
	dist2 := d.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	g := 1 / dist2
	d = d.Multiply(math.Sqrt(g))
	if v0.isOnSurface() {
		g *= v0.Normal.AbsDot(d)
	}
	if v1.isOnSurface() {
		g *= v1.Normal.AbsDot(d)
	}
	if g == 0 || !scene.Unoccluded(v0.Point, v0.Normal, v1.Point, v1.Normal) {
		return 0
	}
	return g
}

func (v *Vertex) isOnSurface() bool {
	return !v.Normal.IsZero()
}

// isLight reports whether the vertex emits, either as the start of a light
// sub-path or as a surface point on an area light
func (v *Vertex) isLight() bool {
	return v.Light != nil && (v.Type == LightVertex || v.Type == SurfaceVertex)
}

func (v *Vertex) isDeltaLight() bool {
	return v.Type == LightVertex && v.Light != nil && v.Light.IsDelta()
}

// isConnectible reports whether a deterministic connection can be made to
// the vertex. Purely specular surfaces can only be continued by sampling.
func (v *Vertex) isConnectible() bool {
	switch v.Type {
	case CameraVertex:
		return v.Camera != nil
	case LightVertex:
		return v.Light != nil
	default:
		return v.BSDF != nil && !v.BSDF.IsSpecular()
	}
}

// f evaluates the BSDF for light scattered between next and the previous vertex
func (v *Vertex) f(next *Vertex) core.Vec3 {
	if v.Type != SurfaceVertex || v.BSDF == nil {
		return core.Vec3{}
	}
	wi := next.Point.Subtract(v.Point)
	if wi.LengthSquared() == 0 {
		return core.Vec3{}
	}
	return v.BSDF.F(wi.Normalize(), v.Wo)
}

// le returns the radiance the vertex emits towards another vertex
func (v *Vertex) le(to *Vertex) core.Vec3 {
	emitter, ok := v.Light.(material.Emitter)
	if !ok {
		return core.Vec3{}
	}
	w := to.Point.Subtract(v.Point)
	if w.LengthSquared() == 0 {
		return core.Vec3{}
	}
	return emitter.L(v.Point, v.Normal, w.Normalize())
}

// convertDensity turns a solid angle density at v into an area density at next
func (v *Vertex) convertDensity(pdf float64, next *Vertex) float64 {
	w := next.Point.Subtract(v.Point)
	dist2 := w.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	invDist2 := 1 / dist2
	if next.isOnSurface() {
		pdf *= next.Normal.AbsDot(w.Multiply(math.Sqrt(invDist2)))
	}
	return pdf * invDist2
}

// pdf returns the area density with which v, having been reached from prev,
// samples next
func (v *Vertex) pdf(scene *scene.Scene, prev, next *Vertex) float64 {
	if v.Type == LightVertex {
		return v.pdfLight(scene, next)
	}

	wn := next.Point.Subtract(v.Point)
	if wn.LengthSquared() == 0 {
		return 0
	}
	wn = wn.Normalize()

	var pdf float64
	switch v.Type {
	case CameraVertex:
		if v.Camera == nil {
			return 0
		}
		_, pdf = v.Camera.PdfWe(core.NewRay(v.Point, wn))
	default:
		if v.BSDF == nil || prev == nil {
			return 0
		}
		wp := prev.Point.Subtract(v.Point)
		if wp.LengthSquared() == 0 {
			return 0
		}
		pdf = v.BSDF.Pdf(wn, wp.Normalize())
	}
	return v.convertDensity(pdf, next)
}

// pdfLight is the area density of next when v is the light a sub-path
// starts on
func (v *Vertex) pdfLight(scene *scene.Scene, next *Vertex) float64 {
	if v.Light == nil {
		return 0
	}
	w := next.Point.Subtract(v.Point)
	dist2 := w.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	w = w.Multiply(1 / math.Sqrt(dist2))

	_, pdfDir := v.Light.PdfLe(v.Point, v.Normal, w)
	pdf := pdfDir / dist2
	if next.isOnSurface() {
		pdf *= next.Normal.AbsDot(w)
	}
	return pdf
}

// pdfLightOrigin is the density of choosing v's light and then v's position
// on it, when emitting towards next
func (v *Vertex) pdfLightOrigin(scene *scene.Scene, next *Vertex) float64 {
	if v.Light == nil {
		return 0
	}
	w := next.Point.Subtract(v.Point)
	if w.LengthSquared() == 0 {
		return 0
	}
	pdfPos, _ := v.Light.PdfLe(v.Point, v.Normal, w.Normalize())
	return pdfPos * scene.LightSampler.Pmf(v.Light)
}
