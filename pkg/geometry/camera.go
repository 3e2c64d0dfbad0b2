package geometry

import (
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// Camera generates primary rays and evaluates the importance it emits.
// Film positions are raster coordinates: x grows right, y grows down, and
// pixel (i, j) covers [i, i+1) x [j, j+1).
type Camera interface {
	GenerateRay(pFilm, uLens core.Vec2) (CameraRay, bool)
	// We returns the importance carried by ray and the raster position it maps to
	We(ray core.Ray) (core.Vec3, core.Vec2)
	SampleWe(pFilm, uLens core.Vec2) (CameraRay, core.Vec3, bool)
	// SampleWi samples a lens point as seen from ref
	SampleWi(ref core.Vec3, u core.Vec2) (CameraWiSample, bool)
	// PdfWe returns the area density of the ray origin and the solid angle density of its direction
	PdfWe(ray core.Ray) (pdfPos, pdfDir float64)
	Resolution() (width, height int)
}

// CameraRay is a sampled primary ray
type CameraRay struct {
	Ray    core.Ray
	PdfPos float64
	PdfDir float64
	Weight core.Vec3
}

// CameraWiSample connects a scene point to the lens
type CameraWiSample struct {
	We        core.Vec3 // Importance arriving along -Wi
	Wi        core.Vec3 // Unit direction from ref towards the lens point
	Pdf       float64   // Solid angle density at ref
	PRaster   core.Vec2
	LensPoint core.Vec3
}

// CameraConfig contains parameters for creating a camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	Width         int       // Image width in pixels
	Height        int       // Image height in pixels
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter, 0 for a pinhole
	FocusDistance float64   // Distance to the plane in focus, used only with an aperture
}

// PerspectiveCamera is a pinhole or thin-lens perspective camera
type PerspectiveCamera struct {
	config CameraConfig

	origin                core.Vec3
	right, up, forward    core.Vec3
	halfWidth, halfHeight float64
	// area of the image rectangle on the plane at unit distance
	filmArea      float64
	lensRadius    float64
	lensArea      float64
	focusDistance float64
}

// NewCamera creates a perspective camera
func NewCamera(config CameraConfig) *PerspectiveCamera {
	forward := config.LookAt.Subtract(config.Center).Normalize()
	right := forward.Cross(config.Up).Normalize()
	up := right.Cross(forward)

	halfHeight := math.Tan(core.Radians(config.VFov) / 2)
	halfWidth := halfHeight * float64(config.Width) / float64(config.Height)

	c := &PerspectiveCamera{
		config:        config,
		origin:        config.Center,
		right:         right,
		up:            up,
		forward:       forward,
		halfWidth:     halfWidth,
		halfHeight:    halfHeight,
		filmArea:      4 * halfWidth * halfHeight,
		lensRadius:    config.Aperture / 2,
		lensArea:      1,
		focusDistance: 1,
	}
	if c.lensRadius > 0 {
		c.lensArea = math.Pi * c.lensRadius * c.lensRadius
		if config.FocusDistance > 0 {
			c.focusDistance = config.FocusDistance
		}
	}
	return c
}

// Config returns the configuration the camera was built from
func (c *PerspectiveCamera) Config() CameraConfig {
	return c.config
}

// Resolution returns the film size in pixels
func (c *PerspectiveCamera) Resolution() (int, int) {
	return c.config.Width, c.config.Height
}

// rasterToDirection maps a raster point to a direction through the plane at unit distance
func (c *PerspectiveCamera) rasterToDirection(pFilm core.Vec2) core.Vec3 {
	sx := (2*pFilm.X/float64(c.config.Width) - 1) * c.halfWidth
	sy := (1 - 2*pFilm.Y/float64(c.config.Height)) * c.halfHeight
	return c.right.Multiply(sx).Add(c.up.Multiply(sy)).Add(c.forward)
}

func (c *PerspectiveCamera) lensPoint(u core.Vec2) core.Vec3 {
	if c.lensRadius == 0 {
		return c.origin
	}
	d := core.SampleConcentricDisk(u).Multiply(c.lensRadius)
	return c.origin.Add(c.right.Multiply(d.X)).Add(c.up.Multiply(d.Y))
}

// GenerateRay creates the primary ray through raster point pFilm
func (c *PerspectiveCamera) GenerateRay(pFilm, uLens core.Vec2) (CameraRay, bool) {
	dir := c.rasterToDirection(pFilm).Normalize()
	cosTheta := dir.Dot(c.forward)
	if cosTheta <= 0 {
		return CameraRay{}, false
	}

	ray := core.NewRay(c.origin, dir)
	if c.lensRadius > 0 {
		pFocus := ray.At(c.focusDistance / cosTheta)
		lens := c.lensPoint(uLens)
		ray = core.NewRayTo(lens, pFocus)
		cosTheta = ray.Direction.Dot(c.forward)
	}

	return CameraRay{
		Ray:    ray,
		PdfPos: 1 / c.lensArea,
		PdfDir: 1 / (c.filmArea * cosTheta * cosTheta * cosTheta),
		Weight: core.NewVec3(1, 1, 1),
	}, true
}

// rasterPosition finds where a ray leaving the lens lands on the film. ok is
// false when the ray points backwards or lands outside the image.
func (c *PerspectiveCamera) rasterPosition(ray core.Ray) (pRaster core.Vec2, cosTheta float64, ok bool) {
	cosTheta = ray.Direction.Dot(c.forward)
	if cosTheta <= 0 {
		return core.Vec2{}, cosTheta, false
	}

	pFocus := ray.At(c.focusDistance / cosTheta)
	q := pFocus.Subtract(c.origin)
	z := q.Dot(c.forward)
	sx := q.Dot(c.right) / z
	sy := q.Dot(c.up) / z

	pRaster = core.NewVec2(
		(sx/c.halfWidth+1)/2*float64(c.config.Width),
		(1-sy/c.halfHeight)/2*float64(c.config.Height),
	)
	if pRaster.X < 0 || pRaster.Y < 0 ||
		pRaster.X >= float64(c.config.Width) || pRaster.Y >= float64(c.config.Height) {
		return pRaster, cosTheta, false
	}
	return pRaster, cosTheta, true
}

// We implements Camera
func (c *PerspectiveCamera) We(ray core.Ray) (core.Vec3, core.Vec2) {
	pRaster, cosTheta, ok := c.rasterPosition(ray)
	if !ok {
		return core.Vec3{}, pRaster
	}
	cos2 := cosTheta * cosTheta
	w := 1 / (c.filmArea * c.lensArea * cos2 * cos2)
	return core.NewVec3(w, w, w), pRaster
}

// SampleWe generates a ray together with its importance
func (c *PerspectiveCamera) SampleWe(pFilm, uLens core.Vec2) (CameraRay, core.Vec3, bool) {
	cr, ok := c.GenerateRay(pFilm, uLens)
	if !ok {
		return CameraRay{}, core.Vec3{}, false
	}
	we, _ := c.We(cr.Ray)
	return cr, we, true
}

// SampleWi implements Camera
func (c *PerspectiveCamera) SampleWi(ref core.Vec3, u core.Vec2) (CameraWiSample, bool) {
	lens := c.lensPoint(u)
	toLens := lens.Subtract(ref)
	dist2 := toLens.LengthSquared()
	if dist2 == 0 {
		return CameraWiSample{}, false
	}
	wi := toLens.Multiply(1 / math.Sqrt(dist2))

	we, pRaster := c.We(core.NewRay(lens, wi.Negate()))
	if we.IsBlack() {
		return CameraWiSample{}, false
	}
	cos := c.forward.AbsDot(wi)
	return CameraWiSample{
		We:        we,
		Wi:        wi,
		Pdf:       dist2 / (cos * c.lensArea),
		PRaster:   pRaster,
		LensPoint: lens,
	}, true
}

// PdfWe implements Camera
func (c *PerspectiveCamera) PdfWe(ray core.Ray) (float64, float64) {
	_, cosTheta, ok := c.rasterPosition(ray)
	if !ok {
		return 0, 0
	}
	return 1 / c.lensArea, 1 / (c.filmArea * cosTheta * cosTheta * cosTheta)
}
