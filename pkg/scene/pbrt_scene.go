package scene

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/lights"
	"github.com/df07/go-bdpt-renderer/pkg/loaders"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// NewPBRTScene creates a scene from a PBRT file
func NewPBRTScene(filename string) (*Scene, error) {
	parsed, err := loaders.LoadPBRT(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}

	s, err := FromPBRT(parsed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	s.Name = filepath.Base(filename)
	return s, nil
}

// FromPBRT converts a parsed scene description
func FromPBRT(parsed *loaders.PBRTScene) (*Scene, error) {
	s := &Scene{
		Name:           "pbrt",
		SamplingConfig: defaultPBRTSamplingConfig(),
	}

	if err := convertOptions(parsed, s); err != nil {
		return nil, err
	}
	if err := convertCamera(parsed, s); err != nil {
		return nil, fmt.Errorf("failed to convert camera: %w", err)
	}

	// statements share *PBRTStatement pointers for the same Material
	materials := make(map[*loaders.PBRTStatement]material.Material)
	defaultMaterial := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	for i := range parsed.Shapes {
		stmt := &parsed.Shapes[i]

		var mat material.Material = defaultMaterial
		if stmt.Material != nil {
			m, seen := materials[stmt.Material]
			if !seen {
				var err error
				if m, err = convertMaterial(stmt.Material); err != nil {
					return nil, fmt.Errorf("line %d: %w", stmt.Material.Line, err)
				}
				materials[stmt.Material] = m
			}
			mat = m
		}

		if err := convertShape(s, stmt, parsed.Dir, mat); err != nil {
			return nil, fmt.Errorf("line %d: failed to convert shape: %w", stmt.Line, err)
		}
	}

	for i := range parsed.Lights {
		light, err := convertLight(&parsed.Lights[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: failed to convert light: %w", parsed.Lights[i].Line, err)
		}
		s.AddLight(light)
	}

	return s, nil
}

// defaultPBRTSamplingConfig mirrors the defaults PBRT itself uses
func defaultPBRTSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           1280,
		Height:          720,
		SamplesPerPixel: 16,
		MaxDepth:        5,
		RRDepth:         3,
	}
}

func convertOptions(parsed *loaders.PBRTScene, s *Scene) error {
	if parsed.Film != nil {
		if width, ok := parsed.Film.GetFloatParam("xresolution"); ok {
			if width < 1 || width > 16384 {
				return fmt.Errorf("invalid image width %g", width)
			}
			s.SamplingConfig.Width = int(width)
		}
		if height, ok := parsed.Film.GetFloatParam("yresolution"); ok {
			if height < 1 || height > 16384 {
				return fmt.Errorf("invalid image height %g", height)
			}
			s.SamplingConfig.Height = int(height)
		}
	}

	if parsed.Sampler != nil {
		if spp, ok := parsed.Sampler.GetFloatParam("pixelsamples"); ok && spp >= 1 {
			s.SamplingConfig.SamplesPerPixel = int(spp)
		}
	}

	if parsed.Integrator != nil {
		switch parsed.Integrator.Subtype {
		case "path", "volpath":
			s.SamplingConfig.Integrator = "path"
		case "bdpt":
			s.SamplingConfig.Integrator = "bdpt"
		case "directlighting", "direct":
			s.SamplingConfig.Integrator = "direct"
		default:
			return fmt.Errorf("%w: integrator %q", loaders.ErrUnsupported, parsed.Integrator.Subtype)
		}
		if depth, ok := parsed.Integrator.GetFloatParam("maxdepth"); ok && depth >= 0 {
			s.SamplingConfig.MaxDepth = int(depth)
		}
		if strategy, ok := parsed.Integrator.GetStringParam("lightsampler"); ok {
			if strategy == "uniform" {
				s.LightStrategy = "uniform"
			} else {
				s.LightStrategy = "power"
			}
		}
	}
	return nil
}

// convertCamera converts PBRT camera to our camera system
func convertCamera(parsed *loaders.PBRTScene, s *Scene) error {
	config := geometry.CameraConfig{
		Center: core.NewVec3(0, 0, 0),
		LookAt: core.NewVec3(0, 0, 1),
		Up:     core.NewVec3(0, 1, 0),
		Width:  s.SamplingConfig.Width,
		Height: s.SamplingConfig.Height,
		VFov:   90.0,
	}

	if parsed.LookAt != nil {
		config.Center = *parsed.LookAt
		config.LookAt = *parsed.LookAtTo
		config.Up = *parsed.LookAtUp
	}

	if parsed.Camera != nil {
		if parsed.Camera.Subtype != "perspective" {
			return fmt.Errorf("%w: camera %q", loaders.ErrUnsupported, parsed.Camera.Subtype)
		}
		if fov, ok := parsed.Camera.GetFloatParam("fov"); ok {
			if fov <= 0 || fov >= 180 {
				return fmt.Errorf("invalid camera FOV %g: must be between 0 and 180 degrees", fov)
			}
			config.VFov = fov
		}
		if radius, ok := parsed.Camera.GetFloatParam("lensradius"); ok && radius > 0 {
			config.Aperture = 2 * radius
			config.FocusDistance = 1e6
			if d, ok := parsed.Camera.GetFloatParam("focaldistance"); ok && d > 0 {
				config.FocusDistance = d
			}
		}
	}

	// PBRT's fov spans the shorter image axis
	if config.Width < config.Height {
		half := math.Tan(core.Radians(config.VFov) / 2)
		config.VFov = 2 * math.Atan(half*float64(config.Height)/float64(config.Width)) * 180 / math.Pi
	}

	s.Camera = geometry.NewCamera(config)
	return nil
}

// convertMaterial converts a PBRT material to our material system. A nil
// result is valid and makes the surface a pure emitter or an absorber.
func convertMaterial(stmt *loaders.PBRTStatement) (material.Material, error) {
	switch stmt.Subtype {
	case "diffuse":
		if rgb, ok := stmt.GetRGBParam("reflectance"); ok {
			return material.NewLambertian(rgb), nil
		}
		return material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), nil

	case "conductor":
		albedo := core.NewVec3(0.9, 0.9, 0.9)
		if rgb, ok := stmt.GetRGBParam("reflectance"); ok {
			albedo = rgb
		}
		return material.NewMetal(albedo), nil

	case "dielectric":
		ior := 1.5
		if eta, ok := stmt.GetFloatParam("eta"); ok {
			if eta <= 0 {
				return nil, fmt.Errorf("invalid dielectric IOR %g: must be positive", eta)
			}
			ior = eta
		}
		return material.NewDielectric(ior), nil

	case "interface", "":
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: material %q", loaders.ErrUnsupported, stmt.Subtype)
	}
}

// convertShape adds the primitives of one Shape statement to s, turning
// them into area lights when an AreaLightSource is active
func convertShape(s *Scene, stmt *loaders.PBRTShape, dir string, mat material.Material) error {
	var shapes []geometry.SampleableShape

	switch stmt.Subtype {
	case "sphere":
		if stmt.ReverseOrientation {
			return fmt.Errorf("%w: ReverseOrientation on spheres", loaders.ErrUnsupported)
		}
		radius := 1.0
		if r, ok := stmt.GetFloatParam("radius"); ok {
			if r <= 0 {
				return fmt.Errorf("invalid sphere radius %g: must be positive", r)
			}
			radius = r
		}
		shapes = append(shapes, geometry.NewSphere(stmt.Translate, radius))

	case "disk":
		if r, ok := stmt.GetFloatParam("innerradius"); ok && r > 0 {
			return fmt.Errorf("%w: disk inner radius", loaders.ErrUnsupported)
		}
		radius := 1.0
		if r, ok := stmt.GetFloatParam("radius"); ok {
			if r <= 0 {
				return fmt.Errorf("invalid disk radius %g: must be positive", r)
			}
			radius = r
		}
		height, _ := stmt.GetFloatParam("height")
		normal := core.NewVec3(0, 0, 1)
		if stmt.ReverseOrientation {
			normal = normal.Negate()
		}
		center := stmt.Translate.Add(core.NewVec3(0, 0, height))
		shapes = append(shapes, geometry.NewDisc(center, normal, radius))

	case "cylinder":
		if stmt.ReverseOrientation {
			return fmt.Errorf("%w: ReverseOrientation on cylinders", loaders.ErrUnsupported)
		}
		if phiMax, ok := stmt.GetFloatParam("phimax"); ok && phiMax < 360 {
			return fmt.Errorf("%w: partial cylinder", loaders.ErrUnsupported)
		}
		radius, zMin, zMax := 1.0, -1.0, 1.0
		if r, ok := stmt.GetFloatParam("radius"); ok {
			if r <= 0 {
				return fmt.Errorf("invalid cylinder radius %g: must be positive", r)
			}
			radius = r
		}
		if z, ok := stmt.GetFloatParam("zmin"); ok {
			zMin = z
		}
		if z, ok := stmt.GetFloatParam("zmax"); ok {
			zMax = z
		}
		if zMin > zMax {
			zMin, zMax = zMax, zMin
		}
		if zMax-zMin <= 0 {
			return fmt.Errorf("invalid cylinder height: zmin and zmax are equal")
		}
		base := stmt.Translate.Add(core.NewVec3(0, 0, zMin))
		top := stmt.Translate.Add(core.NewVec3(0, 0, zMax))
		shapes = append(shapes, geometry.NewCylinder(base, top, radius))

	case "bilinearmesh":
		points, ok := stmt.GetPoint3sParam("P")
		if !ok || len(points) < 4 {
			return fmt.Errorf("bilinearmesh needs at least 4 points in P")
		}
		indices, ok := stmt.GetIntsParam("indices")
		if !ok {
			indices = []int{0, 1, 2, 3}
		}
		if len(indices)%4 != 0 {
			return fmt.Errorf("bilinearmesh indices must come in groups of 4")
		}
		for i := 0; i < len(indices); i += 4 {
			var p [4]core.Vec3
			for k := 0; k < 4; k++ {
				idx := indices[i+k]
				if idx < 0 || idx >= len(points) {
					return fmt.Errorf("bilinearmesh index %d out of range", idx)
				}
				p[k] = points[idx].Add(stmt.Translate)
			}
			// P00 P10 P01 P11; the patch must be a parallelogram
			u, v := p[1].Subtract(p[0]), p[2].Subtract(p[0])
			if core.Distance(p[0].Add(u).Add(v), p[3]) > 1e-6*(u.Length()+v.Length()) {
				return fmt.Errorf("%w: non-planar bilinear patch", loaders.ErrUnsupported)
			}
			if stmt.ReverseOrientation {
				u, v = v, u
			}
			shapes = append(shapes, geometry.NewQuad(p[0], u, v))
		}

	case "trianglemesh", "plymesh":
		vertices, indices, err := meshData(stmt, dir)
		if err != nil {
			return err
		}
		for i := range vertices {
			vertices[i] = vertices[i].Add(stmt.Translate)
		}
		if stmt.ReverseOrientation {
			for i := 0; i+2 < len(indices); i += 3 {
				indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
			}
		}
		mesh, err := geometry.NewTriangleMesh(vertices, indices, nil)
		if err != nil {
			return err
		}
		for _, tri := range mesh.Triangles() {
			shapes = append(shapes, tri)
		}

	default:
		return fmt.Errorf("%w: shape %q", loaders.ErrUnsupported, stmt.Subtype)
	}

	if stmt.AreaLight == nil {
		for _, shape := range shapes {
			s.Add(mat, shape)
		}
		return nil
	}

	if stmt.AreaLight.Subtype != "diffuse" {
		return fmt.Errorf("%w: area light %q", loaders.ErrUnsupported, stmt.AreaLight.Subtype)
	}
	emission := core.NewVec3(1, 1, 1)
	if rgb, ok := stmt.AreaLight.GetRGBParam("L"); ok {
		emission = rgb
	}
	if scale, ok := stmt.AreaLight.GetFloatParam("scale"); ok {
		emission = emission.Multiply(scale)
	}
	twoSided, _ := stmt.AreaLight.GetBoolParam("twosided")
	for _, shape := range shapes {
		s.AddAreaLight(shape, emission, twoSided, mat)
	}
	return nil
}

func meshData(stmt *loaders.PBRTShape, dir string) ([]core.Vec3, []int, error) {
	if stmt.Subtype == "plymesh" {
		name, ok := stmt.GetStringParam("filename")
		if !ok {
			return nil, nil, fmt.Errorf("plymesh without filename")
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		data, err := loaders.LoadPLY(name)
		if err != nil {
			return nil, nil, err
		}
		return data.Vertices, data.Faces, nil
	}

	vertices, ok := stmt.GetPoint3sParam("P")
	if !ok || len(vertices) < 3 {
		return nil, nil, fmt.Errorf("trianglemesh missing or invalid vertices")
	}
	indices, ok := stmt.GetIntsParam("indices")
	if !ok {
		if len(vertices) != 3 {
			return nil, nil, fmt.Errorf("trianglemesh missing indices")
		}
		indices = []int{0, 1, 2}
	}
	return vertices, indices, nil
}

// convertLight converts a PBRT light to our light system
func convertLight(stmt *loaders.PBRTLight) (lights.Light, error) {
	intensity := core.NewVec3(1, 1, 1)
	if rgb, ok := stmt.GetRGBParam("I"); ok {
		intensity = rgb
	}
	if scale, ok := stmt.GetFloatParam("scale"); ok {
		intensity = intensity.Multiply(scale)
	}
	from := core.NewVec3(0, 0, 0)
	if p, ok := stmt.GetPoint3Param("from"); ok {
		from = p
	}
	from = from.Add(stmt.Translate)

	switch stmt.Subtype {
	case "point":
		return lights.NewPointLight(from, intensity), nil

	case "spot":
		to := core.NewVec3(0, 0, 1)
		if p, ok := stmt.GetPoint3Param("to"); ok {
			to = p
		}
		to = to.Add(stmt.Translate)
		coneAngle, coneDelta := 30.0, 5.0
		if v, ok := stmt.GetFloatParam("coneangle"); ok {
			coneAngle = v
		}
		if v, ok := stmt.GetFloatParam("conedelta"); ok {
			coneDelta = v
		}
		return lights.NewSpotLight(from, to, intensity, coneAngle, coneDelta), nil

	default:
		return nil, fmt.Errorf("%w: light %q", loaders.ErrUnsupported, stmt.Subtype)
	}
}
