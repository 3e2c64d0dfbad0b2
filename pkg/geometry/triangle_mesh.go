package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// ErrBadMesh is returned for inconsistent vertex/index data
var ErrBadMesh = errors.New("geometry: invalid triangle mesh")

// TriangleMesh is an indexed triangle list. Its triangles are handed to the
// scene BVH individually rather than intersected through the mesh.
type TriangleMesh struct {
	Vertices  []core.Vec3
	Indices   []int
	triangles []*Triangle
	bbox      core.AABB
}

// TriangleMeshOptions contains optional transforms applied to the vertices
type TriangleMeshOptions struct {
	Scale     float64    // Uniform scale, 0 means 1
	Rotation  *core.Vec3 // Rotation in radians around X, Y, Z
	Center    *core.Vec3 // Pivot for scale and rotation
	Translate core.Vec3
}

// NewTriangleMesh creates a mesh from vertices and triangle indices
// (each group of 3 indices forms a counter-clockwise triangle)
func NewTriangleMesh(vertices []core.Vec3, indices []int, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrBadMesh, len(indices))
	}

	working := vertices
	if options != nil {
		working = make([]core.Vec3, len(vertices))
		for i, v := range vertices {
			working[i] = options.apply(v)
		}
	}

	mesh := &TriangleMesh{
		Vertices:  working,
		Indices:   indices,
		triangles: make([]*Triangle, 0, len(indices)/3),
		bbox:      core.EmptyAABB(),
	}
	for i := 0; i < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(working) {
				return nil, fmt.Errorf("%w: index %d out of range for %d vertices", ErrBadMesh, idx, len(working))
			}
		}
		tri := NewTriangle(working[i0], working[i1], working[i2])
		if tri.Area() == 0 {
			// degenerate faces are common in scanned meshes and contribute nothing
			continue
		}
		mesh.triangles = append(mesh.triangles, tri)
		mesh.bbox = mesh.bbox.Union(tri.BoundingBox())
	}
	return mesh, nil
}

func (o *TriangleMeshOptions) apply(v core.Vec3) core.Vec3 {
	var pivot core.Vec3
	if o.Center != nil {
		pivot = *o.Center
	}
	v = v.Subtract(pivot)
	if o.Scale != 0 {
		v = v.Multiply(o.Scale)
	}
	if o.Rotation != nil {
		v = RotateXYZ(v, *o.Rotation)
	}
	return v.Add(pivot).Add(o.Translate)
}

// Triangles returns the non-degenerate triangles of the mesh
func (tm *TriangleMesh) Triangles() []*Triangle {
	return tm.triangles
}

// TriangleCount returns the number of non-degenerate triangles
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// RotateXYZ applies rotation around X, Y, Z axes (in that order)
func RotateXYZ(vertex, rotation core.Vec3) core.Vec3 {
	if rotation.X != 0 {
		cos := math.Cos(rotation.X)
		sin := math.Sin(rotation.X)
		y := vertex.Y*cos - vertex.Z*sin
		z := vertex.Y*sin + vertex.Z*cos
		vertex = core.NewVec3(vertex.X, y, z)
	}

	if rotation.Y != 0 {
		cos := math.Cos(rotation.Y)
		sin := math.Sin(rotation.Y)
		x := vertex.X*cos + vertex.Z*sin
		z := -vertex.X*sin + vertex.Z*cos
		vertex = core.NewVec3(x, vertex.Y, z)
	}

	if rotation.Z != 0 {
		cos := math.Cos(rotation.Z)
		sin := math.Sin(rotation.Z)
		x := vertex.X*cos - vertex.Y*sin
		y := vertex.X*sin + vertex.Y*cos
		vertex = core.NewVec3(x, y, vertex.Z)
	}

	return vertex
}
