package geometry

import (
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

// Box represents a rectangular box made up of 6 quads with optional rotation
type Box struct {
	Center   core.Vec3 // Center point of the box
	Size     core.Vec3 // Half-extents along each axis
	Rotation core.Vec3 // Rotation angles in radians (X, Y, Z)
	faces    [6]*Quad  // The 6 quad faces, normals pointing out
	bbox     core.AABB
}

// NewBox creates a new box. Size holds half-extents, so (1,1,1) creates a
// 2x2x2 box. Rotation is applied around X, Y and Z in that order.
func NewBox(center, size, rotation core.Vec3) *Box {
	box := &Box{
		Center:   center,
		Size:     size,
		Rotation: rotation,
	}
	box.generateFaces()
	return box
}

// NewAxisAlignedBox creates a new axis-aligned box (no rotation)
func NewAxisAlignedBox(center, size core.Vec3) *Box {
	return NewBox(center, size, core.Vec3{})
}

func (b *Box) generateFaces() {
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}
	for i := range corners {
		corners[i] = RotateXYZ(corners[i].MultiplyVec(b.Size), b.Rotation).Add(b.Center)
	}

	face := func(c, u, v int) *Quad {
		return NewQuad(corners[c], corners[u].Subtract(corners[c]), corners[v].Subtract(corners[c]))
	}
	b.faces = [6]*Quad{
		face(4, 5, 7), // +Z
		face(1, 0, 2), // -Z
		face(5, 1, 6), // +X
		face(0, 4, 3), // -X
		face(3, 7, 2), // +Y
		face(4, 0, 5), // -Y
	}
	b.bbox = core.NewAABBFromPoints(corners[:]...)
}

// Faces returns the six faces so they can be placed in the BVH individually
func (b *Box) Faces() []*Quad {
	return b.faces[:]
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	var closest *material.SurfaceInteraction
	closestT := tMax
	for _, face := range b.faces {
		if si, ok := face.Hit(ray, tMin, closestT); ok {
			closestT = si.T
			closest = si
		}
	}
	return closest, closest != nil
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}
