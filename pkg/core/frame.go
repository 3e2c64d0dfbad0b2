package core

import "math"

// Frame is an orthonormal basis used to move directions into and out of a
// local shading space where N is the +Z axis
type Frame struct {
	S, T, N Vec3
}

// NewFrameFromZ builds a frame around the unit vector n
func NewFrameFromZ(n Vec3) Frame {
	s, t := CoordinateSystem(n)
	return Frame{S: s, T: t, N: n}
}

// ToLocal expresses a world direction in frame coordinates
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{X: v.Dot(f.S), Y: v.Dot(f.T), Z: v.Dot(f.N)}
}

// FromLocal converts a frame direction back to world space
func (f Frame) FromLocal(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// CoordinateSystem returns two unit vectors orthogonal to n and to each other
func CoordinateSystem(n Vec3) (Vec3, Vec3) {
	var s Vec3
	if math.Abs(n.X) > math.Abs(n.Y) {
		s = NewVec3(-n.Z, 0, n.X).Divide(math.Sqrt(n.X*n.X + n.Z*n.Z))
	} else {
		s = NewVec3(0, n.Z, -n.Y).Divide(math.Sqrt(n.Y*n.Y + n.Z*n.Z))
	}
	return s, n.Cross(s)
}

// CosTheta returns the cosine of a local direction with the frame normal
func CosTheta(w Vec3) float64 { return w.Z }

// AbsCosTheta returns |cos| of a local direction
func AbsCosTheta(w Vec3) float64 { return math.Abs(w.Z) }

// SameHemisphere reports whether two local directions lie on the same side
func SameHemisphere(a, b Vec3) bool { return a.Z*b.Z > 0 }
