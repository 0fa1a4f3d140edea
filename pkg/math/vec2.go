package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector, mostly used for UV coordinates.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Cross returns the z component of the 3D cross product of v and other.
// For two UV edges this is twice the signed area of the UV triangle.
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}

// Axis returns component i (0=X/U, 1=Y/V).
func (v Vec2) Axis(i int) float32 {
	if i == 0 {
		return v.X
	}
	return v.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Hypot(v.X, v.Y)
}
