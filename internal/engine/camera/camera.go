// Package camera provides the orbit camera used to inspect spans.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshspan/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // Radians above the horizon
	Yaw      float32 // Radians around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	FOV  float32 // Vertical field of view, degrees
	Near float32
	Far  float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera(fov float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:        10,
		Pitch:           0.5,
		MinDistance:     0.01,
		MaxDistance:     1e6,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		FOV:             fov,
		Near:            0.01,
		Far:             1000,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	offset := math.Vec3{
		X: c.Distance * cp * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cp * math32.Cos(c.Yaw),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV*math32.Pi/180, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation from a mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on b and backs off until the bounding
// sphere fills the vertical field of view. Empty boxes are ignored.
func (c *OrbitCamera) FitToBounds(b math.Box3) {
	if b.IsEmpty() {
		return
	}
	c.Center = b.Center()
	radius := b.Size().Length() / 2
	if radius == 0 {
		radius = 1
	}
	half := c.FOV * math32.Pi / 360
	c.Distance = radius / math32.Sin(half)
	c.MinDistance = radius * 0.01
	c.MaxDistance = c.Distance * 100
	c.Near = c.Distance * 0.01
	c.Far = c.Distance + radius*4
	c.Pitch = 0.5
	c.Yaw = 0.6
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
