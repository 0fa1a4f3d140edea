package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshspan/pkg/math"
)

func TestPosition(t *testing.T) {
	c := NewOrbitCamera(45)
	c.Center = math.Vec3{X: 1, Y: 2, Z: 3}
	c.Distance = 5
	c.Pitch = 0
	c.Yaw = 0

	got := c.Position()
	want := math.Vec3{X: 1, Y: 2, Z: 8}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Position() = %v, want %v", got, want)
	}

	c.Pitch = math32.Pi / 2
	got = c.Position()
	want = math.Vec3{X: 1, Y: 7, Z: 3}
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("Position() at zenith = %v, want %v", got, want)
	}
}

func TestViewMatrixMapsCenterAhead(t *testing.T) {
	c := NewOrbitCamera(45)
	c.Center = math.Vec3{X: 3, Y: -1, Z: 2}
	c.Distance = 4

	got := c.ViewMatrix().TransformPoint(c.Center)
	want := math.Vec3{Z: -4}
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("view(center) = %v, want %v", got, want)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera(45)
	c.HandleDrag(0, 10000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MaxPitch)
	}
	c.HandleDrag(0, -10000)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MinPitch)
	}
	yaw := c.Yaw
	c.HandleDrag(100, 0)
	if c.Yaw >= yaw {
		t.Errorf("Yaw = %v, want less than %v", c.Yaw, yaw)
	}
}

func TestHandleZoom(t *testing.T) {
	c := NewOrbitCamera(45)
	c.Distance = 10
	c.HandleZoom(1)
	if c.Distance != 9 {
		t.Errorf("Distance = %v, want 9", c.Distance)
	}
	for i := 0; i < 1000; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want clamp to %v", c.Distance, c.MinDistance)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera(60)
	b := math.EmptyBox().Extend(math.Vec3{X: -1, Y: -1, Z: -1}).Extend(math.Vec3{X: 1, Y: 1, Z: 1})
	c.FitToBounds(b)

	if !c.Center.IsZero() {
		t.Errorf("Center = %v, want origin", c.Center)
	}
	radius := math32.Sqrt(3)
	if want := radius / math32.Sin(math32.Pi/6); math32.Abs(c.Distance-want) > 1e-4 {
		t.Errorf("Distance = %v, want %v", c.Distance, want)
	}
	if c.Near <= 0 || c.Far <= c.Distance+radius {
		t.Errorf("clip planes [%v, %v] do not contain the box", c.Near, c.Far)
	}

	before := *c
	c.FitToBounds(math.EmptyBox())
	if *c != before {
		t.Error("FitToBounds(empty) changed the camera")
	}
}
