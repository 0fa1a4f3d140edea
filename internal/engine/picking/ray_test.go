package picking

import (
	"testing"

	"github.com/Faultbox/meshspan/pkg/math"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float32) math.Box3 {
	return math.Box3{Min: math.Vec3{X: minX, Y: minY, Z: minZ}, Max: math.Vec3{X: maxX, Y: maxY, Z: maxZ}}
}

func TestIntersectBox(t *testing.T) {
	unit := box(-1, -1, -1, 1, 1, 1)
	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{"front", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, 4, true},
		{"inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, 1, true},
		{"behind", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, 0, false},
		{"parallel outside", Ray{Origin: math.Vec3{Y: 2, Z: 5}, Direction: math.Vec3{Z: -1}}, 0, false},
		{"miss", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{X: 0.6, Z: -0.8}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotT, hit := tt.ray.IntersectBox(unit)
			if hit != tt.hit || gotT != tt.wantT {
				t.Errorf("IntersectBox() = (%v, %v), want (%v, %v)", gotT, hit, tt.wantT, tt.hit)
			}
		})
	}

	if _, hit := (Ray{Direction: math.Vec3{X: 1}}).IntersectBox(math.EmptyBox()); hit {
		t.Error("IntersectBox(empty) hit")
	}
}

func TestNearest(t *testing.T) {
	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	boxes := []math.Box3{
		box(-1, -1, -5, 1, 1, -4),
		box(-1, -1, 2, 1, 1, 3),
		box(5, 5, 5, 6, 6, 6),
	}
	if got := r.Nearest(boxes); got != 1 {
		t.Errorf("Nearest() = %d, want 1", got)
	}
	if got := r.Nearest(boxes[2:]); got != -1 {
		t.Errorf("Nearest() = %d, want -1", got)
	}
}

func TestScreenToRay(t *testing.T) {
	eye := math.Vec3{Z: 10}
	view := math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(1, 1, 0.1, 100)
	inv := proj.Mul(view).Inverse()

	r := ScreenToRay(50, 50, 100, 100, inv)
	if !r.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-4) {
		t.Errorf("center ray direction = %v, want -Z", r.Direction)
	}
	if _, hit := r.IntersectBox(box(-1, -1, -1, 1, 1, 1)); !hit {
		t.Error("center ray misses the box at the origin")
	}

	corner := ScreenToRay(0, 0, 100, 100, inv)
	if corner.Direction.X >= 0 || corner.Direction.Y <= 0 {
		t.Errorf("top-left ray direction = %v, want -X +Y", corner.Direction)
	}
}
