package math

import "testing"

func TestEmptyBox(t *testing.T) {
	b := EmptyBox()
	if !b.IsEmpty() {
		t.Fatal("EmptyBox() should be empty")
	}
	if got := b.Size(); got != (Vec3{}) {
		t.Errorf("EmptyBox().Size() = %v, want zero", got)
	}
	b = b.Extend(Vec3{1, 2, 3})
	if b.IsEmpty() {
		t.Error("box with one point should not be empty")
	}
	if b.Min != b.Max {
		t.Errorf("single point box: Min %v != Max %v", b.Min, b.Max)
	}
}

func TestBoxLongestAxis(t *testing.T) {
	tests := []struct {
		name string
		max  Vec3
		want int
	}{
		{"x", Vec3{10, 1, 1}, 0},
		{"y", Vec3{1, 10, 1}, 1},
		{"z", Vec3{1, 1, 10}, 2},
		{"tie prefers x", Vec3{5, 5, 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := EmptyBox().Extend(Vec3{}).Extend(tt.max)
			if got := b.LongestAxis(); got != tt.want {
				t.Errorf("LongestAxis() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBoxUnionCenter(t *testing.T) {
	a := EmptyBox().Extend(Vec3{0, 0, 0})
	b := EmptyBox().Extend(Vec3{4, 2, -2})
	u := a.Union(b)
	if got, want := u.Center(), (Vec3{2, 1, -1}); got != want {
		t.Errorf("Center() = %v, want %v", got, want)
	}
	if got := u.MaxExtent(); got != 4 {
		t.Errorf("MaxExtent() = %v, want 4", got)
	}
}
