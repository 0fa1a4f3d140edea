package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshspan/pkg/math"
)

func TestBoxLines(t *testing.T) {
	b := math.Box3{Min: math.Vec3{}, Max: math.Vec3{X: 1, Y: 2, Z: 3}}
	lines := BoxLines(b, math.Identity())
	require.Len(t, lines, 12*2*3)

	for i := 0; i < len(lines); i += 6 {
		a := math.Vec3{X: lines[i], Y: lines[i+1], Z: lines[i+2]}
		c := math.Vec3{X: lines[i+3], Y: lines[i+4], Z: lines[i+5]}
		d := c.Sub(a)
		axes := 0
		for k := 0; k < 3; k++ {
			if d.Axis(k) != 0 {
				axes++
			}
		}
		assert.Equal(t, 1, axes, "edge %v-%v is axis aligned", a, c)
	}

	moved := BoxLines(b, math.Translate(10, 0, 0))
	assert.Equal(t, float32(10), moved[0])
	assert.Nil(t, BoxLines(math.EmptyBox(), math.Identity()))
}

func TestSpanColor(t *testing.T) {
	assert.Equal(t, SpanColor(0), SpanColor(6))
	assert.NotEqual(t, SpanColor(0), SpanColor(1))
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "spanview")
	sc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue in GL order
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "spanview_2024-05-06_07-08-09.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, _, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), b, "top row comes from the last GL row")

	_, err = sc.CaptureFromPixels(pixels, 2, 2)
	assert.Error(t, err)
}
