package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Faultbox/meshspan/pkg/math"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

type convFunc func(mesh *meshconv.SourceMesh) ([]*meshconv.Span, meshconv.Stats, error)

func (f convFunc) ConvertWithStats(mesh *meshconv.SourceMesh) ([]*meshconv.Span, meshconv.Stats, error) {
	return f(mesh)
}

var errBroken = errors.New("broken")

// fake fails meshes named "bad" and reports one span per face otherwise.
func fake(calls *atomic.Int32) convFunc {
	return func(mesh *meshconv.SourceMesh) ([]*meshconv.Span, meshconv.Stats, error) {
		calls.Add(1)
		if mesh.Name == "bad" {
			return nil, meshconv.Stats{}, errBroken
		}
		spans := make([]*meshconv.Span, len(mesh.Faces))
		return spans, meshconv.Stats{FacesIn: len(mesh.Faces), Spans: len(spans)}, nil
	}
}

func meshes(names ...string) []*meshconv.SourceMesh {
	out := make([]*meshconv.SourceMesh, len(names))
	for i, n := range names {
		out[i] = &meshconv.SourceMesh{Name: n, Faces: make([]meshconv.Face, i+1)}
	}
	return out
}

func TestRunKeepsOrder(t *testing.T) {
	var calls atomic.Int32
	in := meshes("a", "b", "c", "d", "e")
	results, err := Run(context.Background(), fake(&calls), in, Options{Workers: 3})
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Same(t, in[i], r.Mesh)
		assert.Len(t, r.Spans, i+1)
	}
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, meshconv.Stats{FacesIn: 15, Spans: 15}, Totals(results))
}

func TestRunCollectsErrors(t *testing.T) {
	var calls atomic.Int32
	results, err := Run(context.Background(), fake(&calls), meshes("a", "bad", "c", "bad"), Options{Workers: 2})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errBroken)
	assert.ErrorIs(t, results[1].Err, errBroken)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 4, Totals(results).FacesIn, "only a and c count")
}

func TestRunFailFast(t *testing.T) {
	var calls atomic.Int32
	results, err := Run(context.Background(), fake(&calls), meshes("bad", "b", "c"), Options{Workers: 1, FailFast: true})
	require.Error(t, err)
	assert.ErrorIs(t, results[0].Err, errBroken)
	assert.ErrorIs(t, results[1].Err, ErrSkipped)
	assert.ErrorIs(t, results[2].Err, ErrSkipped)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, err := Run(ctx, fake(&calls), meshes("a", "b"), Options{})
	require.Error(t, err)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, ErrSkipped)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestRunWithConverter(t *testing.T) {
	quad := &meshconv.SourceMesh{
		Name:     "quad",
		Kind:     meshconv.KindGeometry,
		Vertices: []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		Faces: []meshconv.Face{
			{V: [3]int{0, 1, 2}, SmoothGroup: 1},
			{V: [3]int{0, 2, 3}, SmoothGroup: 1},
		},
	}
	untextured := meshconv.MaterialFunc(func(int) meshconv.MaterialDescriptor {
		return meshconv.MaterialDescriptor{Name: "flat", Kind: meshconv.MatSimple}
	})
	conv := meshconv.NewConverter(meshconv.Options{}, untextured, nil)

	results, err := Run(context.Background(), conv, []*meshconv.SourceMesh{quad, quad}, Options{Workers: 2})
	require.NoError(t, err)
	for _, r := range results {
		require.Len(t, r.Spans, 1)
		assert.Len(t, r.Spans[0].Vertices, 4)
		assert.Equal(t, 2, r.Stats.FacesIn)
	}
}
