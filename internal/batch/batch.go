// Package batch converts the meshes of a scene concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshspan/internal/logger"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// ErrSkipped marks meshes that were never converted.
var ErrSkipped = errors.New("skipped")

// Converter is the part of meshconv.Converter a batch needs.
type Converter interface {
	ConvertWithStats(mesh *meshconv.SourceMesh) ([]*meshconv.Span, meshconv.Stats, error)
}

// Result is the outcome for one mesh. Results keep input order.
type Result struct {
	Mesh  *meshconv.SourceMesh
	Spans []*meshconv.Span
	Stats meshconv.Stats
	Err   error
}

// Options controls a batch run.
type Options struct {
	Workers  int  // <= 0 means one
	FailFast bool // Stop scheduling after the first failed mesh
}

// Run converts every mesh. Each failed mesh's error is kept in its Result
// and combined into the returned error. Meshes not started before ctx is
// cancelled, or after a failure with FailFast, get ErrSkipped wrapping the
// cancellation cause.
func Run(ctx context.Context, conv Converter, meshes []*meshconv.SourceMesh, opts Options) ([]Result, error) {
	results := make([]Result, len(meshes))
	for i, m := range meshes {
		results[i].Mesh = m
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, m := range meshes {
		if gctx.Err() != nil {
			results[i].Err = skipped(gctx)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i].Err = skipped(gctx)
				return nil
			}
			spans, stats, err := conv.ConvertWithStats(m)
			results[i].Spans, results[i].Stats, results[i].Err = spans, stats, err
			if err != nil {
				logger.Debug("mesh failed", zap.String("mesh", m.Name), zap.Error(err))
				if opts.FailFast {
					return err
				}
				return nil
			}
			logger.Debug("mesh converted",
				zap.String("mesh", m.Name),
				zap.Int("spans", len(spans)),
				zap.Int("faces", stats.FacesIn),
			)
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Mesh.Name, r.Err))
		}
	}
	return results, errs
}

func skipped(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrSkipped, context.Cause(ctx))
}

// Totals sums the stats of successful results.
func Totals(results []Result) meshconv.Stats {
	var t meshconv.Stats
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		t.FacesIn += r.Stats.FacesIn
		t.FacesSkipped += r.Stats.FacesSkipped
		t.FacesBadIndex += r.Stats.FacesBadIndex
		t.Spans += r.Stats.Spans
		t.Vertices += r.Stats.Vertices
		t.Indices += r.Stats.Indices
		t.DicedSpans += r.Stats.DicedSpans
	}
	return t
}
