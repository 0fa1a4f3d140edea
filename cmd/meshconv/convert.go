package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshspan/internal/batch"
	"github.com/Faultbox/meshspan/internal/config"
	"github.com/Faultbox/meshspan/internal/diaglog"
	"github.com/Faultbox/meshspan/internal/gltfio"
	"github.com/Faultbox/meshspan/internal/logger"
	"github.com/Faultbox/meshspan/internal/matlib"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

func cmdConvert(ctx context.Context, args []string) error {
	cfg, fs, err := setup("convert", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: meshconv convert [options] <file.gltf|glb>...")
	}

	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	diags := diaglog.New(logger.Named("convert"))
	var sink meshconv.Sink = diags
	if cfg.Convert.WarnOncePerRun {
		sink = meshconv.NewOnceSink(diags)
	}

	var failed error
	for _, input := range fs.Args() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		out, totals, err := convertFile(ctx, cfg, lib, sink, input)
		if err != nil {
			failed = err
			logger.Error("conversion failed", zap.String("input", input), zap.Error(err))
			fmt.Fprintf(os.Stderr, "%s: %v\n", input, err)
		}
		if out != "" {
			fmt.Printf("%s -> %s (%d spans, %d vertices, %d faces, %d diced)\n",
				input, out, totals.Spans, totals.Vertices, totals.Indices/3, totals.DicedSpans)
		}
	}
	diags.LogSummary()
	return failed
}

func loadLibrary(cfg *config.Config) (*matlib.Library, error) {
	if cfg.Materials.Library == "" {
		return nil, nil
	}
	lib, err := matlib.Load(cfg.Materials.Library)
	if err != nil {
		return nil, fmt.Errorf("material library: %w", err)
	}
	logger.Info("material library loaded",
		zap.String("path", cfg.Materials.Library),
		zap.Int("materials", len(lib.Names())),
	)
	return lib, nil
}

// convertFile converts one input. Meshes that fail are left out of the
// output and reported through the returned error; out is empty only when
// nothing was written.
func convertFile(ctx context.Context, cfg *config.Config, lib *matlib.Library, sink meshconv.Sink, input string) (string, meshconv.Stats, error) {
	scene, err := gltfio.Import(input, cfg.ImportOptions())
	if err != nil {
		return "", meshconv.Stats{}, err
	}
	if scene.Skipped > 0 {
		logger.Warn("skipped non-triangle primitives", zap.String("input", input), zap.Int("count", scene.Skipped))
	}

	conv := meshconv.NewConverter(cfg.Convert.Options, matlib.NewResolver(lib, scene.Materials), sink)
	results, runErr := batch.Run(ctx, conv, scene.Meshes, batch.Options{
		Workers:  cfg.Batch.Workers,
		FailFast: cfg.Batch.FailFast,
	})

	var spans []*meshconv.Span
	for _, r := range results {
		spans = append(spans, r.Spans...)
	}
	totals := batch.Totals(results)
	if len(spans) == 0 {
		return "", totals, runErr
	}

	out := gltfio.OutputPath(cfg.Output.Dir, input, cfg.Output.Binary)
	if err := gltfio.Save(gltfio.Export(spans), out, cfg.Output.Binary); err != nil {
		return "", totals, fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("spans written",
		zap.String("input", input),
		zap.String("output", out),
		zap.Int("spans", len(spans)),
	)
	return out, totals, runErr
}
