// spanview converts a glTF file and previews the resulting spans.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshspan/internal/batch"
	"github.com/Faultbox/meshspan/internal/config"
	"github.com/Faultbox/meshspan/internal/diaglog"
	"github.com/Faultbox/meshspan/internal/engine/window"
	"github.com/Faultbox/meshspan/internal/gltfio"
	"github.com/Faultbox/meshspan/internal/logger"
	"github.com/Faultbox/meshspan/internal/matlib"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(args []string) error {
	var flags config.Flags
	fs := flag.NewFlagSet("spanview", flag.ContinueOnError)
	flags.Register(fs)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: spanview [options] <file.gltf|glb>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("no input file")
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		return err
	}

	input := fs.Arg(0)
	spans, err := convert(cfg, input)
	if err != nil {
		return err
	}
	if len(spans) == 0 {
		return fmt.Errorf("%s produced no spans", input)
	}

	win, err := window.New(window.Config{
		Title:  "spanview - " + filepath.Base(input),
		Width:  cfg.Preview.Width,
		Height: cfg.Preview.Height,
		VSync:  cfg.Preview.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	logger.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	v, err := newViewer(win, cfg.Preview, cfg.Output.Dir, spans)
	if err != nil {
		return err
	}
	defer v.release()
	v.loop()
	return nil
}

// convert runs the import and conversion pipeline, keeping spans of the
// meshes that succeeded.
func convert(cfg *config.Config, input string) ([]*meshconv.Span, error) {
	scene, err := gltfio.Import(input, cfg.ImportOptions())
	if err != nil {
		return nil, err
	}

	var lib *matlib.Library
	if cfg.Materials.Library != "" {
		if lib, err = matlib.Load(cfg.Materials.Library); err != nil {
			return nil, fmt.Errorf("material library: %w", err)
		}
	}

	diags := diaglog.New(logger.Named("spanview"))
	conv := meshconv.NewConverter(cfg.Convert.Options, matlib.NewResolver(lib, scene.Materials), diags)
	results, runErr := batch.Run(context.Background(), conv, scene.Meshes, batch.Options{Workers: cfg.Batch.Workers})
	if runErr != nil {
		logger.Warn("some meshes failed to convert", zap.Error(runErr))
	}

	var spans []*meshconv.Span
	for _, r := range results {
		spans = append(spans, r.Spans...)
	}
	totals := batch.Totals(results)
	logger.Info("converted",
		zap.String("input", input),
		zap.Int("spans", totals.Spans),
		zap.Int("vertices", totals.Vertices),
		zap.Int("faces", totals.Indices/3),
	)
	diags.LogSummary()
	return spans, nil
}
