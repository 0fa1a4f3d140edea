package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Faultbox/meshspan/internal/batch"
	"github.com/Faultbox/meshspan/internal/gltfio"
	"github.com/Faultbox/meshspan/internal/matlib"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

func cmdInfo(args []string) error {
	var convert bool
	cfg, fs, err := setup("info", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&convert, "convert", false, "Also run the converter and show span counts")
	})
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: meshconv info [options] <file.gltf|glb>")
	}

	input := fs.Arg(0)
	scene, err := gltfio.Import(input, cfg.ImportOptions())
	if err != nil {
		return err
	}

	fmt.Printf("File:      %s\n", input)
	fmt.Printf("Meshes:    %d\n", len(scene.Meshes))
	fmt.Printf("Materials: %d\n", len(scene.Materials))
	if scene.Skipped > 0 {
		fmt.Printf("Skipped:   %d non-triangle primitives\n", scene.Skipped)
	}
	fmt.Println()
	printMeshes(os.Stdout, scene)

	if !convert {
		return nil
	}
	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}
	conv := meshconv.NewConverter(cfg.Convert.Options, matlib.NewResolver(lib, scene.Materials), nil)
	results, runErr := batch.Run(context.Background(), conv, scene.Meshes, batch.Options{Workers: cfg.Batch.Workers})
	fmt.Println()
	printResults(os.Stdout, results)
	return runErr
}

func printMeshes(w io.Writer, scene *gltfio.Scene) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tVERTS\tFACES\tUVS\tSKIN\tMATERIAL")
	for _, m := range scene.Meshes {
		uvs := 0
		for _, ch := range m.UVChannels {
			if ch != nil {
				uvs++
			}
		}
		mat := "-"
		if m.MaterialSlot >= 0 && m.MaterialSlot < len(scene.Materials) {
			mat = scene.Materials[m.MaterialSlot].Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			m.Name, m.Kind, len(m.Vertices), len(m.Faces), uvs, skinLabel(m.Skin), mat)
	}
	tw.Flush()
}

func skinLabel(s *meshconv.SkinBinding) string {
	switch {
	case s == nil:
		return "-"
	case s.Native != nil:
		return fmt.Sprintf("%d bones", s.NumBones)
	default:
		return fmt.Sprintf("channel %d", s.WeightChannel)
	}
}

func printResults(w io.Writer, results []batch.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MESH\tSPANS\tVERTS\tFACES\tSKIPPED\tDICED\tERROR")
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Mesh.Name, r.Stats.Spans, r.Stats.Vertices, r.Stats.Indices/3,
			r.Stats.FacesSkipped+r.Stats.FacesBadIndex, r.Stats.DicedSpans, errText)
	}
	tw.Flush()
}
