package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshspan/internal/config"
	"github.com/Faultbox/meshspan/internal/diaglog"
	"github.com/Faultbox/meshspan/internal/gltfio"
)

func writeQuad(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2, 0, 2, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{"POSITION": pos, "TEXCOORD_0": uv},
			Indices:    gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "quad", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []uint32{0}

	path := filepath.Join(dir, "quad.gltf")
	require.NoError(t, gltfio.Save(doc, path, false))
	return path
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := writeQuad(t, dir)

	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	sink := diaglog.New(nil)

	out, totals, err := convertFile(context.Background(), cfg, nil, sink, input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "quad.glb"), out)
	assert.Equal(t, 1, totals.Spans)
	assert.Equal(t, 4, totals.Vertices)
	assert.Equal(t, 6, totals.Indices)
	assert.Zero(t, sink.Fatals())

	doc, err := gltf.Open(out)
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 1)
	assert.Equal(t, "quad", doc.Meshes[0].Name)
}

func TestConvertFileMissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	out, _, err := convertFile(context.Background(), cfg, nil, diaglog.New(nil), filepath.Join(t.TempDir(), "nope.glb"))
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestPrintMeshes(t *testing.T) {
	scene, err := gltfio.Import(writeQuad(t, t.TempDir()), gltfio.ImportOptions{SmoothGroup: 1, WeightChannel: -1})
	require.NoError(t, err)

	var buf bytes.Buffer
	printMeshes(&buf, scene)
	assert.Contains(t, buf.String(), "NAME")
	assert.Regexp(t, `quad\s+Geometry\s+4\s+2\s+1\s+-\s+-`, buf.String())
}
