package main

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshspan/internal/config"
	"github.com/Faultbox/meshspan/internal/engine/camera"
	"github.com/Faultbox/meshspan/internal/engine/debug"
	"github.com/Faultbox/meshspan/internal/engine/gpubuf"
	"github.com/Faultbox/meshspan/internal/engine/input"
	"github.com/Faultbox/meshspan/internal/engine/lighting"
	"github.com/Faultbox/meshspan/internal/engine/picking"
	"github.com/Faultbox/meshspan/internal/engine/shader"
	"github.com/Faultbox/meshspan/internal/engine/window"
	"github.com/Faultbox/meshspan/internal/logger"
	"github.com/Faultbox/meshspan/pkg/math"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

type viewer struct {
	win    *window.Window
	input  *input.Input
	camera *camera.OrbitCamera
	bounds math.Box3

	program  uint32
	locMVP   int32
	locModel int32
	locLight int32
	locMode  int32

	buffers    []*gpubuf.Buffer
	lines      *debug.LineRenderer
	boxes      []*debug.LineSet
	showBounds bool
	shots      *debug.ScreenshotCapture
	selected   int

	light     math.Vec3
	mode      int32
	wireframe bool
	width     int32
	height    int32
}

func newViewer(win *window.Window, cfg config.PreviewConfig, shotDir string, spans []*meshconv.Span) (*viewer, error) {
	program, err := shader.CompileProgram(shader.SpanVertex, shader.SpanFragment)
	if err != nil {
		return nil, fmt.Errorf("span shader: %w", err)
	}
	lines, err := debug.NewLineRenderer()
	if err != nil {
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("line shader: %w", err)
	}

	v := &viewer{
		win:       win,
		input:     input.New(),
		camera:    camera.NewOrbitCamera(cfg.FOV),
		bounds:    worldBounds(spans),
		program:   program,
		locMVP:    shader.Uniform(program, "uMVP"),
		locModel:  shader.Uniform(program, "uModel"),
		locLight:  shader.Uniform(program, "uLightDir"),
		locMode:   shader.Uniform(program, "uMode"),
		light:     lighting.SunDirection(cfg.LightAzimuth, cfg.LightElevation),
		wireframe: cfg.Wireframe,
		lines:     lines,
		shots:     debug.NewScreenshotCapture(shotDir, "spanview"),
		selected:  -1,
	}
	for i, s := range spans {
		v.buffers = append(v.buffers, gpubuf.Upload(s))
		v.boxes = append(v.boxes, lines.Upload(debug.BoxLines(s.Bounds, s.LocalToObject.OrIdentity()), debug.SpanColor(i)))
	}
	v.camera.FitToBounds(v.bounds)

	w, h := win.Size()
	v.width, v.height = int32(w), int32(h)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.15, 0.15, 0.18, 1)

	logger.Info("spans uploaded", zap.Int("buffers", len(v.buffers)))
	return v, nil
}

func (v *viewer) release() {
	for _, b := range v.buffers {
		b.Delete()
	}
	for _, ls := range v.boxes {
		ls.Delete()
	}
	v.lines.Release()
	gl.DeleteProgram(v.program)
}

func (v *viewer) loop() {
	for {
		if v.input.Update() {
			return
		}
		v.handleInput()
		v.draw()
		v.win.SwapBuffers()
	}
}

func (v *viewer) handleInput() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.width, v.height = int32(e.Width), int32(e.Height)
		case input.EventDrag:
			v.camera.HandleDrag(e.DX, e.DY)
		case input.EventWheel:
			v.camera.HandleZoom(e.DY)
		case input.EventClick:
			v.pick(e.X, e.Y)
		}
	}
	if v.input.KeyPressed(sdl.SCANCODE_W) {
		v.wireframe = !v.wireframe
	}
	if v.input.KeyPressed(sdl.SCANCODE_M) {
		v.mode = (v.mode + 1) % shader.NumModes
	}
	if v.input.KeyPressed(sdl.SCANCODE_F) {
		v.camera.FitToBounds(v.bounds)
	}
	if v.input.KeyPressed(sdl.SCANCODE_B) {
		v.showBounds = !v.showBounds
	}
	if v.input.KeyPressed(sdl.SCANCODE_P) {
		v.screenshot()
	}
}

func (v *viewer) viewProj() math.Mat4 {
	aspect := float32(1)
	if v.height > 0 {
		aspect = float32(v.width) / float32(v.height)
	}
	return v.camera.ProjectionMatrix(aspect).Mul(v.camera.ViewMatrix())
}

// pick selects the span whose bounds are nearest under the cursor.
func (v *viewer) pick(x, y int) {
	ray := picking.ScreenToRay(float32(x), float32(y), float32(v.width), float32(v.height), v.viewProj().Inverse())
	boxes := make([]math.Box3, len(v.buffers))
	for i, b := range v.buffers {
		boxes[i] = worldBounds([]*meshconv.Span{b.Span})
	}
	if v.selected >= 0 {
		v.boxes[v.selected].Color = debug.SpanColor(v.selected)
	}
	v.selected = ray.Nearest(boxes)
	if v.selected < 0 {
		return
	}
	v.boxes[v.selected].Color = [3]float32{1, 1, 1}
	v.showBounds = true

	s := v.buffers[v.selected].Span
	logger.Info("span selected",
		zap.String("name", s.Name),
		zap.Int("sub_material", s.SubMaterial),
		zap.Int("variant", s.Variant),
		zap.Int("vertices", len(s.Vertices)),
		zap.Int("faces", s.NumFaces()),
		zap.Int("uv_count", s.Format.UVCount),
		zap.Uint32("props", uint32(s.Props)),
	)
}

func (v *viewer) screenshot() {
	pixels := make([]byte, int(v.width)*int(v.height)*4)
	if len(pixels) == 0 {
		return
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, v.width, v.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	path, err := v.shots.CaptureFromPixels(pixels, int(v.width), int(v.height))
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (v *viewer) draw() {
	gl.Viewport(0, 0, v.width, v.height)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	viewProj := v.viewProj()

	gl.UseProgram(v.program)
	gl.Uniform3f(v.locLight, v.light.X, v.light.Y, v.light.Z)
	gl.Uniform1i(v.locMode, v.mode)
	for _, b := range v.buffers {
		model := b.Span.LocalToObject.OrIdentity()
		mvp := viewProj.Mul(model)
		gl.UniformMatrix4fv(v.locModel, 1, false, model.Ptr())
		gl.UniformMatrix4fv(v.locMVP, 1, false, mvp.Ptr())
		b.Draw()
	}
	if v.showBounds {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		v.lines.Draw(viewProj, v.boxes)
	}
}

// worldBounds returns the union of the span bounds in object space.
func worldBounds(spans []*meshconv.Span) math.Box3 {
	box := math.EmptyBox()
	for _, s := range spans {
		if s.Bounds.IsEmpty() {
			continue
		}
		m := s.LocalToObject.OrIdentity()
		lo, hi := s.Bounds.Min, s.Bounds.Max
		for i := 0; i < 8; i++ {
			corner := lo
			if i&1 != 0 {
				corner.X = hi.X
			}
			if i&2 != 0 {
				corner.Y = hi.Y
			}
			if i&4 != 0 {
				corner.Z = hi.Z
			}
			box = box.Extend(m.TransformPoint(corner))
		}
	}
	return box
}
