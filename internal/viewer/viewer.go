// Package viewer implements the main viewer loop.
package viewer

import (
	"fmt"
	gomath "math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/rileyalankirk/soda-can/internal/assets"
	"github.com/rileyalankirk/soda-can/internal/config"
	"github.com/rileyalankirk/soda-can/internal/engine/camera"
	"github.com/rileyalankirk/soda-can/internal/engine/input"
	"github.com/rileyalankirk/soda-can/internal/engine/renderer"
	"github.com/rileyalankirk/soda-can/internal/engine/scene"
	"github.com/rileyalankirk/soda-can/internal/engine/texture"
	"github.com/rileyalankirk/soda-can/internal/engine/window"
	"github.com/rileyalankirk/soda-can/internal/logger"
	"github.com/rileyalankirk/soda-can/pkg/geometry"
	"github.com/rileyalankirk/soda-can/pkg/wavefront"
)

// dragState tracks an in-progress left-button orbit drag.
type dragState struct {
	active bool
	lastX  int
	lastY  int
}

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	mesh     *scene.Renderer
	assets   *assets.Manager

	drag dragState

	// Model orientation: the procedural can stands along Z, the view
	// uses Y-up, so the can gets tipped upright once here.
	model mgl32.Mat4

	// Cycling textures for the can (T key)
	cycleTextures []uint32
	cycleIndex    int
}

// New creates a new viewer instance.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		model: mgl32.Ident4(),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Soda Can Viewer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer initializes OpenGL, so it must come after the window.
	// The drawable size can differ from the configured window size on
	// high-DPI displays; the viewport wants pixels.
	drawW, drawH := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:  drawW,
		Height: drawH,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.mesh, err = scene.NewRenderer()
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create mesh renderer: %w", err)
	}

	v.input = input.New()
	v.camera = camera.NewOrbitCamera()

	v.assets = assets.NewManager()
	for _, dir := range cfg.Model.SearchPaths {
		if err := v.assets.AddDir(dir); err != nil {
			logger.Log.Warn("skipping search path", zap.Error(err))
		}
	}

	if err := v.loadModel(); err != nil {
		v.Close()
		return nil, err
	}
	v.loadCycleTextures()

	logger.Log.Info("viewer initialized")
	return v, nil
}

// loadModel uploads either the configured OBJ model or the procedural can.
func (v *Viewer) loadModel() error {
	if v.cfg.Model.Path != "" {
		return v.loadOBJ(v.cfg.Model.Path)
	}
	return v.loadCan()
}

func (v *Viewer) loadCan() error {
	can := v.cfg.Model.Can
	mesh := geometry.BuildCan(geometry.CanParams{
		BodyRadius: can.BodyRadius,
		CapRadius:  can.CapRadius,
		Sides:      can.Sides,
		Height:     can.Height,
	})
	normals := geometry.Normals(mesh.Positions, mesh.Indices, mesh.Topology, nil)

	data := scene.MeshData{
		Positions: mesh.Positions,
		Normals:   normals,
		TexCoords: canTexCoords(mesh.Positions, can.Height),
		Indices:   mesh.Indices,
		Mode:      scene.ModeTriangleStrip,
	}
	if err := v.mesh.Upload(data); err != nil {
		return fmt.Errorf("failed to upload can mesh: %w", err)
	}

	// Stand the can upright: its axis is Z, the camera's up is Y
	v.model = mgl32.HomogRotate3DX(-gomath.Pi / 2)
	v.camera.Reset()

	logger.Log.Info("procedural can built",
		zap.Int("sides", can.Sides),
		zap.Int("indices", len(mesh.Indices)),
	)
	return nil
}

// canTexCoords wraps a label around the can: u follows the angle around
// the axis, v runs bottom to top.
func canTexCoords(positions []mgl32.Vec3, height float32) []mgl32.Vec2 {
	coords := make([]mgl32.Vec2, len(positions))
	for i, p := range positions {
		angle := gomath.Atan2(float64(p.Y()), float64(p.X()))
		u := float32(angle/(2*gomath.Pi)) + 0.5
		coordZ := p.Z()/height + 0.5
		coords[i] = mgl32.Vec2{u, coordZ}
	}
	return coords
}

func (v *Viewer) loadOBJ(path string) error {
	model, err := wavefront.Load(v.assets, path,
		wavefront.WithLogger(logger.Log),
		wavefront.WithImageDecoder(texture.Decode),
	)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", path, err)
	}
	if model.Warnings > 0 {
		logger.Log.Warn("model loaded with dropped constructs",
			zap.String("path", path),
			zap.Int("warnings", model.Warnings),
		)
	}

	// Upload each material's diffuse map once
	textures := make(map[*wavefront.Material]uint32)
	for _, mat := range model.Materials {
		if img, ok := mat.Textures[wavefront.MapDiffuse]; ok {
			textures[mat] = texture.Upload(img)
		}
	}

	var parts []scene.Part
	for _, obj := range model.Objects {
		for _, p := range obj.Parts {
			parts = append(parts, scene.Part{
				Start:   int32(p.Start),
				Count:   int32(p.Count),
				Ambient: p.Material.Ambient,
				Diffuse: p.Material.Diffuse,
				Opacity: p.Material.Opacity,
				Texture: textures[p.Material],
			})
		}
	}

	data := scene.MeshData{
		Positions: model.Positions,
		Normals:   model.Normals,
		TexCoords: model.TexCoords,
		Indices:   model.Indices,
		Mode:      scene.ModeTriangles,
		Parts:     parts,
	}
	if err := v.mesh.Upload(data); err != nil {
		return fmt.Errorf("failed to upload model mesh: %w", err)
	}

	v.model = mgl32.Ident4()
	min, max := bounds(model.Positions)
	v.camera.FitToBounds(min, max)

	logger.Log.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", len(model.Positions)),
		zap.Int("parts", len(parts)),
	)
	return nil
}

func bounds(positions []mgl32.Vec3) (min, max mgl32.Vec3) {
	if len(positions) == 0 {
		return
	}
	min, max = positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return
}

// loadCycleTextures decodes the configured label textures for the T key.
func (v *Viewer) loadCycleTextures() {
	for _, name := range v.cfg.Model.Textures {
		data, err := v.assets.Load(name)
		if err != nil {
			logger.Log.Warn("skipping label texture", zap.String("name", name), zap.Error(err))
			continue
		}
		img, err := texture.Decode(name, data)
		if err != nil {
			logger.Log.Warn("undecodable label texture", zap.String("name", name), zap.Error(err))
			continue
		}
		v.cycleTextures = append(v.cycleTextures, texture.Upload(img))
	}
	if len(v.cycleTextures) > 0 {
		v.mesh.SetTextureOverride(v.cycleTextures[0])
	}
}

// cycleTexture advances to the next label texture.
func (v *Viewer) cycleTexture() {
	if len(v.cycleTextures) == 0 {
		return
	}
	v.cycleIndex = (v.cycleIndex + 1) % len(v.cycleTextures)
	v.mesh.SetTextureOverride(v.cycleTextures[v.cycleIndex])
	logger.Log.Debug("label texture switched", zap.Int("index", v.cycleIndex))
}

// Run starts the main viewer loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float64("dt_ms", dt*1000),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			// Resize events report logical size; the viewport wants pixels.
			v.renderer.Resize(v.window.DrawableSize())

		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
				v.running = false
			case sdl.SCANCODE_R:
				v.camera.Reset()
			case sdl.SCANCODE_T:
				v.cycleTexture()
			}

		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				v.drag = dragState{active: true, lastX: event.MouseX, lastY: event.MouseY}
			}

		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				v.drag.active = false
			}

		case input.EventMouseMove:
			if v.drag.active {
				v.camera.HandleDrag(float32(event.XRel), float32(event.YRel))
				v.drag.lastX = event.MouseX
				v.drag.lastY = event.MouseY
			}

		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.WheelY))
		}
	}
}

func (v *Viewer) render() {
	v.renderer.Begin()

	projection := mgl32.Perspective(mgl32.DegToRad(45), v.renderer.Aspect(), 0.1, 200.0)
	v.mesh.Draw(v.model, v.camera.ViewMatrix(), projection)
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Log.Info("closing viewer")

	if v.mesh != nil {
		v.mesh.Destroy()
	}
	if v.assets != nil {
		v.assets.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
