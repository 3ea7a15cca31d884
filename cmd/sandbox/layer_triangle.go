package main

import (
	"slices"

	"github.com/hubastard/lumen/engine/assets"
	"github.com/hubastard/lumen/engine/core"
	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
	"github.com/hubastard/lumen/engine/scene"
)

// Vertex is the interleaved record uploaded to the GPU.
type Vertex struct {
	Position [2]float32 `attr:"position"`
	Color    [3]float32 `attr:"color"`
}

var triangle = []Vertex{
	{Position: [2]float32{-0.5, -0.5}, Color: [3]float32{1, 0, 0}},
	{Position: [2]float32{0.5, -0.5}, Color: [3]float32{0, 1, 0}},
	{Position: [2]float32{0.0, 0.5}, Color: [3]float32{0, 0, 1}},
}

// TriangleLayer draws one colored triangle. R, or saving a shader file when
// hot_reload is on, rebuilds the program; a broken edit keeps the old one.
// WASD pans the camera when the vertex shader declares uMVP.
type TriangleLayer struct {
	cfg    core.Config
	r      *glbackend.Renderer
	prog   *glbackend.Program
	mesh   *glbackend.Mesh
	hasMVP bool
	watch  *assets.Watcher
	cam    *scene.Camera2D
	ctl    *scene.Controller2D
}

func (l *TriangleLayer) OnAttach(e *core.Engine) {
	l.cam = scene.NewCamera2D(e.Window.FramebufferSize())
	l.ctl = scene.NewController2D(l.cam)
	if err := l.reload(); err != nil {
		core.LogFatal("triangle layer: %v", err)
	}
	if !l.cfg.HotReload {
		return
	}
	w, err := assets.NewWatcher(l.cfg.ShaderDir)
	if err != nil {
		core.LogWarn("hot reload disabled: %v", err)
		return
	}
	l.watch = w
}

func (l *TriangleLayer) OnDetach(e *core.Engine) {
	if l.watch != nil {
		l.watch.Close()
	}
	if l.mesh != nil {
		l.mesh.Destroy()
	}
	if l.prog != nil {
		l.prog.Destroy()
	}
}

func (l *TriangleLayer) OnUpdate(e *core.Engine, dt float64) {
	if e.Input.TakePressed(core.KeyEscape) {
		e.Window.RequestClose()
		return
	}
	l.ctl.Update(e.Input, dt)

	reload := e.Input.TakePressed(core.KeyR)
	if l.watch != nil {
		changed := l.watch.Drain()
		reload = reload || slices.Contains(changed, l.cfg.VertexShader) || slices.Contains(changed, l.cfg.FragmentShader)
	}
	if !reload {
		return
	}
	if err := l.reload(); err != nil {
		core.LogError("shader reload failed, keeping previous program: %v", err)
		return
	}
	core.LogInfo("shaders reloaded")
}

func (l *TriangleLayer) OnRender(e *core.Engine, alpha float64) {
	cmd := glbackend.DrawCmd{
		Program: l.prog,
		Mesh:    l.mesh,
		Mode:    glbackend.Triangles,
	}
	if l.hasMVP {
		cmd.Uniforms = map[string]any{"uMVP": l.cam.ViewProjection()}
	}
	err := l.r.Draw(cmd)
	if err != nil {
		core.LogError("draw: %v", err)
	}
}

func (l *TriangleLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	l.ctl.OnEvent(ev)
	return false
}

// reload builds a new program and mesh and swaps them in only if both
// succeed. Attribute locations may move between builds, so the mesh layout is
// rebuilt against the new program.
func (l *TriangleLayer) reload() error {
	src, err := assets.LoadShaderPair(l.cfg.ShaderDir, l.cfg.VertexShader, l.cfg.FragmentShader)
	if err != nil {
		return err
	}
	ctx := l.r.Context()
	prog, err := ctx.BuildProgram(src.Vertex, src.Fragment)
	if err != nil {
		return err
	}
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[Vertex]{Vertices: triangle})
	if err != nil {
		prog.Destroy()
		return err
	}
	if l.mesh != nil {
		l.mesh.Destroy()
	}
	if l.prog != nil {
		l.prog.Destroy()
	}
	_, err = prog.UniformLocation("uMVP")
	l.prog, l.mesh, l.hasMVP = prog, mesh, err == nil
	return nil
}
