package glbackend

import (
	"sort"

	"github.com/hubastard/lumen/engine/core"
	"github.com/hubastard/lumen/engine/profiler"
)

// DrawCmd is one draw: the program to activate, uniforms to set on it and the
// mesh to draw.
type DrawCmd struct {
	Program  *Program
	Mesh     *Mesh
	Mode     Primitive
	Uniforms map[string]any
}

// Statistics counts the work submitted since the last ResetStats.
type Statistics struct {
	DrawCalls int
	Vertices  int
}

// Renderer implements core.Renderer over a Context.
type Renderer struct {
	ctx   *Context
	stats Statistics
	names []string
}

var _ core.Renderer = (*Renderer)(nil)

func NewRenderer(ctx *Context) *Renderer {
	ctx.drv.Enable(DepthTest)
	ctx.log.Info("renderer",
		"vendor", ctx.drv.GetString(Vendor),
		"renderer", ctx.drv.GetString(RendererName),
		"version", ctx.drv.GetString(Version),
		"glsl", ctx.drv.GetString(ShadingLanguageVersion))
	return &Renderer{ctx: ctx}
}

// Context returns the context resources are created from.
func (r *Renderer) Context() *Context { return r.ctx }

func (r *Renderer) Resize(w, h int) {
	r.ctx.drv.Viewport(0, 0, int32(w), int32(h))
}

func (r *Renderer) Clear(rf, gf, bf, af float32) {
	r.ctx.drv.ClearColor(rf, gf, bf, af)
	r.ctx.drv.Clear(ColorBufferBit | DepthBufferBit)
}

// Draw activates the program, sets the uniforms in name order and draws.
func (r *Renderer) Draw(cmd DrawCmd) error {
	defer profiler.Start("draw")()
	if err := cmd.Program.Use(); err != nil {
		return err
	}
	r.names = r.names[:0]
	for name := range cmd.Uniforms {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	for _, name := range r.names {
		if err := cmd.Program.SetUniform(name, cmd.Uniforms[name]); err != nil {
			return err
		}
	}
	if err := cmd.Mesh.Draw(cmd.Mode); err != nil {
		return err
	}
	r.stats.DrawCalls++
	if n := cmd.Mesh.IndexCount(); n > 0 {
		r.stats.Vertices += n
	} else {
		r.stats.Vertices += cmd.Mesh.VertexCount()
	}
	return nil
}

// Stats returns the counters since the last ResetStats.
func (r *Renderer) Stats() Statistics { return r.stats }

func (r *Renderer) ResetStats() { r.stats = Statistics{} }

func (r *Renderer) GPUVendor() string   { return r.ctx.drv.GetString(Vendor) }
func (r *Renderer) GPURenderer() string { return r.ctx.drv.GetString(RendererName) }
func (r *Renderer) GPUVersion() string  { return r.ctx.drv.GetString(Version) }

// Shutdown releases anything the application did not destroy itself.
func (r *Renderer) Shutdown() {
	r.ctx.Close()
}
