package glbackend

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Program is a successfully linked shader program. Link never returns a
// Program for a failed link, so every Program can be activated until it is
// destroyed.
type Program struct {
	_        noCopy
	ctx      *Context
	id       uuid.UUID
	handle   uint32
	attribs  map[string]uint32
	uniforms map[string]int32
}

// Link attaches stages to a new program and links it. The stages are
// detached and deleted whatever the outcome; they cannot be reused.
func (c *Context) Link(stages ...*Shader) (*Program, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}
	seen := make(map[*Shader]bool, len(stages))
	for _, s := range stages {
		if !s.Valid() {
			return nil, ErrShaderConsumed
		}
		if seen[s] {
			return nil, fmt.Errorf("%s stage listed twice: %w", s.kind, ErrShaderConsumed)
		}
		seen[s] = true
	}

	prog := c.drv.CreateProgram()
	for _, s := range stages {
		c.drv.AttachShader(prog, s.handle)
	}
	c.drv.LinkProgram(prog)
	for _, s := range stages {
		c.drv.DetachShader(prog, s.handle)
		c.drv.DeleteShader(s.handle)
		s.release()
	}

	if c.drv.GetProgramiv(prog, LinkStatus) == 0 {
		msg := strings.TrimRight(c.drv.GetProgramInfoLog(prog), "\x00")
		c.drv.DeleteProgram(prog)
		if msg == "" {
			msg = "link failed without a log"
		}
		return nil, &LinkError{Log: msg}
	}

	p := &Program{
		ctx:      c,
		handle:   prog,
		attribs:  make(map[string]uint32),
		uniforms: make(map[string]int32),
	}
	p.id = c.track(KindProgram, prog, p.Destroy)
	return p, nil
}

// BuildProgram compiles a vertex and a fragment stage and links them.
func (c *Context) BuildProgram(vertexSrc, fragmentSrc string) (*Program, error) {
	vs, err := c.CompileShader(vertexSrc, ShaderVertex)
	if err != nil {
		return nil, err
	}
	fs, err := c.CompileShader(fragmentSrc, ShaderFragment)
	if err != nil {
		vs.Destroy()
		return nil, err
	}
	return c.Link(vs, fs)
}

// Handle is the driver name, 0 once destroyed.
func (p *Program) Handle() uint32 { return p.handle }

// Use makes p the active program for subsequent draw calls.
func (p *Program) Use() error {
	if p.handle == 0 {
		return ErrDestroyed
	}
	p.ctx.drv.UseProgram(p.handle)
	return nil
}

// AttribLocation returns the location of the named vertex input.
func (p *Program) AttribLocation(name string) (uint32, error) {
	if p.handle == 0 {
		return 0, ErrDestroyed
	}
	if loc, ok := p.attribs[name]; ok {
		return loc, nil
	}
	loc := p.ctx.drv.GetAttribLocation(p.handle, name)
	if loc < 0 {
		return 0, &AttributeNotFoundError{Name: name}
	}
	p.attribs[name] = uint32(loc)
	return uint32(loc), nil
}

// UniformLocation returns the location of the named uniform.
func (p *Program) UniformLocation(name string) (int32, error) {
	if p.handle == 0 {
		return -1, ErrDestroyed
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc, nil
	}
	loc := p.ctx.drv.GetUniformLocation(p.handle, name)
	if loc < 0 {
		return -1, fmt.Errorf("%q: %w", name, ErrUniformNotFound)
	}
	p.uniforms[name] = loc
	return loc, nil
}

// SetUniform uploads value to the named uniform. The program must be active.
// Supported values: float32, int32, int, [2]float32, [3]float32, [4]float32
// and [16]float32 (a column-major mat4).
func (p *Program) SetUniform(name string, value any) error {
	loc, err := p.UniformLocation(name)
	if err != nil {
		return err
	}
	d := p.ctx.drv
	switch v := value.(type) {
	case float32:
		d.Uniform1f(loc, v)
	case int32:
		d.Uniform1i(loc, v)
	case int:
		d.Uniform1i(loc, int32(v))
	case [2]float32:
		d.Uniform2f(loc, v[0], v[1])
	case [3]float32:
		d.Uniform3f(loc, v[0], v[1], v[2])
	case [4]float32:
		d.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case [16]float32:
		d.UniformMatrix4fv(loc, &v)
	default:
		return fmt.Errorf("uniform %q: unsupported value type %T", name, value)
	}
	return nil
}

// Destroy deletes the program. Calling it again is a no-op.
func (p *Program) Destroy() {
	if p.handle == 0 {
		return
	}
	p.ctx.drv.DeleteProgram(p.handle)
	p.handle = 0
	p.attribs = nil
	p.uniforms = nil
	p.ctx.untrack(p.id)
}
