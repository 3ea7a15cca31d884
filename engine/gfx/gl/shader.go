package glbackend

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Shader is one compiled stage. It owns its driver handle until it is either
// destroyed or consumed by Link, after which it is inert.
type Shader struct {
	_      noCopy
	ctx    *Context
	id     uuid.UUID
	handle uint32
	kind   ShaderKind
}

// CompileShader compiles src for the given stage. On failure the driver
// object is deleted and the compiler log is returned in a *CompileError.
func (c *Context) CompileShader(src string, kind ShaderKind) (*Shader, error) {
	src = strings.TrimRight(src, "\x00")
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%s shader: %w", kind, ErrEmptySource)
	}

	sh := c.drv.CreateShader(kind)
	c.drv.ShaderSource(sh, src)
	c.drv.CompileShader(sh)

	if c.drv.GetShaderiv(sh, CompileStatus) == 0 {
		msg := strings.TrimRight(c.drv.GetShaderInfoLog(sh), "\x00")
		c.drv.DeleteShader(sh)
		if msg == "" {
			msg = "compilation failed without a log"
		}
		return nil, &CompileError{Kind: kind, Log: msg}
	}

	s := &Shader{ctx: c, handle: sh, kind: kind}
	s.id = c.track(KindShader, sh, s.Destroy)
	return s, nil
}

// Kind reports the stage the shader was compiled for.
func (s *Shader) Kind() ShaderKind { return s.kind }

// Handle is the driver name, 0 once consumed or destroyed.
func (s *Shader) Handle() uint32 { return s.handle }

// Valid reports whether the stage can still be linked.
func (s *Shader) Valid() bool { return s != nil && s.handle != 0 }

// Destroy releases an unconsumed stage. Calling it again is a no-op.
func (s *Shader) Destroy() {
	if s.handle == 0 {
		return
	}
	s.ctx.drv.DeleteShader(s.handle)
	s.release()
}

func (s *Shader) release() {
	s.handle = 0
	s.ctx.untrack(s.id)
}
