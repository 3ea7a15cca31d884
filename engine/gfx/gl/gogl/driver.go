// Package gogl implements glbackend.Driver on top of the go-gl OpenGL 3.3
// core bindings. Every call goes to the context current on the calling thread.
package gogl

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
)

// Driver forwards to github.com/go-gl/gl. Init must have succeeded first.
type Driver struct{}

var _ glbackend.Driver = Driver{}

// Init loads the GL function pointers for the current context.
func Init() (Driver, error) {
	if err := gl.Init(); err != nil {
		return Driver{}, err
	}
	return Driver{}, nil
}

func cstr(s string) (*uint8, func()) {
	if !strings.HasSuffix(s, "\x00") {
		s += "\x00"
	}
	strs, free := gl.Strs(s)
	return *strs, free
}

func (Driver) CreateShader(kind glbackend.ShaderKind) uint32 { return gl.CreateShader(uint32(kind)) }

func (Driver) ShaderSource(shader uint32, src string) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(shader, 1, csrc, nil)
}

func (Driver) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Driver) GetShaderiv(shader uint32, p glbackend.Param) int32 {
	var v int32
	gl.GetShaderiv(shader, uint32(p), &v)
	return v
}

func (d Driver) GetShaderInfoLog(shader uint32) string {
	n := d.GetShaderiv(shader, glbackend.InfoLogLength)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	gl.GetShaderInfoLog(shader, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (Driver) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Driver) CreateProgram() uint32               { return gl.CreateProgram() }
func (Driver) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (Driver) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }
func (Driver) LinkProgram(program uint32)          { gl.LinkProgram(program) }

func (Driver) GetProgramiv(program uint32, p glbackend.Param) int32 {
	var v int32
	gl.GetProgramiv(program, uint32(p), &v)
	return v
}

func (d Driver) GetProgramInfoLog(program uint32) string {
	n := d.GetProgramiv(program, glbackend.InfoLogLength)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	gl.GetProgramInfoLog(program, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (Driver) DeleteProgram(program uint32) { gl.DeleteProgram(program) }
func (Driver) UseProgram(program uint32)    { gl.UseProgram(program) }

func (Driver) GetAttribLocation(program uint32, name string) int32 {
	s, free := cstr(name)
	defer free()
	return gl.GetAttribLocation(program, s)
}

func (Driver) GetUniformLocation(program uint32, name string) int32 {
	s, free := cstr(name)
	defer free()
	return gl.GetUniformLocation(program, s)
}

func (Driver) Uniform1i(loc int32, v int32)               { gl.Uniform1i(loc, v) }
func (Driver) Uniform1f(loc int32, v float32)             { gl.Uniform1f(loc, v) }
func (Driver) Uniform2f(loc int32, x, y float32)          { gl.Uniform2f(loc, x, y) }
func (Driver) Uniform3f(loc int32, x, y, z float32)       { gl.Uniform3f(loc, x, y, z) }
func (Driver) Uniform4f(loc int32, x, y, z, w float32)    { gl.Uniform4f(loc, x, y, z, w) }
func (Driver) UniformMatrix4fv(loc int32, m *[16]float32) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }

func (Driver) GenBuffer() uint32 {
	var b uint32
	gl.GenBuffers(1, &b)
	return b
}

func (Driver) BindBuffer(target glbackend.BufferTarget, buffer uint32) {
	gl.BindBuffer(uint32(target), buffer)
}

func (Driver) BufferData(target glbackend.BufferTarget, data []byte, usage glbackend.Usage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(&data[0])
	}
	gl.BufferData(uint32(target), len(data), ptr, uint32(usage))
}

func (Driver) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (Driver) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Driver) BindVertexArray(vao uint32)         { gl.BindVertexArray(vao) }
func (Driver) EnableVertexAttribArray(loc uint32) { gl.EnableVertexAttribArray(loc) }

func (Driver) VertexAttribPointer(loc uint32, size int32, typ glbackend.ElementType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(loc, size, uint32(typ), normalized, stride, uintptr(offset))
}

func (Driver) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (Driver) DrawArrays(mode glbackend.Primitive, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (Driver) DrawElements(mode glbackend.Primitive, count int32, typ glbackend.ElementType, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(typ), gl.PtrOffset(offset))
}

func (Driver) Viewport(x, y, w, h int32)     { gl.Viewport(x, y, w, h) }
func (Driver) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (Driver) Clear(mask uint32)             { gl.Clear(mask) }
func (Driver) Enable(cap uint32)             { gl.Enable(cap) }

func (Driver) GetString(name glbackend.StringName) string {
	return gl.GoStr(gl.GetString(uint32(name)))
}

func (Driver) GetError() uint32 { return gl.GetError() }
