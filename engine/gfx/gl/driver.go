package glbackend

// Driver is the slice of the OpenGL API the core calls into. Every method is
// a direct call against the context that is current on the calling thread.
//
// gogl.Driver forwards to github.com/go-gl/gl; gltest.Driver emulates the
// calls in memory for tests.
type Driver interface {
	CreateShader(kind ShaderKind) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, p Param) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, p Param) int32
	GetProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32

	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	Uniform3f(loc int32, x, y, z float32)
	Uniform4f(loc int32, x, y, z, w float32)
	UniformMatrix4fv(loc int32, m *[16]float32)

	GenBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	BufferData(target BufferTarget, data []byte, usage Usage)
	DeleteBuffer(buffer uint32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	EnableVertexAttribArray(loc uint32)
	VertexAttribPointer(loc uint32, size int32, typ ElementType, normalized bool, stride int32, offset int)
	DeleteVertexArray(vao uint32)

	DrawArrays(mode Primitive, first, count int32)
	DrawElements(mode Primitive, count int32, typ ElementType, offset int)

	Viewport(x, y, w, h int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(cap uint32)
	GetString(name StringName) string
	GetError() uint32
}
