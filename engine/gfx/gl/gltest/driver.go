// Package gltest provides an in-memory glbackend.Driver. It follows the
// OpenGL 3.3 core object model closely enough to test the wrappers without
// a GPU: shaders are checked by a small GLSL front end, links validate stage
// interfaces and assign locations, buffers keep their bytes and vertex arrays
// keep their attribute state so tests can read vertices back.
package gltest

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
)

type shader struct {
	kind     glbackend.ShaderKind
	src      string
	compiled bool
	log      string
	info     *stageInfo
	attached int
	deleted  bool
}

type program struct {
	shaders  []uint32
	linked   bool
	log      string
	attribs  map[string]int32
	uniforms map[string]int32
	values   map[int32][]float32
}

type buffer struct {
	data  []byte
	usage glbackend.Usage
}

type attrib struct {
	enabled    bool
	size       int32
	typ        glbackend.ElementType
	normalized bool
	stride     int32
	offset     int
	buffer     uint32
}

type vertexArray struct {
	attribs map[uint32]*attrib
	element uint32
}

// Draw is one recorded draw call.
type Draw struct {
	Program     uint32
	VertexArray uint32
	Mode        glbackend.Primitive
	First       int32
	Count       int32
	Indexed     bool
	IndexType   glbackend.ElementType
}

// Driver is an in-memory glbackend.Driver. The zero value is not usable;
// call New.
type Driver struct {
	next     uint32
	shaders  map[uint32]*shader
	programs map[uint32]*program
	buffers  map[uint32]*buffer
	vaos     map[uint32]*vertexArray

	arrayBinding   uint32
	elementDefault uint32
	vaoBinding     uint32
	current        uint32

	errs      []uint32
	failAlloc bool
	calls     []string
	draws     []Draw

	viewport   [4]int32
	clearColor [4]float32
	enabled    map[uint32]bool
}

var _ glbackend.Driver = (*Driver)(nil)

func New() *Driver {
	return &Driver{
		shaders:  map[uint32]*shader{},
		programs: map[uint32]*program{},
		buffers:  map[uint32]*buffer{},
		vaos:     map[uint32]*vertexArray{},
		enabled:  map[uint32]bool{},
	}
}

func (d *Driver) call(name string) { d.calls = append(d.calls, name) }

func (d *Driver) fail(code uint32) { d.errs = append(d.errs, code) }

func (d *Driver) gen() uint32 {
	d.next++
	return d.next
}

// --- shaders ---

func (d *Driver) CreateShader(kind glbackend.ShaderKind) uint32 {
	d.call("CreateShader")
	switch kind {
	case glbackend.ShaderVertex, glbackend.ShaderFragment, glbackend.ShaderGeometry:
	default:
		d.fail(glbackend.InvalidEnum)
		return 0
	}
	h := d.gen()
	d.shaders[h] = &shader{kind: kind}
	return h
}

func (d *Driver) ShaderSource(sh uint32, src string) {
	d.call("ShaderSource")
	if s, ok := d.shaders[sh]; ok {
		s.src = src
		return
	}
	d.fail(glbackend.InvalidValue)
}

func (d *Driver) CompileShader(sh uint32) {
	d.call("CompileShader")
	s, ok := d.shaders[sh]
	if !ok {
		d.fail(glbackend.InvalidValue)
		return
	}
	info, err := parseStage(s.src)
	if err != nil {
		s.compiled, s.info, s.log = false, nil, err.Error()+"\n"
		return
	}
	s.compiled, s.info, s.log = true, info, ""
}

func (d *Driver) GetShaderiv(sh uint32, p glbackend.Param) int32 {
	d.call("GetShaderiv")
	s, ok := d.shaders[sh]
	if !ok {
		d.fail(glbackend.InvalidValue)
		return 0
	}
	switch p {
	case glbackend.CompileStatus:
		return boolInt(s.compiled)
	case glbackend.InfoLogLength:
		return logLength(s.log)
	}
	d.fail(glbackend.InvalidEnum)
	return 0
}

func (d *Driver) GetShaderInfoLog(sh uint32) string {
	d.call("GetShaderInfoLog")
	if s, ok := d.shaders[sh]; ok {
		return s.log
	}
	d.fail(glbackend.InvalidValue)
	return ""
}

func (d *Driver) DeleteShader(sh uint32) {
	d.call("DeleteShader")
	s, ok := d.shaders[sh]
	if !ok {
		if sh != 0 {
			d.fail(glbackend.InvalidValue)
		}
		return
	}
	s.deleted = true
	d.reapShader(sh)
}

// reapShader frees a shader flagged for deletion once nothing holds it.
func (d *Driver) reapShader(sh uint32) {
	if s := d.shaders[sh]; s != nil && s.deleted && s.attached == 0 {
		delete(d.shaders, sh)
	}
}

// --- programs ---

func (d *Driver) CreateProgram() uint32 {
	d.call("CreateProgram")
	h := d.gen()
	d.programs[h] = &program{}
	return h
}

func (d *Driver) AttachShader(prog, sh uint32) {
	d.call("AttachShader")
	p, pok := d.programs[prog]
	s, sok := d.shaders[sh]
	if !pok || !sok {
		d.fail(glbackend.InvalidValue)
		return
	}
	for _, h := range p.shaders {
		if h == sh {
			d.fail(glbackend.InvalidOperation)
			return
		}
	}
	p.shaders = append(p.shaders, sh)
	s.attached++
}

func (d *Driver) DetachShader(prog, sh uint32) {
	d.call("DetachShader")
	p, ok := d.programs[prog]
	if !ok {
		d.fail(glbackend.InvalidValue)
		return
	}
	for i, h := range p.shaders {
		if h == sh {
			p.shaders = append(p.shaders[:i], p.shaders[i+1:]...)
			d.shaders[sh].attached--
			d.reapShader(sh)
			return
		}
	}
	d.fail(glbackend.InvalidOperation)
}

func (d *Driver) LinkProgram(prog uint32) {
	d.call("LinkProgram")
	p, ok := d.programs[prog]
	if !ok {
		d.fail(glbackend.InvalidValue)
		return
	}
	p.linked, p.log = false, ""
	p.attribs, p.uniforms, p.values = nil, nil, nil

	stages := map[glbackend.ShaderKind]*stageInfo{}
	var errs []string
	if len(p.shaders) == 0 {
		errs = append(errs, "error: no shaders attached to the program")
	}
	for _, h := range p.shaders {
		s := d.shaders[h]
		if !s.compiled {
			errs = append(errs, "error: linking with uncompiled/unspecialized shader")
			continue
		}
		if s.info.hasMain {
			stages[s.kind] = s.info
		}
	}
	for _, h := range p.shaders {
		s := d.shaders[h]
		if s.compiled && stages[s.kind] == nil {
			errs = append(errs, fmt.Sprintf("error: %s shader lacks `main'", s.kind))
			stages[s.kind] = s.info
		}
	}
	vs, fs := stages[glbackend.ShaderVertex], stages[glbackend.ShaderFragment]
	if vs != nil && fs != nil {
		outs := map[string]decl{}
		for _, o := range vs.declared("out") {
			outs[o.name] = o
		}
		for _, in := range fs.declared("in") {
			o, ok := outs[in.name]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("error: fragment shader input `%s' has no matching output in the previous stage", in.name))
			case o.typ != in.typ:
				errs = append(errs, fmt.Sprintf("error: `%s' declared as type `%s' but outputted from previous stage as type `%s'", in.name, in.typ, o.typ))
			}
		}
	}
	if len(errs) > 0 {
		p.log = strings.Join(errs, "\n") + "\n"
		return
	}

	p.linked = true
	p.attribs = map[string]int32{}
	p.uniforms = map[string]int32{}
	p.values = map[int32][]float32{}
	if vs != nil {
		assignLocations(p.attribs, vs, vs.declared("in"))
	}
	var loc int32
	for _, kind := range []glbackend.ShaderKind{glbackend.ShaderVertex, glbackend.ShaderGeometry, glbackend.ShaderFragment} {
		st := stages[kind]
		if st == nil {
			continue
		}
		for _, u := range st.declared("uniform") {
			if _, dup := p.uniforms[u.name]; dup || !st.used[u.name] {
				continue
			}
			p.uniforms[u.name] = loc
			loc++
		}
	}
}

// assignLocations gives every used input its layout location, then hands out
// the lowest free locations in declaration order. Unused inputs are dropped,
// as a real compiler would optimize them out.
func assignLocations(dst map[string]int32, st *stageInfo, ins []decl) {
	taken := map[int32]bool{}
	for _, in := range ins {
		if st.used[in.name] && in.location >= 0 {
			dst[in.name] = int32(in.location)
			taken[int32(in.location)] = true
		}
	}
	var next int32
	for _, in := range ins {
		if !st.used[in.name] || in.location >= 0 {
			continue
		}
		for taken[next] {
			next++
		}
		dst[in.name] = next
		taken[next] = true
	}
}

func (d *Driver) GetProgramiv(prog uint32, pn glbackend.Param) int32 {
	d.call("GetProgramiv")
	p, ok := d.programs[prog]
	if !ok {
		d.fail(glbackend.InvalidValue)
		return 0
	}
	switch pn {
	case glbackend.LinkStatus:
		return boolInt(p.linked)
	case glbackend.InfoLogLength:
		return logLength(p.log)
	}
	d.fail(glbackend.InvalidEnum)
	return 0
}

func (d *Driver) GetProgramInfoLog(prog uint32) string {
	d.call("GetProgramInfoLog")
	if p, ok := d.programs[prog]; ok {
		return p.log
	}
	d.fail(glbackend.InvalidValue)
	return ""
}

func (d *Driver) DeleteProgram(prog uint32) {
	d.call("DeleteProgram")
	p, ok := d.programs[prog]
	if !ok {
		if prog != 0 {
			d.fail(glbackend.InvalidValue)
		}
		return
	}
	for _, sh := range p.shaders {
		d.shaders[sh].attached--
		d.reapShader(sh)
	}
	delete(d.programs, prog)
	if d.current == prog {
		d.current = 0
	}
}

func (d *Driver) UseProgram(prog uint32) {
	d.call("UseProgram")
	if prog == 0 {
		d.current = 0
		return
	}
	p, ok := d.programs[prog]
	switch {
	case !ok:
		d.fail(glbackend.InvalidValue)
	case !p.linked:
		d.fail(glbackend.InvalidOperation)
	default:
		d.current = prog
	}
}

func (d *Driver) GetAttribLocation(prog uint32, name string) int32 {
	d.call("GetAttribLocation")
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		d.fail(glbackend.InvalidOperation)
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

func (d *Driver) GetUniformLocation(prog uint32, name string) int32 {
	d.call("GetUniformLocation")
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		d.fail(glbackend.InvalidOperation)
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Driver) setUniform(name string, loc int32, v ...float32) {
	d.call(name)
	p, ok := d.programs[d.current]
	if !ok {
		d.fail(glbackend.InvalidOperation)
		return
	}
	if loc == -1 {
		return
	}
	p.values[loc] = v
}

func (d *Driver) Uniform1i(loc int32, v int32)            { d.setUniform("Uniform1i", loc, float32(v)) }
func (d *Driver) Uniform1f(loc int32, v float32)          { d.setUniform("Uniform1f", loc, v) }
func (d *Driver) Uniform2f(loc int32, x, y float32)       { d.setUniform("Uniform2f", loc, x, y) }
func (d *Driver) Uniform3f(loc int32, x, y, z float32)    { d.setUniform("Uniform3f", loc, x, y, z) }
func (d *Driver) Uniform4f(loc int32, x, y, z, w float32) { d.setUniform("Uniform4f", loc, x, y, z, w) }

func (d *Driver) UniformMatrix4fv(loc int32, m *[16]float32) {
	d.setUniform("UniformMatrix4fv", loc, m[:]...)
}

// --- buffers ---

func (d *Driver) GenBuffer() uint32 {
	d.call("GenBuffer")
	h := d.gen()
	d.buffers[h] = &buffer{}
	return h
}

func (d *Driver) BindBuffer(target glbackend.BufferTarget, buf uint32) {
	d.call("BindBuffer")
	if _, ok := d.buffers[buf]; !ok && buf != 0 {
		d.fail(glbackend.InvalidValue)
		return
	}
	switch target {
	case glbackend.ArrayBuffer:
		d.arrayBinding = buf
	case glbackend.ElementArrayBuffer:
		if va, ok := d.vaos[d.vaoBinding]; ok {
			va.element = buf
		} else {
			d.elementDefault = buf
		}
	default:
		d.fail(glbackend.InvalidEnum)
	}
}

func (d *Driver) bound(target glbackend.BufferTarget) uint32 {
	switch target {
	case glbackend.ArrayBuffer:
		return d.arrayBinding
	case glbackend.ElementArrayBuffer:
		if va, ok := d.vaos[d.vaoBinding]; ok {
			return va.element
		}
		return d.elementDefault
	}
	return 0
}

func (d *Driver) BufferData(target glbackend.BufferTarget, data []byte, usage glbackend.Usage) {
	d.call("BufferData")
	b, ok := d.buffers[d.bound(target)]
	if !ok {
		d.fail(glbackend.InvalidOperation)
		return
	}
	if d.failAlloc {
		d.failAlloc = false
		d.fail(glbackend.OutOfMemory)
		return
	}
	b.data = append([]byte(nil), data...)
	b.usage = usage
}

func (d *Driver) DeleteBuffer(buf uint32) {
	d.call("DeleteBuffer")
	if _, ok := d.buffers[buf]; !ok {
		return
	}
	delete(d.buffers, buf)
	if d.arrayBinding == buf {
		d.arrayBinding = 0
	}
	if d.elementDefault == buf {
		d.elementDefault = 0
	}
	if va, ok := d.vaos[d.vaoBinding]; ok && va.element == buf {
		va.element = 0
	}
}

// --- vertex arrays ---

func (d *Driver) GenVertexArray() uint32 {
	d.call("GenVertexArray")
	h := d.gen()
	d.vaos[h] = &vertexArray{attribs: map[uint32]*attrib{}}
	return h
}

func (d *Driver) BindVertexArray(vao uint32) {
	d.call("BindVertexArray")
	if _, ok := d.vaos[vao]; !ok && vao != 0 {
		d.fail(glbackend.InvalidOperation)
		return
	}
	d.vaoBinding = vao
}

func (d *Driver) vaoAttrib(loc uint32) *attrib {
	va, ok := d.vaos[d.vaoBinding]
	if !ok {
		d.fail(glbackend.InvalidOperation)
		return nil
	}
	a := va.attribs[loc]
	if a == nil {
		a = &attrib{size: 4, typ: glbackend.Float32}
		va.attribs[loc] = a
	}
	return a
}

func (d *Driver) EnableVertexAttribArray(loc uint32) {
	d.call("EnableVertexAttribArray")
	if a := d.vaoAttrib(loc); a != nil {
		a.enabled = true
	}
}

func (d *Driver) VertexAttribPointer(loc uint32, size int32, typ glbackend.ElementType, normalized bool, stride int32, offset int) {
	d.call("VertexAttribPointer")
	if size < 1 || size > 4 || stride < 0 || typ.Size() == 0 {
		d.fail(glbackend.InvalidValue)
		return
	}
	if d.arrayBinding == 0 {
		d.fail(glbackend.InvalidOperation)
		return
	}
	if a := d.vaoAttrib(loc); a != nil {
		a.size, a.typ, a.normalized, a.stride, a.offset = size, typ, normalized, stride, offset
		a.buffer = d.arrayBinding
	}
}

func (d *Driver) DeleteVertexArray(vao uint32) {
	d.call("DeleteVertexArray")
	delete(d.vaos, vao)
	if d.vaoBinding == vao {
		d.vaoBinding = 0
	}
}

// --- draws and state ---

func (d *Driver) DrawArrays(mode glbackend.Primitive, first, count int32) {
	d.call("DrawArrays")
	if d.current == 0 || d.vaoBinding == 0 {
		d.fail(glbackend.InvalidOperation)
		return
	}
	d.draws = append(d.draws, Draw{Program: d.current, VertexArray: d.vaoBinding, Mode: mode, First: first, Count: count})
}

func (d *Driver) DrawElements(mode glbackend.Primitive, count int32, typ glbackend.ElementType, offset int) {
	d.call("DrawElements")
	if d.current == 0 || d.vaoBinding == 0 || d.vaos[d.vaoBinding].element == 0 {
		d.fail(glbackend.InvalidOperation)
		return
	}
	d.draws = append(d.draws, Draw{
		Program: d.current, VertexArray: d.vaoBinding, Mode: mode,
		First: int32(offset / max(typ.Size(), 1)), Count: count, Indexed: true, IndexType: typ,
	})
}

func (d *Driver) Viewport(x, y, w, h int32) {
	d.call("Viewport")
	d.viewport = [4]int32{x, y, w, h}
}

func (d *Driver) ClearColor(r, g, b, a float32) {
	d.call("ClearColor")
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *Driver) Clear(mask uint32) { d.call("Clear") }

func (d *Driver) Enable(c uint32) {
	d.call("Enable")
	d.enabled[c] = true
}

func (d *Driver) GetString(name glbackend.StringName) string {
	d.call("GetString")
	switch name {
	case glbackend.Vendor:
		return "lumen"
	case glbackend.RendererName:
		return "gltest software driver"
	case glbackend.Version:
		return "3.3 (Core Profile) gltest"
	case glbackend.ShadingLanguageVersion:
		return "3.30"
	}
	d.fail(glbackend.InvalidEnum)
	return ""
}

func (d *Driver) GetError() uint32 {
	d.call("GetError")
	if len(d.errs) == 0 {
		return glbackend.NoError
	}
	code := d.errs[0]
	d.errs = d.errs[1:]
	return code
}

// --- inspection helpers for tests ---

// Calls returns the names of the driver calls made since the last ResetCalls.
func (d *Driver) Calls() []string { return append([]string(nil), d.calls...) }

func (d *Driver) ResetCalls() { d.calls = d.calls[:0] }

// FailNextAlloc makes the next BufferData raise OUT_OF_MEMORY and keep the
// previous contents.
func (d *Driver) FailNextAlloc() { d.failAlloc = true }

// PendingErrors returns the queued error codes without clearing them.
func (d *Driver) PendingErrors() []uint32 { return append([]uint32(nil), d.errs...) }

// Draws returns every recorded draw call.
func (d *Driver) Draws() []Draw { return append([]Draw(nil), d.draws...) }

func (d *Driver) CurrentProgram() uint32   { return d.current }
func (d *Driver) BoundVertexArray() uint32 { return d.vaoBinding }
func (d *Driver) Viewport4() [4]int32      { return d.viewport }
func (d *Driver) ClearColor4() [4]float32  { return d.clearColor }
func (d *Driver) Enabled(c uint32) bool    { return d.enabled[c] }

// Counts reports how many objects of each kind are still allocated.
func (d *Driver) Counts() (shaders, programs, buffers, vertexArrays int) {
	return len(d.shaders), len(d.programs), len(d.buffers), len(d.vaos)
}

// BufferBytes returns a copy of a buffer's storage.
func (d *Driver) BufferBytes(buf uint32) []byte {
	if b, ok := d.buffers[buf]; ok {
		return append([]byte(nil), b.data...)
	}
	return nil
}

// BufferUsage returns the usage hint of the last BufferData on buf.
func (d *Driver) BufferUsage(buf uint32) glbackend.Usage {
	if b, ok := d.buffers[buf]; ok {
		return b.usage
	}
	return 0
}

// ElementBuffer returns the element-array buffer recorded in vao.
func (d *Driver) ElementBuffer(vao uint32) uint32 {
	if va, ok := d.vaos[vao]; ok {
		return va.element
	}
	return 0
}

// AttribState is the state of one vertex array attribute slot.
type AttribState struct {
	Enabled    bool
	Size       int32
	Type       glbackend.ElementType
	Normalized bool
	Stride     int32
	Offset     int
	Buffer     uint32
}

// Attrib returns the state of slot loc of vao.
func (d *Driver) Attrib(vao, loc uint32) (AttribState, bool) {
	va, ok := d.vaos[vao]
	if !ok {
		return AttribState{}, false
	}
	a, ok := va.attribs[loc]
	if !ok {
		return AttribState{}, false
	}
	return AttribState{a.enabled, a.size, a.typ, a.normalized, a.stride, a.offset, a.buffer}, true
}

// VertexCount is how many whole records the buffer behind slot loc holds.
func (d *Driver) VertexCount(vao, loc uint32) int {
	a, ok := d.Attrib(vao, loc)
	if !ok {
		return 0
	}
	b, ok := d.buffers[a.Buffer]
	if !ok {
		return 0
	}
	stride := int(a.Stride)
	if stride == 0 {
		stride = int(a.Size) * a.Type.Size()
	}
	return len(b.data) / stride
}

// ReadAttrib fetches attribute loc of vertex i through vao the way the vertex
// puller would, converting every component to float32.
func (d *Driver) ReadAttrib(vao, loc uint32, i int) ([]float32, error) {
	a, ok := d.Attrib(vao, loc)
	if !ok || !a.Enabled {
		return nil, fmt.Errorf("vertex array %d: attribute %d not enabled", vao, loc)
	}
	b, ok := d.buffers[a.Buffer]
	if !ok {
		return nil, fmt.Errorf("vertex array %d: attribute %d reads deleted buffer %d", vao, loc, a.Buffer)
	}
	elem := a.Type.Size()
	stride := int(a.Stride)
	if stride == 0 {
		stride = int(a.Size) * elem
	}
	start := a.Offset + i*stride
	end := start + int(a.Size)*elem
	if i < 0 || end > len(b.data) {
		return nil, fmt.Errorf("vertex %d out of range: bytes [%d, %d) of %d", i, start, end, len(b.data))
	}
	out := make([]float32, a.Size)
	for c := range out {
		out[c] = decode(a.Type, b.data[start+c*elem:])
	}
	return out, nil
}

func decode(t glbackend.ElementType, p []byte) float32 {
	le := binary.LittleEndian
	switch t {
	case glbackend.Float32:
		return math.Float32frombits(le.Uint32(p))
	case glbackend.Float64:
		return float32(math.Float64frombits(le.Uint64(p)))
	case glbackend.Int8:
		return float32(int8(p[0]))
	case glbackend.Uint8:
		return float32(p[0])
	case glbackend.Int16:
		return float32(int16(le.Uint16(p)))
	case glbackend.Uint16:
		return float32(le.Uint16(p))
	case glbackend.Int32:
		return float32(int32(le.Uint32(p)))
	case glbackend.Uint32:
		return float32(le.Uint32(p))
	}
	return float32(math.NaN())
}

// Uniform returns the last value set on the named uniform of prog.
func (d *Driver) Uniform(prog uint32, name string) ([]float32, bool) {
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// ActiveAttribs lists the active vertex inputs of prog by location.
func (d *Driver) ActiveAttribs(prog uint32) []string {
	p, ok := d.programs[prog]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(p.attribs))
	for n := range p.attribs {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return p.attribs[names[i]] < p.attribs[names[j]] })
	return names
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func logLength(s string) int32 {
	if s == "" {
		return 0
	}
	return int32(len(s) + 1)
}
