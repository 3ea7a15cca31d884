package glbackend

import (
	"fmt"

	"github.com/google/uuid"
)

// VertexAttrib binds one interleaved field of a vertex record to a shader
// input location.
type VertexAttrib struct {
	Location   uint32
	Size       int32 // components, 1..4
	Type       ElementType
	Normalized bool
	Stride     int32 // bytes per vertex record
	Offset     int   // bytes from the start of the record
}

// VertexLayout describes one interleaved vertex record type.
type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttrib
}

// VertexArray owns one vertex array object and remembers the bindings
// recorded into it. All bindings share one stride.
type VertexArray struct {
	_       noCopy
	ctx     *Context
	id      uuid.UUID
	handle  uint32
	stride  int32
	attribs []VertexAttrib
	index   *Buffer
}

// NewVertexArray allocates an empty vertex array.
func (c *Context) NewVertexArray() *VertexArray {
	va := &VertexArray{ctx: c}
	va.handle = c.drv.GenVertexArray()
	va.id = c.track(KindVertexArray, va.handle, va.Destroy)
	return va
}

// BindAttribute records a binding reading a from buf. The binding is checked
// before anything reaches the driver.
func (va *VertexArray) BindAttribute(buf *Buffer, a VertexAttrib) error {
	if err := va.check(buf, a); err != nil {
		return err
	}

	d := va.ctx.drv
	d.BindVertexArray(va.handle)
	d.BindBuffer(ArrayBuffer, buf.handle)
	d.EnableVertexAttribArray(a.Location)
	d.VertexAttribPointer(a.Location, a.Size, a.Type, a.Normalized, a.Stride, a.Offset)
	d.BindVertexArray(0)
	d.BindBuffer(ArrayBuffer, 0)

	va.stride = a.Stride
	for i := range va.attribs {
		if va.attribs[i].Location == a.Location {
			va.attribs[i] = a
			return nil
		}
	}
	va.attribs = append(va.attribs, a)
	return nil
}

func (va *VertexArray) check(buf *Buffer, a VertexAttrib) error {
	if va.handle == 0 || buf == nil || buf.handle == 0 {
		return ErrDestroyed
	}
	fail := func(format string, args ...any) error {
		return &LayoutError{Attrib: a, Reason: fmt.Sprintf(format, args...)}
	}
	elem := a.Type.Size()
	switch {
	case buf.target != ArrayBuffer:
		return fail("source buffer target is %s, want %s", buf.target, ArrayBuffer)
	case elem == 0:
		return fail("unknown element type %s", a.Type)
	case a.Size < 1 || a.Size > 4:
		return fail("component count %d outside 1..4", a.Size)
	case a.Stride <= 0:
		return fail("stride %d must be positive", a.Stride)
	case a.Offset < 0 || a.Offset >= int(a.Stride):
		return fail("offset %d outside [0, %d)", a.Offset, a.Stride)
	case a.Offset+int(a.Size)*elem > int(a.Stride):
		return fail("offset %d + %d x %d bytes exceeds stride %d", a.Offset, a.Size, elem, a.Stride)
	case len(va.attribs) > 0 && a.Stride != va.stride:
		return fail("stride %d disagrees with layout stride %d", a.Stride, va.stride)
	}
	return nil
}

// ApplyLayout binds every attribute of l to buf, using l.Stride.
func (va *VertexArray) ApplyLayout(buf *Buffer, l VertexLayout) error {
	for _, a := range l.Attributes {
		a.Stride = l.Stride
		if err := va.BindAttribute(buf, a); err != nil {
			return err
		}
	}
	return nil
}

// SetIndexBuffer records buf as the element source of indexed draws.
func (va *VertexArray) SetIndexBuffer(buf *Buffer) error {
	if va.handle == 0 || buf == nil || buf.handle == 0 {
		return ErrDestroyed
	}
	if buf.target != ElementArrayBuffer {
		return fmt.Errorf("index buffer target is %s: %w", buf.target, ErrInvalidLayout)
	}
	d := va.ctx.drv
	d.BindVertexArray(va.handle)
	d.BindBuffer(ElementArrayBuffer, buf.handle)
	d.BindVertexArray(0)
	va.index = buf
	return nil
}

// Bind makes va the vertex source of subsequent draw calls.
func (va *VertexArray) Bind() error {
	if va.handle == 0 {
		return ErrDestroyed
	}
	va.ctx.drv.BindVertexArray(va.handle)
	return nil
}

func (va *VertexArray) Handle() uint32 { return va.handle }

// Stride is the record stride shared by every binding, 0 before the first.
func (va *VertexArray) Stride() int32 { return va.stride }

// Attributes returns a copy of the recorded bindings in binding order.
func (va *VertexArray) Attributes() []VertexAttrib {
	return append([]VertexAttrib(nil), va.attribs...)
}

// IndexBuffer returns the buffer set by SetIndexBuffer, if any.
func (va *VertexArray) IndexBuffer() *Buffer { return va.index }

// Destroy deletes the vertex array. Buffers it reads from are not affected.
func (va *VertexArray) Destroy() {
	if va.handle == 0 {
		return
	}
	va.ctx.drv.DeleteVertexArray(va.handle)
	va.handle = 0
	va.attribs = nil
	va.index = nil
	va.ctx.untrack(va.id)
}
