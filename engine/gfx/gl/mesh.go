package glbackend

import (
	"fmt"
	"reflect"
)

// MeshDesc is the initial content of a mesh. Indices may be empty for
// non-indexed geometry.
type MeshDesc[V any] struct {
	Vertices []V
	Indices  []uint32
	Usage    Usage
}

// Mesh ties a vertex buffer, an optional index buffer and the vertex array
// describing them. Draw uses the counts recorded by the last upload.
type Mesh struct {
	vbo    *Buffer
	ibo    *Buffer
	vao    *VertexArray
	fields []namedField
}

// NewMesh uploads desc and binds every field of V to the matching input of p
// (see LayoutFor).
func NewMesh[V any](c *Context, p *Program, desc MeshDesc[V]) (*Mesh, error) {
	layout, err := LayoutFor[V](p)
	if err != nil {
		return nil, err
	}
	_, fields, err := recordFields[V]()
	if err != nil {
		return nil, err
	}
	if desc.Usage == 0 {
		desc.Usage = StaticDraw
	}

	m := &Mesh{vbo: c.NewBuffer(ArrayBuffer), vao: c.NewVertexArray(), fields: fields}
	if err := Upload(m.vbo, desc.Vertices, desc.Usage); err != nil {
		m.Destroy()
		return nil, err
	}
	if err := m.vao.ApplyLayout(m.vbo, layout); err != nil {
		m.Destroy()
		return nil, err
	}
	if len(desc.Indices) > 0 {
		m.ibo = c.NewBuffer(ElementArrayBuffer)
		if err := UploadIndices(m.ibo, desc.Indices, desc.Usage); err != nil {
			m.Destroy()
			return nil, err
		}
		if err := m.vao.SetIndexBuffer(m.ibo); err != nil {
			m.Destroy()
			return nil, err
		}
	}
	return m, nil
}

// UpdateMesh replaces the vertices, and the indices when the mesh is indexed.
// V must feed the same inputs from the same offsets as the record type the
// mesh was created with. Nothing is uploaded when either check fails.
func UpdateMesh[V any](m *Mesh, vertices []V, indices []uint32) error {
	stride, fields, err := recordFields[V]()
	if err != nil {
		return err
	}
	if stride != m.vao.Stride() || !sameShape(fields, m.fields) {
		return fmt.Errorf("update mesh: %s does not match the mesh vertex layout: %w", reflect.TypeFor[V](), ErrInvalidLayout)
	}
	if m.ibo == nil && len(indices) > 0 {
		return fmt.Errorf("update mesh: %d indices for a non-indexed mesh: %w", len(indices), ErrInvalidLayout)
	}
	if err := Upload(m.vbo, vertices, m.vbo.Usage()); err != nil {
		return err
	}
	if m.ibo != nil {
		return UploadIndices(m.ibo, indices, m.ibo.Usage())
	}
	return nil
}

// VertexCount is the number of vertices in the last upload.
func (m *Mesh) VertexCount() int { return m.vbo.Count() }

// IndexCount is the number of indices in the last upload, 0 if not indexed.
func (m *Mesh) IndexCount() int {
	if m.ibo == nil {
		return 0
	}
	return m.ibo.Count()
}

// VertexArray exposes the layout of the mesh.
func (m *Mesh) VertexArray() *VertexArray { return m.vao }

// Draw binds the vertex array and issues one draw over the recorded count.
// The caller activates the program first.
func (m *Mesh) Draw(mode Primitive) error {
	if err := m.vao.Bind(); err != nil {
		return err
	}
	d := m.vao.ctx.drv
	if m.ibo != nil {
		d.DrawElements(mode, int32(m.ibo.Count()), m.ibo.IndexType(), 0)
	} else {
		d.DrawArrays(mode, 0, int32(m.vbo.Count()))
	}
	d.BindVertexArray(0)
	return nil
}

// Destroy releases the vertex array and both buffers.
func (m *Mesh) Destroy() {
	m.vao.Destroy()
	m.vbo.Destroy()
	if m.ibo != nil {
		m.ibo.Destroy()
	}
}
