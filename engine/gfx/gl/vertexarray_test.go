package glbackend_test

import (
	"testing"

	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAttribute(t *testing.T) {
	ctx, drv := newContext(t)
	buf := ctx.NewBuffer(glbackend.ArrayBuffer)
	va := ctx.NewVertexArray()

	a := glbackend.VertexAttrib{Location: 2, Size: 3, Type: glbackend.Float32, Stride: 20, Offset: 8}
	require.NoError(t, va.BindAttribute(buf, a))

	st, ok := drv.Attrib(va.Handle(), 2)
	require.True(t, ok)
	assert.True(t, st.Enabled)
	assert.Equal(t, int32(3), st.Size)
	assert.Equal(t, glbackend.Float32, st.Type)
	assert.Equal(t, int32(20), st.Stride)
	assert.Equal(t, 8, st.Offset)
	assert.Equal(t, buf.Handle(), st.Buffer)

	assert.Equal(t, int32(20), va.Stride())
	assert.Equal(t, []glbackend.VertexAttrib{a}, va.Attributes())
	assert.Zero(t, drv.BoundVertexArray(), "binding leaves no vertex array bound")
}

func TestBindAttributeRebindReplaces(t *testing.T) {
	ctx, _ := newContext(t)
	buf := ctx.NewBuffer(glbackend.ArrayBuffer)
	va := ctx.NewVertexArray()

	require.NoError(t, va.BindAttribute(buf, glbackend.VertexAttrib{Location: 0, Size: 2, Type: glbackend.Float32, Stride: 8}))
	require.NoError(t, va.BindAttribute(buf, glbackend.VertexAttrib{Location: 0, Size: 1, Type: glbackend.Float32, Stride: 8, Offset: 4}))

	attrs := va.Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, 4, attrs[0].Offset)

	attrs[0].Offset = 0
	assert.Equal(t, 4, va.Attributes()[0].Offset, "Attributes returns a copy")
}

func TestBindAttributeRejectedBeforeDriver(t *testing.T) {
	tests := []struct {
		name string
		a    glbackend.VertexAttrib
	}{
		{"footprint exceeds stride", glbackend.VertexAttrib{Size: 3, Type: glbackend.Float32, Stride: 20, Offset: 12}},
		{"offset equals stride", glbackend.VertexAttrib{Size: 1, Type: glbackend.Uint8, Stride: 4, Offset: 4}},
		{"negative offset", glbackend.VertexAttrib{Size: 1, Type: glbackend.Float32, Stride: 4, Offset: -4}},
		{"zero stride", glbackend.VertexAttrib{Size: 2, Type: glbackend.Float32}},
		{"zero components", glbackend.VertexAttrib{Size: 0, Type: glbackend.Float32, Stride: 8}},
		{"five components", glbackend.VertexAttrib{Size: 5, Type: glbackend.Float32, Stride: 20}},
		{"unknown type", glbackend.VertexAttrib{Size: 1, Type: glbackend.ElementType(0x1234), Stride: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, drv := newContext(t)
			buf := ctx.NewBuffer(glbackend.ArrayBuffer)
			va := ctx.NewVertexArray()
			drv.ResetCalls()

			err := va.BindAttribute(buf, tt.a)
			assert.ErrorIs(t, err, glbackend.ErrInvalidLayout)
			var le *glbackend.LayoutError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.a, le.Attrib)
			assert.Empty(t, drv.Calls())
			assert.Empty(t, va.Attributes())
		})
	}
}

func TestBindAttributeStrideMismatch(t *testing.T) {
	ctx, drv := newContext(t)
	buf := ctx.NewBuffer(glbackend.ArrayBuffer)
	va := ctx.NewVertexArray()
	require.NoError(t, va.BindAttribute(buf, glbackend.VertexAttrib{Location: 0, Size: 2, Type: glbackend.Float32, Stride: 20}))

	drv.ResetCalls()
	err := va.BindAttribute(buf, glbackend.VertexAttrib{Location: 1, Size: 3, Type: glbackend.Float32, Stride: 24, Offset: 8})
	assert.ErrorIs(t, err, glbackend.ErrInvalidLayout)
	assert.Empty(t, drv.Calls())
	assert.Len(t, va.Attributes(), 1)
}

func TestBindAttributeWrongBuffer(t *testing.T) {
	ctx, drv := newContext(t)
	va := ctx.NewVertexArray()
	ibo := ctx.NewBuffer(glbackend.ElementArrayBuffer)
	a := glbackend.VertexAttrib{Size: 1, Type: glbackend.Float32, Stride: 4}

	drv.ResetCalls()
	assert.ErrorIs(t, va.BindAttribute(ibo, a), glbackend.ErrInvalidLayout)
	assert.ErrorIs(t, va.BindAttribute(nil, a), glbackend.ErrDestroyed)

	vbo := ctx.NewBuffer(glbackend.ArrayBuffer)
	vbo.Destroy()
	drv.ResetCalls()
	assert.ErrorIs(t, va.BindAttribute(vbo, a), glbackend.ErrDestroyed)
	assert.Empty(t, drv.Calls())
}

func TestApplyLayout(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	buf := ctx.NewBuffer(glbackend.ArrayBuffer)
	va := ctx.NewVertexArray()

	layout, err := glbackend.LayoutFor[vertex](prog)
	require.NoError(t, err)
	require.NoError(t, va.ApplyLayout(buf, layout))
	require.NoError(t, glbackend.Upload(buf, []vertex{
		{Position: [2]float32{0, 0.5}, Color: [3]float32{1, 0, 0}},
		{Position: [2]float32{-0.5, -0.5}, Color: [3]float32{0, 1, 0}},
		{Position: [2]float32{0.5, -0.5}, Color: [3]float32{0, 0, 1}},
	}, glbackend.StaticDraw))

	assert.Equal(t, int32(20), va.Stride())
	require.Len(t, va.Attributes(), 2)
	for _, a := range va.Attributes() {
		assert.Equal(t, int32(20), a.Stride)
	}

	col, err := prog.AttribLocation("color")
	require.NoError(t, err)
	got, err := drv.ReadAttrib(va.Handle(), col, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, got)
}

func TestSetIndexBuffer(t *testing.T) {
	ctx, drv := newContext(t)
	va := ctx.NewVertexArray()
	ibo := ctx.NewBuffer(glbackend.ElementArrayBuffer)
	vbo := ctx.NewBuffer(glbackend.ArrayBuffer)

	assert.ErrorIs(t, va.SetIndexBuffer(vbo), glbackend.ErrInvalidLayout)
	require.NoError(t, va.SetIndexBuffer(ibo))
	assert.Same(t, ibo, va.IndexBuffer())
	assert.Equal(t, ibo.Handle(), drv.ElementBuffer(va.Handle()))

	// Uploading indices must not move the element binding to another vertex array.
	other := ctx.NewVertexArray()
	require.NoError(t, other.Bind())
	require.NoError(t, glbackend.UploadIndices(ibo, []uint16{0, 1, 2}, glbackend.StaticDraw))
	assert.Zero(t, drv.ElementBuffer(other.Handle()))
	assert.Equal(t, ibo.Handle(), drv.ElementBuffer(va.Handle()))
}

func TestVertexArrayDestroy(t *testing.T) {
	ctx, drv := newContext(t)
	buf := ctx.NewBuffer(glbackend.ArrayBuffer)
	va := ctx.NewVertexArray()

	va.Destroy()
	va.Destroy()
	assert.ErrorIs(t, va.Bind(), glbackend.ErrDestroyed)
	assert.ErrorIs(t, va.BindAttribute(buf, glbackend.VertexAttrib{Size: 1, Type: glbackend.Float32, Stride: 4}), glbackend.ErrDestroyed)

	_, _, buffers, vaos := drv.Counts()
	assert.Equal(t, 1, buffers, "destroying a vertex array leaves its buffers alone")
	assert.Zero(t, vaos)
}
