package glbackend_test

import (
	"testing"

	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
	"github.com/hubastard/lumen/engine/gfx/gl/gltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var triangle = []vertex{
	{Position: [2]float32{0, 0.5}, Color: [3]float32{1, 0, 0}},
	{Position: [2]float32{-0.5, -0.5}, Color: [3]float32{0, 1, 0}},
	{Position: [2]float32{0.5, -0.5}, Color: [3]float32{0, 0, 1}},
}

var quad = []vertex{
	{Position: [2]float32{-1, -1}},
	{Position: [2]float32{1, -1}},
	{Position: [2]float32{1, 1}},
	{Position: [2]float32{-1, 1}},
}

func TestMeshDrawArrays(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{Vertices: triangle})
	require.NoError(t, err)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Zero(t, mesh.IndexCount())

	require.NoError(t, prog.Use())
	require.NoError(t, mesh.Draw(glbackend.Triangles))

	draws := drv.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, gltest.Draw{
		Program:     prog.Handle(),
		VertexArray: mesh.VertexArray().Handle(),
		Mode:        glbackend.Triangles,
		Count:       3,
	}, draws[0])
	assert.Zero(t, drv.BoundVertexArray())
	assert.Empty(t, drv.PendingErrors())
}

func TestMeshDrawElements(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{
		Vertices: quad,
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
		Usage:    glbackend.DynamicDraw,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, mesh.IndexCount())

	require.NoError(t, prog.Use())
	require.NoError(t, mesh.Draw(glbackend.Triangles))

	draws := drv.Draws()
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Indexed)
	assert.Equal(t, int32(6), draws[0].Count)
	assert.Equal(t, glbackend.Uint32, draws[0].IndexType)
	assert.Empty(t, drv.PendingErrors())
}

func TestUpdateMesh(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{Vertices: quad, Indices: []uint32{0, 1, 2, 2, 3, 0}})
	require.NoError(t, err)

	require.NoError(t, glbackend.UpdateMesh(mesh, triangle, []uint32{0, 1, 2}))
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, 3, mesh.IndexCount())

	require.NoError(t, prog.Use())
	require.NoError(t, mesh.Draw(glbackend.Triangles))
	assert.Equal(t, int32(3), drv.Draws()[0].Count)

	type wide struct {
		Position [3]float32
		Color    [3]float32
	}
	err = glbackend.UpdateMesh(mesh, []wide{{}}, nil)
	assert.ErrorIs(t, err, glbackend.ErrInvalidLayout)
	assert.Equal(t, 3, mesh.VertexCount())
}

func TestUpdateMeshRejectsOtherRecordShapes(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{Vertices: triangle})
	require.NoError(t, err)

	// Same stride as vertex, fields in the other order.
	type swapped struct {
		Color    [3]float32
		Position [2]float32
	}
	err = glbackend.UpdateMesh(mesh, []swapped{{}, {}, {}, {}}, nil)
	assert.ErrorIs(t, err, glbackend.ErrInvalidLayout)
	assert.Equal(t, 3, mesh.VertexCount())

	type renamed struct {
		Position [2]float32
		Tint     [3]float32
	}
	err = glbackend.UpdateMesh(mesh, []renamed{{}}, nil)
	assert.ErrorIs(t, err, glbackend.ErrInvalidLayout)
	assert.Equal(t, 3, mesh.VertexCount())

	type tagged struct {
		Pos [2]float32 `attr:"position"`
		Rgb [3]float32 `attr:"color"`
	}
	require.NoError(t, glbackend.UpdateMesh(mesh, []tagged{{}, {}}, nil))
	assert.Equal(t, 2, mesh.VertexCount())
	assert.Empty(t, drv.PendingErrors())
}

func TestUpdateMeshRejectsIndicesWithoutIndexBuffer(t *testing.T) {
	ctx, _ := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{Vertices: triangle})
	require.NoError(t, err)

	err = glbackend.UpdateMesh(mesh, quad, []uint32{0, 1, 2, 2, 3, 0})
	assert.ErrorIs(t, err, glbackend.ErrInvalidLayout)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Zero(t, mesh.IndexCount())

	require.NoError(t, glbackend.UpdateMesh(mesh, quad, nil))
	assert.Equal(t, 4, mesh.VertexCount())
}

func TestNewMeshCleansUpOnError(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	before := len(ctx.Live())

	drv.FailNextAlloc()
	_, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{Vertices: triangle})
	assert.ErrorIs(t, err, glbackend.ErrOutOfMemory)
	assert.Len(t, ctx.Live(), before)

	type missing struct {
		Position [2]float32
		Normal   [3]float32
	}
	_, err = glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[missing]{Vertices: []missing{{}}})
	assert.ErrorIs(t, err, glbackend.ErrAttributeNotFound)
	assert.Len(t, ctx.Live(), before)
}

func TestMeshDestroy(t *testing.T) {
	ctx, drv := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)
	mesh, err := glbackend.NewMesh(ctx, prog, glbackend.MeshDesc[vertex]{Vertices: quad, Indices: []uint32{0, 1, 2}})
	require.NoError(t, err)

	mesh.Destroy()
	mesh.Destroy()
	_, _, buffers, vaos := drv.Counts()
	assert.Zero(t, buffers)
	assert.Zero(t, vaos)
	assert.ErrorIs(t, mesh.Draw(glbackend.Triangles), glbackend.ErrDestroyed)
}
