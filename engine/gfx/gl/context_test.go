package glbackend_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
	"github.com/hubastard/lumen/engine/gfx/gl/gltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveTracksResources(t *testing.T) {
	ctx, drv := newContext(t)
	assert.Same(t, drv, ctx.Driver())
	assert.Empty(t, ctx.Live())

	vs, err := ctx.CompileShader(passVS, glbackend.ShaderVertex)
	require.NoError(t, err)
	buf := ctx.NewBuffer(glbackend.ArrayBuffer)
	va := ctx.NewVertexArray()

	live := ctx.Live()
	require.Len(t, live, 3)
	assert.Equal(t, glbackend.KindShader, live[0].Kind)
	assert.Equal(t, vs.Handle(), live[0].Handle)
	assert.Equal(t, glbackend.KindBuffer, live[1].Kind)
	assert.Equal(t, glbackend.KindVertexArray, live[2].Kind)
	assert.NotEqual(t, live[1].ID, live[2].ID)

	buf.Destroy()
	live = ctx.Live()
	require.Len(t, live, 2)
	assert.Equal(t, va.Handle(), live[1].Handle)

	vs.Destroy()
	va.Destroy()
	assert.Empty(t, ctx.Live())
}

func TestLinkConsumesStagesInLive(t *testing.T) {
	ctx, _ := newContext(t)
	prog := buildProgram(t, ctx, passVS, passFS)

	live := ctx.Live()
	require.Len(t, live, 1)
	assert.Equal(t, glbackend.KindProgram, live[0].Kind)
	assert.Equal(t, prog.Handle(), live[0].Handle)
}

func TestCloseReleasesLeaks(t *testing.T) {
	var out bytes.Buffer
	drv := gltest.New()
	ctx := glbackend.NewContext(drv, glbackend.WithLogger(log.New(&out)))

	buildProgram(t, ctx, passVS, passFS)
	ctx.NewBuffer(glbackend.ArrayBuffer)
	kept := ctx.NewBuffer(glbackend.ElementArrayBuffer)
	kept.Destroy()

	ctx.Close()
	assert.Empty(t, ctx.Live())
	shaders, programs, buffers, vaos := drv.Counts()
	assert.Zero(t, shaders)
	assert.Zero(t, programs)
	assert.Zero(t, buffers)
	assert.Zero(t, vaos)

	assert.Equal(t, 2, strings.Count(out.String(), "leaked resource"))
	assert.Less(t, strings.Index(out.String(), "kind=buffer"), strings.Index(out.String(), "kind=program"),
		"newest leaks are released first")

	ctx.Close()
	assert.Equal(t, 2, strings.Count(out.String(), "leaked resource"))
}

func TestResourceKindString(t *testing.T) {
	assert.Equal(t, "shader", glbackend.KindShader.String())
	assert.Equal(t, "vertex-array", glbackend.KindVertexArray.String())
	assert.Equal(t, "unknown", glbackend.ResourceKind(42).String())
}
