package glbackend_test

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
	"github.com/hubastard/lumen/engine/gfx/gl/gltest"
	"github.com/stretchr/testify/require"
)

const passVS = `#version 330 core
in vec2 position;
in vec3 color;
out vec3 vColor;
void main() {
    vColor = color;
    gl_Position = vec4(position, 0.0, 1.0);
}
`

const passFS = `#version 330 core
in vec3 vColor;
out vec4 FragColor;
void main() {
    FragColor = vec4(vColor, 1.0);
}
`

const tintFS = `#version 330 core
in vec3 vColor;
uniform float uAlpha;
uniform vec4 uTint;
uniform mat4 uUnused;
out vec4 FragColor;
void main() {
    FragColor = vec4(vColor, uAlpha) * uTint;
}
`

type vertex struct {
	Position [2]float32
	Color    [3]float32
}

func newContext(t *testing.T) (*glbackend.Context, *gltest.Driver) {
	t.Helper()
	drv := gltest.New()
	return glbackend.NewContext(drv, glbackend.WithLogger(log.New(io.Discard))), drv
}

func buildProgram(t *testing.T, ctx *glbackend.Context, vs, fs string) *glbackend.Program {
	t.Helper()
	prog, err := ctx.BuildProgram(vs, fs)
	require.NoError(t, err)
	return prog
}
