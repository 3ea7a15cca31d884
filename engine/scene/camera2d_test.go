package scene

import (
	"testing"

	"github.com/hubastard/lumen/engine/core"
	"github.com/stretchr/testify/assert"
)

func apply(m [16]float32, x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

func TestCamera2DSquareViewportIsIdentityInXY(t *testing.T) {
	c := NewCamera2D(600, 600)
	x, y := apply(c.ViewProjection(), 0.5, -0.25)
	assert.InDelta(t, 0.5, x, 1e-6)
	assert.InDelta(t, -0.25, y, 1e-6)
}

func TestCamera2DAspectMoveZoom(t *testing.T) {
	c := NewCamera2D(800, 400)
	x, _ := apply(c.ViewProjection(), 1, 0)
	assert.InDelta(t, 0.5, x, 1e-6, "wide viewports show more world horizontally")

	c.Move(1, 0)
	x, _ = apply(c.ViewProjection(), 1, 0)
	assert.InDelta(t, 0, x, 1e-6)

	c.SetZoom(2)
	_, y := apply(c.ViewProjection(), 1, 0.25)
	assert.InDelta(t, 0.5, y, 1e-6)

	c.SetZoom(0)
	assert.Equal(t, float32(0.05), c.Zoom)
}

func TestCamera2DIgnoresDegenerateViewport(t *testing.T) {
	c := NewCamera2D(800, 400)
	before := c.ViewProjection()
	c.SetViewport(0, 0)
	assert.Equal(t, before, c.ViewProjection())
}

func TestController2D(t *testing.T) {
	cam := NewCamera2D(100, 100)
	cc := NewController2D(cam)
	cc.Speed = 2

	in := core.NewInput()
	in.Handle(core.EventKey{Key: core.KeyD, Down: true})
	in.Handle(core.EventKey{Key: core.KeyW, Down: true})
	cc.Update(in, 0.5)
	assert.Equal(t, float32(1), cam.X)
	assert.Equal(t, float32(1), cam.Y)

	cc.OnEvent(core.EventResize{W: 200, H: 100})
	x, _ := apply(cam.ViewProjection(), 3, 0)
	assert.InDelta(t, 1, x, 1e-6)
}
