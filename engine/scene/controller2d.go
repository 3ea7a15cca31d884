package scene

import "github.com/hubastard/lumen/engine/core"

// Controller2D pans a Camera2D with WASD.
type Controller2D struct {
	Camera *Camera2D
	Speed  float32 // world units per second
}

func NewController2D(cam *Camera2D) *Controller2D {
	return &Controller2D{Camera: cam, Speed: 1}
}

func (cc *Controller2D) Update(in *core.Input, dt float64) {
	step := cc.Speed * float32(dt)
	var dx, dy float32
	if in.IsKeyDown(core.KeyW) {
		dy += step
	}
	if in.IsKeyDown(core.KeyS) {
		dy -= step
	}
	if in.IsKeyDown(core.KeyA) {
		dx -= step
	}
	if in.IsKeyDown(core.KeyD) {
		dx += step
	}
	if dx != 0 || dy != 0 {
		cc.Camera.Move(dx, dy)
	}
}

// OnEvent keeps the camera aspect in sync with the framebuffer.
func (cc *Controller2D) OnEvent(ev core.Event) {
	if e, ok := ev.(core.EventResize); ok {
		cc.Camera.SetViewport(e.W, e.H)
	}
}
