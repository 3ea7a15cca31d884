package scene

// Camera2D is an orthographic camera looking down -Z. The view is Height world
// units tall at zoom 1; its width follows the viewport aspect so geometry
// keeps its proportions when the window is resized.
type Camera2D struct {
	X, Y   float32
	Height float32
	Zoom   float32 // 1 = no zoom

	aspect float32
	vp     [16]float32
	dirty  bool
}

// NewCamera2D returns a camera centred on the origin showing the [-1, 1]
// vertical range of a w x h viewport.
func NewCamera2D(w, h int) *Camera2D {
	c := &Camera2D{Height: 2, Zoom: 1}
	c.SetViewport(w, h)
	return c
}

// SetViewport updates the aspect ratio. Degenerate sizes (a minimized window)
// are ignored.
func (c *Camera2D) SetViewport(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.aspect = float32(w) / float32(h)
	c.dirty = true
}

func (c *Camera2D) Move(dx, dy float32) { c.X += dx; c.Y += dy; c.dirty = true }

func (c *Camera2D) SetZoom(z float32) {
	c.Zoom = max(z, 0.05)
	c.dirty = true
}

// ViewProjection returns the column-major matrix for a mat4 uniform.
func (c *Camera2D) ViewProjection() [16]float32 {
	if c.dirty {
		halfH := c.Height / 2 / c.Zoom
		halfW := halfH * c.aspect
		proj := ortho(-halfW, halfW, -halfH, halfH, -1, 1)
		c.vp = mul(proj, translate(-c.X, -c.Y, 0))
		c.dirty = false
	}
	return c.vp
}

func translate(x, y, z float32) [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func ortho(l, r, b, t, n, f float32) [16]float32 {
	rl := 1 / (r - l)
	tb := 1 / (t - b)
	fn := 1 / (f - n)
	return [16]float32{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(r + l) * rl, -(t + b) * tb, -(f + n) * fn, 1,
	}
}

func mul(a, b [16]float32) [16]float32 {
	var out [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var s float32
			for k := 0; k < 4; k++ {
				s += a[row+4*k] * b[k+4*col]
			}
			out[row+4*col] = s
		}
	}
	return out
}
