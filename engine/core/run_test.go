package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	frames  int
	closed  bool
	cb      func(Event)
	w, h    int
	journal *[]string
}

func (f *fakeWindow) PollEvents() {
	if f.frames == 1 && f.cb != nil {
		f.w, f.h = 320, 200
		f.cb(EventResize{W: 320, H: 200})
		f.cb(EventKey{Key: KeyEscape, Down: true})
	}
}
func (f *fakeWindow) SwapBuffers() {
	f.frames++
	if f.frames >= 3 {
		f.closed = true
	}
}
func (f *fakeWindow) ShouldClose() bool               { return f.closed }
func (f *fakeWindow) RequestClose()                   { f.closed = true }
func (f *fakeWindow) FramebufferSize() (int, int)     { return f.w, f.h }
func (f *fakeWindow) SetTitle(string)                 {}
func (f *fakeWindow) SetEventCallback(cb func(Event)) { f.cb = cb }
func (f *fakeWindow) Destroy()                        { *f.journal = append(*f.journal, "window.Destroy") }

type fakeRenderer struct {
	sizes   [][2]int
	clears  int
	journal *[]string
}

func (r *fakeRenderer) Resize(w, h int)          { r.sizes = append(r.sizes, [2]int{w, h}) }
func (r *fakeRenderer) Clear(_, _, _, _ float32) { r.clears++ }
func (r *fakeRenderer) Shutdown()                { *r.journal = append(*r.journal, "renderer.Shutdown") }

type recordingApp struct {
	journal *[]string
	events  []Event
}

func (a *recordingApp) OnStart(e *Engine)           { *a.journal = append(*a.journal, "app.OnStart") }
func (a *recordingApp) OnUpdate(*Engine, float64)   {}
func (a *recordingApp) OnRender(*Engine, float64)   {}
func (a *recordingApp) OnEvent(_ *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *recordingApp) OnShutdown(*Engine)          { *a.journal = append(*a.journal, "app.OnShutdown") }

type keyLayer struct {
	journal *[]string
	renders int
}

func (l *keyLayer) OnAttach(*Engine)          { *l.journal = append(*l.journal, "layer.OnAttach") }
func (l *keyLayer) OnDetach(*Engine)          { *l.journal = append(*l.journal, "layer.OnDetach") }
func (l *keyLayer) OnUpdate(*Engine, float64) {}
func (l *keyLayer) OnRender(*Engine, float64) { l.renders++ }
func (l *keyLayer) OnEvent(_ *Engine, ev Event) bool {
	_, ok := ev.(EventKey)
	return ok
}

func TestRun(t *testing.T) {
	var journal []string
	win := &fakeWindow{w: 640, h: 480, journal: &journal}
	rend := &fakeRenderer{journal: &journal}
	app := &recordingApp{journal: &journal}
	layer := &keyLayer{journal: &journal}

	starter := &startApp{recordingApp: app, layer: layer}
	err := Run(starter, DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Renderer, error) { return rend, nil })
	require.NoError(t, err)

	assert.Equal(t, []string{
		"app.OnStart",
		"layer.OnAttach",
		"app.OnShutdown",
		"layer.OnDetach",
		"renderer.Shutdown",
		"window.Destroy",
	}, journal)
	assert.Equal(t, [][2]int{{640, 480}, {320, 200}}, rend.sizes)
	assert.Equal(t, 3, rend.clears)
	assert.Equal(t, 3, layer.renders)

	// The key event is consumed by the layer, the resize reaches the app.
	require.Len(t, app.events, 1)
	assert.IsType(t, EventResize{}, app.events[0])
}

// startApp pushes a layer on start, the way applications do.
type startApp struct {
	*recordingApp
	layer Layer
}

func (a *startApp) OnStart(e *Engine) {
	a.recordingApp.OnStart(e)
	e.PushLayer(a.layer)
}

func TestRunRendererError(t *testing.T) {
	var journal []string
	win := &fakeWindow{journal: &journal}
	boom := errors.New("no context")

	err := Run(&recordingApp{journal: &journal}, DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Renderer, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"window.Destroy"}, journal)
}

func TestLayerStack(t *testing.T) {
	var ls LayerStack
	var journal []string
	a, b := &keyLayer{journal: &journal}, &keyLayer{journal: &journal}
	ls.Push(a)
	ls.Push(b)
	assert.Equal(t, 2, ls.Len())

	var order []Layer
	ls.ForEachReverse(func(l Layer) bool {
		order = append(order, l)
		return false
	})
	assert.Equal(t, []Layer{b, a}, order)

	order = order[:0]
	ls.ForEachReverse(func(l Layer) bool {
		order = append(order, l)
		return true
	})
	assert.Equal(t, []Layer{b}, order)

	top, ok := ls.Pop()
	require.True(t, ok)
	assert.Same(t, b, top)
	ls.Pop()
	_, ok = ls.Pop()
	assert.False(t, ok)
}
