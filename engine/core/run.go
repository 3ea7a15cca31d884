package core

import (
	"runtime"
	"time"

	"github.com/hubastard/lumen/engine/profiler"
)

// Run wires the platform window + renderer and executes the main loop.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newRenderer func(Window, Config) (Renderer, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()

	win, err := newWindow(cfg)
	if err != nil {
		return err
	}
	defer win.Destroy()

	rend, err := newRenderer(win, cfg)
	if err != nil {
		return err
	}
	// The renderer releases GPU objects while the context is still alive.
	defer rend.Shutdown()

	w, h := win.FramebufferSize()
	rend.Resize(w, h)

	eng := &Engine{Window: win, Renderer: rend, Input: NewInput(), start: time.Now()}
	win.SetEventCallback(func(ev Event) { dispatch(eng, app, ev) })

	app.OnStart(eng)

	// Fixed-timestep (60 Hz) with interpolation
	const tick = time.Second / 60
	var (
		accum   time.Duration
		prev    = time.Now()
		clear   = cfg.ClearColor
		maxStep = 10 // prevent spiral of death
	)

	for !win.ShouldClose() {
		endFrame := profiler.Start("frame")
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		// Poll OS events (platform will emit via callbacks)
		win.PollEvents()

		endUpdate := profiler.Start("update")
		steps := 0
		for accum >= tick && steps < maxStep {
			dt := float64(tick) / float64(time.Second)
			app.OnUpdate(eng, dt)
			eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			accum -= tick
			steps++
		}
		endUpdate()
		alpha := float64(accum) / float64(tick)

		endRender := profiler.Start("render")
		rend.Clear(clear[0], clear[1], clear[2], clear[3])
		app.OnRender(eng, alpha)
		eng.Layers.ForEach(func(l Layer) { l.OnRender(eng, alpha) })
		endRender()

		win.SwapBuffers()
		endFrame()
	}

	app.OnShutdown(eng)
	for {
		l, ok := eng.Layers.Pop()
		if !ok {
			break
		}
		l.OnDetach(eng)
	}
	LogInfo("engine exit after %s", eng.Uptime().Round(time.Millisecond))
	return nil
}

// dispatch feeds input state, then layers top-down, then the app.
func dispatch(eng *Engine, app App, ev Event) {
	LogDebug("event %T %+v", ev, ev)
	eng.Input.Handle(ev)
	if _, ok := ev.(EventResize); ok {
		fw, fh := eng.Window.FramebufferSize()
		if fw >= 1 && fh >= 1 {
			eng.Renderer.Resize(fw, fh)
		}
	}
	handled := false
	eng.Layers.ForEachReverse(func(l Layer) bool {
		handled = l.OnEvent(eng, ev)
		return handled
	})
	if !handled {
		app.OnEvent(eng, ev)
	}
}
