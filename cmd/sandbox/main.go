package main

import (
	"os"

	"github.com/hubastard/lumen/engine/core"
	glbackend "github.com/hubastard/lumen/engine/gfx/gl"
	"github.com/hubastard/lumen/engine/gfx/gl/gogl"
	"github.com/hubastard/lumen/engine/platform"
	"github.com/hubastard/lumen/engine/profiler"
)

type App struct {
	cfg      core.Config
	renderer *glbackend.Renderer
	frames   int
}

func (a *App) OnStart(e *core.Engine) {
	e.PushLayer(&TriangleLayer{cfg: a.cfg, r: a.renderer})
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {}

func (a *App) OnRender(e *core.Engine, alpha float64) {
	a.frames++
	if a.frames%600 == 0 {
		s := a.renderer.Stats()
		core.LogDebug("frame %d: %d draw calls, %d vertices", a.frames, s.DrawCalls, s.Vertices)
	}
	a.renderer.ResetStats()
}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	if _, ok := ev.(core.EventCloseRequested); ok {
		e.Window.RequestClose()
	}
}

func (a *App) OnShutdown(e *core.Engine) {
	core.LogInfo("rendered %d frames", a.frames)
}

func main() {
	path := "config.toml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := core.LoadConfig(path)
	if err != nil {
		core.LogFatal("%v", err)
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		core.LogFatal("log_level: %v", err)
	}

	if cfg.ProfilePath != "" {
		profiler.Enable(0)
	}

	app := &App{cfg: cfg}

	newWindow := func(cfg core.Config) (core.Window, error) {
		return platform.NewGLFWWindow(cfg, nil)
	}
	newRenderer := func(win core.Window, cfg core.Config) (core.Renderer, error) {
		drv, err := gogl.Init()
		if err != nil {
			return nil, err
		}
		app.renderer = glbackend.NewRenderer(glbackend.NewContext(drv))
		return app.renderer, nil
	}

	if err := core.Run(app, cfg, newWindow, newRenderer); err != nil {
		core.LogFatal("%v", err)
	}
	if cfg.ProfilePath != "" {
		if err := profiler.Write(cfg.ProfilePath); err != nil {
			core.LogError("profile: %v", err)
			return
		}
		core.LogInfo("profile written to %s", cfg.ProfilePath)
	}
}
