package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hubastard/canopy/engine/config"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	glbackend "github.com/hubastard/canopy/engine/gfx/gl"
	"github.com/hubastard/canopy/engine/gfx/renderer2d"
	"github.com/hubastard/canopy/engine/platform"
	"github.com/hubastard/canopy/engine/text"
	"golang.org/x/image/font/gofont/goregular"
)

type App struct {
	cfg       config.Config
	assetDir  string
	lastFrame time.Time
	tick      int
	managers  *batch.Managers
	r2d       *renderer2d.Renderer2D
	stats     renderer2d.Statistics
	font      *text.FontAtlas
	layer     *Layer2D
	debug     *LayerDebug
}

func (a *App) OnStart(e *core.Engine) error {
	var err error
	if a.managers, err = batch.NewManagers(e.Bus); err != nil {
		return err
	}
	if a.r2d, err = renderer2d.New(e.Bus, e.Device, renderer2d.OptionsFrom(a.cfg.Render)); err != nil {
		return err
	}

	a.font, err = text.LoadTTF(e.Device, filepath.Join(a.assetDir, "fonts", "RobotoMono.ttf"), 32)
	if errors.Is(err, fs.ErrNotExist) {
		core.Logger().Info("font not found, using Go Regular", "dir", a.assetDir)
		a.font, err = text.NewFontAtlas(e.Device, goregular.TTF, 32)
	}
	if err != nil {
		return err
	}

	a.layer = &Layer2D{app: a}
	if err := e.Layers.Push(e, a.layer); err != nil {
		return err
	}
	a.debug = &LayerDebug{app: a}
	return e.Layers.Push(e, a.debug)
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	a.tick++

	now := time.Now()
	if !a.lastFrame.IsZero() {
		a.debug.frameDuration = float32(now.Sub(a.lastFrame).Seconds() * 1000.0)
		a.debug.tick = a.tick
	}
	a.lastFrame = now
}

func (a *App) OnRender(e *core.Engine, alpha float64) error { return a.r2d.Clear() }
func (a *App) OnEvent(e *core.Engine, ev core.Event)        {}
func (a *App) OnShutdown(e *core.Engine)                    {}

func main() {
	configPath := flag.String("config", "canopy.toml", "TOML config file (optional)")
	assetDir := flag.String("assets", "assets", "asset root containing textures/ and fonts/")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	core.SetLogger(logger)

	var win *platform.GLFWWindow
	newWindow := func(c config.Window) (core.Window, error) {
		w, err := platform.NewGLFWWindow(c)
		if err != nil {
			return nil, err
		}
		win = w
		return w, nil
	}
	newDevice := func(core.Window) (core.Device, error) {
		d, err := glbackend.NewDevice()
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	err = core.Run(&App{cfg: cfg, assetDir: *assetDir}, cfg, newWindow, newDevice)
	if win != nil {
		win.Destroy()
	}
	if err != nil {
		logger.Error("sandbox exited", "err", err)
		os.Exit(1)
	}
}
