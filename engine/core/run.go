package core

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/hubastard/canopy/engine/bus"
	"github.com/hubastard/canopy/engine/config"
)

// Run wires the platform window + device and executes the main loop.
//
// Order of events: window and device are created, App.OnStart wires its
// components onto e.Bus, GL-initialized is signalled, the loop runs until the
// window closes, App.OnShutdown runs, system-shutting-down is signalled, and
// the device is shut down. A failed OnStart still gets the shutdown steps.
func Run(app App, cfg config.Config, newWindow func(config.Window) (Window, error), newDevice func(Window) (Device, error)) (err error) {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	log := Logger()

	win, err := newWindow(cfg.Window)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	dev, err := newDevice(win)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	defer dev.Shutdown()

	w, h := win.FramebufferSize()
	dev.Resize(w, h)

	eng := &Engine{
		Window: win,
		Device: dev,
		Bus:    bus.New(),
		Input:  NewInput(),
		Layers: &LayerStack{},
		start:  time.Now(),
	}
	win.SetEventCallback(func(ev Event) {
		eng.Input.Handle(ev)
		if r, ok := ev.(EventResize); ok && r.W > 0 && r.H > 0 {
			fw, fh := win.FramebufferSize()
			dev.Resize(fw, fh)
		}
		if eng.Layers.Dispatch(eng, ev) {
			return
		}
		app.OnEvent(eng, ev)
	})

	// Registered before OnStart so a failed start still releases whatever it wired.
	defer func() {
		app.OnShutdown(eng)
		eng.Layers.Clear(eng)
		if serr := eng.Bus.Signal(bus.SystemShuttingDown); serr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown: %w", serr))
		}
		log.Info("engine exit", "uptime", eng.Uptime().Round(time.Millisecond))
	}()

	if err := app.OnStart(eng); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if err := eng.Bus.Signal(bus.GLInitialized); err != nil {
		return fmt.Errorf("gl initialized: %w", err)
	}
	log.Info("engine started", "gpu", dev.GPURenderer(), "gl", dev.GPUVersion())

	return loop(eng, app)
}

// Fixed-timestep (60 Hz) with interpolation.
func loop(eng *Engine, app App) error {
	const tick = time.Second / 60
	const maxStep = 10 // prevent spiral of death
	var (
		accum time.Duration
		prev  = time.Now()
	)

	for !eng.Window.ShouldClose() {
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		// Poll OS events (platform will emit via callbacks)
		eng.Window.PollEvents()

		steps := 0
		for accum >= tick && steps < maxStep {
			dt := float64(tick) / float64(time.Second)
			app.OnUpdate(eng, dt)
			eng.Layers.Update(eng, dt)
			eng.Input.EndFrame()
			accum -= tick
			steps++
		}
		alpha := float64(accum) / float64(tick)

		if err := app.OnRender(eng, alpha); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if err := eng.Layers.Render(eng, alpha); err != nil {
			return fmt.Errorf("render: %w", err)
		}

		eng.Window.SwapBuffers()
	}
	return nil
}
