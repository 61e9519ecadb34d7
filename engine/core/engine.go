package core

import (
	"time"

	"github.com/hubastard/canopy/engine/bus"
)

// App defines the game/application hooks.
type App interface {
	OnStart(e *Engine) error                 // window and device exist; GL-initialized not yet signalled
	OnUpdate(e *Engine, dt float64)          // called at a fixed tick (60Hz by default)
	OnRender(e *Engine, alpha float64) error // render with interpolation alpha [0..1]
	OnEvent(e *Engine, ev Event)             // input/window events
	OnShutdown(e *Engine)                    // before system-shutting-down is signalled
}

// Engine exposes core services to the App.
type Engine struct {
	Window Window
	Device Device
	Bus    *bus.Bus
	Input  *Input
	Layers *LayerStack
	start  time.Time
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
}

// Event model (closed set).
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

type EventScroll struct{ Xoff, Yoff float64 }

func (EventScroll) isEvent() {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyP
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)
