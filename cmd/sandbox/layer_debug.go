package main

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/scene"
	"github.com/hubastard/canopy/engine/ui"
)

const (
	debugTextSize = 16
	debugPadding  = 12
)

// ------- Screen-space statistics overlay (Ctrl+P toggles) -------
type LayerDebug struct {
	app           *App
	cam           *scene.OrthoCamera2D
	hidden        bool
	frameDuration float32
	tick          int
	mem           runtime.MemStats
}

func (l *LayerDebug) OnAttach(e *core.Engine) error {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewOrtho2D(w, h)
	l.cam.LookAt(mgl32.Vec2{float32(w) / 2, float32(h) / 2}) // origin top-left
	return nil
}

func (l *LayerDebug) OnDetach(e *core.Engine) {}

func (l *LayerDebug) OnUpdate(e *core.Engine, dt float64) {
	// refresh memory stats about once a second
	if l.tick%60 == 0 {
		runtime.ReadMemStats(&l.mem)
	}
}

func (l *LayerDebug) OnRender(e *core.Engine, alpha float64) error {
	if l.hidden {
		return nil
	}
	ms, r2d, st := l.app.managers, l.app.r2d, l.app.stats

	var fps float32
	if l.frameDuration > 0 {
		fps = 1000 / l.frameDuration
	}
	section := func(title string) *ui.UILabel {
		return ui.Label(title).FontSize(debugTextSize).Padding4(0, 8, 0, 0).Color(colors.Yellow)
	}
	line := func(format string, args ...any) *ui.UILabel {
		return ui.Label(fmt.Sprintf(format, args...)).FontSize(debugTextSize)
	}
	w, h := l.cam.Viewport()

	panel := ui.View(
		ui.View(
			section(fmt.Sprintf("Frame: %d", l.tick)),
			line("  %2.3f ms (%.2f FPS)", l.frameDuration, fps),
			section("2D Renderer"),
			line("  Draw calls: %d  Commits: %d", st.DrawCalls, st.Commits),
			line("  Quads: %d  Vertices: %d", st.QuadCount, st.TotalVertexCount()),
			line("  Textures: %d", st.TextureCount),
			line("  Batches: %d / %d / %d / %d", ms.Texture.Cap(), ms.Font.Cap(), ms.Rect.Cap(), ms.Line.Cap()),
			section("Memory"),
			line("  Heap: %.3f MB", float32(l.mem.HeapAlloc)/(1<<20)),
			line("  Goroutines: %d", runtime.NumGoroutine()),
			section("GPU"),
			line("  Vendor: %s", e.Device.GPUVendor()),
			line("  Renderer: %s", e.Device.GPURenderer()),
			line("  Version: %s", e.Device.GPUVersion()),
		).
			FlowDirection(ui.LayoutVertical).
			Gap(2).
			Padding(debugPadding).
			BgColor(colors.Black.WithAlpha(0.5)),
	).
		Padding(16).
		FlowDirection(ui.LayoutVertical)

	r2d.SetViewProjection(l.cam.VP())
	if err := r2d.Begin(); err != nil {
		return err
	}
	if err := panel.Draw(&ui.Context{
		Viewport:    [4]float32{0, 0, w, h},
		DefaultFont: l.app.font,
		Rects:       ms.Rect,
		Glyphs:      ms.Font,
	}); err != nil {
		return err
	}
	return r2d.End()
}

func (l *LayerDebug) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventKey:
		if v.Down && v.Key == core.KeyP && (v.Mods&core.ModCtrl) != 0 {
			l.hidden = !l.hidden
			return true
		}
	case core.EventResize:
		if v.W > 0 && v.H > 0 {
			l.cam.SetViewportPixels(v.W, v.H)
			l.cam.LookAt(mgl32.Vec2{float32(v.W) / 2, float32(v.H) / 2})
		}
	}
	return false
}
