package main

import (
	"errors"
	"io/fs"
	"math"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/scene"
)

// ------- A simple 2D Layer demo -------
type Layer2D struct {
	app    *App
	cam    *scene.OrthoCamera2D
	ctrl   *scene.OrthoController2D
	tex    core.Texture
	player batch.Rect // source rect of the first sprite frame
	t      float32
}

func (l *Layer2D) OnAttach(e *core.Engine) error {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewOrtho2D(w, h)
	l.cam.SetZoom(2)
	l.ctrl = scene.NewOrthoController2D(l.cam)

	tw, th, pixels, err := assets.LoadPNG(filepath.Join(l.app.assetDir, "textures"), "player.png")
	if errors.Is(err, fs.ErrNotExist) {
		tw, th, pixels = checkerboard(64, 8)
		err = nil
	}
	if err != nil {
		return err
	}

	l.tex, err = e.Device.CreateTexture(core.TextureDesc{
		Width:     tw,
		Height:    th,
		Format:    core.TextureRGBA8,
		Pixels:    pixels,
		MinFilter: "linear",
		MagFilter: "nearest",
		WrapU:     "clamp",
		WrapV:     "clamp",
	})
	if err != nil {
		return err
	}
	l.player = batch.Rect{W: float32(min(tw, 32)), H: float32(min(th, 32))}
	return nil
}

func (l *Layer2D) OnDetach(e *core.Engine) {}

func (l *Layer2D) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e.Input, float32(dt))
	l.t += float32(dt)

	if e.Input.IsKeyDown(core.KeyEscape) {
		e.Window.RequestClose()
	}
}

func (l *Layer2D) OnRender(e *core.Engine, alpha float64) error {
	ms, r2d := l.app.managers, l.app.r2d
	r2d.SetViewProjection(l.cam.VP())
	if err := r2d.Begin(); err != nil {
		return err
	}

	// background grid, one gradient cell per tile
	for y := -4; y < 4; y++ {
		for x := -6; x < 6; x++ {
			start := colors.Cyan.Lerp(colors.Magenta, float32(x+6)/12)
			if err := ms.Rect.Add(batch.RectItem{
				Position:      mgl32.Vec2{float32(x)*40 + 20, float32(y)*40 + 20},
				Size:          mgl32.Vec2{36, 36},
				IsSolid:       true,
				Gradient:      batch.GradientVertical,
				GradientStart: start.WithAlpha(0.35),
				GradientStop:  colors.Black.WithAlpha(0.35),
			}, 0); err != nil {
				return err
			}
		}
	}

	pulse := 0.5 + 0.5*float32(math.Sin(float64(l.t*2)))
	if err := ms.Rect.Add(batch.RectItem{
		Position:        mgl32.Vec2{0, 0},
		Size:            mgl32.Vec2{120 + 20*pulse, 120 + 20*pulse},
		Color:           colors.Yellow,
		BorderThickness: 2,
		CornerRadius:    batch.CornerRadius{TopLeft: 4, BottomLeft: 4, BottomRight: 4, TopRight: 4},
	}, 2); err != nil {
		return err
	}

	// a spinning sprite, plus a mirrored copy
	for i, fx := range []batch.RenderEffects{batch.NoEffects, batch.FlipHorizontally} {
		if err := ms.Texture.Add(batch.TextureItem{
			SrcRect:   l.player,
			DestRect:  batch.Rect{X: float32(i*80 - 40), Y: 0, W: 32, H: 32},
			TextureID: uint32(l.tex),
			Tint:      colors.White,
			Effects:   fx,
			Angle:     l.t * 45,
			Size:      1 + 0.25*pulse,
		}, 1); err != nil {
			return err
		}
	}

	// radar sweep
	tip := mgl32.Rotate2D(l.t).Mul2x1(mgl32.Vec2{100, 0})
	if err := ms.Line.Add(batch.LineItem{P2: tip, Color: colors.Green, Thickness: 2}, 3); err != nil {
		return err
	}

	err := r2d.End()
	l.app.stats = r2d.Stats()
	return err
}

func (l *Layer2D) OnEvent(e *core.Engine, ev core.Event) bool {
	if v, ok := ev.(core.EventResize); ok {
		l.ctrl.OnResize(v.W, v.H)
	}
	return false
}

// checkerboard stands in for a missing sprite sheet.
func checkerboard(size, cell int) (w, h int, rgba []byte) {
	rgba = make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := byte(80)
			if (x/cell+y/cell)%2 == 0 {
				v = 220
			}
			i := (y*size + x) * 4
			rgba[i], rgba[i+1], rgba[i+2], rgba[i+3] = v, v, v, 255
		}
	}
	return size, size, rgba
}
