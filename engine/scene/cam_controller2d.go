package scene

import (
	"math"

	"github.com/hubastard/canopy/engine/core"
)

// OrthoController2D: WASD move, Q/E rotate, scroll wheel zooms.
type OrthoController2D struct {
	MoveSpeed float32 // pixels per second at zoom 1
	RotSpeed  float32 // radians per second
	ZoomSpeed float32 // zoom factor per scroll step
	Camera    *OrthoCamera2D
}

func NewOrthoController2D(cam *OrthoCamera2D) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 300,
		RotSpeed:  2.0,
		ZoomSpeed: 1.2,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(in *core.Input, dt float32) {
	cam := cc.Camera
	speed := cc.MoveSpeed * dt / cam.Zoom
	rotSpeed := cc.RotSpeed * dt

	if in.IsKeyDown(core.KeyW) {
		cam.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyS) {
		cam.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyA) {
		cam.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cam.Move(speed, 0)
	}
	if in.IsKeyDown(core.KeyQ) {
		cam.Rotate(rotSpeed)
	}
	if in.IsKeyDown(core.KeyE) {
		cam.Rotate(-rotSpeed)
	}

	if s := in.Scroll(); s != 0 {
		cam.SetZoom(cam.Zoom * float32(math.Pow(float64(cc.ZoomSpeed), s)))
	}
}

// OnResize keeps the projection in step with the framebuffer.
func (cc *OrthoController2D) OnResize(w, h int) {
	if w > 0 && h > 0 {
		cc.Camera.SetViewportPixels(w, h)
	}
}
