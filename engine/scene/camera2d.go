// Package scene holds 2D cameras and their input controllers.
package scene

import "github.com/go-gl/mathgl/mgl32"

const minZoom = 0.05

// OrthoCamera2D is a pixel-space orthographic camera centred on Position.
// Positive Y goes down, matching the 2D renderer.
type OrthoCamera2D struct {
	Position    mgl32.Vec2
	RotationRad float32
	Zoom        float32 // 1 = one world unit per pixel
	halfW       float32
	halfH       float32
	vp          mgl32.Mat4
	dirty       bool
}

func NewOrtho2D(width, height int) *OrthoCamera2D {
	c := &OrthoCamera2D{Zoom: 1}
	c.SetViewportPixels(width, height)
	c.Recalculate()
	return c
}

func (c *OrthoCamera2D) SetViewportPixels(w, h int) {
	c.halfW = float32(w) * 0.5
	c.halfH = float32(h) * 0.5
	c.dirty = true
}

// LookAt centres the camera on p.
func (c *OrthoCamera2D) LookAt(p mgl32.Vec2)      { c.Position = p; c.dirty = true }
func (c *OrthoCamera2D) Move(dx, dy float32)      { c.Position = c.Position.Add(mgl32.Vec2{dx, dy}); c.dirty = true }
func (c *OrthoCamera2D) Rotate(dRad float32)      { c.RotationRad += dRad; c.dirty = true }
func (c *OrthoCamera2D) SetZoom(z float32)        { c.Zoom = max(z, minZoom); c.dirty = true }
func (c *OrthoCamera2D) Viewport() (w, h float32) { return c.halfW * 2, c.halfH * 2 }

// VP returns projection * view.
func (c *OrthoCamera2D) VP() mgl32.Mat4 {
	if c.dirty {
		c.Recalculate()
	}
	return c.vp
}

func (c *OrthoCamera2D) Recalculate() {
	z := c.Zoom
	// top < bottom flips Y so it grows downward
	proj := mgl32.Ortho(-c.halfW/z, c.halfW/z, c.halfH/z, -c.halfH/z, -1, 1)
	view := mgl32.HomogRotate3DZ(-c.RotationRad).Mul4(mgl32.Translate3D(-c.Position.X(), -c.Position.Y(), 0))
	c.vp = proj.Mul4(view)
	c.dirty = false
}

// ScreenToWorld maps a window pixel (top-left origin) to world space.
func (c *OrthoCamera2D) ScreenToWorld(sx, sy float32) mgl32.Vec2 {
	w, h := c.Viewport()
	if w == 0 || h == 0 {
		return c.Position
	}
	ndc := mgl32.Vec4{sx/w*2 - 1, 1 - sy/h*2, 0, 1}
	p := c.VP().Inv().Mul4x1(ndc)
	return mgl32.Vec2{p.X(), p.Y()}
}
