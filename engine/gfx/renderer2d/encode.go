package renderer2d

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
)

// Max textures per draw call (common GL limit is 16)
const maxTexSlots = 16

// Vertex: pos2 + color4 + uv2 + texIndex1 => 9 floats
const vStride = 9
const vertsPerQuad = 4
const indsPerQuad = 6

var quadVertexLayout = core.VertexLayout{
	Stride: vStride * 4,
	Attributes: []core.VertexAttrib{
		{Location: 0, Size: 2, Type: core.AttribFloat32, Offset: 0},     // pos
		{Location: 1, Size: 4, Type: core.AttribFloat32, Offset: 2 * 4}, // color
		{Location: 2, Size: 2, Type: core.AttribFloat32, Offset: 6 * 4}, // uv
		{Location: 3, Size: 1, Type: core.AttribFloat32, Offset: 8 * 4}, // texIndex
	},
}

var fullUV = [4]float32{0, 0, 1, 1}

// corner colours in TL, TR, BL, BR order
type quadColors [4]colors.Color

func solid(c colors.Color) quadColors { return quadColors{c, c, c, c} }

func (rd *Renderer2D) encode(op drawOp) error {
	switch op.kind {
	case batch.KindTexture:
		it := rd.textures[op.index].Item
		return rd.encodeTextured(it.SrcRect, it.DestRect, core.Texture(it.TextureID), it.Tint, it.Effects, it.Angle, it.Size)
	case batch.KindFont:
		it := rd.glyphs[op.index].Item
		return rd.encodeTextured(it.SrcRect, it.DestRect, core.Texture(it.FontID), it.Tint, it.Effects, it.Angle, it.Size)
	case batch.KindRect:
		return rd.encodeRect(rd.rects[op.index].Item)
	case batch.KindLine:
		return rd.encodeLine(rd.lines[op.index].Item)
	default:
		return fmt.Errorf("renderer2d: unknown item kind %v", op.kind)
	}
}

// encodeTextured draws src of tex centred on dest's origin. A zero-sized
// dest uses the source size, a zero-sized src samples the whole texture.
func (rd *Renderer2D) encodeTextured(src, dest batch.Rect, tex core.Texture, tint colors.Color, fx batch.RenderEffects, angleDeg, size float32) error {
	if size <= 0 {
		size = 1
	}
	w, h := dest.W, dest.H
	if w == 0 && h == 0 {
		w, h = src.W, src.H
	}

	uv := fullUV
	if src.W != 0 && src.H != 0 {
		tw, th := rd.dev.TextureSize(tex)
		if tw > 0 && th > 0 {
			uv = [4]float32{
				src.X / float32(tw),
				src.Y / float32(th),
				(src.X + src.W) / float32(tw),
				(src.Y + src.H) / float32(th),
			}
		}
	}
	if fx.Has(batch.FlipHorizontally) {
		uv[0], uv[2] = uv[2], uv[0]
	}
	if fx.Has(batch.FlipVertically) {
		uv[1], uv[3] = uv[3], uv[1]
	}

	if err := rd.ensureQuadCapacity(1); err != nil {
		return err
	}
	slot, err := rd.texSlot(tex)
	if err != nil {
		return err
	}
	rd.drawQuad(dest.X, dest.Y, w*size, h*size, mgl32.DegToRad(angleDeg), slot, uv, solid(tint))
	return nil
}

func (rd *Renderer2D) encodeRect(it batch.RectItem) error {
	cols := solid(it.Color)
	switch it.Gradient {
	case batch.GradientHorizontal:
		cols = quadColors{it.GradientStart, it.GradientStop, it.GradientStart, it.GradientStop}
	case batch.GradientVertical:
		cols = quadColors{it.GradientStart, it.GradientStart, it.GradientStop, it.GradientStop}
	}

	x, y := it.Position.X(), it.Position.Y()
	w, h := it.Size.X(), it.Size.Y()
	t := it.BorderThickness
	if t <= 0 {
		t = 1
	}
	if it.IsSolid || 2*t >= min(w, h) {
		if err := rd.ensureQuadCapacity(1); err != nil {
			return err
		}
		rd.drawQuad(x, y, w, h, 0, 0, fullUV, cols)
		return nil
	}

	// outline: top and bottom span the full width, sides fill the gap
	if err := rd.ensureQuadCapacity(4); err != nil {
		return err
	}
	top, bottom := y-h/2+t/2, y+h/2-t/2
	left, right := x-w/2+t/2, x+w/2-t/2
	rd.drawQuad(x, top, w, t, 0, 0, fullUV, quadColors{cols[0], cols[1], cols[0], cols[1]})
	rd.drawQuad(x, bottom, w, t, 0, 0, fullUV, quadColors{cols[2], cols[3], cols[2], cols[3]})
	rd.drawQuad(left, y, t, h-2*t, 0, 0, fullUV, quadColors{cols[0], cols[0], cols[2], cols[2]})
	rd.drawQuad(right, y, t, h-2*t, 0, 0, fullUV, quadColors{cols[1], cols[1], cols[3], cols[3]})
	return nil
}

func (rd *Renderer2D) encodeLine(it batch.LineItem) error {
	d := it.P2.Sub(it.P1)
	length := d.Len()
	if length == 0 {
		return nil
	}
	thickness := it.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	mid := it.P1.Add(d.Mul(0.5))
	angle := float32(math.Atan2(float64(d.Y()), float64(d.X())))

	if err := rd.ensureQuadCapacity(1); err != nil {
		return err
	}
	rd.drawQuad(mid.X(), mid.Y(), length, thickness, angle, 0, fullUV, solid(it.Color))
	return nil
}

// texSlot returns the sampler slot of t, flushing when all slots are taken.
func (rd *Renderer2D) texSlot(t core.Texture) (float32, error) {
	for i := 0; i < rd.texCnt; i++ {
		if rd.texArr[i] == t {
			return float32(i), nil
		}
	}
	if rd.texCnt >= maxTexSlots {
		if err := rd.flush(); err != nil {
			return 0, err
		}
	}
	rd.texArr[rd.texCnt] = t
	rd.texCnt++
	rd.stats.TextureCount = max(rd.stats.TextureCount, rd.texCnt)
	return float32(rd.texCnt - 1), nil
}

func (rd *Renderer2D) drawQuad(x, y, w, h, rotationRad, texIndex float32, uv [4]float32, cols quadColors) {
	halfW := w * 0.5
	halfH := h * 0.5
	u0, v0, u1, v1 := uv[0], uv[1], uv[2], uv[3]

	// corners (TL, TR, BL, BR) with UVs. Positive Y goes down so top is -halfH.
	corners := [4][4]float32{
		{-halfW, -halfH, u0, v0},
		{halfW, -halfH, u1, v0},
		{-halfW, halfH, u0, v1},
		{halfW, halfH, u1, v1},
	}
	rot := mgl32.Rotate2D(rotationRad)

	startVertex := uint32(len(rd.verts) / vStride)

	for i, p := range corners {
		pos := rot.Mul2x1(mgl32.Vec2{p[0], p[1]})
		c := cols[i]
		rd.verts = append(rd.verts,
			pos.X()+x, pos.Y()+y,
			c[0], c[1], c[2], c[3],
			p[2], p[3],
			texIndex,
		)
	}
	rd.inds = append(rd.inds,
		startVertex+0, startVertex+2, startVertex+1,
		startVertex+1, startVertex+2, startVertex+3,
	)
	rd.quadCount++
	rd.stats.QuadCount++
}

func (rd *Renderer2D) ensureQuadCapacity(n int) error {
	if rd.quadCount+n > rd.opts.MaxQuads {
		return rd.flush()
	}
	return nil
}

func (rd *Renderer2D) flush() error {
	if rd.quadCount == 0 {
		return nil
	}

	if err := rd.dev.UpdateMesh(rd.mesh, rd.verts, rd.inds); err != nil {
		return fmt.Errorf("renderer2d: upload quads: %w", err)
	}

	clear(rd.samplers)
	for i := 0; i < rd.texCnt; i++ {
		rd.samplers[rd.texNames[i]] = rd.texArr[i]
	}
	clear(rd.uniforms)
	rd.uniforms["uVP"] = rd.vp

	rd.dev.Draw(core.DrawCmd{
		Pipe:       rd.pipe,
		Mesh:       rd.mesh,
		IndexCount: len(rd.inds),
		Uniforms:   rd.uniforms,
		Samplers:   rd.samplers,
	})
	rd.stats.DrawCalls++

	rd.resetBatch()
	return nil
}

func (rd *Renderer2D) resetBatch() {
	rd.verts = rd.verts[:0]
	rd.inds = rd.inds[:0]
	rd.quadCount = 0
	clear(rd.texArr[:])
	rd.texArr[0] = rd.white
	rd.texCnt = 1
}
