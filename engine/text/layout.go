package text

import (
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
)

// DrawText adds one glyph item per visible rune of s with the top-left of the
// first line at (x,y). Positive Y goes downward. size is the target pixel
// height; zero uses the atlas size. It stops at the first Add error.
func DrawText(m *batch.Manager[batch.FontGlyphItem], font *FontAtlas, x, y, size float32, s string, tint colors.Color, layer int32) error {
	scale := float32(1)
	if size > 0 {
		scale = size / font.SizePx
	}
	var penX float32
	baseY := font.Ascent
	prev := rune(-1)

	for _, r := range s {
		if r == '\n' {
			penX = 0
			baseY += font.LineHeight()
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			if sp, ok := font.Glyphs[' ']; ok {
				penX += sp.Advance
			}
			prev = r
			continue
		}
		if prev >= 0 {
			penX += font.Kern(prev, r)
		}

		if g.W > 0 && g.H > 0 {
			// quad centre, baseline aligned: top = baseline - BearingY
			cx := penX + g.BearingX + float32(g.W)*0.5
			cy := baseY - g.BearingY + float32(g.H)*0.5
			err := m.Add(batch.FontGlyphItem{
				Glyph:    r,
				SrcRect:  g.Src,
				DestRect: batch.Rect{X: x + cx*scale, Y: y + cy*scale, W: float32(g.W), H: float32(g.H)},
				FontID:   uint32(font.Texture),
				Tint:     tint,
				Size:     scale,
			}, layer)
			if err != nil {
				return err
			}
		}

		penX += g.Advance
		prev = r
	}
	return nil
}

// MeasureText returns the extent of s at the given pixel size.
func MeasureText(font *FontAtlas, s string, size float32) (width, height float32) {
	var lineW float32
	prev := rune(-1)
	lineH := font.LineHeight()
	height = lineH

	scale := float32(1)
	if size > 0 {
		scale = size / font.SizePx
	}

	for _, r := range s {
		if r == '\n' {
			width = max(width, lineW)
			lineW = 0
			height += lineH
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			if sp, ok := font.Glyphs[' ']; ok {
				lineW += sp.Advance
			}
			prev = r
			continue
		}
		if prev >= 0 {
			lineW += font.Kern(prev, r)
		}
		lineW += g.Advance
		prev = r
	}

	width = max(width, lineW)
	return width * scale, height * scale
}
