// Package text rasterizes TrueType fonts into glyph atlases and lays out
// strings as font glyph items.
package text

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph metrics are in pixels at the atlas size.
type Glyph struct {
	Rune     rune
	Advance  float32
	BearingX float32    // left bearing
	BearingY float32    // distance from baseline to glyph top
	W, H     int        // bitmap size
	Src      batch.Rect // location in the atlas
}

type FontAtlas struct {
	SizePx                   float32
	Ascent, Descent, LineGap float32
	Glyphs                   map[rune]Glyph
	Kerning                  map[rune]map[rune]float32
	Texture                  core.Texture
	AtlasW, AtlasH           int
}

const (
	firstRune    = rune(32)
	lastRune     = rune(255)
	atlasPadding = 2
	maxAtlasSize = 4096
)

// LoadTTF reads a TrueType/OpenType file and builds its atlas on dev.
func LoadTTF(dev core.Device, path string, sizePx float32) (*FontAtlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return NewFontAtlas(dev, data, sizePx)
}

// NewFontAtlas builds a white glyph atlas (alpha coverage) for Latin-1 and
// uploads it as an RGBA texture.
func NewFontAtlas(dev core.Device, ttf []byte, sizePx float32) (*FontAtlas, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", sizePx)
	}
	ft, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer face.Close()

	// Metrics in pixels
	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(-m.Descent.Round())
	lineGap := float32(m.Height.Round()) - ascent + descent

	type meas struct {
		r      rune
		w, h   int
		adv    float32
		bx, by float32
	}
	measure := make([]meas, 0, lastRune-firstRune+1)
	for r := firstRune; r <= lastRune; r++ {
		br, adv, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		measure = append(measure, meas{
			r:   r,
			w:   (br.Max.X - br.Min.X).Round(),
			h:   (br.Max.Y - br.Min.Y).Round(),
			adv: float32(adv.Round()),
			bx:  float32(br.Min.X.Round()),
			by:  float32(-br.Min.Y.Round()),
		})
	}

	// Shelf packer. Start at 256^2 and double until everything fits.
	atlasSize := 256
	var pos map[rune]image.Point
	for {
		x, y, rowH := atlasPadding, atlasPadding, 0
		fits := true
		pos = make(map[rune]image.Point, len(measure))

		for _, g := range measure {
			if g.w == 0 || g.h == 0 {
				continue
			}
			if g.w+atlasPadding*2 > atlasSize || g.h+atlasPadding*2 > atlasSize {
				fits = false
				break
			}
			if x+g.w+atlasPadding > atlasSize {
				x = atlasPadding
				y += rowH + atlasPadding
				rowH = 0
			}
			if y+g.h+atlasPadding > atlasSize {
				fits = false
				break
			}
			pos[g.r] = image.Pt(x, y)
			x += g.w + atlasPadding
			rowH = max(rowH, g.h)
		}

		if fits {
			break
		}
		atlasSize *= 2
		if atlasSize > maxAtlasSize {
			return nil, fmt.Errorf("font atlas too large (>%d)", maxAtlasSize)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	drawer := &font.Drawer{Dst: dst, Src: image.White, Face: face}

	glyphs := make(map[rune]Glyph, len(measure))
	for _, g := range measure {
		glyph := Glyph{
			Rune: g.r, Advance: g.adv,
			BearingX: g.bx, BearingY: g.by,
			W: g.w, H: g.h,
		}
		if p, ok := pos[g.r]; ok {
			// the dot sits on the baseline, shifted left by the bearing
			drawer.Dot = fixed.P(p.X-int(g.bx), p.Y+int(g.by))
			drawer.DrawString(string(g.r))
			glyph.Src = batch.Rect{X: float32(p.X), Y: float32(p.Y), W: float32(g.w), H: float32(g.h)}
		}
		glyphs[g.r] = glyph
	}

	kerning := make(map[rune]map[rune]float32)
	for _, a := range measure {
		for _, b := range measure {
			if dx := face.Kern(a.r, b.r); dx != 0 {
				if kerning[a.r] == nil {
					kerning[a.r] = make(map[rune]float32)
				}
				kerning[a.r][b.r] = float32(dx.Round())
			}
		}
	}

	tex, err := dev.CreateTexture(core.TextureDesc{
		Width: atlasSize, Height: atlasSize,
		Format:    core.TextureRGBA8,
		Pixels:    dst.Pix,
		MinFilter: "nearest",
		MagFilter: "nearest",
		WrapU:     "clamp",
		WrapV:     "clamp",
	})
	if err != nil {
		return nil, fmt.Errorf("upload font atlas: %w", err)
	}
	core.Logger().Debug("font atlas built", "size_px", sizePx, "glyphs", len(glyphs), "atlas", atlasSize)

	return &FontAtlas{
		SizePx: sizePx,
		Ascent: ascent, Descent: descent, LineGap: lineGap,
		Glyphs:  glyphs,
		Kerning: kerning,
		Texture: tex,
		AtlasW:  atlasSize, AtlasH: atlasSize,
	}, nil
}

// Kern returns the pen adjustment between a and b.
func (fa *FontAtlas) Kern(a, b rune) float32 { return fa.Kerning[a][b] }

// BaselineToTop is the distance from the baseline to the top of a line.
func (fa *FontAtlas) BaselineToTop() float32    { return fa.Ascent }
func (fa *FontAtlas) BaselineToBottom() float32 { return -fa.Descent }
func (fa *FontAtlas) LineHeight() float32       { return fa.Ascent - fa.Descent + fa.LineGap }
