package batch

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
)

// ItemKind names one of the four draw-item variants.
type ItemKind uint8

const (
	KindTexture ItemKind = iota
	KindFont
	KindRect
	KindLine
)

// Kinds lists every draw-item kind in commit order.
var Kinds = [...]ItemKind{KindTexture, KindFont, KindRect, KindLine}

func (k ItemKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindFont:
		return "font"
	case KindRect:
		return "rect"
	case KindLine:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Rect is an axis-aligned rectangle in pixels. For a source region X,Y is the
// top-left corner; a destination rect is centred on X,Y.
type Rect struct {
	X, Y, W, H float32
}

// RenderEffects are bit flags applied when a texture region is drawn.
type RenderEffects uint8

const (
	FlipHorizontally RenderEffects = 1 << iota
	FlipVertically

	NoEffects RenderEffects = 0
)

func (e RenderEffects) Has(f RenderEffects) bool { return e&f == f }

// CornerRadius holds per-corner rounding in pixels.
type CornerRadius struct {
	TopLeft, BottomLeft, BottomRight, TopRight float32
}

// GradientType selects how a rectangle blends GradientStart into GradientStop.
type GradientType uint8

const (
	GradientNone GradientType = iota
	GradientHorizontal
	GradientVertical
)

// TextureItem draws SrcRect of a texture into DestRect. DestRect's origin is
// the centre of the quad; Angle is in degrees, Size scales DestRect.
type TextureItem struct {
	SrcRect   Rect
	DestRect  Rect
	TextureID uint32
	Tint      colors.Color
	Effects   RenderEffects
	Angle     float32
	Size      float32
}

// FontGlyphItem draws one glyph cut from a font atlas.
type FontGlyphItem struct {
	Glyph    rune
	SrcRect  Rect
	DestRect Rect
	FontID   uint32
	Tint     colors.Color
	Effects  RenderEffects
	Angle    float32
	Size     float32
}

// RectItem draws a filled or outlined rectangle centred on Position.
type RectItem struct {
	Position        mgl32.Vec2
	Size            mgl32.Vec2
	Color           colors.Color
	CornerRadius    CornerRadius
	Gradient        GradientType
	GradientStart   colors.Color
	GradientStop    colors.Color
	BorderThickness float32
	IsSolid         bool
}

// LineItem draws a segment from P1 to P2.
type LineItem struct {
	P1, P2    mgl32.Vec2
	Color     colors.Color
	Thickness float32
}

func (TextureItem) Kind() ItemKind   { return KindTexture }
func (FontGlyphItem) Kind() ItemKind { return KindFont }
func (RectItem) Kind() ItemKind      { return KindRect }
func (LineItem) Kind() ItemKind      { return KindLine }

// Item is the closed set of draw items a Batch can hold. The zero value of
// each variant is the empty-slot sentinel.
type Item interface {
	TextureItem | FontGlyphItem | RectItem | LineItem
	Kind() ItemKind
}

// RenderItem pairs a draw item with the layer it was submitted on. Layer does
// not affect slot placement.
type RenderItem[V Item] struct {
	Layer int32
	Item  V
}

// IsEmpty reports whether the item is the sentinel value.
func (r RenderItem[V]) IsEmpty() bool {
	var zero V
	return r.Item == zero
}
