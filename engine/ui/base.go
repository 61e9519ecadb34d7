// Package ui lays out a retained tree of views and labels and draws it as
// rect and glyph items.
package ui

import (
	"math"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/text"
)

type SizeMode int

const (
	SizeModeFit SizeMode = iota
	SizeModeFixed
	SizeModeExpand
)

// Constraints bound an element's outer size per axis. A zero Max is unbounded.
type Constraints struct {
	Min [2]float32
	Max [2]float32
}

type LayoutResult struct {
	Size [2]float32
}

// Context is what a tree needs to draw. Backgrounds go on Layer and every
// nesting level draws one layer higher.
type Context struct {
	Viewport    [4]float32 // x, y, w, h
	DefaultFont *text.FontAtlas
	Rects       *batch.Manager[batch.RectItem]
	Glyphs      *batch.Manager[batch.FontGlyphItem]
	Layer       int32
}

type UIElement interface {
	Node() *Base
	Layout(ctx *Context, constraints Constraints) LayoutResult
	Draw(ctx *Context) error
}

type Base struct {
	parent   UIElement
	children []UIElement
	position [2]float32
	size     [2]float32
	color    colors.Color
	mode     [2]SizeMode
	fixed    [2]float32
	padding  [4]float32 // left, top, right, bottom
}

func (b *Base) Parent() UIElement       { return b.parent }
func (b *Base) Children() []UIElement   { return b.children }
func (b *Base) Pos() (x, y float32)     { return b.position[0], b.position[1] }
func (b *Base) Size() (w, h float32)    { return b.size[0], b.size[1] }
func (b *Base) SetSize(w, h float32)    { b.size = [2]float32{w, h} }
func (b *Base) SetColor(c colors.Color) { b.color = c }
func (b *Base) Padding() [4]float32     { return b.padding }
func (b *Base) SetPadding(l, t, r, btm float32) {
	b.padding = [4]float32{l, t, r, btm}
}

// SetPos moves the element and everything below it.
func (b *Base) SetPos(x, y float32) { b.shift(x-b.position[0], y-b.position[1]) }

func (b *Base) shift(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	b.position[0] += dx
	b.position[1] += dy
	for _, c := range b.children {
		c.Node().shift(dx, dy)
	}
}

// padAxis is the padding along x and y.
func (b *Base) padAxis() [2]float32 {
	return [2]float32{b.padding[0] + b.padding[2], b.padding[1] + b.padding[3]}
}

func (b *Base) innerPosition() [2]float32 {
	return [2]float32{b.position[0] + b.padding[0], b.position[1] + b.padding[1]}
}

func unbounded(limit float32) float32 {
	if limit == 0 {
		return math.MaxFloat32
	}
	return limit
}

// resolveAxis picks the outer size along axis from the mode and the content
// size. Expanding elements take their content size here; the parent hands
// out the free space.
func (b *Base) resolveAxis(axis int, content, lo, hi float32) float32 {
	v := content
	if b.mode[axis] == SizeModeFixed && b.fixed[axis] > 0 {
		v = b.fixed[axis]
	}
	return min(max(v, lo), unbounded(hi))
}

// ------ Helper ------

type Common[T any] struct {
	owner T
	base  Base
}

func NewCommon[T any](owner T) Common[T] { return Common[T]{owner: owner} }

func (c *Common[T]) Node() *Base              { return &c.base }
func (c *Common[T]) Position(x, y float32) T  { c.base.SetPos(x, y); return c.owner }
func (c *Common[T]) Size(w, h float32) T      { c.base.SetSize(w, h); return c.owner }
func (c *Common[T]) Color(col colors.Color) T { c.base.SetColor(col); return c.owner }

func (c *Common[T]) WidthFit() T     { c.base.mode[0] = SizeModeFit; return c.owner }
func (c *Common[T]) HeightFit() T    { c.base.mode[1] = SizeModeFit; return c.owner }
func (c *Common[T]) WidthExpand() T  { c.base.mode[0] = SizeModeExpand; return c.owner }
func (c *Common[T]) HeightExpand() T { c.base.mode[1] = SizeModeExpand; return c.owner }

func (c *Common[T]) WidthFixed(width float32) T {
	c.base.mode[0] = SizeModeFixed
	c.base.fixed[0] = width
	return c.owner
}

func (c *Common[T]) HeightFixed(height float32) T {
	c.base.mode[1] = SizeModeFixed
	c.base.fixed[1] = height
	return c.owner
}

func (c *Common[T]) Padding(all float32) T {
	c.base.SetPadding(all, all, all, all)
	return c.owner
}

func (c *Common[T]) Padding2(horizontal, vertical float32) T {
	c.base.SetPadding(horizontal, vertical, horizontal, vertical)
	return c.owner
}

func (c *Common[T]) Padding4(left, top, right, bottom float32) T {
	c.base.SetPadding(left, top, right, bottom)
	return c.owner
}

func (c *Common[T]) Children(kids ...UIElement) T {
	c.base.children = append(c.base.children, kids...)
	for _, k := range kids {
		k.Node().parent = any(c.owner).(UIElement)
	}
	return c.owner
}
