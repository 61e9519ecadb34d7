package ui

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
)

type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

type LayoutDirection int

const (
	LayoutHorizontal LayoutDirection = iota
	LayoutVertical
)

// UIView stacks its children along one axis.
type UIView struct {
	Common[*UIView]
	gap        float32
	mainAlign  Align
	crossAlign Align
	flow       LayoutDirection
	sizes      [][2]float32
}

func View(children ...UIElement) *UIView {
	v := &UIView{gap: 10}
	v.Common = NewCommon(v)
	v.Children(children...)
	return v
}

func (v *UIView) BgColor(color colors.Color) *UIView              { v.base.color = color; return v }
func (v *UIView) FlowDirection(direction LayoutDirection) *UIView { v.flow = direction; return v }
func (v *UIView) Gap(g float32) *UIView                           { v.gap = g; return v }
func (v *UIView) AlignMain(a Align) *UIView                       { v.mainAlign = a; return v }
func (v *UIView) AlignCross(a Align) *UIView                      { v.crossAlign = a; return v }

// axes returns the main and cross axis indices.
func (v *UIView) axes() (m, c int) {
	if v.flow == LayoutVertical {
		return 1, 0
	}
	return 0, 1
}

func (v *UIView) Layout(ctx *Context, constraints Constraints) LayoutResult {
	m, c := v.axes()
	pad := v.base.padAxis()
	children := v.base.children

	inner := Constraints{Max: [2]float32{
		max(0, unbounded(constraints.Max[0])-pad[0]),
		max(0, unbounded(constraints.Max[1])-pad[1]),
	}}

	v.sizes = v.sizes[:0]
	var mainSum, cross float32
	expanding := 0
	for _, child := range children {
		size := child.Layout(ctx, inner).Size
		v.sizes = append(v.sizes, size)
		mainSum += size[m]
		cross = max(cross, size[c])
		if child.Node().mode[m] == SizeModeExpand {
			expanding++
		}
	}

	var gaps float32
	if len(children) > 1 {
		gaps = v.gap * float32(len(children)-1)
	}

	var outer [2]float32
	outer[m] = v.base.resolveAxis(m, mainSum+gaps+pad[m], constraints.Min[m], constraints.Max[m])
	outer[c] = v.base.resolveAxis(c, cross+pad[c], constraints.Min[c], constraints.Max[c])
	v.base.size = outer

	innerMain := max(0, outer[m]-pad[m])
	innerCross := max(0, outer[c]-pad[c])
	free := max(0, innerMain-mainSum-gaps)

	if expanding > 0 {
		share := free / float32(expanding)
		for i, child := range children {
			if child.Node().mode[m] == SizeModeExpand {
				v.sizes[i][m] += share
			}
		}
		free = 0
	}

	var cursor float32
	switch v.mainAlign {
	case AlignCenter:
		cursor = free / 2
	case AlignEnd:
		cursor = free
	}

	origin := v.base.innerPosition()
	for i, child := range children {
		node := child.Node()
		size := v.sizes[i]
		if v.crossAlign == AlignStretch || node.mode[c] == SizeModeExpand {
			size[c] = innerCross
		}
		size[c] = min(size[c], innerCross)
		if size != node.size {
			// lay out again at the final size
			child.Layout(ctx, Constraints{Min: size, Max: size})
			node.size = size
		}

		var pos [2]float32
		pos[m] = origin[m] + cursor
		switch v.crossAlign {
		case AlignCenter:
			pos[c] = origin[c] + (innerCross-size[c])/2
		case AlignEnd:
			pos[c] = origin[c] + innerCross - size[c]
		default:
			pos[c] = origin[c]
		}
		node.SetPos(pos[0], pos[1])
		cursor += size[m] + v.gap
	}

	return LayoutResult{Size: outer}
}

// Draw lays the tree out against the viewport when v is the root, then draws
// the background and the children one layer above it.
func (v *UIView) Draw(ctx *Context) error {
	if v.base.parent == nil {
		v.base.SetPos(ctx.Viewport[0], ctx.Viewport[1])
		var cons Constraints
		cons.Max = [2]float32{ctx.Viewport[2], ctx.Viewport[3]}
		for axis := 0; axis < 2; axis++ {
			if v.base.mode[axis] == SizeModeExpand {
				cons.Min[axis] = ctx.Viewport[2+axis]
			}
		}
		v.Layout(ctx, cons)
	}

	if v.base.color[3] > 0 {
		w, h := v.base.Size()
		x, y := v.base.Pos()
		if err := ctx.Rects.Add(batch.RectItem{
			Position: mgl32.Vec2{x + w/2, y + h/2},
			Size:     mgl32.Vec2{w, h},
			Color:    v.base.color,
			IsSolid:  true,
		}, ctx.Layer); err != nil {
			return err
		}
	}

	sub := *ctx
	sub.Layer++
	for _, child := range v.base.children {
		if err := child.Draw(&sub); err != nil {
			return err
		}
	}
	return nil
}
