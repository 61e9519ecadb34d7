package ui

import (
	"strings"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/text"
)

type UILabel struct {
	Common[*UILabel]
	text      string
	fontSize  float32
	font      *text.FontAtlas
	wrap      bool
	maxWidth  float32
	layoutStr string
}

func Label(str string) *UILabel {
	l := &UILabel{text: str, fontSize: 16}
	l.Common = NewCommon(l)
	l.base.color = colors.White
	return l
}

func (l *UILabel) FontSize(size float32) *UILabel     { l.fontSize = size; return l }
func (l *UILabel) Font(font *text.FontAtlas) *UILabel { l.font = font; return l }
func (l *UILabel) Color(c colors.Color) *UILabel      { l.base.color = c; return l }
func (l *UILabel) Wrap(enabled bool) *UILabel         { l.wrap = enabled; return l }

// MaxWidth turns wrapping on at the given width.
func (l *UILabel) MaxWidth(width float32) *UILabel {
	l.maxWidth = width
	if width > 0 {
		l.wrap = true
	}
	return l
}

func (l *UILabel) Layout(ctx *Context, constraints Constraints) LayoutResult {
	if l.font == nil {
		l.font = ctx.DefaultFont
	}
	if l.font == nil {
		return LayoutResult{}
	}

	pad := l.base.padAxis()
	limit := constraints.Max[0]
	if l.maxWidth > 0 && (limit == 0 || l.maxWidth < limit) {
		limit = l.maxWidth
	}
	if limit > 0 {
		limit = max(0, limit-pad[0])
	}

	w, h := l.measure(limit)
	size := [2]float32{
		l.base.resolveAxis(0, w+pad[0], constraints.Min[0], constraints.Max[0]),
		l.base.resolveAxis(1, h+pad[1], constraints.Min[1], constraints.Max[1]),
	}
	l.base.size = size
	return LayoutResult{Size: size}
}

func (l *UILabel) Draw(ctx *Context) error {
	if l.layoutStr == "" || l.font == nil || l.base.color[3] <= 0 {
		return nil
	}
	x := l.base.position[0] + l.base.padding[0]
	y := l.base.position[1] + l.base.padding[1]
	return text.DrawText(ctx.Glyphs, l.font, x, y, l.fontSize, l.layoutStr, l.base.color, ctx.Layer)
}

// measure sets layoutStr, wrapping at word boundaries when enabled and
// limit > 0, and returns the text extent.
func (l *UILabel) measure(limit float32) (w, h float32) {
	if l.text == "" {
		l.layoutStr = ""
		return 0, 0
	}
	if !l.wrap || limit <= 0 {
		l.layoutStr = l.text
		return text.MeasureText(l.font, l.text, l.fontSize)
	}

	width := func(s string) float32 {
		w, _ := text.MeasureText(l.font, s, l.fontSize)
		return w
	}
	space := width(" ")

	var lines []string
	for _, raw := range strings.Split(l.text, "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current, currentW := words[0], width(words[0])
		for _, word := range words[1:] {
			wordW := width(word)
			if currentW+space+wordW > limit {
				lines = append(lines, current)
				w = max(w, currentW)
				current, currentW = word, wordW
				continue
			}
			current += " " + word
			currentW += space + wordW
		}
		lines = append(lines, current)
		w = max(w, currentW)
	}

	l.layoutStr = strings.Join(lines, "\n")
	_, h = text.MeasureText(l.font, l.layoutStr, l.fontSize)
	return w, h
}
