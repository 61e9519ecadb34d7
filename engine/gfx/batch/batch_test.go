package batch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/stretchr/testify/assert"
)

func line(x float32) LineItem {
	return LineItem{P1: mgl32.Vec2{x, 0}, P2: mgl32.Vec2{x, 10}, Color: colors.White, Thickness: 1}
}

func TestNewBatchSlotsAreEmpty(t *testing.T) {
	b := NewBatch[LineItem](3)
	assert.Equal(t, 3, b.Cap())
	assert.Zero(t, b.Len())
	for i := 0; i < b.Cap(); i++ {
		assert.True(t, b.At(i).IsEmpty())
		assert.Zero(t, b.At(i).Layer)
	}
	assert.Empty(t, b.Items())
}

func TestPutFillsInSlotOrder(t *testing.T) {
	b := NewBatch[LineItem](2)
	assert.True(t, b.Put(line(1), 5))
	assert.True(t, b.Put(line(2), -3))
	assert.False(t, b.Put(line(3), 0))

	assert.Equal(t, []RenderItem[LineItem]{
		{Layer: 5, Item: line(1)},
		{Layer: -3, Item: line(2)},
	}, b.Items())
}

func TestItemsIsACopy(t *testing.T) {
	b := NewBatch[LineItem](1)
	b.Put(line(1), 1)
	items := b.Items()
	items[0].Layer = 99
	assert.Equal(t, int32(1), b.At(0).Layer)
}

func TestClearIsIdempotent(t *testing.T) {
	b := NewBatch[LineItem](2)
	b.Put(line(1), 1)
	b.Clear()
	once := append([]RenderItem[LineItem](nil), b.slots...)
	b.Clear()
	assert.Equal(t, once, b.slots)
	assert.Equal(t, 2, b.FreeSlots())
}

func TestResizeDropsContents(t *testing.T) {
	b := NewBatch[LineItem](1)
	b.Put(line(1), 1)
	b.Resize(4)
	assert.Equal(t, 4, b.Cap())
	assert.Empty(t, b.Items())

	b.Resize(-1)
	assert.Zero(t, b.Cap())
	assert.False(t, b.Put(line(1), 0))
}

func TestZeroValuesAreSentinels(t *testing.T) {
	assert.True(t, RenderItem[TextureItem]{Layer: 4}.IsEmpty())
	assert.True(t, RenderItem[FontGlyphItem]{}.IsEmpty())
	assert.True(t, RenderItem[RectItem]{}.IsEmpty())
	assert.False(t, RenderItem[RectItem]{Item: RectItem{IsSolid: true}}.IsEmpty())
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "texture", TextureItem{}.Kind().String())
	assert.Equal(t, "font", FontGlyphItem{}.Kind().String())
	assert.Equal(t, "rect", RectItem{}.Kind().String())
	assert.Equal(t, "line", LineItem{}.Kind().String())
	assert.Equal(t, "kind(9)", ItemKind(9).String())
}

func TestRenderEffects(t *testing.T) {
	e := FlipHorizontally | FlipVertically
	assert.True(t, e.Has(FlipVertically))
	assert.False(t, NoEffects.Has(FlipHorizontally))
}
