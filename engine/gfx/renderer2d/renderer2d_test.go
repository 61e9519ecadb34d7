package renderer2d

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/bus"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/config"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gfxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	b   *bus.Bus
	dev *gfxtest.Device
	ms  *batch.Managers
	rd  *Renderer2D
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{b: bus.New(), dev: gfxtest.NewDevice()}
	var err error
	f.ms, err = batch.NewManagers(f.b)
	require.NoError(t, err)
	f.rd, err = New(f.b, f.dev, opts)
	require.NoError(t, err)
	return f
}

func (f *fixture) ready(t *testing.T) {
	t.Helper()
	require.NoError(t, f.b.Signal(bus.GLInitialized))
	require.Equal(t, StateReady, f.rd.State())
}

func (f *fixture) texture(t *testing.T, w, h int) core.Texture {
	t.Helper()
	tex, err := f.dev.CreateTexture(core.TextureDesc{Width: w, Height: h, Pixels: make([]byte, w*h*4)})
	require.NoError(t, err)
	return tex
}

func counter(t *testing.T, b *bus.Bus, ch bus.Channel) *int {
	t.Helper()
	n := new(int)
	_, err := b.Subscribe(ch, "test", bus.OnSignal(func() error { *n++; return nil }))
	require.NoError(t, err)
	return n
}

func solidRect(x, y float32, c colors.Color) batch.RectItem {
	return batch.RectItem{Position: mgl32.Vec2{x, y}, Size: mgl32.Vec2{4, 4}, Color: c, IsSolid: true}
}

// vertex returns the floats of vertex v of quad q in a recorded draw.
func vertex(d gfxtest.Draw, q, v int) []float32 {
	i := (q*vertsPerQuad + v) * vStride
	return d.Vertices[i : i+vStride]
}

func color(vtx []float32) colors.Color { return colors.Color{vtx[2], vtx[3], vtx[4], vtx[5]} }

func TestNewRejectsMissingDependencies(t *testing.T) {
	var cerr *bus.ConfigurationError

	_, err := New(nil, gfxtest.NewDevice(), Options{})
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, batch.ErrNilBus)

	_, err = New(bus.New(), nil, Options{})
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, ErrNilDevice)
}

func TestGLInitializedConfiguresEveryKindOnce(t *testing.T) {
	f := newFixture(t, Options{})

	var sizes []batch.SizeChanged
	_, err := f.b.Subscribe(bus.BatchSizeChanged, "test", bus.OnData(func(d batch.SizeChanged) error {
		sizes = append(sizes, d)
		return nil
	}))
	require.NoError(t, err)

	f.ready(t)
	require.Len(t, sizes, 4)
	for i, k := range batch.Kinds {
		assert.Equal(t, batch.SizeChanged{BatchSize: 1000, Kind: k}, sizes[i])
	}
	assert.Equal(t, 1000, f.ms.Texture.Cap())
	assert.Equal(t, 1000, f.ms.Font.Cap())
	assert.Equal(t, 1000, f.ms.Rect.Cap())
	assert.Equal(t, 1000, f.ms.Line.Cap())

	require.NoError(t, f.b.Signal(bus.GLInitialized))
	assert.Len(t, sizes, 4)
	assert.Len(t, f.dev.Pipelines, 1)
	assert.Len(t, f.dev.Meshes, 1)
}

func TestUninitializedRendererRejectsFrameCalls(t *testing.T) {
	f := newFixture(t, Options{})
	begun := counter(t, f.b, bus.BatchHasBegun)
	ended := counter(t, f.b, bus.BatchHasEnded)

	for _, call := range []func() error{f.rd.Begin, f.rd.Clear, f.rd.End} {
		err := call()
		assert.ErrorIs(t, err, ErrRendererUninitialized)
		assert.EqualError(t, err, "The renderer is not initialized.")
	}
	assert.Equal(t, StateUninitialized, f.rd.State())
	assert.Zero(t, *begun)
	assert.Zero(t, *ended)
	assert.Empty(t, f.dev.Clears)
	assert.Empty(t, f.dev.Draws)
	assert.Empty(t, f.dev.Pipelines)
}

func TestInitFailureLeavesRendererUninitialized(t *testing.T) {
	f := newFixture(t, Options{})
	f.dev.FailPipeline = true

	err := f.b.Signal(bus.GLInitialized)
	assert.ErrorIs(t, err, gfxtest.ErrInjected)
	assert.Equal(t, StateUninitialized, f.rd.State())
	assert.Zero(t, f.ms.Rect.Cap())
}

// A subscriber rejects the first size broadcast: the renderer stays
// uninitialized and the next GL-initialized signal finishes the setup.
func TestPartialConfigurationIsRetried(t *testing.T) {
	f := newFixture(t, Options{})
	boom := errors.New("not yet")
	calls := 0
	_, err := f.b.Subscribe(bus.BatchSizeChanged, "test", bus.OnData(func(batch.SizeChanged) error {
		calls++
		if calls == 1 {
			return boom
		}
		return nil
	}))
	require.NoError(t, err)

	err = f.b.Signal(bus.GLInitialized)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUninitialized, f.rd.State())
	assert.ErrorIs(t, f.rd.Begin(), ErrRendererUninitialized)
	assert.Zero(t, f.ms.Line.Cap())

	f.ready(t)
	assert.Equal(t, 1000, f.ms.Line.Cap())
	assert.Len(t, f.dev.Pipelines, 1)
	assert.Len(t, f.dev.Meshes, 1)
}

func TestBeginEndBracket(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)
	begun := counter(t, f.b, bus.BatchHasBegun)
	ended := counter(t, f.b, bus.BatchHasEnded)

	require.NoError(t, f.rd.Begin())
	assert.Equal(t, StateActive, f.rd.State())
	assert.Equal(t, 1, *begun)

	require.NoError(t, f.rd.End())
	assert.Equal(t, StateReady, f.rd.State())
	assert.Equal(t, 1, *ended)
	// nothing was added so nothing is drawn
	assert.Empty(t, f.dev.Draws)
	assert.Equal(t, 1, f.rd.Stats().Commits)
}

func TestClearUsesConfiguredColor(t *testing.T) {
	f := newFixture(t, Options{ClearColor: colors.Red})
	f.ready(t)

	require.NoError(t, f.rd.Clear())
	assert.Equal(t, [][4]float32{{1, 0, 0, 1}}, f.dev.Clears)
}

func TestCommitOrdersByLayer(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)
	tex := f.texture(t, 64, 64)
	emptied := counter(t, f.b, bus.EmptyBatch)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Rect.Add(solidRect(10, 10, colors.Red), 2))
	require.NoError(t, f.ms.Texture.Add(batch.TextureItem{
		SrcRect:   batch.Rect{W: 32, H: 32},
		DestRect:  batch.Rect{X: 100, Y: 100, W: 32, H: 32},
		TextureID: uint32(tex),
		Tint:      colors.Green,
	}, 1))
	require.NoError(t, f.ms.Line.Add(batch.LineItem{P2: mgl32.Vec2{10, 0}, Color: colors.Blue, Thickness: 2}, 0))
	require.NoError(t, f.rd.End())

	require.Len(t, f.dev.Draws, 1)
	d := f.dev.Draws[0]
	assert.Len(t, d.Indices, 3*indsPerQuad)
	assert.Equal(t, 3*indsPerQuad, d.Cmd.IndexCount)

	assert.Equal(t, colors.Blue, color(vertex(d, 0, 0)))
	assert.Equal(t, colors.Green, color(vertex(d, 1, 0)))
	assert.Equal(t, colors.Red, color(vertex(d, 2, 0)))

	// line from (0,0) to (10,0), thickness 2
	line := vertex(d, 0, 0)
	assert.InDelta(t, 0, line[0], 1e-5)
	assert.InDelta(t, -1, line[1], 1e-5)

	// texture: half of a 64x64 texture in slot 1
	tl, br := vertex(d, 1, 0), vertex(d, 1, 3)
	assert.Equal(t, []float32{0, 0, 1}, []float32{tl[6], tl[7], tl[8]})
	assert.Equal(t, []float32{0.5, 0.5, 1}, []float32{br[6], br[7], br[8]})
	assert.Equal(t, []float32{84, 84}, []float32{tl[0], tl[1]})
	assert.Equal(t, tex, d.Cmd.Samplers["uTex[1]"])
	assert.Equal(t, mgl32.Ident4(), d.Cmd.Uniforms["uVP"])

	// rect centred on (10,10)
	assert.Equal(t, []float32{8, 8}, vertex(d, 2, 0)[:2])

	assert.Equal(t, 1, *emptied)
	assert.Zero(t, f.ms.Rect.Len())
	assert.Zero(t, f.ms.Texture.Len())
	assert.Zero(t, f.ms.Line.Len())

	st := f.rd.Stats()
	assert.Equal(t, 1, st.DrawCalls)
	assert.Equal(t, 3, st.QuadCount)
	assert.Equal(t, 12, st.TotalVertexCount())
	assert.Equal(t, 18, st.TotalIndexCount())
}

func TestSameLayerKeepsKindThenSlotOrder(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Line.Add(batch.LineItem{P2: mgl32.Vec2{1, 0}, Color: colors.Blue}, 0))
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Yellow), 0))
	require.NoError(t, f.rd.End())

	d := f.dev.Draws[0]
	assert.Equal(t, colors.Red, color(vertex(d, 0, 0)))
	assert.Equal(t, colors.Yellow, color(vertex(d, 1, 0)))
	assert.Equal(t, colors.Blue, color(vertex(d, 2, 0)))
}

func TestFlipEffectsSwapUVs(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)
	tex := f.texture(t, 16, 16)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Texture.Add(batch.TextureItem{
		DestRect:  batch.Rect{W: 16, H: 16},
		TextureID: uint32(tex),
		Tint:      colors.White,
		Effects:   batch.FlipHorizontally | batch.FlipVertically,
	}, 0))
	require.NoError(t, f.rd.End())

	tl := vertex(f.dev.Draws[0], 0, 0)
	assert.Equal(t, []float32{1, 1}, []float32{tl[6], tl[7]})
}

func TestFullBatchCommitsWhileActive(t *testing.T) {
	f := newFixture(t, Options{BatchSize: 2})
	f.ready(t)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	assert.Empty(t, f.dev.Draws)

	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	assert.Len(t, f.dev.Draws, 1)
	assert.Zero(t, f.ms.Rect.Len())

	// the batch has room again
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	require.NoError(t, f.rd.End())

	assert.Len(t, f.dev.Draws, 2)
	st := f.rd.Stats()
	assert.Equal(t, 2, st.Commits)
	assert.Equal(t, 3, st.QuadCount)
}

func TestFullBatchWaitsForEndOutsideFrame(t *testing.T) {
	f := newFixture(t, Options{BatchSize: 2})
	f.ready(t)

	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	assert.Empty(t, f.dev.Draws)
	assert.Equal(t, 2, f.ms.Rect.Len())

	err := f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0)
	assert.ErrorIs(t, err, batch.ErrCapacityExceeded)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.rd.End())
	require.Len(t, f.dev.Draws, 1)
	assert.Len(t, f.dev.Draws[0].Indices, 2*indsPerQuad)
	assert.Zero(t, f.ms.Rect.Len())
}

func TestTextureSlotsOverflowFlushes(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)

	require.NoError(t, f.rd.Begin())
	for i := 0; i < 20; i++ {
		tex := f.texture(t, 8, 8)
		require.NoError(t, f.ms.Texture.Add(batch.TextureItem{
			DestRect:  batch.Rect{W: 8, H: 8},
			TextureID: uint32(tex),
			Tint:      colors.White,
		}, 0))
	}
	require.NoError(t, f.rd.End())

	// slot 0 is the white texture, so 15 user textures fit per draw
	require.Len(t, f.dev.Draws, 2)
	assert.Len(t, f.dev.Draws[0].Indices, 15*indsPerQuad)
	assert.Len(t, f.dev.Draws[0].Cmd.Samplers, maxTexSlots)
	assert.Len(t, f.dev.Draws[1].Indices, 5*indsPerQuad)
	assert.Len(t, f.dev.Draws[1].Cmd.Samplers, 6)
	assert.Equal(t, maxTexSlots, f.rd.Stats().TextureCount)
}

func TestMaxQuadsFlushes(t *testing.T) {
	f := newFixture(t, Options{MaxQuads: 4})
	f.ready(t)

	require.NoError(t, f.rd.Begin())
	for i := 0; i < 10; i++ {
		require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	}
	require.NoError(t, f.rd.End())

	require.Len(t, f.dev.Draws, 3)
	assert.Len(t, f.dev.Draws[0].Indices, 4*indsPerQuad)
	assert.Len(t, f.dev.Draws[1].Indices, 4*indsPerQuad)
	assert.Len(t, f.dev.Draws[2].Indices, 2*indsPerQuad)
	assert.Equal(t, 3, f.rd.Stats().DrawCalls)
}

func TestOutlinedRectStaysInOneDraw(t *testing.T) {
	f := newFixture(t, Options{MaxQuads: 4})
	f.ready(t)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	require.NoError(t, f.ms.Rect.Add(batch.RectItem{
		Position:        mgl32.Vec2{50, 50},
		Size:            mgl32.Vec2{20, 10},
		Color:           colors.White,
		BorderThickness: 2,
	}, 1))
	require.NoError(t, f.rd.End())

	require.Len(t, f.dev.Draws, 2)
	assert.Len(t, f.dev.Draws[0].Indices, indsPerQuad)
	assert.Len(t, f.dev.Draws[1].Indices, 4*indsPerQuad)

	// top edge spans the full width
	top := vertex(f.dev.Draws[1], 0, 0)
	assert.Equal(t, []float32{40, 45}, top[:2])
}

func TestGradientRect(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Rect.Add(batch.RectItem{
		Size:          mgl32.Vec2{10, 10},
		IsSolid:       true,
		Gradient:      batch.GradientVertical,
		GradientStart: colors.Black,
		GradientStop:  colors.White,
	}, 0))
	require.NoError(t, f.rd.End())

	d := f.dev.Draws[0]
	assert.Equal(t, colors.Black, color(vertex(d, 0, 1)))
	assert.Equal(t, colors.White, color(vertex(d, 0, 2)))
}

func TestViewProjectionIsUploaded(t *testing.T) {
	f := newFixture(t, Options{})
	f.ready(t)
	vp := mgl32.Ortho2D(0, 640, 480, 0)
	f.rd.SetViewProjection(vp)

	require.NoError(t, f.rd.Begin())
	require.NoError(t, f.ms.Rect.Add(solidRect(0, 0, colors.Red), 0))
	require.NoError(t, f.rd.End())

	assert.Equal(t, vp, f.dev.Draws[0].Cmd.Uniforms["uVP"])
}

func TestEndWithoutManagersFails(t *testing.T) {
	b := bus.New()
	rd, err := New(b, gfxtest.NewDevice(), Options{})
	require.NoError(t, err)
	require.NoError(t, b.Signal(bus.GLInitialized))

	require.NoError(t, rd.Begin())
	err = rd.End()
	assert.ErrorIs(t, err, bus.ErrNoResponder)
	assert.ErrorContains(t, err, "pull texture items")
	assert.Equal(t, StateReady, rd.State())
}

func TestShutdownReleasesSubscriptions(t *testing.T) {
	f := newFixture(t, Options{BatchSize: 1})
	f.ready(t)

	require.NoError(t, f.b.Signal(bus.SystemShuttingDown))
	assert.Zero(t, f.b.SubscriberCount(bus.GLInitialized))
	assert.Zero(t, f.b.SubscriberCount(bus.RenderRectsNow))

	// a second shutdown is harmless
	require.NoError(t, f.b.Signal(bus.SystemShuttingDown))
}

func TestOptionsFromConfig(t *testing.T) {
	r := config.Default().Render
	opts := OptionsFrom(r)
	assert.Equal(t, uint32(1000), opts.BatchSize)
	assert.Equal(t, 10000, opts.MaxQuads)
	assert.Equal(t, colors.Color(r.ClearColor), opts.ClearColor)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "state(7)", State(7).String())
}
