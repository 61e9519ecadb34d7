// Package renderer2d is the frame-commit stage: it turns the contents of the
// batching managers into draw calls.
//
// The renderer never holds a reference to a manager. It learns that the GL
// context is ready from bus.GLInitialized, configures every batch through
// bus.BatchSizeChanged, reads items through the pull channels and clears the
// batches with bus.EmptyBatch once they have been drawn.
package renderer2d

import (
	"cmp"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/bus"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/config"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
)

const (
	DefaultBatchSize = 1000
	DefaultMaxQuads  = 10000
)

var (
	//nolint:staticcheck // message text is part of the renderer contract
	ErrRendererUninitialized = errors.New("The renderer is not initialized.")
	ErrNilDevice             = errors.New("nil graphics device")
)

//go:embed shaders/renderer2d.vert shaders/renderer2d.frag
var shaderFS embed.FS

// State of the frame-commit stage.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Options tune the renderer. Zero fields take the package defaults.
type Options struct {
	BatchSize  uint32 // slots per item kind
	MaxQuads   int    // quads per draw call
	ShaderDir  string // load renderer2d.vert/.frag from here instead of the embedded copies
	ClearColor colors.Color
}

// OptionsFrom maps the [render] config section.
func OptionsFrom(c config.Render) Options {
	return Options{
		BatchSize:  c.BatchSize,
		MaxQuads:   c.MaxQuads,
		ShaderDir:  c.ShaderDir,
		ClearColor: colors.Color(c.ClearColor),
	}
}

// Statistics captures the counts generated since the last Begin.
type Statistics struct {
	DrawCalls    int
	QuadCount    int
	TextureCount int
	Commits      int
}

// TotalVertexCount reports vertices submitted this frame.
func (s Statistics) TotalVertexCount() int { return s.QuadCount * vertsPerQuad }

// TotalIndexCount reports indices submitted this frame.
func (s Statistics) TotalIndexCount() int { return s.QuadCount * indsPerQuad }

type drawOp struct {
	layer int32
	kind  batch.ItemKind
	index int
}

type Renderer2D struct {
	bus      *bus.Bus
	dev      core.Device
	opts     Options
	state    State
	subs     []*bus.Subscription
	released bool

	gpuReady bool
	pipe     core.Pipeline
	white    core.Texture // 1x1 white (slot 0)
	mesh     core.Mesh
	texArr   [maxTexSlots]core.Texture
	texCnt   int

	verts     []float32
	inds      []uint32
	quadCount int

	samplers map[string]core.Texture
	uniforms map[string]any
	texNames [maxTexSlots]string
	vp       mgl32.Mat4
	stats    Statistics

	// items of the commit in progress
	textures []batch.RenderItem[batch.TextureItem]
	glyphs   []batch.RenderItem[batch.FontGlyphItem]
	rects    []batch.RenderItem[batch.RectItem]
	lines    []batch.RenderItem[batch.LineItem]
	ops      []drawOp
}

// New creates the renderer and subscribes it to b. GPU resources are created
// when bus.GLInitialized is signalled.
func New(b *bus.Bus, dev core.Device, opts Options) (*Renderer2D, error) {
	if b == nil {
		return nil, &bus.ConfigurationError{Component: "renderer2d", Err: batch.ErrNilBus}
	}
	if dev == nil {
		return nil, &bus.ConfigurationError{Component: "renderer2d", Err: ErrNilDevice}
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxQuads <= 0 {
		opts.MaxQuads = DefaultMaxQuads
	}
	// an outlined rect needs four quads in one draw call
	opts.MaxQuads = max(opts.MaxQuads, 4)

	rd := &Renderer2D{
		bus:      b,
		dev:      dev,
		opts:     opts,
		vp:       mgl32.Ident4(),
		samplers: make(map[string]core.Texture, maxTexSlots),
		uniforms: make(map[string]any, 4),
	}
	for i := 0; i < maxTexSlots; i++ {
		rd.texNames[i] = "uTex[" + strconv.Itoa(i) + "]"
	}

	type binding struct {
		ch bus.Channel
		h  bus.Handler
	}
	bindings := []binding{
		{bus.GLInitialized, bus.OnSignal(rd.init)},
		{bus.SystemShuttingDown, bus.OnSignal(func() error { rd.release(); return nil })},
	}
	for _, k := range batch.Kinds {
		bindings = append(bindings, binding{batch.RenderNowChannel(k), bus.OnSignal(rd.onBatchFull)})
	}
	for _, bd := range bindings {
		sub, err := b.Subscribe(bd.ch, "renderer2d", bd.h)
		if err != nil {
			rd.release()
			return nil, err
		}
		rd.subs = append(rd.subs, sub)
	}
	return rd, nil
}

func (rd *Renderer2D) State() State { return rd.state }

// Stats returns the current frame statistics snapshot.
func (rd *Renderer2D) Stats() Statistics { return rd.stats }

// SetViewProjection sets the matrix applied to every vertex. Defaults to identity.
func (rd *Renderer2D) SetViewProjection(vp mgl32.Mat4) { rd.vp = vp }

// init runs on GL-initialized until it succeeds. GPU resources are created
// once; the renderer turns Ready only after every kind has been configured.
func (rd *Renderer2D) init() error {
	if rd.state != StateUninitialized {
		return nil
	}
	if !rd.gpuReady {
		if err := rd.createResources(); err != nil {
			return err
		}
		rd.gpuReady = true
	}

	for _, k := range batch.Kinds {
		if err := rd.bus.Push(bus.BatchSizeChanged, batch.SizeChanged{BatchSize: rd.opts.BatchSize, Kind: k}); err != nil {
			return fmt.Errorf("renderer2d: configure %s batch: %w", k, err)
		}
	}
	rd.state = StateReady
	core.Logger().Debug("renderer2d ready", "batch_size", rd.opts.BatchSize, "max_quads", rd.opts.MaxQuads)
	return nil
}

func (rd *Renderer2D) createResources() error {
	vs, fs, err := rd.shaderSources()
	if err != nil {
		return err
	}
	rd.pipe, err = rd.dev.CreatePipeline(core.PipelineDesc{
		VertexSource:   vs,
		FragmentSource: fs,
		DepthTest:      false,
		Blend:          true,
	})
	if err != nil {
		return fmt.Errorf("renderer2d: create pipeline: %w", err)
	}

	rd.white, err = rd.dev.CreateTexture(core.TextureDesc{
		Width: 1, Height: 1,
		Format:    core.TextureRGBA8,
		Pixels:    []byte{255, 255, 255, 255},
		MinFilter: "nearest", MagFilter: "nearest",
		WrapU: "clamp", WrapV: "clamp",
	})
	if err != nil {
		return fmt.Errorf("renderer2d: create white texture: %w", err)
	}

	// Create a reusable mesh large enough for the biggest draw call.
	n := rd.opts.MaxQuads
	rd.verts = make([]float32, 0, n*vertsPerQuad*vStride)
	rd.inds = make([]uint32, 0, n*indsPerQuad)
	rd.mesh, err = rd.dev.CreateMesh(core.MeshDesc{
		Vertices: make([]float32, n*vertsPerQuad*vStride),
		Indices:  make([]uint32, n*indsPerQuad),
		Layout:   quadVertexLayout,
	})
	if err != nil {
		return fmt.Errorf("renderer2d: create mesh: %w", err)
	}
	rd.resetBatch()
	return nil
}

func (rd *Renderer2D) shaderSources() (vs, fs string, err error) {
	if rd.opts.ShaderDir != "" {
		if vs, err = assets.LoadShader(rd.opts.ShaderDir, "renderer2d.vert"); err != nil {
			return "", "", err
		}
		if fs, err = assets.LoadShader(rd.opts.ShaderDir, "renderer2d.frag"); err != nil {
			return "", "", err
		}
		return vs, fs, nil
	}
	v, err := shaderFS.ReadFile("shaders/renderer2d.vert")
	if err != nil {
		return "", "", err
	}
	f, err := shaderFS.ReadFile("shaders/renderer2d.frag")
	if err != nil {
		return "", "", err
	}
	return string(v), string(f), nil
}

// Begin opens a frame bracket and resets the statistics.
func (rd *Renderer2D) Begin() error {
	if rd.state == StateUninitialized {
		return ErrRendererUninitialized
	}
	rd.state = StateActive
	rd.stats = Statistics{}
	return rd.bus.Signal(bus.BatchHasBegun)
}

// Clear clears the framebuffer with the configured clear colour.
func (rd *Renderer2D) Clear() error {
	if rd.state == StateUninitialized {
		return ErrRendererUninitialized
	}
	c := rd.opts.ClearColor
	rd.dev.Clear(c[0], c[1], c[2], c[3])
	return nil
}

// End commits every pending item and closes the frame bracket.
func (rd *Renderer2D) End() error {
	if rd.state == StateUninitialized {
		return ErrRendererUninitialized
	}
	err := rd.commit()
	rd.state = StateReady
	if err != nil {
		return err
	}
	return rd.bus.Signal(bus.BatchHasEnded)
}

// onBatchFull commits early so the full batch can take more items. Outside a
// Begin/End bracket the items wait for the next End.
func (rd *Renderer2D) onBatchFull() error {
	if rd.state != StateActive {
		return nil
	}
	return rd.commit()
}

// commit pulls every kind, draws the items ordered by layer and then empties
// all batches. Items on the same layer keep kind order, then slot order.
func (rd *Renderer2D) commit() error {
	var err error
	if rd.textures, err = bus.Pull[[]batch.RenderItem[batch.TextureItem]](rd.bus, bus.GetTextureItems); err != nil {
		return fmt.Errorf("renderer2d: pull texture items: %w", err)
	}
	if rd.glyphs, err = bus.Pull[[]batch.RenderItem[batch.FontGlyphItem]](rd.bus, bus.GetFontItems); err != nil {
		return fmt.Errorf("renderer2d: pull font items: %w", err)
	}
	if rd.rects, err = bus.Pull[[]batch.RenderItem[batch.RectItem]](rd.bus, bus.GetRectItems); err != nil {
		return fmt.Errorf("renderer2d: pull rect items: %w", err)
	}
	if rd.lines, err = bus.Pull[[]batch.RenderItem[batch.LineItem]](rd.bus, bus.GetLineItems); err != nil {
		return fmt.Errorf("renderer2d: pull line items: %w", err)
	}

	rd.ops = rd.ops[:0]
	rd.ops = appendOps(rd.ops, batch.KindTexture, rd.textures)
	rd.ops = appendOps(rd.ops, batch.KindFont, rd.glyphs)
	rd.ops = appendOps(rd.ops, batch.KindRect, rd.rects)
	rd.ops = appendOps(rd.ops, batch.KindLine, rd.lines)
	slices.SortStableFunc(rd.ops, func(a, b drawOp) int { return cmp.Compare(a.layer, b.layer) })

	if len(rd.ops) > 0 {
		rd.resetBatch()
		for _, op := range rd.ops {
			if err := rd.encode(op); err != nil {
				return err
			}
		}
		if err := rd.flush(); err != nil {
			return err
		}
	}
	rd.stats.Commits++
	core.Logger().Debug("renderer2d commit", "items", len(rd.ops), "draw_calls", rd.stats.DrawCalls)
	return rd.bus.Signal(bus.EmptyBatch)
}

func appendOps[V batch.Item](ops []drawOp, k batch.ItemKind, items []batch.RenderItem[V]) []drawOp {
	for i, it := range items {
		ops = append(ops, drawOp{layer: it.Layer, kind: k, index: i})
	}
	return ops
}

func (rd *Renderer2D) release() {
	if rd.released {
		return
	}
	rd.released = true
	for _, s := range rd.subs {
		s.Dispose()
	}
	rd.subs = nil
}
