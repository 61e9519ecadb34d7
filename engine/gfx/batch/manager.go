// Package batch holds pending draw items between frame construction and the
// frame commit.
//
// There is one Manager per item kind. Scene code calls Add while building a
// frame; the commit stage reads the occupied slots through the kind's pull
// channel and then signals bus.EmptyBatch. Capacity is configured by
// bus.BatchSizeChanged and subscriptions are released on
// bus.SystemShuttingDown. Managers never reference the commit stage directly.
package batch

import (
	"github.com/hubastard/canopy/engine/bus"
)

// DefaultCapacity is the slot count of a Manager until the first
// BatchSizeChanged notification for its kind arrives.
const DefaultCapacity = 0

// SizeChanged is the payload of bus.BatchSizeChanged.
type SizeChanged struct {
	BatchSize uint32
	Kind      ItemKind
}

// RenderNowChannel is signalled when the batch of kind k becomes full.
func RenderNowChannel(k ItemKind) bus.Channel {
	switch k {
	case KindTexture:
		return bus.RenderTexturesNow
	case KindFont:
		return bus.RenderFontNow
	case KindRect:
		return bus.RenderRectsNow
	default:
		return bus.RenderLinesNow
	}
}

// ItemsChannel answers with the occupied RenderItems of kind k.
func ItemsChannel(k ItemKind) bus.Channel {
	switch k {
	case KindTexture:
		return bus.GetTextureItems
	case KindFont:
		return bus.GetFontItems
	case KindRect:
		return bus.GetRectItems
	default:
		return bus.GetLineItems
	}
}

// Manager owns the batch of one item kind.
type Manager[V Item] struct {
	bus      *bus.Bus
	kind     ItemKind
	batch    *Batch[V]
	subs     []*bus.Subscription
	released bool
}

// NewManager creates the manager for V's kind and subscribes it to the bus.
func NewManager[V Item](b *bus.Bus) (*Manager[V], error) {
	var zero V
	kind := zero.Kind()
	if b == nil {
		return nil, &bus.ConfigurationError{Component: kind.String() + " batching manager", Err: ErrNilBus}
	}

	m := &Manager[V]{bus: b, kind: kind, batch: NewBatch[V](DefaultCapacity)}
	src := m.source()

	type binding struct {
		ch bus.Channel
		h  bus.Handler
	}
	for _, bd := range []binding{
		{bus.BatchSizeChanged, bus.OnData(m.onSizeChanged)},
		{bus.EmptyBatch, bus.OnSignal(func() error { m.EmptyBatch(); return nil })},
		{bus.SystemShuttingDown, bus.OnSignal(func() error { m.release(); return nil })},
	} {
		s, err := b.Subscribe(bd.ch, src, bd.h)
		if err != nil {
			m.release()
			return nil, err
		}
		m.subs = append(m.subs, s)
	}

	s, err := b.SubscribePull(ItemsChannel(kind), src, func() (any, error) { return m.batch.Items(), nil })
	if err != nil {
		m.release()
		return nil, err
	}
	m.subs = append(m.subs, s)

	return m, nil
}

func NewTextureManager(b *bus.Bus) (*Manager[TextureItem], error) { return NewManager[TextureItem](b) }
func NewFontManager(b *bus.Bus) (*Manager[FontGlyphItem], error)  { return NewManager[FontGlyphItem](b) }
func NewRectManager(b *bus.Bus) (*Manager[RectItem], error)       { return NewManager[RectItem](b) }
func NewLineManager(b *bus.Bus) (*Manager[LineItem], error)       { return NewManager[LineItem](b) }

func (m *Manager[V]) Kind() ItemKind { return m.kind }
func (m *Manager[V]) Cap() int       { return m.batch.Cap() }
func (m *Manager[V]) Len() int       { return m.batch.Len() }

// Items returns the occupied slots, as the pull channel would.
func (m *Manager[V]) Items() []RenderItem[V] { return m.batch.Items() }

// Add places item in the first free slot. When that fills the batch the
// kind's render-now channel is signalled once, and any error from its
// subscribers is returned. After shutdown every Add fails with ErrReleased.
func (m *Manager[V]) Add(item V, layer int32) error {
	if m.released {
		return &bus.ConfigurationError{Component: m.source(), Err: ErrReleased}
	}
	var zero V
	if item == zero {
		return ErrEmptyItem
	}
	if !m.batch.Put(item, layer) {
		return &CapacityError{Kind: m.kind}
	}
	if m.batch.FreeSlots() == 0 {
		return m.bus.Signal(RenderNowChannel(m.kind))
	}
	return nil
}

// EmptyBatch resets every slot. Safe to call repeatedly.
func (m *Manager[V]) EmptyBatch() { m.batch.Clear() }

func (m *Manager[V]) onSizeChanged(d SizeChanged) error {
	if d.Kind != m.kind {
		return nil
	}
	m.batch.Resize(int(d.BatchSize))
	return nil
}

func (m *Manager[V]) release() {
	if m.released {
		return
	}
	m.released = true
	for _, s := range m.subs {
		s.Dispose()
	}
	m.subs = nil
}

func (m *Manager[V]) source() string { return m.kind.String() + " batching manager" }

// Managers bundles one Manager per item kind.
type Managers struct {
	Texture *Manager[TextureItem]
	Font    *Manager[FontGlyphItem]
	Rect    *Manager[RectItem]
	Line    *Manager[LineItem]
}

// NewManagers creates all four managers on b.
func NewManagers(b *bus.Bus) (*Managers, error) {
	var (
		ms  Managers
		err error
	)
	if ms.Texture, err = NewTextureManager(b); err != nil {
		return nil, err
	}
	if ms.Font, err = NewFontManager(b); err != nil {
		ms.Texture.release()
		return nil, err
	}
	if ms.Rect, err = NewRectManager(b); err != nil {
		ms.Texture.release()
		ms.Font.release()
		return nil, err
	}
	if ms.Line, err = NewLineManager(b); err != nil {
		ms.Texture.release()
		ms.Font.release()
		ms.Rect.release()
		return nil, err
	}
	return &ms, nil
}
