package batch

// Batch is a fixed-length slot array for one item kind. Occupied slots always
// form a prefix: items are placed in the first empty slot and slots are only
// ever cleared all at once, so the first empty slot is at index Len().
type Batch[V Item] struct {
	slots []RenderItem[V]
	used  int
}

// NewBatch returns a batch with capacity empty slots.
func NewBatch[V Item](capacity int) *Batch[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Batch[V]{slots: make([]RenderItem[V], capacity)}
}

func (b *Batch[V]) Cap() int       { return len(b.slots) }
func (b *Batch[V]) Len() int       { return b.used }
func (b *Batch[V]) FreeSlots() int { return len(b.slots) - b.used }

// At returns slot i, empty or not.
func (b *Batch[V]) At(i int) RenderItem[V] { return b.slots[i] }

// Put stores item in the first empty slot. It returns false, leaving the
// batch untouched, when every slot is occupied.
func (b *Batch[V]) Put(item V, layer int32) bool {
	if b.used == len(b.slots) {
		return false
	}
	b.slots[b.used] = RenderItem[V]{Layer: layer, Item: item}
	b.used++
	return true
}

// Items returns a copy of the occupied slots in slot order.
func (b *Batch[V]) Items() []RenderItem[V] {
	out := make([]RenderItem[V], b.used)
	copy(out, b.slots[:b.used])
	return out
}

// Clear resets every slot to the sentinel.
func (b *Batch[V]) Clear() {
	clear(b.slots)
	b.used = 0
}

// Resize reallocates the batch with n empty slots. Previous contents are dropped.
func (b *Batch[V]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	b.slots = make([]RenderItem[V], n)
	b.used = 0
}
