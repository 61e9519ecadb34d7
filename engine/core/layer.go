package core

// Layer is a slice of the frame (world, debug overlay...) with its own hooks.
// Layers render bottom to top and receive events top to bottom.
type Layer interface {
	OnAttach(e *Engine) error
	OnDetach(e *Engine)
	OnUpdate(e *Engine, dt float64)
	OnRender(e *Engine, alpha float64) error
	OnEvent(e *Engine, ev Event) bool // return true if handled; propagation stops
}

type LayerStack struct{ list []Layer }

func (ls *LayerStack) Len() int { return len(ls.list) }

// Push attaches l on top of the stack.
func (ls *LayerStack) Push(e *Engine, l Layer) error {
	if err := l.OnAttach(e); err != nil {
		return err
	}
	ls.list = append(ls.list, l)
	return nil
}

// Pop detaches and removes the top layer.
func (ls *LayerStack) Pop(e *Engine) (Layer, bool) {
	if len(ls.list) == 0 {
		return nil, false
	}
	i := len(ls.list) - 1
	l := ls.list[i]
	ls.list[i] = nil
	ls.list = ls.list[:i]
	l.OnDetach(e)
	return l, true
}

// Clear pops every layer, top first.
func (ls *LayerStack) Clear(e *Engine) {
	for len(ls.list) > 0 {
		ls.Pop(e)
	}
}

func (ls *LayerStack) Update(e *Engine, dt float64) {
	for _, l := range ls.list {
		l.OnUpdate(e, dt)
	}
}

// Render stops at the first layer that fails.
func (ls *LayerStack) Render(e *Engine, alpha float64) error {
	for _, l := range ls.list {
		if err := l.OnRender(e, alpha); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch offers ev to each layer from the top until one handles it.
func (ls *LayerStack) Dispatch(e *Engine, ev Event) bool {
	for i := len(ls.list) - 1; i >= 0; i-- {
		if ls.list[i].OnEvent(e, ev) {
			return true
		}
	}
	return false
}
