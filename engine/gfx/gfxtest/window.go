package gfxtest

import "github.com/hubastard/canopy/engine/core"

// Window reports ShouldClose after Frames buffer swaps. Events queued with
// Queue are delivered on the next PollEvents.
type Window struct {
	Frames int
	Width  int
	Height int
	Title  string

	swaps  int
	queued []core.Event
	closed bool
	cb     func(core.Event)
}

func NewWindow(frames int) *Window { return &Window{Frames: frames, Width: 640, Height: 480} }

func (w *Window) Queue(ev core.Event) { w.queued = append(w.queued, ev) }

func (w *Window) PollEvents() {
	evs := w.queued
	w.queued = nil
	for _, ev := range evs {
		if w.cb != nil {
			w.cb(ev)
		}
	}
}

func (w *Window) SwapBuffers()                         { w.swaps++ }
func (w *Window) Swaps() int                           { return w.swaps }
func (w *Window) ShouldClose() bool                    { return w.closed || w.swaps >= w.Frames }
func (w *Window) RequestClose()                        { w.closed = true }
func (w *Window) FramebufferSize() (int, int)          { return w.Width, w.Height }
func (w *Window) SetTitle(t string)                    { w.Title = t }
func (w *Window) SetEventCallback(cb func(core.Event)) { w.cb = cb }
