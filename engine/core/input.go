package core

// Input tracks keyboard and mouse state from window events.
type Input struct {
	keys           map[Key]bool
	pressed        map[Key]bool // went down since the last EndFrame
	mouseX, mouseY float64
	scrollY        float64
}

func NewInput() *Input { return &Input{keys: map[Key]bool{}, pressed: map[Key]bool{}} }

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		if e.Down && !in.keys[e.Key] {
			in.pressed[e.Key] = true
		}
		in.keys[e.Key] = e.Down
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	case EventScroll:
		in.scrollY += e.Yoff
	}
}

func (in *Input) IsKeyDown(k Key) bool      { return in.keys[k] }
func (in *Input) WasPressed(k Key) bool     { return in.pressed[k] }
func (in *Input) Mouse() (float64, float64) { return in.mouseX, in.mouseY }
func (in *Input) Scroll() float64           { return in.scrollY }

// EndFrame forgets edge-triggered state. Run calls it after each update step.
func (in *Input) EndFrame() {
	clear(in.pressed)
	in.scrollY = 0
}
