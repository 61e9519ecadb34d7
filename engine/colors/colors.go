package colors

// Color is linear RGBA in [0,1]. The zero value is fully transparent black,
// which draw items treat as "unset".
type Color [4]float32

var (
	Transparent = Color{}
	White       = Color{1, 1, 1, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Magenta     = Color{1, 0, 1, 1}
	Cyan        = Color{0, 1, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.08, 0.10, 0.12, 1}
)

// FromRGBA8 converts 8-bit channels.
func FromRGBA8(r, g, b, a uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// Lerp mixes c towards o by t, clamped to [0,1].
func (c Color) Lerp(o Color, t float32) Color {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return o
	}
	for i := range c {
		c[i] += (o[i] - c[i]) * t
	}
	return c
}

// IsZero reports whether every channel is zero.
func (c Color) IsZero() bool { return c == Transparent }
