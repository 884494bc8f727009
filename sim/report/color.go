package report

import "fmt"

// RGBA is a chart colour. Channels are 0-255; A is opacity in [0, 1].
type RGBA struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// Opaque returns the same colour at full opacity, used for outlines of a
// translucent fill.
func (c RGBA) Opaque() RGBA {
	c.A = 1
	return c
}

// WithAlpha returns the colour at opacity a, clamped to [0, 1].
func (c RGBA) WithAlpha(a float64) RGBA {
	switch {
	case a < 0:
		a = 0
	case a > 1:
		a = 1
	}
	c.A = a
	return c
}

// String renders the CSS rgba() form.
func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, c.A)
}

const fillAlpha = 0.6

var (
	// ColorBottleneck highlights the primary constraint.
	ColorBottleneck = RGBA{R: 214, G: 39, B: 40, A: fillAlpha}
	ColorBusy       = RGBA{R: 44, G: 160, B: 44, A: fillAlpha}
	ColorIdle       = RGBA{R: 199, G: 199, B: 199, A: fillAlpha}
	ColorDown       = RGBA{R: 255, G: 140, B: 0, A: fillAlpha}

	palette = []RGBA{
		{R: 31, G: 119, B: 180, A: fillAlpha},
		{R: 255, G: 127, B: 14, A: fillAlpha},
		{R: 44, G: 160, B: 44, A: fillAlpha},
		{R: 148, G: 103, B: 189, A: fillAlpha},
		{R: 140, G: 86, B: 75, A: fillAlpha},
		{R: 227, G: 119, B: 194, A: fillAlpha},
		{R: 127, G: 127, B: 127, A: fillAlpha},
		{R: 188, G: 189, B: 34, A: fillAlpha},
		{R: 23, G: 190, B: 207, A: fillAlpha},
	}
)

// StationColor returns the fill colour of the i-th station, cycling the palette.
func StationColor(i int) RGBA {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}
