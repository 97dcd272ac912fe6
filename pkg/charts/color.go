package charts

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// rgba parses "#RRGGBB". Malformed input yields neutral gray.
func rgba(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	gray := color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	if len(hex) != 6 {
		return gray
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return gray
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func parseColor(hex string) drawing.Color {
	c := rgba(hex)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
