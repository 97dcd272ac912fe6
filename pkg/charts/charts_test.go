package charts

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

var exams = []string{"期中", "期末", "月考"}

func TestLineScoreAxis(t *testing.T) {
	var buf bytes.Buffer
	err := Line(&buf, LineSpec{
		Name:   "数学分数",
		Labels: exams,
		Values: []*float64{ptr(90), nil, ptr(95)},
		Color:  "#22C55E",
		Width:  480,
		Height: 250,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "期末", "every exam gets a tick, even when its value is missing")
}

func TestLineRankAxisSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	err := Line(&buf, LineSpec{
		Name:   "英语班级排名",
		Labels: exams,
		Values: []*float64{nil, ptr(5), nil},
		Color:  "#888888",
		Axis:   &Axis{Min: 1, Max: 50, Ticks: []float64{1, 10, 20, 30, 40, 50}, Reversed: true},
		Width:  480,
		Height: 250,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestLineNoPoints(t *testing.T) {
	var buf bytes.Buffer
	err := Line(&buf, LineSpec{Labels: exams, Values: make([]*float64, 3), Width: 480, Height: 250})
	assert.ErrorIs(t, err, ErrNoPoints)
	assert.Zero(t, buf.Len())
}

func TestBars(t *testing.T) {
	var buf bytes.Buffer
	err := Bars(&buf, BarSpec{
		Title:  "班级排名",
		Labels: exams,
		Series: []BarSeries{
			{Name: "语文", Color: "#8884d8", Values: []*float64{ptr(12), ptr(8), nil}},
			{Name: "数学", Color: "#82ca9d", Values: []*float64{ptr(3), ptr(60), ptr(1)}},
		},
		Axis:   Axis{Min: 1, Max: 50, Ticks: []float64{1, 10, 20, 30, 40, 50}, Reversed: true},
		Width:  480,
		Height: 300,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestBarsNoPoints(t *testing.T) {
	err := Bars(&bytes.Buffer{}, BarSpec{
		Labels: exams,
		Series: []BarSeries{{Name: "语文", Values: make([]*float64, 3)}},
		Axis:   Axis{Min: 1, Max: 50},
		Width:  480,
		Height: 300,
	})
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestPadRange(t *testing.T) {
	lo, hi := padRange([]float64{450, 450})
	assert.Less(t, lo, 450.0)
	assert.Greater(t, hi, 450.0)

	lo, hi = padRange([]float64{80, 100})
	assert.Equal(t, 78.0, lo)
	assert.Equal(t, 102.0, hi)

	lo, hi = padRange([]float64{0})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestRGBA(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x22, G: 0xC5, B: 0x5E, A: 0xff}, rgba("#22C55E"))
	assert.Equal(t, color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}, rgba("green"))
	assert.Equal(t, color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}, rgba("#zzzzzz"))
}
