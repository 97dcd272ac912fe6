// Package charts draws the report's trend charts as SVG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoPoints is returned when a chart has nothing to draw.
var ErrNoPoints = errors.New("no data points")

// Axis is a fixed value axis. Rank axes are drawn descending so that
// rank 1 sits at the top.
type Axis struct {
	Min      float64
	Max      float64
	Ticks    []float64
	Reversed bool
}

// LineSpec describes a single-series trend line over the exams.
type LineSpec struct {
	Name   string     // series name
	Labels []string   // exam names, one per slot
	Values []*float64 // nil slots are skipped and the line joins across them
	Color  string     // "#RRGGBB"
	Axis   *Axis      // nil = fit to the data (score axes)
	Width  int
	Height int
}

// Line renders spec to w as SVG.
func Line(w io.Writer, spec LineSpec) error {
	var xs, ys []float64
	var annotations []chart.Value2
	for i, v := range spec.Values {
		if v == nil {
			continue
		}
		y := *v
		if spec.Axis != nil {
			y = clamp(y, spec.Axis.Min, spec.Axis.Max)
		}
		xs = append(xs, float64(i))
		ys = append(ys, y)
		annotations = append(annotations, chart.Value2{XValue: float64(i), YValue: y, Label: analyzer.FormatValue(*v)})
	}
	if len(xs) == 0 {
		return ErrNoPoints
	}
	if len(xs) == 1 {
		// go-chart needs two values per series.
		xs = append(xs, xs[0])
		ys = append(ys, ys[0])
	}

	stroke := parseColor(spec.Color)
	graph := chart.Chart{
		Width:  spec.Width,
		Height: spec.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 24, Left: 8, Right: 30, Bottom: 8},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(spec.Labels)) - 0.5},
			Ticks: examTicks(spec.Labels),
		},
		YAxis: yAxis(spec.Axis, ys),
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: stroke,
					StrokeWidth: 2,
					DotColor:    stroke,
					DotWidth:    4,
				},
			},
			chart.AnnotationSeries{
				Annotations: annotations,
			},
		},
	}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render line chart %q: %w", spec.Name, err)
	}
	return nil
}

func examTicks(labels []string) []chart.Tick {
	ticks := make([]chart.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}
	return ticks
}

func yAxis(axis *Axis, ys []float64) chart.YAxis {
	if axis == nil {
		lo, hi := padRange(ys)
		return chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}}
	}

	ticks := make([]chart.Tick, len(axis.Ticks))
	for i, t := range axis.Ticks {
		ticks[i] = chart.Tick{Value: t, Label: analyzer.FormatValue(t)}
	}
	return chart.YAxis{
		Range: &chart.ContinuousRange{Min: axis.Min, Max: axis.Max, Descending: axis.Reversed},
		Ticks: ticks,
	}
}

// padRange fits an axis around the data with some headroom. The range is
// never empty.
func padRange(ys []float64) (float64, float64) {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return math.Floor(lo - pad), math.Ceil(hi + pad)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
