package charts

import (
	"fmt"
	"io"

	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// BarSeries is one group member, e.g. one subject's ranks.
type BarSeries struct {
	Name   string
	Color  string
	Values []*float64 // one slot per exam, nil = absent
}

// BarSpec describes a grouped bar chart: one group per exam, one bar per series.
type BarSpec struct {
	Title  string
	Labels []string // exam names
	Series []BarSeries
	Axis   Axis
	Width  int
	Height int
}

const barWidth = vg.Length(7)

// Bars renders spec to w as SVG.
func Bars(w io.Writer, spec BarSpec) error {
	if !hasPoints(spec.Series) {
		return ErrNoPoints
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	n := len(spec.Series)
	for i, s := range spec.Series {
		values := make(plotter.Values, len(spec.Labels))
		for j := range values {
			if j < len(s.Values) && s.Values[j] != nil {
				values[j] = clamp(*s.Values[j], spec.Axis.Min, spec.Axis.Max)
			}
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("failed to build bars for %s: %w", s.Name, err)
		}
		bars.Color = rgba(s.Color)
		bars.LineStyle.Width = 0
		bars.Offset = barWidth * vg.Length(2*i-n+1) / 2

		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	p.NominalX(spec.Labels...)
	p.Y.Min = spec.Axis.Min
	p.Y.Max = spec.Axis.Max
	if spec.Axis.Reversed {
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	}
	if len(spec.Axis.Ticks) > 0 {
		ticks := make([]plot.Tick, len(spec.Axis.Ticks))
		for i, t := range spec.Axis.Ticks {
			ticks[i] = plot.Tick{Value: t, Label: analyzer.FormatValue(t)}
		}
		p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	}

	wt, err := p.WriterTo(vg.Points(float64(spec.Width)), vg.Points(float64(spec.Height)), "svg")
	if err != nil {
		return fmt.Errorf("failed to render bar chart %q: %w", spec.Title, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write bar chart %q: %w", spec.Title, err)
	}
	return nil
}

func hasPoints(series []BarSeries) bool {
	for _, s := range series {
		for _, v := range s.Values {
			if v != nil {
				return true
			}
		}
	}
	return false
}
