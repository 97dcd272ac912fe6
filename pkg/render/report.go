// Package render assembles the report view model and writes it as HTML.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	"github.com/rg0now/exam-trend-report/pkg/charts"
	"github.com/rg0now/exam-trend-report/pkg/config"
	"github.com/rg0now/exam-trend-report/pkg/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// Report is everything the page template needs.
type Report struct {
	ID          string
	Title       string
	Student     string
	Generator   string
	GeneratedAt time.Time
	Exams       []string

	ScoreTable      Table
	ClassRankTable  Table
	SchoolRankTable Table
	ClassRankBars   template.HTML
	SchoolRankBars  template.HTML

	Overall         []Card // total score, school rank
	ScoreCards      []Card
	ClassRankCards  []Card
	SchoolRankCards []Card

	Summary  template.HTML
	Analyses []models.AnalysisResult
}

// Table is a subject-by-exam grid.
type Table struct {
	Title string
	Rows  []Row
}

// Row is one table line.
type Row struct {
	Label string
	Cells []Cell
}

// Cell is one table value; absent values print as "-".
type Cell struct {
	Text      string
	Highlight bool
}

// Card pairs a narrative with its chart.
type Card struct {
	Title    string
	Analysis models.AnalysisResult
	Chart    template.HTML // empty when there is nothing to draw
}

// Builder turns a dataset into a Report.
type Builder struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	logger   *zap.Logger
	now      func() time.Time
}

// NewBuilder creates a new Builder.
func NewBuilder(cfg *config.Config, a *analyzer.Analyzer, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		cfg:      cfg,
		analyzer: a,
		logger:   logger,
		now:      time.Now,
	}
}

// Build computes every table, narrative and chart for ds.
func (b *Builder) Build(ds models.Dataset) (*Report, error) {
	r := &Report{
		ID:          uuid.NewString(),
		Title:       ds.Title,
		Student:     ds.Student,
		Generator:   b.cfg.Report.Generator,
		GeneratedAt: b.now(),
		Exams:       ds.ExamNames(),
	}
	log := b.logger.With(zap.String("report_id", r.ID))
	log.Info("building report", zap.String("student", ds.Student), zap.Int("exams", len(ds.Exams)))

	r.ScoreTable = b.scoreTable(ds)
	r.ClassRankTable = b.rankTable(ds, models.RankClass)
	r.SchoolRankTable = b.rankTable(ds, models.RankSchool)
	r.ClassRankBars = b.rankBars(log, ds, models.RankClass)
	r.SchoolRankBars = b.rankBars(log, ds, models.RankSchool)

	total := b.analyzer.OverallScoreAnalysis(ds)
	rank := b.analyzer.OverallRankAnalysis(ds)
	r.Overall = []Card{
		b.card(log, ds, "所选科目总分趋势", "所选科目总分", total),
		b.card(log, ds, "年级排名趋势", "所选科目年级排名", rank),
	}
	r.Analyses = append(r.Analyses, total, rank)

	for _, s := range models.Subjects {
		res := b.analyzer.ScoreAnalysis(ds, s)
		r.ScoreCards = append(r.ScoreCards, b.card(log, ds, s.Label()+"分数趋势", s.Label()+"分数", res))
		r.Analyses = append(r.Analyses, res)
	}
	for _, kind := range []models.RankKind{models.RankClass, models.RankSchool} {
		for _, s := range models.Subjects {
			res := b.analyzer.RankAnalysis(ds, s, kind)
			title := s.Label() + kind.Label() + "排名趋势"
			c := b.card(log, ds, title, s.Label()+kind.Label()+"排名", res)
			if kind == models.RankClass {
				r.ClassRankCards = append(r.ClassRankCards, c)
			} else {
				r.SchoolRankCards = append(r.SchoolRankCards, c)
			}
			r.Analyses = append(r.Analyses, res)
		}
	}

	summary, err := Markdown(ds.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}
	r.Summary = summary

	log.Debug("report built", zap.Int("analyses", len(r.Analyses)))
	return r, nil
}

func (b *Builder) scoreTable(ds models.Dataset) Table {
	t := Table{Title: "原始成绩"}
	for _, s := range models.Subjects {
		t.Rows = append(t.Rows, Row{Label: s.Label(), Cells: cells(analyzer.Extract(ds, models.MetricScore, s), 0)})
	}
	t.Rows = append(t.Rows, Row{Label: "总分", Cells: cells(analyzer.Extract(ds, models.MetricTotalScore, ""), 0)})
	return t
}

func (b *Builder) rankTable(ds models.Dataset, kind models.RankKind) Table {
	metric, total, threshold, totalLabel := models.MetricClassRank, models.MetricTotalClassRank, b.cfg.Report.ClassRankHighlight, "班排"
	if kind == models.RankSchool {
		metric, total, threshold, totalLabel = models.MetricSchoolRank, models.MetricTotalSchoolRank, b.cfg.Report.SchoolRankHighlight, "年排"
	}

	t := Table{Title: kind.Label() + "排名"}
	for _, s := range models.Subjects {
		t.Rows = append(t.Rows, Row{Label: s.Label(), Cells: cells(analyzer.Extract(ds, metric, s), threshold)})
	}
	// The aggregate row is never highlighted.
	t.Rows = append(t.Rows, Row{Label: totalLabel, Cells: cells(analyzer.Extract(ds, total, ""), 0)})
	return t
}

// cells formats one slot per exam; with highlight > 0, values at or below
// it are flagged.
func cells(values []*float64, highlight int) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = Cell{Text: "-"}
			continue
		}
		out[i] = Cell{
			Text:      analyzer.FormatValue(*v),
			Highlight: highlight > 0 && *v <= float64(highlight),
		}
	}
	return out
}

func (b *Builder) axisFor(metric models.Metric) *charts.Axis {
	var a config.AxisConfig
	switch metric {
	case models.MetricClassRank, models.MetricTotalClassRank:
		a = b.cfg.Charts.ClassRank
	case models.MetricSchoolRank, models.MetricTotalSchoolRank:
		a = b.cfg.Charts.SchoolRank
	default:
		return nil
	}
	return &charts.Axis{Min: a.Min, Max: a.Max, Ticks: a.Ticks, Reversed: true}
}

func (b *Builder) card(log *zap.Logger, ds models.Dataset, title, seriesName string, res models.AnalysisResult) Card {
	c := Card{Title: title, Analysis: res}

	var buf bytes.Buffer
	err := charts.Line(&buf, charts.LineSpec{
		Name:   seriesName,
		Labels: ds.ExamNames(),
		Values: analyzer.Extract(ds, res.Metric, res.Subject),
		Color:  res.Color,
		Axis:   b.axisFor(res.Metric),
		Width:  b.cfg.Charts.Width,
		Height: b.cfg.Charts.Height,
	})
	switch {
	case errors.Is(err, charts.ErrNoPoints):
	case err != nil:
		log.Warn("chart skipped", zap.String("analysis", res.ID()), zap.Error(err))
	default:
		c.Chart = inlineSVG(buf.String())
	}
	return c
}

func (b *Builder) rankBars(log *zap.Logger, ds models.Dataset, kind models.RankKind) template.HTML {
	metric := models.MetricClassRank
	if kind == models.RankSchool {
		metric = models.MetricSchoolRank
	}

	spec := charts.BarSpec{
		Title:  kind.Label() + "排名",
		Labels: ds.ExamNames(),
		Axis:   *b.axisFor(metric),
		Width:  b.cfg.Charts.Width,
		Height: b.cfg.Charts.BarHeight,
	}
	for _, s := range models.Subjects {
		spec.Series = append(spec.Series, charts.BarSeries{
			Name:   s.Label(),
			Color:  s.Color(),
			Values: analyzer.Extract(ds, metric, s),
		})
	}

	var buf bytes.Buffer
	if err := charts.Bars(&buf, spec); err != nil {
		if !errors.Is(err, charts.ErrNoPoints) {
			log.Warn("bar chart skipped", zap.String("kind", string(kind)), zap.Error(err))
		}
		return ""
	}
	return inlineSVG(buf.String())
}

// inlineSVG strips the XML prolog so the document can be embedded in HTML.
// Chart output is generated locally and trusted.
func inlineSVG(svg string) template.HTML {
	if i := strings.Index(svg, "<svg"); i > 0 {
		svg = svg[i:]
	}
	return template.HTML(svg)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts text to HTML. Raw HTML in the input is not passed through.
func Markdown(text string) (template.HTML, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
