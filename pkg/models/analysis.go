package models

// Trend is the direction classification of a series.
type Trend string

// Trend values.
const (
	TrendRising     Trend = "rising"
	TrendFalling    Trend = "falling"
	TrendStable     Trend = "stable"
	TrendSingleData Trend = "single_data"
	TrendNoData     Trend = "no_data"
)

// Trends lists every trend tag.
var Trends = []Trend{TrendRising, TrendFalling, TrendStable, TrendSingleData, TrendNoData}

// Phrase returns the emphasised wording for a directional trend.
func (t Trend) Phrase() string {
	switch t {
	case TrendRising:
		return "上升趋势"
	case TrendFalling:
		return "下降趋势"
	case TrendStable:
		return "保持稳定"
	}
	return ""
}

// Metric names the value extracted from each exam.
type Metric string

const (
	// Per-subject metrics.
	MetricScore      Metric = "score"
	MetricClassRank  Metric = "class_rank"
	MetricSchoolRank Metric = "school_rank"

	// Aggregate metrics over the selected subjects.
	MetricTotalScore      Metric = "total_score"
	MetricTotalClassRank  Metric = "total_class_rank"
	MetricTotalSchoolRank Metric = "total_school_rank"
)

// Metrics lists every metric.
var Metrics = []Metric{
	MetricScore, MetricClassRank, MetricSchoolRank,
	MetricTotalScore, MetricTotalClassRank, MetricTotalSchoolRank,
}

// LowerIsBetter is true for ranks, where 1 is the best standing.
func (m Metric) LowerIsBetter() bool {
	switch m {
	case MetricClassRank, MetricSchoolRank, MetricTotalClassRank, MetricTotalSchoolRank:
		return true
	}
	return false
}

// PerSubject reports whether the metric is read from a subject entry.
func (m Metric) PerSubject() bool {
	return m == MetricScore || m == MetricClassRank || m == MetricSchoolRank
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	for _, v := range Metrics {
		if v == m {
			return true
		}
	}
	return false
}

// SegmentKind distinguishes narrative pieces.
type SegmentKind string

const (
	SegmentText     SegmentKind = "text"
	SegmentEmphasis SegmentKind = "emphasis" // trend phrase, styled by Trend
	SegmentBreak    SegmentKind = "break"
)

// Segment is one piece of a narrative.
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	Trend Trend       `json:"trend,omitempty"` // set for emphasis segments
}

// SeriesStats summarises the present values of a series.
type SeriesStats struct {
	Count int     `json:"count"`
	First float64 `json:"first,omitempty"`
	Last  float64 `json:"last,omitempty"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
}

// AnalysisResult is a generated trend narrative plus its classification.
type AnalysisResult struct {
	Metric   Metric      `json:"metric"`
	Subject  Subject     `json:"subject,omitempty"` // empty for aggregate metrics
	Trend    Trend       `json:"trend"`
	Color    string      `json:"color"`
	Segments []Segment   `json:"segments"`
	Stats    SeriesStats `json:"stats"`
}

// Text flattens the narrative to plain text, with breaks as newlines.
func (r AnalysisResult) Text() string {
	var b []byte
	for _, seg := range r.Segments {
		if seg.Kind == SegmentBreak {
			b = append(b, '\n')
			continue
		}
		b = append(b, seg.Text...)
	}
	return string(b)
}

// ID is a stable identifier such as "score/math" or "total_score".
func (r AnalysisResult) ID() string {
	if r.Subject == "" {
		return string(r.Metric)
	}
	return string(r.Metric) + "/" + string(r.Subject)
}
