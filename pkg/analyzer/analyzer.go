package analyzer

import (
	"github.com/rg0now/exam-trend-report/pkg/models"
	"go.uber.org/zap"
)

// Analyzer generates trend narratives from a dataset.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// AnalyzeAll runs every analysis in report order: the two aggregate
// analyses, then per-subject scores, class ranks and school ranks.
func (a *Analyzer) AnalyzeAll(ds models.Dataset) []models.AnalysisResult {
	results := []models.AnalysisResult{
		a.OverallScoreAnalysis(ds),
		a.OverallRankAnalysis(ds),
	}
	for _, s := range models.Subjects {
		results = append(results, a.ScoreAnalysis(ds, s))
	}
	for _, kind := range []models.RankKind{models.RankClass, models.RankSchool} {
		for _, s := range models.Subjects {
			results = append(results, a.RankAnalysis(ds, s, kind))
		}
	}
	return results
}

// ScoreAnalysis describes the score trend of one subject.
func (a *Analyzer) ScoreAnalysis(ds models.Dataset, subject models.Subject) models.AnalysisResult {
	series := Present(Extract(ds, models.MetricScore, subject))
	trend := Classify(series, models.MetricScore.LowerIsBetter())
	stats := Stats(series)
	label := subject.Label()

	var n narrative
	switch trend {
	case models.TrendNoData:
		n.text("暂无" + label + "科目分数数据。")
	case models.TrendSingleData:
		n.text(label + "科目分数趋势：")
		n.text("仅有一次考试数据，分数为 " + FormatValue(stats.First) + "。")
	default:
		n.text(label + "科目分数趋势：")
		switch trend {
		case models.TrendRising:
			n.text("整体呈现").emph(trend).text("，分数有所提高。")
		case models.TrendFalling:
			n.text("整体呈现").emph(trend).text("，分数有所退步。")
		default:
			n.text("分数").emph(trend).text("。")
		}
		n.text("从最初的 " + FormatValue(stats.First) + " 分到最近的 " + FormatValue(stats.Last) + " 分。")
		if stats.Min != stats.Max {
			n.text("最高分数为 " + FormatValue(stats.Max) + " 分，最低分数为 " + FormatValue(stats.Min) + " 分。")
		}
	}

	return a.result(models.MetricScore, subject, trend, stats, n)
}

// RankAnalysis describes the class or school rank trend of one subject.
func (a *Analyzer) RankAnalysis(ds models.Dataset, subject models.Subject, kind models.RankKind) models.AnalysisResult {
	metric := models.MetricClassRank
	if kind == models.RankSchool {
		metric = models.MetricSchoolRank
	}
	series := Present(Extract(ds, metric, subject))
	trend := Classify(series, metric.LowerIsBetter())
	stats := Stats(series)
	label := subject.Label()

	var n narrative
	switch trend {
	case models.TrendNoData:
		n.text("暂无" + label + "科目" + kind.Label() + "排名数据。")
	case models.TrendSingleData:
		n.text(label + "科目" + kind.Label() + "排名趋势：")
		n.text("仅有一次考试数据，排名为 " + FormatValue(stats.First) + "。")
	default:
		n.text(label + "科目" + kind.Label() + "排名趋势：")
		switch trend {
		case models.TrendRising:
			n.text("整体呈现").emph(trend).text("，排名逐渐靠前。")
		case models.TrendFalling:
			n.text("整体呈现").emph(trend).text("，排名有所退步。")
		default:
			n.text("排名").emph(trend).text("。")
		}
		n.text("从最初的 " + FormatValue(stats.First) + " 名到最近的 " + FormatValue(stats.Last) + " 名。")
		if stats.Min != stats.Max {
			// Lowest rank number is the best placing.
			n.text("最好排名为 " + FormatValue(stats.Min) + " 名，最差排名为 " + FormatValue(stats.Max) + " 名。")
		}
	}

	return a.result(metric, subject, trend, stats, n)
}

// OverallScoreAnalysis describes the trend of the selected-subjects total.
func (a *Analyzer) OverallScoreAnalysis(ds models.Dataset) models.AnalysisResult {
	return a.aggregate(ds, models.MetricTotalScore, aggregateWording{
		heading: "所选科目总分趋势：",
		noData:  "暂无所选科目总分数据。",
		single:  "仅有一次所选科目总分数据，为 %s 分。",
		unit:    "分",
	})
}

// OverallRankAnalysis describes the trend of the selected-subjects school rank.
func (a *Analyzer) OverallRankAnalysis(ds models.Dataset) models.AnalysisResult {
	return a.aggregate(ds, models.MetricTotalSchoolRank, aggregateWording{
		heading: "年级排名趋势：",
		noData:  "暂无年级排名数据。",
		single:  "仅有一次年级排名数据，为 %s 名。",
		unit:    "名",
	})
}

type aggregateWording struct {
	heading string
	noData  string
	single  string // %s is the only value
	unit    string
}

// aggregate never reports min/max; the aggregate cards only state the span.
func (a *Analyzer) aggregate(ds models.Dataset, metric models.Metric, w aggregateWording) models.AnalysisResult {
	series := Present(Extract(ds, metric, ""))
	trend := Classify(series, metric.LowerIsBetter())
	stats := Stats(series)

	var n narrative
	n.text(w.heading).br()
	switch trend {
	case models.TrendNoData:
		n.text(w.noData).br()
	case models.TrendSingleData:
		n.textf(w.single, FormatValue(stats.First)).br()
	default:
		n.text("整体呈现").emph(trend)
		n.text("，从 " + FormatValue(stats.First) + " " + w.unit + movement(trend) + "到 " + FormatValue(stats.Last) + " " + w.unit + "。").br()
	}

	return a.result(metric, "", trend, stats, n)
}

func movement(trend models.Trend) string {
	switch trend {
	case models.TrendRising:
		return "提高"
	case models.TrendFalling:
		return "下降"
	}
	return "维持"
}

func (a *Analyzer) result(metric models.Metric, subject models.Subject, trend models.Trend, stats models.SeriesStats, n narrative) models.AnalysisResult {
	a.logger.Debug("analysis generated",
		zap.String("metric", string(metric)),
		zap.String("subject", string(subject)),
		zap.String("trend", string(trend)),
		zap.Int("points", stats.Count),
	)
	return models.AnalysisResult{
		Metric:   metric,
		Subject:  subject,
		Trend:    trend,
		Color:    ColorFor(trend),
		Segments: n.segments,
		Stats:    stats,
	}
}
