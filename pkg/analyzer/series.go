package analyzer

import (
	"strconv"

	"github.com/rg0now/exam-trend-report/pkg/models"
)

// Extract reads metric from every exam in dataset order. The result has one
// slot per exam; absent values are nil. subject is ignored for aggregate metrics.
func Extract(ds models.Dataset, metric models.Metric, subject models.Subject) []*float64 {
	values := make([]*float64, len(ds.Exams))
	for i, exam := range ds.Exams {
		if v, ok := valueOf(exam, metric, subject); ok {
			values[i] = &v
		}
	}
	return values
}

func valueOf(exam models.ExamRecord, metric models.Metric, subject models.Subject) (float64, bool) {
	switch metric {
	case models.MetricScore:
		return exam.Score(subject)
	case models.MetricClassRank:
		r, ok := exam.Rank(subject, models.RankClass)
		return float64(r), ok
	case models.MetricSchoolRank:
		r, ok := exam.Rank(subject, models.RankSchool)
		return float64(r), ok
	case models.MetricTotalScore:
		return derefFloat(exam.SelectedSubjectsTotalScore)
	case models.MetricTotalClassRank:
		return derefInt(exam.SelectedSubjectsClassRank)
	case models.MetricTotalSchoolRank:
		return derefInt(exam.SelectedSubjectsSchoolRank)
	}
	return 0, false
}

func derefFloat(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func derefInt(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

// Present drops absent values, keeping order.
func Present(values []*float64) []float64 {
	series := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			series = append(series, *v)
		}
	}
	return series
}

// Stats summarises a series of present values.
func Stats(series []float64) models.SeriesStats {
	stats := models.SeriesStats{Count: len(series)}
	if len(series) == 0 {
		return stats
	}
	stats.First = series[0]
	stats.Last = series[len(series)-1]
	stats.Min, stats.Max = series[0], series[0]
	for _, v := range series[1:] {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	return stats
}

// FormatValue prints a value in its shortest form ("90", "87.5").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
