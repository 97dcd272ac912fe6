package analyzer

import "github.com/rg0now/exam-trend-report/pkg/models"

// Trend line colors.
const (
	ColorRising  = "#22C55E"
	ColorFalling = "#EF4444"
	ColorStable  = "#3B82F6"
	ColorNeutral = "#888888" // no_data, single_data
)

// Classify computes the trend of a series of present values in exam order.
// For ranks (lowerIsBetter) a numerically smaller last value is an improvement.
func Classify(series []float64, lowerIsBetter bool) models.Trend {
	switch len(series) {
	case 0:
		return models.TrendNoData
	case 1:
		return models.TrendSingleData
	}

	first, last := series[0], series[len(series)-1]
	if lowerIsBetter {
		first, last = -first, -last
	}

	switch {
	case last > first:
		return models.TrendRising
	case last < first:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

// ColorFor maps a trend to the color used for its chart line.
func ColorFor(trend models.Trend) string {
	switch trend {
	case models.TrendRising:
		return ColorRising
	case models.TrendFalling:
		return ColorFalling
	case models.TrendStable:
		return ColorStable
	default:
		return ColorNeutral
	}
}
