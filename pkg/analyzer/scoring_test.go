package analyzer

import (
	"testing"

	"github.com/rg0now/exam-trend-report/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		series        []float64
		lowerIsBetter bool
		want          models.Trend
	}{
		{"empty score", nil, false, models.TrendNoData},
		{"empty rank", []float64{}, true, models.TrendNoData},
		{"single score", []float64{88}, false, models.TrendSingleData},
		{"single rank", []float64{5}, true, models.TrendSingleData},
		{"score up", []float64{80, 90}, false, models.TrendRising},
		{"score down", []float64{90, 80}, false, models.TrendFalling},
		{"score equal", []float64{85, 85}, false, models.TrendStable},
		{"rank number down is rising", []float64{12, 4}, true, models.TrendRising},
		{"rank number up is falling", []float64{4, 12}, true, models.TrendFalling},
		{"rank equal", []float64{7, 7}, true, models.TrendStable},
		{"only endpoints matter", []float64{90, 10, 200, 91}, false, models.TrendRising},
		{"round trip back to start", []float64{300, 10, 300}, true, models.TrendStable},
		{"fractional scores", []float64{87.5, 87.0}, false, models.TrendFalling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.series, tt.lowerIsBetter))
		})
	}
}

func TestClassifyTwoPointLaws(t *testing.T) {
	values := []float64{1, 2, 50, 99.5, 300, 900}
	for _, a := range values {
		for _, b := range values {
			score := Classify([]float64{a, b}, false)
			rank := Classify([]float64{a, b}, true)
			switch {
			case b > a:
				assert.Equal(t, models.TrendRising, score)
				assert.Equal(t, models.TrendFalling, rank)
			case b < a:
				assert.Equal(t, models.TrendFalling, score)
				assert.Equal(t, models.TrendRising, rank)
			default:
				assert.Equal(t, models.TrendStable, score)
				assert.Equal(t, models.TrendStable, rank)
			}
		}
	}
}

func TestColorFor(t *testing.T) {
	tests := map[models.Trend]string{
		models.TrendRising:     "#22C55E",
		models.TrendFalling:    "#EF4444",
		models.TrendStable:     "#3B82F6",
		models.TrendNoData:     "#888888",
		models.TrendSingleData: "#888888",
		models.Trend("bogus"):  "#888888",
	}
	for trend, want := range tests {
		assert.Equal(t, want, ColorFor(trend), "trend %s", trend)
	}
}
