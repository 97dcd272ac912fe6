package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	"github.com/rg0now/exam-trend-report/pkg/models"
)

// Summary represents trend distribution across a set of analyses.
type Summary struct {
	TotalAnalyses int                                    `json:"total_analyses"`
	ByTrend       map[models.Trend]int                   `json:"by_trend"`
	ByMetric      map[models.Metric]map[models.Trend]int `json:"by_metric"`
	Improving     []string                               `json:"improving,omitempty"`
	Declining     []string                               `json:"declining,omitempty"`
}

// GenerateSummary counts results per trend and per metric.
func GenerateSummary(results []models.AnalysisResult) Summary {
	summary := Summary{
		TotalAnalyses: len(results),
		ByTrend:       make(map[models.Trend]int),
		ByMetric:      make(map[models.Metric]map[models.Trend]int),
	}

	for _, r := range results {
		summary.ByTrend[r.Trend]++
		if summary.ByMetric[r.Metric] == nil {
			summary.ByMetric[r.Metric] = make(map[models.Trend]int)
		}
		summary.ByMetric[r.Metric][r.Trend]++

		switch r.Trend {
		case models.TrendRising:
			summary.Improving = append(summary.Improving, label(r))
		case models.TrendFalling:
			summary.Declining = append(summary.Declining, label(r))
		}
	}

	sort.Strings(summary.Improving)
	sort.Strings(summary.Declining)
	return summary
}

var metricLabels = map[models.Metric]string{
	models.MetricScore:           "分数",
	models.MetricClassRank:       "班级排名",
	models.MetricSchoolRank:      "年级排名",
	models.MetricTotalScore:      "所选科目总分",
	models.MetricTotalClassRank:  "所选科目班级排名",
	models.MetricTotalSchoolRank: "所选科目年级排名",
}

var trendLabels = map[models.Trend]string{
	models.TrendRising:     "上升",
	models.TrendFalling:    "下降",
	models.TrendStable:     "稳定",
	models.TrendSingleData: "单次数据",
	models.TrendNoData:     "无数据",
}

// label is the human name of an analysis, e.g. "数学分数".
func label(r models.AnalysisResult) string {
	if r.Subject == "" {
		return metricLabels[r.Metric]
	}
	return r.Subject.Label() + metricLabels[r.Metric]
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(analyzer.ColorNeutral))
)

func trendStyle(t models.Trend) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(analyzer.ColorFor(t)))
}

// PrintSummary prints a summary to the given writer.
func PrintSummary(w io.Writer, summary Summary) {
	fmt.Fprintln(w, titleStyle.Render("趋势分析汇总"))
	fmt.Fprintf(w, "分析总数: %d\n\n", summary.TotalAnalyses)

	fmt.Fprintln(w, "趋势分布:")
	for _, t := range models.Trends {
		count := summary.ByTrend[t]
		if count == 0 {
			continue
		}
		pct := 100.0 * float64(count) / float64(summary.TotalAnalyses)
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", trendStyle(t).Render(trendLabels[t]), count, pct)
	}
	fmt.Fprintln(w)

	headers := []string{"指标"}
	for _, t := range models.Trends {
		headers = append(headers, trendLabels[t])
	}
	var rows [][]string
	for _, m := range models.Metrics {
		counts, ok := summary.ByMetric[m]
		if !ok {
			continue
		}
		row := []string{metricLabels[m]}
		for _, t := range models.Trends {
			row = append(row, strconv.Itoa(counts[t]))
		}
		rows = append(rows, row)
	}
	fmt.Fprint(w, renderTable(headers, rows))
	fmt.Fprintln(w)

	if len(summary.Improving) > 0 {
		fmt.Fprintf(w, "%s %s\n", trendStyle(models.TrendRising).Render("上升:"), strings.Join(summary.Improving, "、"))
	}
	if len(summary.Declining) > 0 {
		fmt.Fprintf(w, "%s %s\n", trendStyle(models.TrendFalling).Render("下降:"), strings.Join(summary.Declining, "、"))
	}
}

// renderTable lays out rows under headers with columns sized to the widest cell.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// Padding is counted in the style width.
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	sep := mutedStyle.Render("|")
	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				sb.WriteString(sep)
			}
			style := cellStyle
			if i == 0 {
				style = headerStyle
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
