package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	"github.com/rg0now/exam-trend-report/pkg/config"
	"github.com/rg0now/exam-trend-report/pkg/dataset"
	"github.com/rg0now/exam-trend-report/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func testBuilder() *Builder {
	b := NewBuilder(config.NewDefaultConfig(), analyzer.NewAnalyzer(zap.NewNop()), zap.NewNop())
	b.now = func() time.Time { return time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC) }
	return b
}

func twoExams() models.Dataset {
	return models.Dataset{
		Student: "张三",
		Title:   "张三成绩报告",
		Summary: "整体**稳步提升**。",
		Exams: []models.ExamRecord{
			{
				ExamName: "期中",
				Subjects: map[models.Subject]*float64{models.SubjectMath: f(90)},
				SubjectRanks: map[models.Subject]models.RankPair{
					models.SubjectMath:    {Class: i(12), School: i(320)},
					models.SubjectEnglish: {Class: i(3)},
				},
				SelectedSubjectsTotalScore: f(500),
				SelectedSubjectsClassRank:  i(4),
				SelectedSubjectsSchoolRank: i(150),
			},
			{
				ExamName: "期末",
				Subjects: map[models.Subject]*float64{models.SubjectMath: f(97.5)},
				SubjectRanks: map[models.Subject]models.RankPair{
					models.SubjectMath: {Class: i(10), School: i(300)},
				},
				SelectedSubjectsTotalScore: f(520),
				SelectedSubjectsSchoolRank: i(120),
			},
		},
	}
}

func row(t *testing.T, tbl Table, label string) Row {
	t.Helper()
	for _, r := range tbl.Rows {
		if r.Label == label {
			return r
		}
	}
	t.Fatalf("row %q not found in %s", label, tbl.Title)
	return Row{}
}

func TestBuildTables(t *testing.T) {
	r, err := testBuilder().Build(twoExams())
	require.NoError(t, err)

	assert.Equal(t, []string{"期中", "期末"}, r.Exams)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "exam-report", r.Generator)

	assert.Equal(t, "原始成绩", r.ScoreTable.Title)
	assert.Len(t, r.ScoreTable.Rows, len(models.Subjects)+1)
	assert.Equal(t, []Cell{{Text: "90"}, {Text: "97.5"}}, row(t, r.ScoreTable, "数学").Cells)
	assert.Equal(t, []Cell{{Text: "-"}, {Text: "-"}}, row(t, r.ScoreTable, "化学").Cells)
	assert.Equal(t, []Cell{{Text: "500"}, {Text: "520"}}, row(t, r.ScoreTable, "总分").Cells)

	assert.Equal(t, "班级排名", r.ClassRankTable.Title)
	assert.Equal(t, []Cell{{Text: "12"}, {Text: "10", Highlight: true}}, row(t, r.ClassRankTable, "数学").Cells)
	assert.Equal(t, []Cell{{Text: "3", Highlight: true}, {Text: "-"}}, row(t, r.ClassRankTable, "英语").Cells)
	assert.Equal(t, []Cell{{Text: "4"}, {Text: "-"}}, row(t, r.ClassRankTable, "班排").Cells, "aggregate rows are never highlighted")

	assert.Equal(t, "年级排名", r.SchoolRankTable.Title)
	assert.Equal(t, []Cell{{Text: "320"}, {Text: "300", Highlight: true}}, row(t, r.SchoolRankTable, "数学").Cells)
	assert.Equal(t, []Cell{{Text: "150"}, {Text: "120"}}, row(t, r.SchoolRankTable, "年排").Cells)
}

func TestBuildHighlightThresholdsFromConfig(t *testing.T) {
	b := testBuilder()
	b.cfg.Report.ClassRankHighlight = 12
	r, err := b.Build(twoExams())
	require.NoError(t, err)
	assert.True(t, row(t, r.ClassRankTable, "数学").Cells[0].Highlight)
}

func TestBuildCards(t *testing.T) {
	r, err := testBuilder().Build(twoExams())
	require.NoError(t, err)

	require.Len(t, r.Overall, 2)
	assert.Equal(t, models.MetricTotalScore, r.Overall[0].Analysis.Metric)
	assert.Equal(t, models.TrendRising, r.Overall[0].Analysis.Trend)
	assert.Contains(t, string(r.Overall[0].Chart), "<svg")
	assert.Equal(t, models.MetricTotalSchoolRank, r.Overall[1].Analysis.Metric)
	assert.Equal(t, models.TrendRising, r.Overall[1].Analysis.Trend)

	assert.Len(t, r.ScoreCards, len(models.Subjects))
	assert.Len(t, r.ClassRankCards, len(models.Subjects))
	assert.Len(t, r.SchoolRankCards, len(models.Subjects))
	assert.Len(t, r.Analyses, 2+3*len(models.Subjects))

	math := r.ScoreCards[1]
	assert.Equal(t, "数学分数趋势", math.Title)
	assert.Contains(t, string(math.Chart), "<svg")

	chem := r.ScoreCards[4]
	assert.Equal(t, models.TrendNoData, chem.Analysis.Trend)
	assert.Empty(t, chem.Chart, "no chart without points")

	english := r.ClassRankCards[2]
	assert.Equal(t, "英语班级排名趋势", english.Title)
	assert.Equal(t, models.TrendSingleData, english.Analysis.Trend)
	assert.NotEmpty(t, english.Chart)

	assert.NotEmpty(t, r.ClassRankBars)
	assert.NotEmpty(t, r.SchoolRankBars)
	assert.False(t, strings.HasPrefix(string(r.ClassRankBars), "<?xml"))
}

func TestBuildSummary(t *testing.T) {
	r, err := testBuilder().Build(twoExams())
	require.NoError(t, err)
	assert.Contains(t, string(r.Summary), "<strong>稳步提升</strong>")

	ds := twoExams()
	ds.Summary = "  "
	r, err = testBuilder().Build(ds)
	require.NoError(t, err)
	assert.Empty(t, r.Summary)
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out, err := Markdown("hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
}

func TestNarrativeHTML(t *testing.T) {
	segs := []models.Segment{
		{Kind: models.SegmentText, Text: "所选科目总分趋势："},
		{Kind: models.SegmentBreak},
		{Kind: models.SegmentText, Text: "整体呈现"},
		{Kind: models.SegmentEmphasis, Text: models.TrendFalling.Phrase(), Trend: models.TrendFalling},
		{Kind: models.SegmentText, Text: "<b>"},
	}
	assert.Equal(t,
		`所选科目总分趋势：<br/>整体呈现<strong class="trend-falling">下降趋势</strong>&lt;b&gt;`,
		string(NarrativeHTML(segs)))
}

func TestWriteHTML(t *testing.T) {
	r, err := testBuilder().Build(twoExams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))
	out := buf.String()

	for _, want := range []string{
		"<title>张三成绩报告</title>",
		"原始成绩",
		"班级排名",
		"年级排名",
		"1. 整体表现趋势",
		"2. 各科目分数趋势",
		"3.1 各科目班级排名趋势",
		"3.2 各科目年级排名趋势",
		"4. 总结",
		`<td class="highlight">10</td>`,
		`class="trend-rising"`,
		"2026-07-01 09:30",
		r.ID,
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteHTMLSample(t *testing.T) {
	ds, err := dataset.Sample()
	require.NoError(t, err)
	r, err := testBuilder().Build(ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))
	assert.Contains(t, buf.String(), ds.Title)
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "x")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "x"}, m)

	_, err = dict("a")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}
