// Package export writes a report's tables and narratives to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rg0now/exam-trend-report/pkg/render"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetScores      = "原始成绩"
	SheetClassRanks  = "班级排名"
	SheetSchoolRanks = "年级排名"
	SheetTrends      = "趋势分析"
)

var trendHeaders = []string{"分析", "指标", "科目", "趋势", "颜色", "分析说明"}

type styles struct {
	header    int
	highlight int
	wrap      int
	trend     map[string]int // by color
}

// Workbook builds the xlsx file for r. The caller closes it.
func Workbook(r *render.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SheetScores); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetClassRanks, SheetSchoolRanks, SheetTrends} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	tables := []struct {
		sheet string
		table render.Table
	}{
		{SheetScores, r.ScoreTable},
		{SheetClassRanks, r.ClassRankTable},
		{SheetSchoolRanks, r.SchoolRankTable},
	}
	for _, t := range tables {
		if err := writeTable(f, st, t.sheet, r.Exams, t.table); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := writeTrends(f, st, r); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       r.Title,
		Creator:     r.Generator,
		Identifier:  r.ID,
		Created:     r.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Description: r.Student,
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}
	return f, nil
}

// Write streams the workbook for r to w.
func Write(w io.Writer, r *render.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook for r to path.
func Save(path string, r *render.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func newStyles(f *excelize.File) (*styles, error) {
	var (
		st  = &styles{trend: make(map[string]int)}
		err error
	)
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F9FAFB"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	st.highlight, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "16A34A"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCFCE7"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight style: %w", err)
	}
	st.wrap, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wrap style: %w", err)
	}
	return st, nil
}

// trendStyle returns a bold font style in color, created on first use.
func (st *styles) trendStyle(f *excelize.File, color string) (int, error) {
	if id, ok := st.trend[color]; ok {
		return id, nil
	}
	hex := color
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: hex}})
	if err != nil {
		return 0, fmt.Errorf("failed to create trend style %s: %w", color, err)
	}
	st.trend[color] = id
	return id, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeTable(f *excelize.File, st *styles, sheet string, exams []string, t render.Table) error {
	header := []any{"科目"}
	for _, e := range exams {
		header = append(header, e)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cellName(1, 1), cellName(len(header), 1), st.header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		r := i + 2
		values := []any{row.Label}
		for _, c := range row.Cells {
			values = append(values, cellValue(c))
		}
		if err := writeRow(f, sheet, r, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellName(1, r), cellName(1, r), st.header); err != nil {
			return err
		}
		for j, c := range row.Cells {
			if !c.Highlight {
				continue
			}
			cell := cellName(j+2, r)
			if err := f.SetCellStyle(sheet, cell, cell, st.highlight); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheet, "A", "A", 10)
}

// cellValue stores numbers as numbers so the sheet stays sortable.
func cellValue(c render.Cell) any {
	if v, err := strconv.ParseFloat(c.Text, 64); err == nil {
		return v
	}
	return c.Text
}

func writeTrends(f *excelize.File, st *styles, r *render.Report) error {
	header := make([]any, len(trendHeaders))
	for i, h := range trendHeaders {
		header[i] = h
	}
	if err := writeRow(f, SheetTrends, 1, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetTrends, "A1", cellName(len(header), 1), st.header); err != nil {
		return err
	}

	for i, a := range r.Analyses {
		row := i + 2
		subject := ""
		if a.Subject != "" {
			subject = a.Subject.Label()
		}
		values := []any{a.ID(), string(a.Metric), subject, string(a.Trend), a.Color, a.Text()}
		if err := writeRow(f, SheetTrends, row, values); err != nil {
			return err
		}

		id, err := st.trendStyle(f, a.Color)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetTrends, cellName(4, row), cellName(4, row), id); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetTrends, cellName(6, row), cellName(6, row), st.wrap); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetTrends, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(SheetTrends, "F", "F", 80)
}
