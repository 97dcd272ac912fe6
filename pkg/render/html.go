package render

import (
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/rg0now/exam-trend-report/pkg/models"
)

//go:embed report.html.tmpl
var reportTemplate string

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"narrative": NarrativeHTML,
	"dict":      dict,
}).Parse(reportTemplate))

// dict builds a map from alternating keys and values, for passing several
// values to a nested template.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// WriteHTML renders r as a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	if err := page.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// NarrativeHTML turns segments into markup. Text is escaped; emphasis
// becomes <strong> with a class per trend.
func NarrativeHTML(segments []models.Segment) template.HTML {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case models.SegmentBreak:
			b.WriteString("<br/>")
		case models.SegmentEmphasis:
			fmt.Fprintf(&b, `<strong class="trend-%s">%s</strong>`, html.EscapeString(string(seg.Trend)), html.EscapeString(seg.Text))
		default:
			b.WriteString(html.EscapeString(seg.Text))
		}
	}
	return template.HTML(b.String())
}
