package analyzer

import (
	"fmt"

	"github.com/rg0now/exam-trend-report/pkg/models"
)

// narrative accumulates segments. Adjacent text is merged so results
// compare and render predictably.
type narrative struct {
	segments []models.Segment
}

func (n *narrative) text(s string) *narrative {
	if last := len(n.segments) - 1; last >= 0 && n.segments[last].Kind == models.SegmentText {
		n.segments[last].Text += s
		return n
	}
	n.segments = append(n.segments, models.Segment{Kind: models.SegmentText, Text: s})
	return n
}

func (n *narrative) textf(format string, args ...any) *narrative {
	return n.text(fmt.Sprintf(format, args...))
}

func (n *narrative) emph(trend models.Trend) *narrative {
	n.segments = append(n.segments, models.Segment{
		Kind:  models.SegmentEmphasis,
		Text:  trend.Phrase(),
		Trend: trend,
	})
	return n
}

func (n *narrative) br() *narrative {
	n.segments = append(n.segments, models.Segment{Kind: models.SegmentBreak})
	return n
}
