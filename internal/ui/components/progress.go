package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

// Track renders one marker per item: solved, missed, current or pending.
func Track(states []session.ItemState, position int) string {
	var b strings.Builder
	for i, st := range states {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case st.Solved():
			b.WriteString(theme.Correct.Render("●"))
		case st.Phase == session.PhaseAnswered:
			b.WriteString(theme.Incorrect.Render("●"))
		case i == position:
			b.WriteString(theme.Score.Render("◆"))
		default:
			b.WriteString(theme.Hint.Render("○"))
		}
	}
	return b.String()
}

// ScoreBar renders score out of total as a bar width cells wide, the
// percentage included.
func ScoreBar(score, total, width int) string {
	const suffix = 6 // "  100%"
	cells := max(width-suffix, 4)

	frac := 0.0
	if total > 0 {
		frac = min(max(float64(score)/float64(total), 0), 1)
	}
	filled := int(float64(cells) * frac)

	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", cells-filled)) +
		theme.Hint.Render(fmt.Sprintf("  %3d%%", int(frac*100)))
}
