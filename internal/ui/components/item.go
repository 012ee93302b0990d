// Package components renders quiz sessions for the terminal.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

// optionLabel returns "A", "B", ... for option i.
func optionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

// OptionIndex parses a learner's choice ("b", "B" or "2") into an option
// index. ok is false for anything else.
func OptionIndex(input string, options int) (int, bool) {
	s := strings.TrimSpace(input)
	if len(s) == 1 {
		c := s[0] | 0x20
		if c >= 'a' && int(c-'a') < options {
			return int(c - 'a'), true
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n >= 1 && n <= options {
		return n - 1, true
	}
	return 0, false
}

// Header renders the "Question 2 of 5" line with the running score and
// the item track.
func Header(v session.View) string {
	return theme.Title.Render(fmt.Sprintf("Question %d of %d", v.Position+1, v.Total)) +
		"   " + theme.Score.Render(fmt.Sprintf("%d / %d pts", v.Score, v.MaxScore)) +
		"\n" + Track(v.States, v.Position)
}

// Item renders a quiz item. state is used to mark the answer of a resolved
// multiple-choice item; chosen is the learner's pick or -1.
func Item(item quiz.Item, state session.ItemState, chosen int) string {
	return quiz.Match(item,
		func(mc *quiz.MultipleChoice) string {
			var b strings.Builder
			b.WriteString(theme.Body.Bold(true).Render(mc.Question))
			b.WriteString("\n\n")
			for i, opt := range mc.Options {
				line := fmt.Sprintf("  %s)  %s", optionLabel(i), opt)
				switch {
				case state.Phase != session.PhaseAnswered:
					b.WriteString(theme.Body.Render(line))
				case i == mc.CorrectIndex:
					b.WriteString(theme.Correct.Render(line))
				case i == chosen:
					b.WriteString(theme.Incorrect.Render(line))
				default:
					b.WriteString(theme.Hint.Render(line))
				}
				b.WriteString("\n")
			}
			b.WriteString(theme.Hint.Render(fmt.Sprintf("%d pts", mc.Points)))
			return theme.Card.Render(b.String())
		},
		func(cc *quiz.CodeChallenge) string {
			var b strings.Builder
			b.WriteString(theme.Body.Bold(true).Render(cc.Question))
			b.WriteString("\n\n")
			if strings.TrimSpace(cc.InitialCode) != "" {
				b.WriteString(theme.Code.Render(cc.InitialCode))
				b.WriteString("\n\n")
			}
			b.WriteString(theme.Hint.Render(fmt.Sprintf("%d pts · attempt %d", cc.Points, state.Attempts+1)))
			return theme.Card.Render(b.String())
		},
	)
}

// Feedback renders the result of an answer or submission.
func Feedback(fb session.Feedback) string {
	switch fb.Outcome {
	case session.OutcomeCorrect:
		return theme.Correct.Render(fmt.Sprintf("%s +%d", fb.Message(), fb.PointsAwarded))
	case session.OutcomeWrong:
		msg := theme.Incorrect.Render(fb.Message())
		if fb.Stdout != "" {
			msg += "\n" + theme.Hint.Render("your output:") + "\n" + theme.Code.Render(strings.TrimRight(fb.Stdout, "\n"))
		}
		return msg
	default:
		return theme.Warning.Render(fb.Message())
	}
}

// Summary renders the end-of-session card.
func Summary(s session.Summary, width int) string {
	lines := []string{
		theme.Title.Render("Session complete"),
		"",
		theme.Label.Render("Score") + theme.Score.Render(fmt.Sprintf("%d / %d", s.Score, s.MaxScore)),
		theme.Label.Render("Correct") + theme.Body.Render(fmt.Sprintf("%d of %d", s.Correct, s.Items)),
		theme.Label.Render("Time") + theme.Body.Render(s.Duration.Round(time.Second).String()),
		"",
		ScoreBar(s.Score, s.MaxScore, width),
	}
	return theme.Card.Render(strings.Join(lines, "\n"))
}
