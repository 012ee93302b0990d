package play

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/ui/components"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	switch {
	case m.err != nil:
		return theme.Incorrect.Render("Could not build a challenge: "+m.err.Error()) + "\n"
	case m.s == nil:
		return theme.Hint.Render("Building your quiz...") + "\n"
	case m.view.NothingToPlay():
		return theme.Warning.Render("Nothing to play: no usable questions came out of this content.") + "\n"
	case m.abandoned:
		return theme.Hint.Render(fmt.Sprintf("Session abandoned at %d points; nothing was saved.", m.s.Score())) + "\n"
	case m.view.Status == session.StatusFinished:
		return components.Summary(m.s.Summary(), m.summaryWidth()) + "\n"
	case m.confirming:
		return m.renderItem() + "\n\n" + theme.Warning.Render("End the session? Points are not kept. (y/n)") + "\n"
	}
	return m.renderItem() + "\n\n" + m.renderInput() + "\n\n" + theme.Hint.Render(m.keyHints()) + "\n"
}

func (m *Model) renderItem() string {
	v := m.view
	if v.Current == nil {
		return ""
	}
	return components.Header(v) + "\n\n" + components.Item(v.Current, v.CurrentState, m.chosen)
}

func (m *Model) renderInput() string {
	var b strings.Builder
	switch item := m.view.Current.(type) {
	case *quiz.MultipleChoice:
		if m.feedback == nil {
			b.WriteString(theme.Hint.Render(fmt.Sprintf("› %c) %s", 'A'+m.selected, item.Options[m.selected])))
		}
	case *quiz.CodeChallenge:
		b.WriteString(m.editor.View())
		if m.checking {
			b.WriteString("\n" + theme.Hint.Render("Running..."))
		}
	}
	if m.feedback != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(components.Feedback(*m.feedback))
	}
	return b.String()
}

func (m *Model) keyHints() string {
	if m.feedback != nil && m.view.CurrentState.Phase == session.PhaseAnswered {
		return "any key: continue"
	}
	if _, ok := m.view.Current.(*quiz.CodeChallenge); ok {
		return "ctrl+r: run · ctrl+n: skip · esc: quit"
	}
	return "A-Z or 1-9: answer · ↑/↓ enter: pick · ctrl+n: skip · esc: quit"
}

func (m *Model) summaryWidth() int {
	if m.width <= 0 {
		return 40
	}
	return min(m.width-6, 60)
}
