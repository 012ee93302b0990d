// Package play is the interactive screen a learner answers a quiz on.
package play

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/ui/components"
)

// BuildFunc synthesizes a quiz and returns the started session.
type BuildFunc func(ctx context.Context) (*session.Session, error)

// Model drives one session. The session's auto-advance is delivered as a
// tea.Tick so every state change happens on the program's goroutine.
type Model struct {
	ctx   context.Context
	build BuildFunc
	sched *session.ManualScheduler

	s      *session.Session
	view   session.View
	err    error
	width  int
	editor textarea.Model

	selected int // highlighted option of a multiple-choice item
	chosen   int // submitted option, -1 before answering

	feedback   *session.Feedback
	checking   bool
	confirming bool
	abandoned  bool

	// seq numbers answers so a tick only fires the advance it was
	// scheduled for.
	seq int
}

var _ tea.Model = (*Model)(nil)

// New creates the screen. sched must be the scheduler the built session
// was given.
func New(ctx context.Context, sched *session.ManualScheduler, build BuildFunc) *Model {
	ed := textarea.New()
	ed.Placeholder = "Write your code here..."
	ed.ShowLineNumbers = true
	ed.SetHeight(8)
	ed.SetWidth(72)

	return &Model{
		ctx:    ctx,
		build:  build,
		sched:  sched,
		editor: ed,
		chosen: -1,
	}
}

func (m *Model) Init() tea.Cmd {
	ctx, build := m.ctx, m.build
	return func() tea.Msg {
		s, err := build(ctx)
		return sessionReadyMsg{Session: s, Err: err}
	}
}

// Session is the played session, nil until it was built.
func (m *Model) Session() *session.Session { return m.s }

// Err is the failure that ended the screen, if any.
func (m *Model) Err() error { return m.err }

// Abandoned reports whether the learner quit before finishing.
func (m *Model) Abandoned() bool { return m.abandoned }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.SetWidth(min(max(msg.Width-4, 20), 100))
		return m, nil

	case sessionReadyMsg:
		return m.handleReady(msg)

	case submittedMsg:
		return m.handleSubmitted(msg)

	case advanceDueMsg:
		if msg.Seq == m.seq && m.feedback != nil {
			m.sched.Fire()
			return m.refresh()
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.editing() {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleReady(msg sessionReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		return m, tea.Quit
	}
	m.s = msg.Session
	m.view = m.s.Snapshot()
	if m.view.NothingToPlay() {
		return m, tea.Quit
	}
	m.resetItem()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m.quit()
	}
	if m.s == nil || m.view.Current == nil {
		return m, nil
	}

	if m.confirming {
		switch key {
		case "y", "Y":
			return m.quit()
		case "n", "N", "esc":
			m.confirming = false
		}
		return m, nil
	}

	if m.checking {
		return m, nil
	}

	// Any key skips the rest of the feedback delay.
	if m.feedback != nil && m.view.CurrentState.Phase == session.PhaseAnswered {
		return m.advance()
	}

	switch key {
	case "esc":
		m.confirming = true
		return m, nil
	case "ctrl+n":
		return m.advance()
	}

	switch item := m.view.Current.(type) {
	case *quiz.MultipleChoice:
		return m.handleChoiceKey(item, msg)
	case *quiz.CodeChallenge:
		if key == "ctrl+r" {
			return m.submit(item)
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleChoiceKey(mc *quiz.MultipleChoice, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(mc.Options)-1 {
			m.selected++
		}
	case "enter":
		return m.answer(mc, m.selected)
	default:
		if idx, ok := components.OptionIndex(key, len(mc.Options)); ok {
			return m.answer(mc, idx)
		}
	}
	return m, nil
}

func (m *Model) answer(mc *quiz.MultipleChoice, idx int) (tea.Model, tea.Cmd) {
	fb, err := m.s.AnswerMultipleChoice(mc.ID, idx)
	if err != nil {
		return m.fail(err)
	}
	m.chosen = idx
	m.feedback = &fb
	m.view = m.s.Snapshot()
	return m, m.scheduleAdvance()
}

func (m *Model) submit(cc *quiz.CodeChallenge) (tea.Model, tea.Cmd) {
	source := m.editor.Value()
	if source == "" {
		return m, nil
	}
	m.checking = true
	m.feedback = nil
	ctx, s := m.ctx, m.s
	return m, func() tea.Msg {
		fb, err := s.SubmitCode(ctx, cc.ID, source)
		return submittedMsg{Feedback: fb, Err: err}
	}
}

func (m *Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	m.checking = false
	if errors.Is(msg.Err, session.ErrClosed) {
		return m, nil
	}
	if msg.Err != nil {
		return m.fail(msg.Err)
	}
	m.feedback = &msg.Feedback
	m.view = m.s.Snapshot()
	if msg.Feedback.Outcome == session.OutcomeCorrect {
		return m, m.scheduleAdvance()
	}
	return m, nil
}

// scheduleAdvance turns the auto-advance the session just scheduled into
// a tick.
func (m *Model) scheduleAdvance() tea.Cmd {
	m.seq++
	seq := m.seq
	return tea.Tick(m.sched.LastDelay(), func(time.Time) tea.Msg {
		return advanceDueMsg{Seq: seq}
	})
}

// advance moves on now, cancelling any pending auto-advance.
func (m *Model) advance() (tea.Model, tea.Cmd) {
	if err := m.s.Advance(m.ctx); err != nil {
		return m.fail(err)
	}
	return m.refresh()
}

// refresh reloads the view after the position moved.
func (m *Model) refresh() (tea.Model, tea.Cmd) {
	prev := m.view.Position
	m.view = m.s.Snapshot()
	if m.view.Status == session.StatusFinished {
		return m, tea.Quit
	}
	if m.view.Position != prev {
		m.resetItem()
	}
	return m, nil
}

func (m *Model) resetItem() {
	m.seq++
	m.selected = 0
	m.chosen = -1
	m.feedback = nil
	m.editor.Reset()
	if cc, ok := m.view.Current.(*quiz.CodeChallenge); ok {
		m.editor.SetValue(cc.InitialCode)
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.s != nil && m.s.Status() != session.StatusFinished {
		m.abandoned = true
	}
	if m.s != nil {
		m.s.Close()
	}
	return m, tea.Quit
}

func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	if m.s != nil {
		m.s.Close()
	}
	return m, tea.Quit
}

func (m *Model) editing() bool {
	if m.s == nil || m.checking || m.confirming {
		return false
	}
	_, ok := m.view.Current.(*quiz.CodeChallenge)
	return ok
}
