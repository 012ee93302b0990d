package session

import (
	"time"

	"github.com/abhisek/quizcraft/internal/quiz"
)

// View is an immutable snapshot of a session for rendering.
type View struct {
	ID       string
	Status   Status
	Position int
	Total    int
	Score    int
	MaxScore int

	// Current is the item at Position, nil once the session finished or
	// when there is nothing to play.
	Current      quiz.Item
	CurrentState ItemState

	States []ItemState
}

// NothingToPlay reports an active session over a zero-length quiz.
func (v View) NothingToPlay() bool {
	return v.Status == StatusActive && v.Total == 0
}

// Summary is the outcome of a session at the moment it ended.
type Summary struct {
	SessionID string
	LearnerID string
	ContentID string
	Status    Status
	Position  int
	Items     int
	Answered  int
	Correct   int
	Score     int
	MaxScore  int
	Duration  time.Duration
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Score is the running total of points awarded.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ItemStates returns a copy of the per-item states in quiz order.
func (s *Session) ItemStates() []ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ItemState(nil), s.states...)
}

// Summary returns the session outcome so far.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:       s.id,
		Status:   s.status,
		Position: s.position,
		Total:    s.quiz.Len(),
		Score:    s.score,
		MaxScore: s.quiz.TotalPoints(),
		States:   append([]ItemState(nil), s.states...),
	}
	if s.status == StatusActive && s.position < s.quiz.Len() {
		v.Current = s.quiz.Items[s.position]
		v.CurrentState = s.states[s.position]
	}
	return v
}

func (s *Session) summaryLocked() Summary {
	sum := Summary{
		SessionID: s.id,
		LearnerID: s.learnerID,
		ContentID: s.contentID,
		Status:    s.status,
		Position:  s.position,
		Items:     s.quiz.Len(),
		Score:     s.score,
		MaxScore:  s.quiz.TotalPoints(),
	}
	for _, st := range s.states {
		if st.Phase == PhaseAnswered {
			sum.Answered++
		}
		if st.Solved() {
			sum.Correct++
		}
	}
	if !s.startedAt.IsZero() {
		end := s.finishedAt
		if end.IsZero() {
			end = time.Now()
		}
		sum.Duration = end.Sub(s.startedAt)
	}
	return sum
}
