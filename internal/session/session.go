// Package session implements the assessment state machine a learner
// plays through: one quiz, one position, one running score.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/quizcraft/internal/logger"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/sandbox"
)

// Committer persists a finished session's score. Failures are handled
// (logged) by the implementation and never reach the session.
type Committer interface {
	Commit(ctx context.Context, learnerID string, points int)
}

// Ledger records content a learner has completed.
type Ledger interface {
	MarkCompleted(ctx context.Context, learnerID, contentID string) error
}

// Hooks observe session lifecycle events. All hooks run without the
// session lock held and may be nil.
type Hooks struct {
	// OnAdvance runs after the position moves, including the move that
	// finishes the session.
	OnAdvance func(View)

	// OnFinish runs once, after the score has been handed off.
	OnFinish func(Summary)

	// OnAbandon runs once when an unfinished session is closed.
	OnAbandon func(Summary)
}

// Deps are the collaborators a session calls out to.
type Deps struct {
	Runner    sandbox.Runner
	Committer Committer
	Ledger    Ledger
	Scheduler Scheduler
	Hooks     Hooks
	Log       *logger.Logger
}

// Session is a single play-through of a quiz. Operations are serialized
// by an internal mutex; the only call made without it held is code
// execution, whose result is re-validated before it is applied.
type Session struct {
	id        string
	learnerID string
	contentID string
	cfg       Config
	deps      Deps
	log       *logger.Logger

	mu         sync.Mutex
	status     Status
	quiz       quiz.Quiz
	position   int
	score      int
	states     []ItemState
	closed     bool
	advance    Timer
	startedAt  time.Time
	finishedAt time.Time
}

// New creates a session in StatusLoading. contentID may be empty, in
// which case finishing does not touch the completion ledger.
func New(id, learnerID, contentID string, cfg Config, deps Deps) *Session {
	if deps.Scheduler == nil {
		deps.Scheduler = RealScheduler{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Session{
		id:        id,
		learnerID: learnerID,
		contentID: contentID,
		cfg:       cfg,
		deps:      deps,
		log:       deps.Log.With("component", "session", "session_id", id, "learner_id", learnerID),
		status:    StatusLoading,
	}
}

func (s *Session) ID() string        { return s.id }
func (s *Session) LearnerID() string { return s.learnerID }
func (s *Session) ContentID() string { return s.contentID }

// Start moves a loading session to StatusActive with q. A zero-length quiz
// is accepted; such a session has nothing to play and never finishes.
func (s *Session) Start(q quiz.Quiz) error {
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid quiz: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.status != StatusLoading {
		return s.invalid("start", "", "session already started")
	}

	s.quiz = q
	s.states = make([]ItemState, q.Len())
	s.status = StatusActive
	s.startedAt = time.Now()

	mc, code := q.Counts()
	s.log.Info("session started", "items", q.Len(), "multiple_choice", mc, "code", code)
	return nil
}

// AnswerMultipleChoice resolves the current multiple-choice item. The
// first answer is final. An auto-advance is scheduled either way.
func (s *Session) AnswerMultipleChoice(itemID string, chosenIndex int) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, state, err := s.currentLocked("answer", itemID)
	if err != nil {
		return Feedback{}, err
	}

	mc, ok := item.(*quiz.MultipleChoice)
	if !ok {
		return Feedback{}, s.invalid("answer", itemID, "item is a code challenge")
	}
	if state.Phase != PhaseUnanswered {
		return Feedback{}, s.invalid("answer", itemID, "item already "+state.String())
	}
	if chosenIndex < 0 || chosenIndex >= len(mc.Options) {
		return Feedback{}, fmt.Errorf("choice %d out of range [0, %d]", chosenIndex, len(mc.Options)-1)
	}

	correct := chosenIndex == mc.CorrectIndex
	state.Phase = PhaseAnswered
	state.Correct = correct
	state.Attempts++

	fb := Feedback{ItemID: itemID, Outcome: OutcomeWrong}
	if correct {
		s.score += mc.Points
		fb.Outcome = OutcomeCorrect
		fb.PointsAwarded = mc.Points
	}
	s.scheduleAdvanceLocked()
	s.log.Debug("multiple choice answered", "item_id", itemID, "correct", correct, "score", s.score)
	return fb, nil
}

// SubmitCode runs source in the sandbox and grades the current code item
// by comparing trimmed stdout to the trimmed expected output. A mismatch,
// a crash, or a sandbox failure leaves the item open for resubmission.
func (s *Session) SubmitCode(ctx context.Context, itemID, source string) (Feedback, error) {
	s.mu.Lock()
	item, state, err := s.currentLocked("submit", itemID)
	if err != nil {
		s.mu.Unlock()
		return Feedback{}, err
	}
	code, ok := item.(*quiz.CodeChallenge)
	if !ok {
		s.mu.Unlock()
		return Feedback{}, s.invalid("submit", itemID, "item is not a code challenge")
	}
	switch state.Phase {
	case PhaseChecking:
		s.mu.Unlock()
		return Feedback{}, s.invalid("submit", itemID, "a submission is already being checked")
	case PhaseAnswered:
		s.mu.Unlock()
		return Feedback{}, s.invalid("submit", itemID, "item already solved")
	}
	state.Phase = PhaseChecking
	state.Attempts++
	position := s.position
	s.mu.Unlock()

	res, runErr := s.deps.Runner.Run(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.status != StatusActive || s.position != position {
		s.log.Warn("discarding late execution result", "item_id", itemID)
		return Feedback{}, ErrClosed
	}

	if runErr != nil {
		state.Phase = PhaseUnanswered
		s.log.Warn("code execution failed", "item_id", itemID, "error", runErr)
		return Feedback{ItemID: itemID, Outcome: OutcomeExecutionFailed, Err: runErr}, nil
	}

	fb := Feedback{ItemID: itemID, Stdout: res.Stdout}
	if grade(code, res) {
		state.Phase = PhaseAnswered
		state.Correct = true
		s.score += code.Points
		fb.Outcome = OutcomeCorrect
		fb.PointsAwarded = code.Points
		s.scheduleAdvanceLocked()
	} else {
		state.Phase = PhaseUnanswered
		fb.Outcome = OutcomeWrong
	}
	s.log.Debug("code graded", "item_id", itemID, "correct", fb.Outcome == OutcomeCorrect,
		"attempt", state.Attempts, "score", s.score)
	return fb, nil
}

// grade compares output exactly after trimming surrounding whitespace.
// Stderr is ignored, so a crash is graded like any other wrong output.
func grade(code *quiz.CodeChallenge, res *sandbox.Result) bool {
	return strings.TrimSpace(res.Stdout) == strings.TrimSpace(code.ExpectedOutput)
}

// Advance moves to the next item, skipping the current one if it is still
// open. Moving past the last item finishes the session.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.status != StatusActive {
		s.mu.Unlock()
		return s.invalid("advance", "", "session is not active")
	}
	if s.quiz.Empty() {
		s.mu.Unlock()
		return s.invalid("advance", "", "nothing to play")
	}
	if s.position >= s.quiz.Len() {
		s.mu.Unlock()
		return s.invalid("advance", "", "no current item")
	}
	if s.states[s.position].Phase == PhaseChecking {
		s.mu.Unlock()
		return s.invalid("advance", s.quiz.Items[s.position].ItemID(), "a submission is being checked")
	}
	s.advanceLocked(ctx)
	return nil
}

// autoAdvance is the scheduled advance for the item at position. It does
// nothing if the learner already moved on or the session is gone.
func (s *Session) autoAdvance(position int) {
	s.mu.Lock()
	if s.closed || s.status != StatusActive || s.position != position {
		s.mu.Unlock()
		return
	}
	s.advanceLocked(context.Background())
}

// advanceLocked is called with s.mu held and releases it.
func (s *Session) advanceLocked(ctx context.Context) {
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
	s.position++
	past := s.position >= s.quiz.Len()
	s.mu.Unlock()

	if past {
		s.finish(ctx)
	}
	if s.deps.Hooks.OnAdvance != nil {
		s.deps.Hooks.OnAdvance(s.Snapshot())
	}
}

// finish performs the terminal transition and its side effects. It
// reports whether this call was the one that finished the session.
func (s *Session) finish(ctx context.Context) bool {
	s.mu.Lock()
	ok := s.finishLocked()
	summary := s.summaryLocked()
	s.mu.Unlock()
	if ok {
		s.afterFinish(ctx, summary)
	}
	return ok
}

// finishLocked enters StatusFinished. Only an open Active session with at
// least one item can finish, so the transition happens at most once.
func (s *Session) finishLocked() bool {
	if s.closed || s.status != StatusActive || s.quiz.Empty() {
		return false
	}
	s.status = StatusFinished
	s.finishedAt = time.Now()
	if s.position < s.quiz.Len() {
		s.position = s.quiz.Len()
	}
	return true
}

func (s *Session) afterFinish(ctx context.Context, summary Summary) {
	s.log.Info("session finished", "score", summary.Score, "max_score", summary.MaxScore,
		"correct", summary.Correct, "items", summary.Items)

	if s.deps.Committer != nil {
		s.deps.Committer.Commit(ctx, s.learnerID, summary.Score)
	}
	if s.contentID != "" && s.deps.Ledger != nil {
		if err := s.deps.Ledger.MarkCompleted(ctx, s.learnerID, s.contentID); err != nil {
			s.log.Warn("failed to mark content completed", "content_id", s.contentID, "error", err)
		}
	}
	if s.deps.Hooks.OnFinish != nil {
		s.deps.Hooks.OnFinish(summary)
	}
}

// Close tears the session down. Pending auto-advances and in-flight
// execution results are discarded. Closing an unfinished session commits
// nothing. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
	abandoned := s.status != StatusFinished
	summary := s.summaryLocked()
	s.mu.Unlock()

	if abandoned {
		s.log.Info("session abandoned", "position", summary.Position, "score", summary.Score)
		if s.deps.Hooks.OnAbandon != nil {
			s.deps.Hooks.OnAbandon(summary)
		}
	}
}

func (s *Session) scheduleAdvanceLocked() {
	if s.advance != nil {
		s.advance.Stop()
	}
	position := s.position
	s.advance = s.deps.Scheduler.AfterFunc(s.cfg.AdvanceDelay, func() {
		s.autoAdvance(position)
	})
}

// currentLocked checks that the session is playable and itemID is the
// current item, returning it and its state.
func (s *Session) currentLocked(op, itemID string) (quiz.Item, *ItemState, error) {
	if s.closed {
		return nil, nil, ErrClosed
	}
	if s.status != StatusActive {
		return nil, nil, s.invalid(op, itemID, "session is not active")
	}
	if s.position >= s.quiz.Len() {
		return nil, nil, s.invalid(op, itemID, "no current item")
	}
	item := s.quiz.Items[s.position]
	if item.ItemID() != itemID {
		return nil, nil, s.invalid(op, itemID, fmt.Sprintf("current item is %q", item.ItemID()))
	}
	return item, &s.states[s.position], nil
}

func (s *Session) invalid(op, itemID, reason string) error {
	return &InvalidTransitionError{Op: op, Status: s.status, ItemID: itemID, Reason: reason}
}
