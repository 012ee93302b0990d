package play

import "github.com/abhisek/quizcraft/internal/session"

// sessionReadyMsg is sent when the quiz has been synthesized and the
// session started.
type sessionReadyMsg struct {
	Session *session.Session
	Err     error
}

// submittedMsg carries the graded result of a code submission.
type submittedMsg struct {
	Feedback session.Feedback
	Err      error
}

// advanceDueMsg is sent when the feedback delay of an answer ends. Seq
// identifies the answer; stale ticks are ignored.
type advanceDueMsg struct {
	Seq int
}
