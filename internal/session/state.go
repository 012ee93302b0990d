package session

import (
	"fmt"
	"time"

	"github.com/abhisek/quizcraft/internal/envutil"
)

// Status is the lifecycle state of a session. Transitions only go forward:
// Loading → Active → Finished.
type Status int

const (
	StatusLoading  Status = iota // Quiz is being synthesized
	StatusActive                 // Items are being played
	StatusFinished               // Terminal; score has been handed off
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Phase is the answer state of a single item.
type Phase int

const (
	PhaseUnanswered Phase = iota
	PhaseChecking         // Code submission is being executed
	PhaseAnswered
)

func (p Phase) String() string {
	switch p {
	case PhaseUnanswered:
		return "unanswered"
	case PhaseChecking:
		return "checking"
	case PhaseAnswered:
		return "answered"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ItemState tracks one item. Correct is meaningful only when Phase is
// PhaseAnswered. Code items only reach PhaseAnswered when correct; a
// failed check returns them to PhaseUnanswered.
type ItemState struct {
	Phase    Phase
	Correct  bool
	Attempts int
}

func (s ItemState) String() string {
	if s.Phase == PhaseAnswered {
		return fmt.Sprintf("answered(%t)", s.Correct)
	}
	return s.Phase.String()
}

// Solved reports whether the item was answered correctly.
func (s ItemState) Solved() bool {
	return s.Phase == PhaseAnswered && s.Correct
}

// Config controls session timing.
type Config struct {
	// AdvanceDelay is how long a resolved item stays on screen before the
	// session moves on by itself.
	AdvanceDelay time.Duration
}

func DefaultConfig() Config {
	return Config{AdvanceDelay: 1500 * time.Millisecond}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.AdvanceDelay = envutil.Duration("QUIZCRAFT_SESSION_ADVANCE_DELAY", cfg.AdvanceDelay)
	return cfg
}
