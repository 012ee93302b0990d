package session

// Outcome is the learner-facing result of resolving an item.
type Outcome int

const (
	OutcomeCorrect Outcome = iota
	// OutcomeWrong covers both wrong output and code that crashed.
	OutcomeWrong
	// OutcomeExecutionFailed means the sandbox could not be reached; the
	// item stays open for another attempt.
	OutcomeExecutionFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeWrong:
		return "wrong"
	default:
		return "execution_failed"
	}
}

// Feedback describes how an answer or submission was resolved.
type Feedback struct {
	ItemID        string
	Outcome       Outcome
	PointsAwarded int

	// Stdout is what the submitted code printed, for code items.
	Stdout string

	// Err is the transport error behind OutcomeExecutionFailed.
	Err error
}

// Message is the text shown to the learner.
func (f Feedback) Message() string {
	switch f.Outcome {
	case OutcomeCorrect:
		return "Correct!"
	case OutcomeWrong:
		return "Not quite."
	default:
		return "Execution failed, try again."
	}
}
