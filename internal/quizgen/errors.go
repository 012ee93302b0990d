package quizgen

import "fmt"

// SynthesisError reports that the model service could not be reached. A
// model that answers badly is not an error; it yields a shorter quiz.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("quiz synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
